// Copyright 2025 OmniQuery
// SPDX-License-Identifier: Apache-2.0
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package types provides shared value types passed between the query router,
// the specialist agents, and the result aggregator. All types here are
// immutable value data created fresh per question and discarded after the
// response is returned.
package types

import "fmt"

// Question is the immutable input to one pipeline run.
type Question struct {
	// Text is the user's natural-language question.
	Text string `json:"text"`

	// ConversationID scopes any memory the underlying LLM calls use.
	// The pipeline forwards it but never reads or writes memory directly.
	ConversationID string `json:"conversation_id"`
}

// QueryIntent is the multi-select routing decision for one question.
// Multiple flags may be true simultaneously; if all four are false no
// specialist is invoked and the answer comes from conversational context.
type QueryIntent struct {
	NeedsFinancial bool `json:"needsFinancial"`
	NeedsResearch  bool `json:"needsResearch"`
	NeedsNews      bool `json:"needsNews"`
	NeedsWeather   bool `json:"needsWeather"`

	// Reasoning is advisory text for debugging. It is never parsed.
	Reasoning string `json:"reasoning"`
}

// Any returns true if at least one specialist is needed.
func (q QueryIntent) Any() bool {
	return q.NeedsFinancial || q.NeedsResearch || q.NeedsNews || q.NeedsWeather
}

// Count returns the number of specialists the intent activates.
func (q QueryIntent) Count() int {
	n := 0
	for _, b := range []bool{q.NeedsFinancial, q.NeedsResearch, q.NeedsNews, q.NeedsWeather} {
		if b {
			n++
		}
	}
	return n
}

// FallbackIntent is the fail-open intent used when classification fails:
// all specialists are activated so that no relevant domain is silently
// skipped.
func FallbackIntent(reason string) QueryIntent {
	return QueryIntent{
		NeedsFinancial: true,
		NeedsResearch:  true,
		NeedsNews:      true,
		NeedsWeather:   true,
		Reasoning:      fmt.Sprintf("Routing failed (%s); activating all specialists defensively", reason),
	}
}

// AgentResult is produced exactly once per invoked specialist, regardless of
// outcome. A specialist never propagates an error to its caller; internal
// failures are captured as Success=false with a human-readable Result.
type AgentResult struct {
	AgentName       string `json:"agentName"`
	Result          string `json:"result"`
	Success         bool   `json:"success"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
}

// NewAgentSuccess wraps a successful specialist answer.
func NewAgentSuccess(agentName, result string, elapsedMs int64) AgentResult {
	return AgentResult{
		AgentName:       agentName,
		Result:          result,
		Success:         true,
		ExecutionTimeMs: elapsedMs,
	}
}

// NewAgentFailure captures a specialist failure with the elapsed time
// measured up to the failure point.
func NewAgentFailure(agentName, message string, elapsedMs int64) AgentResult {
	return AgentResult{
		AgentName:       agentName,
		Result:          message,
		Success:         false,
		ExecutionTimeMs: elapsedMs,
	}
}
