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

package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"omniquery/platform/orchestrator/llm"
	"omniquery/platform/shared/types"
)

// ApologyResponse is returned when no specialist produced any result.
const ApologyResponse = "I'm sorry, I wasn't able to find an answer to your question."

const synthesisSystemPrompt = `You combine the outputs of several specialist agents into one coherent,
comprehensive answer. Attribute facts to the agent that produced them. If
agents disagree, present both sides. If an agent failed, acknowledge the gap
briefly without dwelling on it. Answer the user's original question directly.`

// ResultAggregator combines specialist results into one user-facing answer.
type ResultAggregator struct {
	client llm.Client
}

// NewResultAggregator creates an aggregator backed by the given LLM client.
func NewResultAggregator(client llm.Client) *ResultAggregator {
	return &ResultAggregator{client: client}
}

// Synthesize produces the final answer. Zero results yield the fixed
// apology; a single result is returned directly without a synthesis call;
// multiple results are combined by one LLM call, falling back to a
// deterministic concatenation if that call fails. The output is never empty.
func (a *ResultAggregator) Synthesize(ctx context.Context, question types.Question, results []types.AgentResult) string {
	switch len(results) {
	case 0:
		return ApologyResponse
	case 1:
		// Single-domain answers skip the synthesis call entirely
		if results[0].Success {
			return results[0].Result
		}
		return fmt.Sprintf("I ran into a problem answering that: %s", results[0].Result)
	}

	start := time.Now()
	log.Printf("[Aggregator] Synthesizing %d specialist results", len(results))

	resp, err := a.client.Generate(ctx, llm.GenerateRequest{
		SystemPrompt: synthesisSystemPrompt,
		Prompt:       buildSynthesisPrompt(question, results),
		MaxTokens:    2048,
		Temperature:  0.3,
	})
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		log.Printf("[Aggregator] Synthesis failed, using concatenation fallback: %v", err)
		synthesisFallbacks.Inc()
		return concatenateResults(results)
	}

	log.Printf("[Aggregator] Synthesis completed in %s", time.Since(start))
	return strings.TrimSpace(resp.Content)
}

// buildSynthesisPrompt lists each result with its agent name, outcome, and
// timing so the model can attribute and weigh sources.
func buildSynthesisPrompt(question types.Question, results []types.AgentResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Original question: %s\n\nSpecialist results:\n\n", question.Text)
	for i, result := range results {
		status := "succeeded"
		if !result.Success {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "%d. %s (%s in %dms):\n%s\n\n", i+1, result.AgentName, status, result.ExecutionTimeMs, result.Result)
	}
	b.WriteString("Combine these into one answer to the original question.")

	return b.String()
}

// concatenateResults is the deterministic fallback: successful results
// joined as "agentName: result" pairs. Synthesis failure must never lose
// information the specialists already produced.
func concatenateResults(results []types.AgentResult) string {
	var parts []string
	for _, result := range results {
		if result.Success {
			parts = append(parts, fmt.Sprintf("%s: %s", result.AgentName, result.Result))
		}
	}
	if len(parts) == 0 {
		return ApologyResponse
	}
	return strings.Join(parts, "\n\n")
}
