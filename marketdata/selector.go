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

package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"omniquery/platform/orchestrator/llm"
)

// selectorSystemPrompt instructs the model to pick one provider by name.
const selectorSystemPrompt = `You select the best market data provider for a stock quote request.
You are given the list of currently usable providers with their priority and recent usage.
Prefer providers that have not been rate limited recently and have a good success record.
Respond with a strict JSON object: {"provider": "<name>", "reasoning": "<short reason>"}.
The provider value MUST be one of the listed names. Respond with JSON only.`

// CandidateSummary describes one usable provider to the selector.
type CandidateSummary struct {
	Name                string `json:"name"`
	Priority            int    `json:"priority"`
	SuccessCount        int64  `json:"success_count"`
	FailureCount        int64  `json:"failure_count"`
	RateLimitedRecently bool   `json:"rate_limited_recently"`
	CallsLastMinute     int64  `json:"calls_last_minute"`
}

// Selector asks an LLM to pick the provider to try first. It is an
// optimization layer over the sequential fallback, never a replacement for
// its correctness guarantee.
type Selector struct {
	client llm.Client
}

// NewSelector creates an intelligent provider selector.
func NewSelector(client llm.Client) *Selector {
	return &Selector{client: client}
}

// Pick returns the name of the provider to try first, or "" when the model
// declined to pick. The returned name is validated against the candidate
// list; anything else is an error.
func (s *Selector) Pick(ctx context.Context, symbol, queryContext string, candidates []CandidateSummary) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("no candidates to select from")
	}

	candidatesJSON, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("failed to marshal candidates: %w", err)
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Symbol: %s\n", symbol)
	if queryContext != "" {
		fmt.Fprintf(&prompt, "Question context: %s\n", queryContext)
	}
	fmt.Fprintf(&prompt, "Usable providers:\n%s\n", candidatesJSON)

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		SystemPrompt: selectorSystemPrompt,
		Prompt:       prompt.String(),
		MaxTokens:    256,
		Temperature:  0,
	})
	if err != nil {
		return "", fmt.Errorf("selector call failed: %w", err)
	}

	var pick struct {
		Provider  string `json:"provider"`
		Reasoning string `json:"reasoning"`
	}
	cleaned := stripCodeFences(resp.Content)
	if err := json.Unmarshal([]byte(cleaned), &pick); err != nil {
		return "", fmt.Errorf("selector returned unparseable response: %w", err)
	}

	if pick.Provider == "" {
		return "", nil
	}

	for _, c := range candidates {
		if c.Name == pick.Provider {
			return pick.Provider, nil
		}
	}
	return "", fmt.Errorf("selector named unknown provider %q", pick.Provider)
}

// stripCodeFences removes optional markdown code-fence markers around an
// LLM JSON response.
func stripCodeFences(s string) string {
	out := strings.TrimSpace(s)
	if strings.HasPrefix(out, "```") {
		out = strings.TrimPrefix(out, "```json")
		out = strings.TrimPrefix(out, "```")
		if idx := strings.LastIndex(out, "```"); idx >= 0 {
			out = out[:idx]
		}
	}
	return strings.TrimSpace(out)
}
