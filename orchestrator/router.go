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
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"omniquery/platform/orchestrator/llm"
	"omniquery/platform/shared/types"
)

// routerSystemPrompt asks for a multi-select classification as strict JSON.
// A question may need several specialists at once.
const routerSystemPrompt = `You are a query router for a question answering system with four specialists:
- financial: stock prices, company financials, market movers, economic indicators
- research: general knowledge, document lookup, historical facts, explanations
- news: current headlines and recent events
- weather: current weather and forecasts

Decide which specialists are needed for the user's question. A question may need
more than one specialist (e.g. "how is AAPL doing and what's the weather in NYC"
needs financial and weather).

Respond with a strict JSON object and nothing else:
{"needsFinancial": bool, "needsResearch": bool, "needsNews": bool, "needsWeather": bool, "reasoning": "<short reason>"}`

// QueryRouter classifies questions into specialist intents.
type QueryRouter struct {
	client llm.Client
}

// NewQueryRouter creates a router backed by the given LLM client.
func NewQueryRouter(client llm.Client) *QueryRouter {
	return &QueryRouter{client: client}
}

// Classify maps a question to the set of specialists it needs. Never returns
// an error: any LLM or parse failure fails open to all specialists, trading
// extra work for never dropping a question.
func (r *QueryRouter) Classify(ctx context.Context, question types.Question) types.QueryIntent {
	resp, err := r.client.Generate(ctx, llm.GenerateRequest{
		SystemPrompt: routerSystemPrompt,
		Prompt:       question.Text,
		MaxTokens:    256,
		Temperature:  0,
	})
	if err != nil {
		log.Printf("[QueryRouter] Classification call failed, routing to all specialists: %v", err)
		return types.FallbackIntent("classification call failed")
	}

	intent, err := parseIntent(stripCodeFences(resp.Content))
	if err != nil {
		log.Printf("[QueryRouter] Unusable classification %q, routing to all specialists: %v", resp.Content, err)
		return types.FallbackIntent("classification response was not a usable routing decision")
	}

	log.Printf("[QueryRouter] Classified question into %d specialist(s): %s", intent.Count(), intent.Reasoning)
	return intent
}

// parseIntent decodes a classification reply. All four routing flags must be
// present: JSON that merely omits them would otherwise read as a valid
// all-false decision, silently dropping the question.
func parseIntent(content string) (types.QueryIntent, error) {
	var raw struct {
		NeedsFinancial *bool  `json:"needsFinancial"`
		NeedsResearch  *bool  `json:"needsResearch"`
		NeedsNews      *bool  `json:"needsNews"`
		NeedsWeather   *bool  `json:"needsWeather"`
		Reasoning      string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return types.QueryIntent{}, fmt.Errorf("not valid JSON: %w", err)
	}
	if raw.NeedsFinancial == nil || raw.NeedsResearch == nil || raw.NeedsNews == nil || raw.NeedsWeather == nil {
		return types.QueryIntent{}, fmt.Errorf("missing one or more routing fields")
	}
	return types.QueryIntent{
		NeedsFinancial: *raw.NeedsFinancial,
		NeedsResearch:  *raw.NeedsResearch,
		NeedsNews:      *raw.NeedsNews,
		NeedsWeather:   *raw.NeedsWeather,
		Reasoning:      raw.Reasoning,
	}, nil
}

// stripCodeFences removes optional markdown code-fence markers around an LLM
// JSON response. Models wrap JSON in fences often enough that every JSON
// consumer in the pipeline strips them first.
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
