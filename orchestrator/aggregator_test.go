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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omniquery/platform/orchestrator/llm"
	"omniquery/platform/shared/types"
)

func TestAggregatorEmptyResults(t *testing.T) {
	client := llm.NewMockClient("should not be called")
	agg := NewResultAggregator(client)

	answer := agg.Synthesize(context.Background(), types.Question{Text: "q"}, nil)

	assert.Equal(t, ApologyResponse, answer)
	assert.Equal(t, 0, client.CallCount())
}

func TestAggregatorSingleSuccess(t *testing.T) {
	client := llm.NewMockClient("should not be called")
	agg := NewResultAggregator(client)

	answer := agg.Synthesize(context.Background(), types.Question{Text: "q"}, []types.AgentResult{
		types.NewAgentSuccess("Financial Agent", "AAPL is at 187.32 USD.", 120),
	})

	assert.Equal(t, "AAPL is at 187.32 USD.", answer, "single success must be returned verbatim")
	assert.Equal(t, 0, client.CallCount(), "no synthesis call for a single result")
}

func TestAggregatorSingleFailure(t *testing.T) {
	client := llm.NewMockClient("should not be called")
	agg := NewResultAggregator(client)

	answer := agg.Synthesize(context.Background(), types.Question{Text: "q"}, []types.AgentResult{
		types.NewAgentFailure("Financial Agent", "Financial Agent failed: all providers down", 80),
	})

	assert.Contains(t, answer, "problem")
	assert.Contains(t, answer, "all providers down")
	assert.Equal(t, 0, client.CallCount())
}

func TestAggregatorMultiSynthesis(t *testing.T) {
	client := llm.NewMockClient("AAPL trades at 187.32 (Financial Agent); your 2022 docs show a cost basis of 150 (Research Agent).")
	agg := NewResultAggregator(client)

	results := []types.AgentResult{
		types.NewAgentSuccess("Financial Agent", "AAPL is at 187.32 USD.", 120),
		types.NewAgentSuccess("Research Agent", "2022 portfolio cost basis: 150 USD.", 200),
	}
	answer := agg.Synthesize(context.Background(), types.Question{Text: "Compare AAPL with my 2022 docs"}, results)

	require.Equal(t, 1, client.CallCount(), "exactly one synthesis call for multiple results")
	assert.Contains(t, answer, "Financial Agent")
	assert.Contains(t, answer, "Research Agent")

	// The synthesis prompt labels each result with name, status, and timing
	prompt := client.Calls()[0].Prompt
	assert.Contains(t, prompt, "Financial Agent")
	assert.Contains(t, prompt, "Research Agent")
	assert.Contains(t, prompt, "120ms")
	assert.Contains(t, prompt, "Compare AAPL with my 2022 docs")
}

func TestAggregatorSynthesisFailureFallsBackToConcatenation(t *testing.T) {
	client := llm.NewMockClientScript(llm.MockReply{Err: errors.New("model overloaded")})
	agg := NewResultAggregator(client)

	results := []types.AgentResult{
		types.NewAgentSuccess("Financial Agent", "AAPL at 187.32", 100),
		types.NewAgentFailure("News Agent", "News Agent failed: no API key", 50),
		types.NewAgentSuccess("Weather Agent", "Sunny, 22C", 90),
	}
	answer := agg.Synthesize(context.Background(), types.Question{Text: "q"}, results)

	assert.Contains(t, answer, "Financial Agent: AAPL at 187.32")
	assert.Contains(t, answer, "Weather Agent: Sunny, 22C")
	assert.NotContains(t, answer, "News Agent", "failed results are dropped from the concatenation")
}

func TestAggregatorAllFailedAfterSynthesisFailure(t *testing.T) {
	client := llm.NewMockClientScript(llm.MockReply{Err: errors.New("down")})
	agg := NewResultAggregator(client)

	answer := agg.Synthesize(context.Background(), types.Question{Text: "q"}, []types.AgentResult{
		types.NewAgentFailure("Financial Agent", "failed", 10),
		types.NewAgentFailure("News Agent", "failed", 10),
	})

	assert.Equal(t, ApologyResponse, answer)
}

func TestAggregatorOutputNeverEmpty(t *testing.T) {
	client := llm.NewMockClient("")
	agg := NewResultAggregator(client)

	answer := agg.Synthesize(context.Background(), types.Question{Text: "q"}, []types.AgentResult{
		types.NewAgentSuccess("Financial Agent", "a", 1),
		types.NewAgentSuccess("News Agent", "b", 1),
	})

	assert.NotEmpty(t, answer, "blank synthesis output must fall back to concatenation")
}
