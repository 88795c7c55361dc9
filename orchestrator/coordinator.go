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
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"omniquery/platform/memory"
	"omniquery/platform/shared/logger"
	"omniquery/platform/shared/types"
)

// Answer is the outcome of one pipeline run.
type Answer struct {
	RequestID   string              `json:"request_id"`
	Answer      string              `json:"answer"`
	Intent      types.QueryIntent   `json:"intent"`
	Results     []types.AgentResult `json:"results"`
	TotalTimeMs int64               `json:"total_time_ms"`
}

// Coordinator drives the pipeline: classify, fan out to the matched
// specialists concurrently, join, aggregate. Specialists have no data
// dependency on one another; each runs under its own timeout so a slow one
// cannot discard the others' results.
type Coordinator struct {
	router     *QueryRouter
	aggregator *ResultAggregator

	financial *SpecialistAgent
	research  *SpecialistAgent
	news      *SpecialistAgent
	weather   *SpecialistAgent

	// memoryStore is optional; without it conversations carry no history.
	memoryStore       *memory.Store
	specialistTimeout time.Duration
	logger            *logger.Logger
}

// NewCoordinator wires the pipeline. memoryStore may be nil.
func NewCoordinator(
	router *QueryRouter,
	aggregator *ResultAggregator,
	financial, research, news, weather *SpecialistAgent,
	memoryStore *memory.Store,
	specialistTimeout time.Duration,
) *Coordinator {
	if specialistTimeout <= 0 {
		specialistTimeout = 45 * time.Second
	}
	return &Coordinator{
		router:            router,
		aggregator:        aggregator,
		financial:         financial,
		research:          research,
		news:              news,
		weather:           weather,
		memoryStore:       memoryStore,
		specialistTimeout: specialistTimeout,
		logger:            logger.New("coordinator"),
	}
}

// Ask answers one question end to end. It never returns an error; every
// failure mode degrades into an answer.
func (c *Coordinator) Ask(ctx context.Context, question types.Question) Answer {
	start := time.Now()
	requestID := uuid.New().String()

	c.logger.Info(question.ConversationID, requestID, "Processing question", map[string]interface{}{
		"question_length": len(question.Text),
	})

	history := c.loadHistory(ctx, question.ConversationID)

	classifyStart := time.Now()
	intent := c.router.Classify(ctx, question)
	requestDuration.WithLabelValues("classify").Observe(float64(time.Since(classifyStart).Milliseconds()))

	results := c.dispatch(ctx, intent, question, history)

	aggregateStart := time.Now()
	answer := c.aggregator.Synthesize(ctx, question, results)
	requestDuration.WithLabelValues("aggregate").Observe(float64(time.Since(aggregateStart).Milliseconds()))

	c.recordTurn(ctx, question, answer)

	status := "success"
	for _, r := range results {
		if !r.Success {
			status = "partial"
			break
		}
	}
	requestsTotal.WithLabelValues(status).Inc()

	elapsed := time.Since(start)
	requestDuration.WithLabelValues("total").Observe(float64(elapsed.Milliseconds()))
	c.logger.InfoWithDuration(question.ConversationID, requestID, "Question answered",
		float64(elapsed.Milliseconds()), map[string]interface{}{
			"specialists": len(results),
			"status":      status,
		})

	return Answer{
		RequestID:   requestID,
		Answer:      answer,
		Intent:      intent,
		Results:     results,
		TotalTimeMs: elapsed.Milliseconds(),
	}
}

// dispatch runs one goroutine per activated specialist and joins on all of
// them. Results keep a fixed specialist order regardless of completion
// order.
func (c *Coordinator) dispatch(ctx context.Context, intent types.QueryIntent, question types.Question, history []memory.Turn) []types.AgentResult {
	type slot struct {
		agent  *SpecialistAgent
		active bool
	}
	slots := []slot{
		{c.financial, intent.NeedsFinancial},
		{c.research, intent.NeedsResearch},
		{c.news, intent.NeedsNews},
		{c.weather, intent.NeedsWeather},
	}

	results := make([]types.AgentResult, len(slots))
	dispatched := make([]bool, len(slots))

	var wg sync.WaitGroup
	for i, s := range slots {
		if !s.active || s.agent == nil {
			continue
		}
		dispatched[i] = true
		wg.Add(1)
		go func(idx int, agent *SpecialistAgent) {
			defer wg.Done()

			agentCtx, cancel := context.WithTimeout(ctx, c.specialistTimeout)
			defer cancel()

			result := agent.Execute(agentCtx, question, history)
			results[idx] = result

			status := "success"
			if !result.Success {
				status = "failure"
			}
			agentExecutions.WithLabelValues(agent.Name(), status).Inc()
		}(i, s.agent)
	}
	wg.Wait()

	out := make([]types.AgentResult, 0, len(slots))
	for i := range slots {
		if dispatched[i] {
			out = append(out, results[i])
		}
	}
	return out
}

// loadHistory reads prior turns best effort; history being unavailable is
// never fatal to a question.
func (c *Coordinator) loadHistory(ctx context.Context, conversationID string) []memory.Turn {
	if c.memoryStore == nil || conversationID == "" {
		return nil
	}
	history, err := c.memoryStore.History(ctx, conversationID)
	if err != nil {
		log.Printf("[Coordinator] Failed to load history for %s: %v", conversationID, err)
		return nil
	}
	return history
}

func (c *Coordinator) recordTurn(ctx context.Context, question types.Question, answer string) {
	if c.memoryStore == nil || question.ConversationID == "" {
		return
	}
	err := c.memoryStore.Append(ctx, question.ConversationID, memory.Turn{
		Question: question.Text,
		Answer:   answer,
	})
	if err != nil {
		log.Printf("[Coordinator] Failed to record turn for %s: %v", question.ConversationID, err)
	}
}
