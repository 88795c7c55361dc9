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
	"sort"
	"strings"
	"time"

	"omniquery/platform/memory"
	"omniquery/platform/orchestrator/llm"
	"omniquery/platform/shared/types"
)

// maxToolRounds bounds the tool loop per specialist execution.
const maxToolRounds = 5

// Tool is one capability available to a specialist. The set of tools a
// specialist holds is fixed at construction; there is no registry a tool can
// be added to at runtime.
type Tool interface {
	Name() string
	Description() string
	Run(ctx context.Context, args map[string]string) (string, error)
}

// SpecialistAgent answers questions within one domain using its closed tool
// table. Execute produces exactly one AgentResult per call and never
// propagates errors or panics to the coordinator.
type SpecialistAgent struct {
	name         string
	systemPrompt string
	client       llm.Client
	tools        map[string]Tool
	toolOrder    []string
}

// NewSpecialistAgent builds a specialist over a fixed tool set. Tool names
// must be unique within the set.
func NewSpecialistAgent(name, systemPrompt string, client llm.Client, tools []Tool) *SpecialistAgent {
	table := make(map[string]Tool, len(tools))
	order := make([]string, 0, len(tools))
	for _, tool := range tools {
		if _, exists := table[tool.Name()]; exists {
			continue
		}
		table[tool.Name()] = tool
		order = append(order, tool.Name())
	}
	sort.Strings(order)

	return &SpecialistAgent{
		name:         name,
		systemPrompt: systemPrompt,
		client:       client,
		tools:        table,
		toolOrder:    order,
	}
}

// Name returns the specialist's display name.
func (a *SpecialistAgent) Name() string {
	return a.name
}

// ToolNames returns the fixed tool table's names, sorted.
func (a *SpecialistAgent) ToolNames() []string {
	out := make([]string, len(a.toolOrder))
	copy(out, a.toolOrder)
	return out
}

// agentAction is the strict-JSON shape the specialist model must emit each
// round: either a tool invocation or a final answer.
type agentAction struct {
	Action string            `json:"action"` // "tool" or "answer"
	Tool   string            `json:"tool,omitempty"`
	Args   map[string]string `json:"args,omitempty"`
	Answer string            `json:"answer,omitempty"`
}

// Execute answers the question within this specialist's domain. It always
// returns exactly one result; LLM failures, tool failures, and panics are
// captured as failed results with the specialist's name prefixed.
func (a *SpecialistAgent) Execute(ctx context.Context, question types.Question, history []memory.Turn) (result types.AgentResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[%s] Recovered from panic: %v", a.name, r)
			result = types.NewAgentFailure(a.name,
				fmt.Sprintf("%s failed: internal error (%v)", a.name, r),
				time.Since(start).Milliseconds())
		}
	}()

	log.Printf("[%s] Executing question (conversation=%s)", a.name, question.ConversationID)

	observations := make([]string, 0, maxToolRounds)
	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.client.Generate(ctx, llm.GenerateRequest{
			SystemPrompt: a.buildSystemPrompt(),
			Prompt:       a.buildPrompt(question, history, observations),
			MaxTokens:    1024,
			Temperature:  0,
		})
		if err != nil {
			return types.NewAgentFailure(a.name,
				fmt.Sprintf("%s failed: %v", a.name, err),
				time.Since(start).Milliseconds())
		}

		action, err := parseAgentAction(resp.Content)
		if err != nil {
			// A non-JSON response is treated as the final answer. Models
			// drop the envelope on simple questions often enough that
			// rejecting the content would fail good answers.
			return types.NewAgentSuccess(a.name, strings.TrimSpace(resp.Content), time.Since(start).Milliseconds())
		}

		switch action.Action {
		case "answer":
			return types.NewAgentSuccess(a.name, action.Answer, time.Since(start).Milliseconds())

		case "tool":
			observation := a.runTool(ctx, action)
			observations = append(observations, observation)

		default:
			return types.NewAgentFailure(a.name,
				fmt.Sprintf("%s failed: model requested unknown action %q", a.name, action.Action),
				time.Since(start).Milliseconds())
		}
	}

	return types.NewAgentFailure(a.name,
		fmt.Sprintf("%s failed: exceeded %d tool rounds without an answer", a.name, maxToolRounds),
		time.Since(start).Milliseconds())
}

// runTool resolves and runs one tool call against the closed table. Tool
// names outside the table and tool errors become observations for the next
// round rather than failures; the model can recover or answer without the
// tool.
func (a *SpecialistAgent) runTool(ctx context.Context, action agentAction) string {
	tool, ok := a.tools[action.Tool]
	if !ok {
		log.Printf("[%s] Model requested tool %q outside its tool set", a.name, action.Tool)
		return fmt.Sprintf("tool %q is not available; available tools: %s",
			action.Tool, strings.Join(a.toolOrder, ", "))
	}

	output, err := tool.Run(ctx, action.Args)
	if err != nil {
		log.Printf("[%s] Tool %s failed: %v", a.name, action.Tool, err)
		return fmt.Sprintf("tool %s failed: %v", action.Tool, err)
	}

	log.Printf("[%s] Tool %s returned %d bytes", a.name, action.Tool, len(output))
	return fmt.Sprintf("tool %s returned: %s", action.Tool, output)
}

func (a *SpecialistAgent) buildSystemPrompt() string {
	var b strings.Builder
	b.WriteString(a.systemPrompt)
	b.WriteString("\n\nYou have exactly these tools:\n")
	for _, name := range a.toolOrder {
		fmt.Fprintf(&b, "- %s: %s\n", name, a.tools[name].Description())
	}
	b.WriteString(`
Respond with a strict JSON object and nothing else. To use a tool:
{"action": "tool", "tool": "<name>", "args": {"<key>": "<value>"}}
To give your final answer:
{"action": "answer", "answer": "<your answer>"}
Only the listed tools exist. When a tool result is an error, either try a
different approach or answer with what you know.`)
	return b.String()
}

func (a *SpecialistAgent) buildPrompt(question types.Question, history []memory.Turn, observations []string) string {
	var b strings.Builder

	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", turn.Question, turn.Answer)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s\n", question.Text)

	if len(observations) > 0 {
		b.WriteString("\nTool results so far:\n")
		for i, obs := range observations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, obs)
		}
	}

	return b.String()
}

func parseAgentAction(content string) (agentAction, error) {
	var action agentAction
	cleaned := stripCodeFences(content)
	if err := json.Unmarshal([]byte(cleaned), &action); err != nil {
		return agentAction{}, fmt.Errorf("response is not an action object: %w", err)
	}
	if action.Action == "" {
		return agentAction{}, fmt.Errorf("response has no action field")
	}
	return action, nil
}
