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

package llm

import (
	"context"
	"sync"
)

// MockClient is a scriptable Client for tests. Responses are returned in
// order; once the script is exhausted the last entry repeats. If Err is set
// on an entry, Generate returns that error instead of a response.
type MockClient struct {
	ClientName string
	Script     []MockReply
	Healthy    bool

	mu    sync.Mutex
	calls []GenerateRequest
}

// MockReply is one scripted Generate outcome.
type MockReply struct {
	Content string
	Err     error
}

// NewMockClient creates a mock that always returns content.
func NewMockClient(content string) *MockClient {
	return &MockClient{
		ClientName: "mock",
		Script:     []MockReply{{Content: content}},
		Healthy:    true,
	}
}

// NewMockClientScript creates a mock that plays back the given replies.
func NewMockClientScript(replies ...MockReply) *MockClient {
	return &MockClient{
		ClientName: "mock",
		Script:     replies,
		Healthy:    true,
	}
}

// Name returns the mock's name.
func (m *MockClient) Name() string {
	if m.ClientName == "" {
		return "mock"
	}
	return m.ClientName
}

// IsHealthy reports the scripted health flag.
func (m *MockClient) IsHealthy() bool {
	return m.Healthy
}

// Generate records the request and returns the next scripted reply.
func (m *MockClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	idx := len(m.calls) - 1
	if idx >= len(m.Script) {
		idx = len(m.Script) - 1
	}
	reply := MockReply{}
	if idx >= 0 {
		reply = m.Script[idx]
	}
	m.mu.Unlock()

	if reply.Err != nil {
		return nil, reply.Err
	}

	return &GenerateResponse{
		Content: reply.Content,
		Model:   "mock-model",
		Usage:   UsageStats{InputTokens: len(req.Prompt) / 4, OutputTokens: len(reply.Content) / 4},
	}, nil
}

// CallCount returns the number of Generate calls made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded requests.
func (m *MockClient) Calls() []GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GenerateRequest, len(m.calls))
	copy(out, m.calls)
	return out
}
