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
	"fmt"
	"time"
)

// Client is the unified interface for text-generation backends.
// Implementations must be safe for concurrent use.
type Client interface {
	// Name returns the identifier used for routing, logging, and metrics.
	Name() string

	// Generate produces a completion for the given request.
	// The context is used for cancellation and timeout.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsHealthy reports whether the backend is believed operational.
	IsHealthy() bool
}

// GenerateRequest encapsulates one text-generation call.
type GenerateRequest struct {
	// SystemPrompt sets the model's behavior for this call.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Prompt is the user-facing input text.
	Prompt string `json:"prompt"`

	// Model overrides the client's default model when non-empty.
	Model string `json:"model,omitempty"`

	// MaxTokens limits the response length. 0 uses the client default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness. Negative values use the client default.
	Temperature float64 `json:"temperature,omitempty"`

	// StopSequences cause generation to stop when produced.
	StopSequences []string `json:"stop_sequences,omitempty"`
}

// GenerateResponse contains the result of a text-generation call.
type GenerateResponse struct {
	Content string        `json:"content"`
	Model   string        `json:"model"`
	Usage   UsageStats    `json:"usage"`
	Latency time.Duration `json:"latency"`
}

// UsageStats tracks token usage for monitoring.
type UsageStats struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ClientError represents an error from a text-generation backend.
type ClientError struct {
	// Client is the name of the backend that returned the error.
	Client string `json:"client"`

	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// StatusCode is the HTTP status code, if applicable.
	StatusCode int `json:"status_code,omitempty"`

	// Cause is the underlying error, if any.
	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Client, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Client, e.Message)
}

// Unwrap returns the underlying error.
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Common error codes.
const (
	ErrCodeRateLimit      = "rate_limit"
	ErrCodeAuth           = "authentication_error"
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeServerError    = "server_error"
	ErrCodeTimeout        = "timeout"
	ErrCodeUnavailable    = "unavailable"
)
