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
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// bedrockDefaultModel is used when no model is configured.
const bedrockDefaultModel = "anthropic.claude-3-5-sonnet-20241022-v2:0"

// BedrockClient implements Client for AWS Bedrock using AWS SDK v2.
// Requests are signed with AWS Signature V4 via IAM roles, so no API key
// is handled by this process.
type BedrockClient struct {
	client  *bedrockruntime.Client
	region  string
	model   string
	healthy bool
	mu      sync.RWMutex
}

// NewBedrockClient creates a Bedrock-backed text-generation client.
func NewBedrockClient(region, model string) (*BedrockClient, error) {
	if region == "" {
		return nil, fmt.Errorf("bedrock region is required")
	}
	if model == "" {
		model = bedrockDefaultModel
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &BedrockClient{
		client:  bedrockruntime.NewFromConfig(cfg),
		region:  region,
		model:   model,
		healthy: true,
	}, nil
}

// Name returns the client name
func (c *BedrockClient) Name() string {
	return "bedrock"
}

// IsHealthy returns whether the client is healthy
func (c *BedrockClient) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

func (c *BedrockClient) setHealthy(healthy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthy = healthy
}

// Generate invokes the configured Bedrock model.
func (c *BedrockClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = c.model
	}

	requestBody, err := c.buildRequestBody(req, model)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestJSON, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model),
		Body:        requestJSON,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		c.setHealthy(false)
		log.Printf("[Bedrock] API call failed: %v", err)
		return nil, fmt.Errorf("bedrock API error: %w", err)
	}

	c.setHealthy(true)

	response, err := c.parseResponseBody(output.Body, model)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	response.Model = model
	response.Latency = time.Since(start)

	return response, nil
}

// buildRequestBody builds the request body based on model family
func (c *BedrockClient) buildRequestBody(req GenerateRequest, model string) (map[string]interface{}, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	switch detectBedrockModelFamily(model) {
	case "anthropic":
		body := map[string]interface{}{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        maxTokens,
			"temperature":       req.Temperature,
			"messages": []map[string]string{
				{"role": "user", "content": req.Prompt},
			},
		}
		if req.SystemPrompt != "" {
			body["system"] = req.SystemPrompt
		}
		return body, nil
	case "amazon":
		prompt := req.Prompt
		if req.SystemPrompt != "" {
			prompt = req.SystemPrompt + "\n\n" + req.Prompt
		}
		return map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": maxTokens,
				"temperature":   req.Temperature,
				"topP":          0.9,
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported model family for model %q", model)
	}
}

// parseResponseBody parses the response body based on model family
func (c *BedrockClient) parseResponseBody(body []byte, model string) (*GenerateResponse, error) {
	switch detectBedrockModelFamily(model) {
	case "anthropic":
		var resp struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
			Usage struct {
				InputTokens  int `json:"input_tokens"`
				OutputTokens int `json:"output_tokens"`
			} `json:"usage"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}

		content := ""
		if len(resp.Content) > 0 {
			content = resp.Content[0].Text
		}

		return &GenerateResponse{
			Content: content,
			Usage: UsageStats{
				InputTokens:  resp.Usage.InputTokens,
				OutputTokens: resp.Usage.OutputTokens,
				TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
			},
		}, nil
	case "amazon":
		var resp struct {
			Results []struct {
				OutputText string `json:"outputText"`
				TokenCount int    `json:"tokenCount"`
			} `json:"results"`
			InputTextTokenCount int `json:"inputTextTokenCount"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}

		content := ""
		outputTokens := 0
		if len(resp.Results) > 0 {
			content = resp.Results[0].OutputText
			outputTokens = resp.Results[0].TokenCount
		}

		return &GenerateResponse{
			Content: content,
			Usage: UsageStats{
				InputTokens:  resp.InputTextTokenCount,
				OutputTokens: outputTokens,
				TotalTokens:  resp.InputTextTokenCount + outputTokens,
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported model family for model %q", model)
	}
}

// detectBedrockModelFamily identifies the request/response format a Bedrock
// model expects from its model id prefix.
func detectBedrockModelFamily(model string) string {
	switch {
	case strings.HasPrefix(model, "anthropic."), strings.Contains(model, ".anthropic."):
		return "anthropic"
	case strings.HasPrefix(model, "amazon."), strings.Contains(model, ".amazon."):
		return "amazon"
	default:
		return "unknown"
	}
}
