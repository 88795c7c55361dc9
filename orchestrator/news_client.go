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
	"net/http"
	"net/url"
	"strings"
	"time"
)

const newsDataDefaultBaseURL = "https://newsdata.io/api/1"

// NewsClient fetches headlines from the NewsData.io API. An empty API key
// makes every call fail, which the news specialist surfaces as a tool
// failure and answers from model knowledge instead.
type NewsClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewNewsClient creates a NewsData.io client.
func NewNewsClient(apiKey string) *NewsClient {
	return &NewsClient{
		apiKey:  apiKey,
		baseURL: newsDataDefaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewNewsClientWithURL creates a client against a custom endpoint. Test hook.
func NewNewsClientWithURL(apiKey, baseURL string) *NewsClient {
	c := NewNewsClient(apiKey)
	c.baseURL = baseURL
	return c
}

type newsResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		SourceID    string `json:"source_id"`
		PubDate     string `json:"pubDate"`
	} `json:"results"`
}

// Headlines returns the current top headlines, optionally filtered by
// category (business, technology, ...).
func (n *NewsClient) Headlines(ctx context.Context, category string) (string, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	return n.fetch(ctx, params)
}

// Search returns recent articles matching the query.
func (n *NewsClient) Search(ctx context.Context, query string) (string, error) {
	if query == "" {
		return "", fmt.Errorf("search query cannot be empty")
	}
	params := url.Values{}
	params.Set("q", query)
	return n.fetch(ctx, params)
}

func (n *NewsClient) fetch(ctx context.Context, params url.Values) (string, error) {
	if n.apiKey == "" {
		return "", fmt.Errorf("news API key not configured")
	}

	params.Set("apikey", n.apiKey)
	params.Set("language", "en")
	endpoint := fmt.Sprintf("%s/latest?%s", n.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create news request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("news request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("news API rate limit exceeded (429)")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("news API returned status %d", resp.StatusCode)
	}

	var payload newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode news response: %w", err)
	}
	if payload.Status != "success" {
		return "", fmt.Errorf("news API returned status %q", payload.Status)
	}
	if len(payload.Results) == 0 {
		return "no matching articles found", nil
	}

	var b strings.Builder
	limit := len(payload.Results)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		article := payload.Results[i]
		fmt.Fprintf(&b, "- %s (%s, %s)", article.Title, article.SourceID, article.PubDate)
		if article.Description != "" {
			fmt.Fprintf(&b, ": %s", article.Description)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
