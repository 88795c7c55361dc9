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
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const alphaVantageDefaultBaseURL = "https://www.alphavantage.co"

// AlphaVantageProvider fetches quotes from the Alpha Vantage GLOBAL_QUOTE
// endpoint. The free tier rate limits aggressively; limit responses arrive
// as a 200 with a "Note" or "Information" body, which is surfaced as an
// error quote so the chain's heuristics can classify it.
type AlphaVantageProvider struct {
	name     string
	apiKey   string
	baseURL  string
	priority int
	enabled  bool
	client   *http.Client
}

// NewAlphaVantageProvider creates a provider from persisted configuration.
func NewAlphaVantageProvider(cfg ProviderConfig) *AlphaVantageProvider {
	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = alphaVantageDefaultBaseURL
	}
	name := cfg.Name
	if name == "" {
		name = "alphavantage"
	}
	return &AlphaVantageProvider{
		name:     name,
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		priority: cfg.Priority,
		enabled:  cfg.Enabled,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *AlphaVantageProvider) Name() string { return p.name }
func (p *AlphaVantageProvider) Priority() int { return p.priority }
func (p *AlphaVantageProvider) Enabled() bool { return p.enabled }
func (p *AlphaVantageProvider) IsAvailable() bool { return p.apiKey != "" }

type alphaVantageQuote struct {
	GlobalQuote map[string]string `json:"Global Quote"`
	Note        string            `json:"Note"`
	Information string            `json:"Information"`
}

// GetQuote fetches the current quote for a symbol.
func (p *AlphaVantageProvider) GetQuote(ctx context.Context, symbol string) (*StockQuote, error) {
	endpoint := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		p.baseURL, url.QueryEscape(symbol), url.QueryEscape(p.apiKey))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage returned status %d", resp.StatusCode)
	}

	var payload alphaVantageQuote
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode alphavantage response: %w", err)
	}

	// Free tier signals throttling inside a 200 response
	if payload.Note != "" {
		return NewErrorQuote(symbol, p.name, payload.Note), nil
	}
	if payload.Information != "" && len(payload.GlobalQuote) == 0 {
		return NewErrorQuote(symbol, p.name, payload.Information), nil
	}
	if len(payload.GlobalQuote) == 0 {
		return NewErrorQuote(symbol, p.name, fmt.Sprintf("no quote data for %s", symbol)), nil
	}

	q := payload.GlobalQuote
	quote := &StockQuote{
		Symbol:        strings.ToUpper(symbol),
		Price:         parseFloatField(q["05. price"]),
		Change:        parseFloatField(q["09. change"]),
		ChangePercent: parseFloatField(strings.TrimSuffix(q["10. change percent"], "%")),
		DayHigh:       parseFloatField(q["03. high"]),
		DayLow:        parseFloatField(q["04. low"]),
		Open:          parseFloatField(q["02. open"]),
		PreviousClose: parseFloatField(q["08. previous close"]),
		Volume:        parseIntField(q["06. volume"]),
		LastTradeTime: time.Now(),
		Currency:      "USD",
		ProviderName:  p.name,
	}
	return quote, nil
}

func parseFloatField(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseIntField(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
