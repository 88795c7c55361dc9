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
	"strings"
	"time"
)

const finnhubDefaultBaseURL = "https://finnhub.io/api/v1"

// FinnhubProvider fetches quotes from the Finnhub /quote endpoint.
type FinnhubProvider struct {
	name     string
	apiKey   string
	baseURL  string
	priority int
	enabled  bool
	client   *http.Client
}

// NewFinnhubProvider creates a provider from persisted configuration.
func NewFinnhubProvider(cfg ProviderConfig) *FinnhubProvider {
	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = finnhubDefaultBaseURL
	}
	name := cfg.Name
	if name == "" {
		name = "finnhub"
	}
	return &FinnhubProvider{
		name:     name,
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		priority: cfg.Priority,
		enabled:  cfg.Enabled,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *FinnhubProvider) Name() string { return p.name }
func (p *FinnhubProvider) Priority() int { return p.priority }
func (p *FinnhubProvider) Enabled() bool { return p.enabled }
func (p *FinnhubProvider) IsAvailable() bool { return p.apiKey != "" }

type finnhubQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// GetQuote fetches the current quote for a symbol.
func (p *FinnhubProvider) GetQuote(ctx context.Context, symbol string) (*StockQuote, error) {
	endpoint := fmt.Sprintf("%s/quote?symbol=%s&token=%s",
		p.baseURL, url.QueryEscape(strings.ToUpper(symbol)), url.QueryEscape(p.apiKey))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("finnhub request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return NewErrorQuote(symbol, p.name, "finnhub rate limit exceeded (429)"), nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("finnhub returned status %d", resp.StatusCode)
	}

	var payload finnhubQuote
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode finnhub response: %w", err)
	}

	// Finnhub returns zeros for unknown symbols
	if payload.Current == 0 && payload.Timestamp == 0 {
		return NewErrorQuote(symbol, p.name, fmt.Sprintf("no quote data for %s", symbol)), nil
	}

	lastTrade := time.Now()
	if payload.Timestamp > 0 {
		lastTrade = time.Unix(payload.Timestamp, 0)
	}

	return &StockQuote{
		Symbol:        strings.ToUpper(symbol),
		Price:         payload.Current,
		Change:        payload.Change,
		ChangePercent: payload.ChangePercent,
		DayHigh:       payload.High,
		DayLow:        payload.Low,
		Open:          payload.Open,
		PreviousClose: payload.PreviousClose,
		LastTradeTime: lastTrade,
		Currency:      "USD",
		ProviderName:  p.name,
	}, nil
}
