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

const twelveDataDefaultBaseURL = "https://api.twelvedata.com"

// TwelveDataProvider fetches quotes from the Twelve Data /quote endpoint.
// API errors arrive as a 200 with {"code": ..., "message": ...}.
type TwelveDataProvider struct {
	name     string
	apiKey   string
	baseURL  string
	priority int
	enabled  bool
	client   *http.Client
}

// NewTwelveDataProvider creates a provider from persisted configuration.
func NewTwelveDataProvider(cfg ProviderConfig) *TwelveDataProvider {
	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = twelveDataDefaultBaseURL
	}
	name := cfg.Name
	if name == "" {
		name = "twelvedata"
	}
	return &TwelveDataProvider{
		name:     name,
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		priority: cfg.Priority,
		enabled:  cfg.Enabled,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *TwelveDataProvider) Name() string { return p.name }
func (p *TwelveDataProvider) Priority() int { return p.priority }
func (p *TwelveDataProvider) Enabled() bool { return p.enabled }
func (p *TwelveDataProvider) IsAvailable() bool { return p.apiKey != "" }

type twelveDataQuote struct {
	Code          int    `json:"code"`
	Message       string `json:"message"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Currency      string `json:"currency"`
	Open          string `json:"open"`
	High          string `json:"high"`
	Low           string `json:"low"`
	Close         string `json:"close"`
	Volume        string `json:"volume"`
	PreviousClose string `json:"previous_close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`
	Timestamp     int64  `json:"timestamp"`
}

// GetQuote fetches the current quote for a symbol.
func (p *TwelveDataProvider) GetQuote(ctx context.Context, symbol string) (*StockQuote, error) {
	endpoint := fmt.Sprintf("%s/quote?symbol=%s&apikey=%s",
		p.baseURL, url.QueryEscape(strings.ToUpper(symbol)), url.QueryEscape(p.apiKey))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twelvedata request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusTooManyRequests {
		return nil, fmt.Errorf("twelvedata returned status %d", resp.StatusCode)
	}

	var payload twelveDataQuote
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode twelvedata response: %w", err)
	}

	// API-level errors come back with a code and message
	if payload.Code != 0 {
		return NewErrorQuote(symbol, p.name, fmt.Sprintf("twelvedata error %d: %s", payload.Code, payload.Message)), nil
	}

	price := parseFloatField(payload.Close)
	lastTrade := time.Now()
	if payload.Timestamp > 0 {
		lastTrade = time.Unix(payload.Timestamp, 0)
	}

	return &StockQuote{
		Symbol:        strings.ToUpper(symbol),
		Price:         price,
		Change:        parseFloatField(payload.Change),
		ChangePercent: parseFloatField(payload.PercentChange),
		DayHigh:       parseFloatField(payload.High),
		DayLow:        parseFloatField(payload.Low),
		Open:          parseFloatField(payload.Open),
		PreviousClose: parseFloatField(payload.PreviousClose),
		Volume:        parseIntField(payload.Volume),
		LastTradeTime: lastTrade,
		CompanyName:   payload.Name,
		Currency:      payload.Currency,
		ProviderName:  p.name,
	}, nil
}
