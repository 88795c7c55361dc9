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
	"sort"
	"strings"
	"time"
)

// FundamentalsClient serves the financial specialist's non-quote data needs:
// company ratios, historical prices, market movers, and economic indicators.
// These are single external calls with no fallback chain behind them.
type FundamentalsClient interface {
	CompanyOverview(ctx context.Context, symbol string) (string, error)
	HistoricalPrices(ctx context.Context, symbol string, days int) (string, error)
	MarketMovers(ctx context.Context) (string, error)
	EconomicIndicator(ctx context.Context, indicator string) (string, error)
}

// economicFunctions maps accepted indicator names to Alpha Vantage function
// names.
var economicFunctions = map[string]string{
	"gdp":          "REAL_GDP",
	"cpi":          "CPI",
	"inflation":    "INFLATION",
	"unemployment": "UNEMPLOYMENT",
	"fed_rate":     "FEDERAL_FUNDS_RATE",
	"treasury":     "TREASURY_YIELD",
}

// AlphaVantageFundamentals implements FundamentalsClient over the Alpha
// Vantage OVERVIEW, TIME_SERIES_DAILY, TOP_GAINERS_LOSERS, and economic
// endpoints.
type AlphaVantageFundamentals struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAlphaVantageFundamentals creates a fundamentals client.
func NewAlphaVantageFundamentals(apiKey string) *AlphaVantageFundamentals {
	return &AlphaVantageFundamentals{
		apiKey:  apiKey,
		baseURL: alphaVantageDefaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// NewAlphaVantageFundamentalsWithURL creates a client against a custom
// endpoint. Test hook.
func NewAlphaVantageFundamentalsWithURL(apiKey, baseURL string) *AlphaVantageFundamentals {
	c := NewAlphaVantageFundamentals(apiKey)
	c.baseURL = baseURL
	return c
}

// fetch runs one query and decodes into a generic map, surfacing Alpha
// Vantage's in-band Note/Information throttle messages as errors.
func (f *AlphaVantageFundamentals) fetch(ctx context.Context, params url.Values) (map[string]json.RawMessage, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("alphavantage API key not configured")
	}

	params.Set("apikey", f.apiKey)
	endpoint := fmt.Sprintf("%s/query?%s", f.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage returned status %d", resp.StatusCode)
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode alphavantage response: %w", err)
	}

	for _, field := range []string{"Note", "Information"} {
		if raw, ok := payload[field]; ok && len(payload) == 1 {
			var message string
			_ = json.Unmarshal(raw, &message)
			return nil, fmt.Errorf("alphavantage: %s", message)
		}
	}
	return payload, nil
}

// CompanyOverview returns key company ratios and figures as a readable block.
func (f *AlphaVantageFundamentals) CompanyOverview(ctx context.Context, symbol string) (string, error) {
	params := url.Values{}
	params.Set("function", "OVERVIEW")
	params.Set("symbol", strings.ToUpper(symbol))

	payload, err := f.fetch(ctx, params)
	if err != nil {
		return "", err
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("no overview data for %s", symbol)
	}

	fields := []struct{ key, label string }{
		{"Name", "Company"},
		{"Sector", "Sector"},
		{"MarketCapitalization", "Market cap"},
		{"PERatio", "P/E ratio"},
		{"PEGRatio", "PEG ratio"},
		{"PriceToBookRatio", "Price/book"},
		{"EPS", "EPS"},
		{"DividendYield", "Dividend yield"},
		{"ProfitMargin", "Profit margin"},
		{"52WeekHigh", "52-week high"},
		{"52WeekLow", "52-week low"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s fundamentals:\n", strings.ToUpper(symbol))
	found := 0
	for _, field := range fields {
		raw, ok := payload[field.key]
		if !ok {
			continue
		}
		var value string
		if json.Unmarshal(raw, &value) == nil && value != "" && value != "None" {
			fmt.Fprintf(&b, "- %s: %s\n", field.label, value)
			found++
		}
	}
	if found == 0 {
		return "", fmt.Errorf("no overview data for %s", symbol)
	}
	return b.String(), nil
}

// HistoricalPrices returns the daily closes for the most recent trading days.
func (f *AlphaVantageFundamentals) HistoricalPrices(ctx context.Context, symbol string, days int) (string, error) {
	if days <= 0 || days > 100 {
		days = 30
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", strings.ToUpper(symbol))

	payload, err := f.fetch(ctx, params)
	if err != nil {
		return "", err
	}

	raw, ok := payload["Time Series (Daily)"]
	if !ok {
		return "", fmt.Errorf("no historical data for %s", symbol)
	}

	var series map[string]map[string]string
	if err := json.Unmarshal(raw, &series); err != nil {
		return "", fmt.Errorf("failed to parse time series: %w", err)
	}

	dates := make([]string, 0, len(series))
	for date := range series {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > days {
		dates = dates[:days]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s daily closes (most recent first):\n", strings.ToUpper(symbol))
	for _, date := range dates {
		fmt.Fprintf(&b, "- %s: close %s, volume %s\n", date, series[date]["4. close"], series[date]["5. volume"])
	}
	return b.String(), nil
}

type moverEntry struct {
	Ticker           string `json:"ticker"`
	Price            string `json:"price"`
	ChangePercentage string `json:"change_percentage"`
}

// MarketMovers returns today's top gainers and losers.
func (f *AlphaVantageFundamentals) MarketMovers(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("function", "TOP_GAINERS_LOSERS")

	payload, err := f.fetch(ctx, params)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, section := range []struct{ key, label string }{
		{"top_gainers", "Top gainers"},
		{"top_losers", "Top losers"},
	} {
		raw, ok := payload[section.key]
		if !ok {
			continue
		}
		var entries []moverEntry
		if json.Unmarshal(raw, &entries) != nil {
			continue
		}
		if len(entries) > 5 {
			entries = entries[:5]
		}
		fmt.Fprintf(&b, "%s:\n", section.label)
		for _, e := range entries {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", e.Ticker, e.Price, e.ChangePercentage)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no market mover data returned")
	}
	return b.String(), nil
}

// EconomicIndicator returns the latest readings for a named indicator
// (gdp, cpi, inflation, unemployment, fed_rate, treasury).
func (f *AlphaVantageFundamentals) EconomicIndicator(ctx context.Context, indicator string) (string, error) {
	function, ok := economicFunctions[strings.ToLower(strings.TrimSpace(indicator))]
	if !ok {
		names := make([]string, 0, len(economicFunctions))
		for name := range economicFunctions {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", fmt.Errorf("unknown indicator %q (want one of: %s)", indicator, strings.Join(names, ", "))
	}

	params := url.Values{}
	params.Set("function", function)

	payload, err := f.fetch(ctx, params)
	if err != nil {
		return "", err
	}

	raw, ok := payload["data"]
	if !ok {
		return "", fmt.Errorf("no data for indicator %s", indicator)
	}

	var points []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &points); err != nil {
		return "", fmt.Errorf("failed to parse indicator data: %w", err)
	}
	if len(points) == 0 {
		return "", fmt.Errorf("no data for indicator %s", indicator)
	}
	if len(points) > 6 {
		points = points[:6]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (most recent first):\n", function)
	for _, p := range points {
		fmt.Fprintf(&b, "- %s: %s\n", p.Date, p.Value)
	}
	return b.String(), nil
}
