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
	"fmt"
	"strconv"
	"strings"

	"omniquery/platform/marketdata"
)

// funcTool adapts a function to the Tool interface.
type funcTool struct {
	name        string
	description string
	run         func(ctx context.Context, args map[string]string) (string, error)
}

func (t *funcTool) Name() string { return t.name }
func (t *funcTool) Description() string { return t.description }
func (t *funcTool) Run(ctx context.Context, args map[string]string) (string, error) {
	return t.run(ctx, args)
}

func requireArg(args map[string]string, key string) (string, error) {
	value := strings.TrimSpace(args[key])
	if value == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return value, nil
}

// newStockQuoteTool backs the financial specialist's quote capability with
// the resilient provider chain. A collective chain failure surfaces as a
// tool error.
func newStockQuoteTool(chain *marketdata.Chain) Tool {
	return &funcTool{
		name:        "stock_quote",
		description: "Current stock quote for a ticker symbol. Args: symbol (required), context (optional free text about the question).",
		run: func(ctx context.Context, args map[string]string) (string, error) {
			symbol, err := requireArg(args, "symbol")
			if err != nil {
				return "", err
			}
			quote := chain.GetQuote(ctx, symbol, args["context"])
			if quote.IsError {
				return "", fmt.Errorf("%s", quote.ErrorMessage)
			}
			return quote.Summary(), nil
		},
	}
}

func newFinancialRatiosTool(fundamentals marketdata.FundamentalsClient) Tool {
	return &funcTool{
		name:        "financial_ratios",
		description: "Company fundamentals and valuation ratios (P/E, EPS, margins). Args: symbol (required).",
		run: func(ctx context.Context, args map[string]string) (string, error) {
			symbol, err := requireArg(args, "symbol")
			if err != nil {
				return "", err
			}
			return fundamentals.CompanyOverview(ctx, symbol)
		},
	}
}

func newHistoricalPricesTool(fundamentals marketdata.FundamentalsClient) Tool {
	return &funcTool{
		name:        "historical_prices",
		description: "Recent daily closing prices for a ticker. Args: symbol (required), days (optional, default 30).",
		run: func(ctx context.Context, args map[string]string) (string, error) {
			symbol, err := requireArg(args, "symbol")
			if err != nil {
				return "", err
			}
			days, _ := strconv.Atoi(args["days"])
			return fundamentals.HistoricalPrices(ctx, symbol, days)
		},
	}
}

func newMarketMoversTool(fundamentals marketdata.FundamentalsClient) Tool {
	return &funcTool{
		name:        "market_movers",
		description: "Today's top gaining and losing US stocks. No args.",
		run: func(ctx context.Context, _ map[string]string) (string, error) {
			return fundamentals.MarketMovers(ctx)
		},
	}
}

func newEconomicIndicatorTool(fundamentals marketdata.FundamentalsClient) Tool {
	return &funcTool{
		name:        "economic_indicator",
		description: "Latest readings for a US economic indicator. Args: indicator (one of gdp, cpi, inflation, unemployment, fed_rate, treasury).",
		run: func(ctx context.Context, args map[string]string) (string, error) {
			indicator, err := requireArg(args, "indicator")
			if err != nil {
				return "", err
			}
			return fundamentals.EconomicIndicator(ctx, indicator)
		},
	}
}

func newDocumentSearchTool(searcher DocumentSearcher) Tool {
	return &funcTool{
		name:        "document_search",
		description: "Search the user's document store. Args: query (required).",
		run: func(ctx context.Context, args map[string]string) (string, error) {
			query, err := requireArg(args, "query")
			if err != nil {
				return "", err
			}
			return searcher.Search(ctx, query)
		},
	}
}

func newTemporalSearchTool(searcher DocumentSearcher) Tool {
	return &funcTool{
		name:        "temporal_search",
		description: "Search the user's document store within a time period. Args: query (required), period (required, e.g. \"2022\" or \"last quarter\").",
		run: func(ctx context.Context, args map[string]string) (string, error) {
			query, err := requireArg(args, "query")
			if err != nil {
				return "", err
			}
			period, err := requireArg(args, "period")
			if err != nil {
				return "", err
			}
			return searcher.SearchTimeRange(ctx, query, period)
		},
	}
}

func newHeadlinesTool(news *NewsClient) Tool {
	return &funcTool{
		name:        "top_headlines",
		description: "Current top news headlines. Args: category (optional: business, technology, science, sports, health).",
		run: func(ctx context.Context, args map[string]string) (string, error) {
			return news.Headlines(ctx, args["category"])
		},
	}
}

func newNewsSearchTool(news *NewsClient) Tool {
	return &funcTool{
		name:        "news_search",
		description: "Search recent news articles. Args: query (required).",
		run: func(ctx context.Context, args map[string]string) (string, error) {
			query, err := requireArg(args, "query")
			if err != nil {
				return "", err
			}
			return news.Search(ctx, query)
		},
	}
}

func newWeatherByLocationTool(weather *WeatherClient) Tool {
	return &funcTool{
		name:        "weather_by_location",
		description: "Current weather for a named place. Args: location (required, e.g. \"Berlin\" or \"Austin, Texas\").",
		run: func(ctx context.Context, args map[string]string) (string, error) {
			location, err := requireArg(args, "location")
			if err != nil {
				return "", err
			}
			return weather.CurrentByLocation(ctx, location)
		},
	}
}

func newWeatherByZipTool(weather *WeatherClient) Tool {
	return &funcTool{
		name:        "weather_by_zip",
		description: "Current weather for a US zip code. Args: zip (required).",
		run: func(ctx context.Context, args map[string]string) (string, error) {
			zip, err := requireArg(args, "zip")
			if err != nil {
				return "", err
			}
			return weather.CurrentByZip(ctx, zip)
		},
	}
}
