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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphaVantageGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"Global Quote": {
				"01. symbol": "AAPL",
				"02. open": "186.00",
				"03. high": "188.90",
				"04. low": "185.10",
				"05. price": "187.32",
				"06. volume": "52164123",
				"08. previous close": "186.07",
				"09. change": "1.25",
				"10. change percent": "0.6718%"
			}
		}`))
	}))
	defer server.Close()

	provider := NewAlphaVantageProvider(ProviderConfig{
		APIKey: "test-key", Endpoint: server.URL, Enabled: true, Priority: 1,
	})

	quote, err := provider.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.True(t, quote.IsValid())
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.InDelta(t, 187.32, quote.Price, 0.001)
	assert.InDelta(t, 0.6718, quote.ChangePercent, 0.001)
	assert.Equal(t, int64(52164123), quote.Volume)
	assert.Equal(t, "alphavantage", quote.ProviderName)
}

func TestAlphaVantageThrottleNote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`))
	}))
	defer server.Close()

	provider := NewAlphaVantageProvider(ProviderConfig{
		APIKey: "test-key", Endpoint: server.URL, Enabled: true,
	})

	quote, err := provider.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, quote.IsError)
	assert.True(t, IsRateLimitError(quote.ErrorMessage))
}

func TestFinnhubGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"c": 187.32, "d": 1.25, "dp": 0.67, "h": 188.9, "l": 185.1, "o": 186.0, "pc": 186.07, "t": 1748888400}`))
	}))
	defer server.Close()

	provider := NewFinnhubProvider(ProviderConfig{
		APIKey: "test-key", Endpoint: server.URL, Enabled: true,
	})

	quote, err := provider.GetQuote(context.Background(), "aapl")
	require.NoError(t, err)
	require.True(t, quote.IsValid())
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.InDelta(t, 187.32, quote.Price, 0.001)
}

func TestFinnhubRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewFinnhubProvider(ProviderConfig{
		APIKey: "test-key", Endpoint: server.URL, Enabled: true,
	})

	quote, err := provider.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, quote.IsError)
	assert.True(t, IsRateLimitError(quote.ErrorMessage))
}

func TestFinnhubUnknownSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"c": 0, "d": 0, "dp": 0, "h": 0, "l": 0, "o": 0, "pc": 0, "t": 0}`))
	}))
	defer server.Close()

	provider := NewFinnhubProvider(ProviderConfig{
		APIKey: "test-key", Endpoint: server.URL, Enabled: true,
	})

	quote, err := provider.GetQuote(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.True(t, quote.IsError)
	assert.Contains(t, quote.ErrorMessage, "no quote data")
}

func TestTwelveDataGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"symbol": "AAPL", "name": "Apple Inc", "currency": "USD",
			"open": "186.00", "high": "188.90", "low": "185.10", "close": "187.32",
			"volume": "52164123", "previous_close": "186.07",
			"change": "1.25", "percent_change": "0.67", "timestamp": 1748888400
		}`))
	}))
	defer server.Close()

	provider := NewTwelveDataProvider(ProviderConfig{
		APIKey: "test-key", Endpoint: server.URL, Enabled: true,
	})

	quote, err := provider.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.True(t, quote.IsValid())
	assert.Equal(t, "Apple Inc", quote.CompanyName)
	assert.InDelta(t, 187.32, quote.Price, 0.001)
}

func TestTwelveDataAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code": 429, "message": "You have run out of API credits for the current minute", "status": "error"}`))
	}))
	defer server.Close()

	provider := NewTwelveDataProvider(ProviderConfig{
		APIKey: "test-key", Endpoint: server.URL, Enabled: true,
	})

	quote, err := provider.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, quote.IsError)
	assert.True(t, IsRateLimitError(quote.ErrorMessage))
}

func TestProviderAvailability(t *testing.T) {
	withKey := NewFinnhubProvider(ProviderConfig{APIKey: "k", Enabled: true})
	assert.True(t, withKey.IsAvailable())

	withoutKey := NewFinnhubProvider(ProviderConfig{Enabled: true})
	assert.False(t, withoutKey.IsAvailable())
}
