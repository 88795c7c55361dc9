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

	"omniquery/platform/marketdata"
)

// fakeProvider is a scriptable market data provider for pipeline tests.
type fakeProvider struct {
	name     string
	priority int
	quote    *marketdata.StockQuote
	err      error
	calls    int
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) Priority() int { return f.priority }
func (f *fakeProvider) Enabled() bool { return true }
func (f *fakeProvider) IsAvailable() bool { return true }

func (f *fakeProvider) GetQuote(_ context.Context, _ string) (*marketdata.StockQuote, error) {
	f.calls++
	return f.quote, f.err
}

func quoteProvider(name string, priority int, symbol string, price float64) *fakeProvider {
	return &fakeProvider{
		name:     name,
		priority: priority,
		quote: &marketdata.StockQuote{
			Symbol:       symbol,
			Price:        price,
			Currency:     "USD",
			ProviderName: name,
		},
	}
}

func rateLimitedProvider(name string, priority int) *fakeProvider {
	return &fakeProvider{
		name:     name,
		priority: priority,
		err:      fmt.Errorf("HTTP 429 Too Many Requests"),
	}
}

func newEmptyChain() *marketdata.Chain {
	return marketdata.NewChain(nil, nil)
}

// noopFundamentals fails every call; used where fundamentals are irrelevant.
type noopFundamentals struct{}

func (noopFundamentals) CompanyOverview(context.Context, string) (string, error) {
	return "", fmt.Errorf("fundamentals not configured")
}
func (noopFundamentals) HistoricalPrices(context.Context, string, int) (string, error) {
	return "", fmt.Errorf("fundamentals not configured")
}
func (noopFundamentals) MarketMovers(context.Context) (string, error) {
	return "", fmt.Errorf("fundamentals not configured")
}
func (noopFundamentals) EconomicIndicator(context.Context, string) (string, error) {
	return "", fmt.Errorf("fundamentals not configured")
}
