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
	"fmt"
	"strings"
	"time"
)

// StockQuote is the uniform quote shape returned by every provider and by
// the chain. An error quote (IsError=true) carries zeroed numeric fields and
// a populated ErrorMessage; callers must branch on IsError, never on
// Price == 0.
type StockQuote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	DayHigh       float64   `json:"day_high"`
	DayLow        float64   `json:"day_low"`
	Open          float64   `json:"open"`
	PreviousClose float64   `json:"previous_close"`
	Volume        int64     `json:"volume"`
	LastTradeTime time.Time `json:"last_trade_time"`
	CompanyName   string    `json:"company_name,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	ProviderName  string    `json:"provider_name"`
	IsError       bool      `json:"is_error"`
	ErrorMessage  string    `json:"error_message,omitempty"`
}

// IsValid reports whether the quote is usable by downstream logic.
func (q *StockQuote) IsValid() bool {
	return q != nil && !q.IsError && q.Price > 0
}

// NewErrorQuote builds an error quote for the given symbol.
func NewErrorQuote(symbol, providerName, message string) *StockQuote {
	return &StockQuote{
		Symbol:       symbol,
		ProviderName: providerName,
		IsError:      true,
		ErrorMessage: message,
	}
}

// Summary renders a compact human-readable line for prompts and logs.
func (q *StockQuote) Summary() string {
	if q.IsError {
		return fmt.Sprintf("%s: error from %s: %s", q.Symbol, q.ProviderName, q.ErrorMessage)
	}
	return fmt.Sprintf("%s (%s): %.2f %s, change %+.2f (%+.2f%%), day range %.2f-%.2f, volume %d [source: %s]",
		q.Symbol, q.CompanyName, q.Price, q.Currency, q.Change, q.ChangePercent, q.DayLow, q.DayHigh, q.Volume, q.ProviderName)
}

// rateLimitMarkers are the case-insensitive substrings that classify a
// provider error as a rate-limit event instead of a generic failure.
var rateLimitMarkers = []string{
	"rate limit",
	"too many requests",
	"429",
	"quota exceeded",
	"limit reached",
}

// IsRateLimitError reports whether an error message matches the rate-limit
// heuristics.
func IsRateLimitError(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range rateLimitMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
