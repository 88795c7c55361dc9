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

import "context"

// Provider is one upstream quote source. Implementations must be safe for
// concurrent use.
type Provider interface {
	// Name returns the unique identifier for this provider instance.
	Name() string

	// Priority determines the chain's try order. Lower is tried first.
	// Values need not be contiguous; ties keep registration order.
	Priority() int

	// Enabled reports whether the provider participates in the chain.
	Enabled() bool

	// IsAvailable is a cheap local health check (configuration present,
	// no known outage). It must not perform network calls.
	IsAvailable() bool

	// GetQuote fetches the current quote for a symbol. It may return an
	// error, or a quote with IsError=true; the chain treats both the same.
	GetQuote(ctx context.Context, symbol string) (*StockQuote, error)
}

// ProviderConfig is the persisted configuration for one provider.
type ProviderConfig struct {
	// Name is the unique identifier for this provider instance.
	Name string `json:"name" yaml:"name"`

	// Type identifies the provider implementation (alphavantage,
	// finnhub, twelvedata).
	Type string `json:"type" yaml:"type"`

	// APIKey authenticates against the upstream API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key"`

	// Endpoint overrides the provider's default base URL when non-empty.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint"`

	// Enabled indicates if this provider participates in the chain.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Priority is the chain try order (lower = tried first).
	Priority int `json:"priority" yaml:"priority"`

	// RateLimitPerMinute documents the upstream's advertised limit
	// (0 = unknown). Informational; the chain does not enforce it.
	RateLimitPerMinute int `json:"rate_limit_per_minute,omitempty" yaml:"rate_limit_per_minute"`
}
