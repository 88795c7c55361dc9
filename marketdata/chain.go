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
	"fmt"
	"log"
	"sort"
	"strings"
)

// Chain tries quote providers in ascending priority order and returns the
// first valid quote. GetQuote never returns an error value; a collective
// failure is reported as a single error quote naming the attempted
// providers.
type Chain struct {
	providers []Provider
	tracker   *Tracker

	// selector, when non-nil and agenticSelection is true, is consulted
	// before the sequential fallback.
	selector          *Selector
	agenticSelection  bool
	fallbackOnFailure bool
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithSelector enables agentic provider selection.
func WithSelector(s *Selector) ChainOption {
	return func(c *Chain) {
		c.selector = s
		c.agenticSelection = true
	}
}

// WithFallbackOnFailure controls whether a failed agentic pick falls
// through to the sequential strategy (default true).
func WithFallbackOnFailure(enabled bool) ChainOption {
	return func(c *Chain) {
		c.fallbackOnFailure = enabled
	}
}

// NewChain creates a chain over the given providers. Providers are sorted
// ascending by priority; ties keep the given order for the life of the
// chain.
func NewChain(providers []Provider, tracker *Tracker, opts ...ChainOption) *Chain {
	sorted := make([]Provider, len(providers))
	copy(sorted, providers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})

	if tracker == nil {
		tracker = NewTracker()
	}

	c := &Chain{
		providers:         sorted,
		tracker:           tracker,
		fallbackOnFailure: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Tracker returns the chain's usage tracker.
func (c *Chain) Tracker() *Tracker {
	return c.tracker
}

// Providers returns the chain's providers in try order.
func (c *Chain) Providers() []Provider {
	out := make([]Provider, len(c.providers))
	copy(out, c.providers)
	return out
}

// GetQuote fetches a quote for symbol, falling over between providers.
// queryContext is optional free text about the originating question,
// forwarded to the intelligent selector.
func (c *Chain) GetQuote(ctx context.Context, symbol, queryContext string) *StockQuote {
	usable := c.usableProviders()
	if len(usable) == 0 {
		log.Printf("[ProviderChain] No enabled and available providers for %s", symbol)
		return NewErrorQuote(symbol, "chain", "all providers failed: none enabled and available")
	}

	if c.agenticSelection && c.selector != nil {
		quote, picked := c.tryAgenticPick(ctx, symbol, queryContext, usable)
		if quote != nil {
			return quote
		}
		// fallbackOnFailure only governs a pick that was actually attempted
		// and failed; when no pick was made the sequential strategy is not a
		// fallback, it is the strategy.
		if picked != "" && !c.fallbackOnFailure {
			return NewErrorQuote(symbol, "chain",
				fmt.Sprintf("all providers failed for %s (attempted: %s)", symbol, picked))
		}
	}

	return c.sequential(ctx, symbol, usable)
}

// usableProviders filters to enabled providers that report availability,
// preserving priority order.
func (c *Chain) usableProviders() []Provider {
	usable := make([]Provider, 0, len(c.providers))
	for _, p := range c.providers {
		if !p.Enabled() {
			continue
		}
		if !p.IsAvailable() {
			log.Printf("[ProviderChain] Skipping %s: not available", p.Name())
			continue
		}
		usable = append(usable, p)
	}
	return usable
}

// tryAgenticPick consults the selector and attempts only its pick. The
// second return is the name of the provider actually attempted, empty when
// the selector errored, declined, or named an unknown provider.
func (c *Chain) tryAgenticPick(ctx context.Context, symbol, queryContext string, usable []Provider) (*StockQuote, string) {
	name, err := c.selector.Pick(ctx, symbol, queryContext, c.summarize(usable))
	if err != nil || name == "" {
		if err != nil {
			log.Printf("[ProviderChain] Agentic selection failed, using sequential order: %v", err)
		}
		return nil, ""
	}

	for _, p := range usable {
		if p.Name() == name {
			log.Printf("[ProviderChain] Agentic selection picked %s for %s", name, symbol)
			return c.attempt(ctx, p, symbol), name
		}
	}

	log.Printf("[ProviderChain] Agentic selection named unknown provider %q, ignoring", name)
	return nil, ""
}

// sequential is the deterministic fallback strategy: try each usable
// provider in priority order until one yields a valid quote.
func (c *Chain) sequential(ctx context.Context, symbol string, usable []Provider) *StockQuote {
	attempted := make([]string, 0, len(usable))

	for _, p := range usable {
		attempted = append(attempted, p.Name())
		if quote := c.attempt(ctx, p, symbol); quote != nil {
			return quote
		}
	}

	log.Printf("[ProviderChain] All providers failed for %s (attempted: %s)", symbol, strings.Join(attempted, ", "))
	return NewErrorQuote(symbol, "chain",
		fmt.Sprintf("all providers failed for %s (attempted: %s)", symbol, strings.Join(attempted, ", ")))
}

// attempt calls one provider and classifies the outcome into the tracker.
// Returns the quote on success, nil on any failure. Provider panics are
// contained here and treated like error results.
func (c *Chain) attempt(ctx context.Context, p Provider, symbol string) (result *StockQuote) {
	defer func() {
		if r := recover(); r != nil {
			message := fmt.Sprintf("provider panic: %v", r)
			log.Printf("[ProviderChain] %s panicked on %s: %v", p.Name(), symbol, r)
			c.recordFailure(p.Name(), message)
			result = nil
		}
	}()

	quote, err := p.GetQuote(ctx, symbol)
	if err != nil {
		log.Printf("[ProviderChain] %s failed for %s: %v", p.Name(), symbol, err)
		c.recordFailure(p.Name(), err.Error())
		return nil
	}

	if quote == nil {
		c.recordFailure(p.Name(), "provider returned no quote")
		return nil
	}

	if quote.IsError {
		log.Printf("[ProviderChain] %s returned error quote for %s: %s", p.Name(), symbol, quote.ErrorMessage)
		c.recordFailure(p.Name(), quote.ErrorMessage)
		return nil
	}

	if quote.Price <= 0 {
		// Zero price without IsError is still unusable
		c.recordFailure(p.Name(), "provider returned non-positive price")
		return nil
	}

	c.tracker.RecordSuccess(p.Name())
	providerAttempts.WithLabelValues(p.Name(), "success").Inc()
	log.Printf("[ProviderChain] %s returned %s at %.2f", p.Name(), symbol, quote.Price)
	return quote
}

// recordFailure classifies a failure message as rate-limit or generic.
func (c *Chain) recordFailure(provider, message string) {
	if IsRateLimitError(message) {
		c.tracker.RecordRateLimit(provider)
		providerAttempts.WithLabelValues(provider, "rate_limited").Inc()
		return
	}
	c.tracker.RecordFailure(provider)
	providerAttempts.WithLabelValues(provider, "failure").Inc()
}

// summarize builds selector candidate summaries from the tracker.
func (c *Chain) summarize(usable []Provider) []CandidateSummary {
	out := make([]CandidateSummary, 0, len(usable))
	for _, p := range usable {
		snap := c.tracker.Snapshot(p.Name())
		out = append(out, CandidateSummary{
			Name:                p.Name(),
			Priority:            p.Priority(),
			SuccessCount:        snap.SuccessCount,
			FailureCount:        snap.FailureCount,
			RateLimitedRecently: snap.RateLimitedRecently,
			CallsLastMinute:     snap.CallsLastMinute,
		})
	}
	return out
}

func providerNames(providers []Provider) []string {
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	return names
}
