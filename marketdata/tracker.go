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
	"sync"
	"sync/atomic"
	"time"
)

// RateLimitCooldown is how long a provider is considered "recently
// rate limited" after its last detected rate-limit event.
const RateLimitCooldown = 5 * time.Minute

// Tracker holds per-provider usage counters shared by every specialist
// execution. Counters are monotonically increasing and safe under
// concurrent increment; no operation locks the tracker across a provider
// call.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*providerStats
	now   func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		stats: make(map[string]*providerStats),
		now:   time.Now,
	}
}

// SetClock overrides the tracker's time source. Test hook.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

func (t *Tracker) clock() func() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.now
}

// providerStats is the per-provider counter block. Totals are atomics;
// each sliding window has its own small lock so stale buckets can be
// evicted lazily on the next write without locking the whole tracker.
type providerStats struct {
	successCount   int64
	failureCount   int64
	rateLimitCount int64

	lastSuccessNs   int64
	lastFailureNs   int64
	lastRateLimitNs int64

	minuteWindow windowCounter
	hourWindow   windowCounter
}

// windowCounter counts calls in a sliding window bucketed by
// floor(now/size). Writing into a new bucket evicts the stale one.
type windowCounter struct {
	size     int64 // bucket size in seconds
	mu       sync.Mutex
	bucketID int64
	count    int64
}

func (w *windowCounter) record(now time.Time) {
	id := now.Unix() / w.size
	w.mu.Lock()
	if w.bucketID != id {
		w.bucketID = id
		w.count = 0
	}
	w.count++
	w.mu.Unlock()
}

func (w *windowCounter) value(now time.Time) int64 {
	id := now.Unix() / w.size
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.bucketID != id {
		return 0
	}
	return w.count
}

func (t *Tracker) get(provider string) *providerStats {
	t.mu.RLock()
	s, ok := t.stats[provider]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok = t.stats[provider]; ok {
		return s
	}
	s = &providerStats{
		minuteWindow: windowCounter{size: 60},
		hourWindow:   windowCounter{size: 3600},
	}
	t.stats[provider] = s
	return s
}

// RecordSuccess records a successful provider call.
func (t *Tracker) RecordSuccess(provider string) {
	now := t.clock()()
	s := t.get(provider)
	atomic.AddInt64(&s.successCount, 1)
	atomic.StoreInt64(&s.lastSuccessNs, now.UnixNano())
	s.minuteWindow.record(now)
	s.hourWindow.record(now)
}

// RecordFailure records a failed provider call.
func (t *Tracker) RecordFailure(provider string) {
	now := t.clock()()
	s := t.get(provider)
	atomic.AddInt64(&s.failureCount, 1)
	atomic.StoreInt64(&s.lastFailureNs, now.UnixNano())
	s.minuteWindow.record(now)
	s.hourWindow.record(now)
}

// RecordRateLimit records a rate-limit event for a provider. The provider
// is considered recently rate limited for RateLimitCooldown afterwards.
func (t *Tracker) RecordRateLimit(provider string) {
	now := t.clock()()
	s := t.get(provider)
	atomic.AddInt64(&s.rateLimitCount, 1)
	atomic.StoreInt64(&s.lastRateLimitNs, now.UnixNano())
	s.minuteWindow.record(now)
	s.hourWindow.record(now)
}

// IsRateLimitedRecently reports whether a rate-limit event was recorded for
// the provider within the cooldown. Advisory state: the sequential chain
// ignores it, the intelligent selector reads it as a negative signal.
func (t *Tracker) IsRateLimitedRecently(provider string) bool {
	t.mu.RLock()
	s, ok := t.stats[provider]
	now := t.now()
	t.mu.RUnlock()
	if !ok {
		return false
	}

	last := atomic.LoadInt64(&s.lastRateLimitNs)
	if last == 0 {
		return false
	}
	return now.Sub(time.Unix(0, last)) < RateLimitCooldown
}

// UsageSnapshot is a point-in-time copy of one provider's counters.
type UsageSnapshot struct {
	SuccessCount        int64      `json:"success_count"`
	FailureCount        int64      `json:"failure_count"`
	RateLimitCount      int64      `json:"rate_limit_count"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	LastFailure         *time.Time `json:"last_failure,omitempty"`
	LastRateLimit       *time.Time `json:"last_rate_limit,omitempty"`
	CallsLastMinute     int64      `json:"calls_last_minute"`
	CallsLastHour       int64      `json:"calls_last_hour"`
	RateLimitedRecently bool       `json:"rate_limited_recently"`
}

// Snapshot returns a copy of one provider's counters. Unknown providers
// yield a zero snapshot.
func (t *Tracker) Snapshot(provider string) UsageSnapshot {
	t.mu.RLock()
	s, ok := t.stats[provider]
	now := t.now()
	t.mu.RUnlock()
	if !ok {
		return UsageSnapshot{}
	}

	snap := UsageSnapshot{
		SuccessCount:    atomic.LoadInt64(&s.successCount),
		FailureCount:    atomic.LoadInt64(&s.failureCount),
		RateLimitCount:  atomic.LoadInt64(&s.rateLimitCount),
		CallsLastMinute: s.minuteWindow.value(now),
		CallsLastHour:   s.hourWindow.value(now),
	}

	if ns := atomic.LoadInt64(&s.lastSuccessNs); ns > 0 {
		ts := time.Unix(0, ns)
		snap.LastSuccess = &ts
	}
	if ns := atomic.LoadInt64(&s.lastFailureNs); ns > 0 {
		ts := time.Unix(0, ns)
		snap.LastFailure = &ts
	}
	if ns := atomic.LoadInt64(&s.lastRateLimitNs); ns > 0 {
		ts := time.Unix(0, ns)
		snap.LastRateLimit = &ts
		snap.RateLimitedRecently = now.Sub(*snap.LastRateLimit) < RateLimitCooldown
	}

	return snap
}

// SnapshotAll returns snapshots for every tracked provider.
func (t *Tracker) SnapshotAll() map[string]UsageSnapshot {
	t.mu.RLock()
	names := make([]string, 0, len(t.stats))
	for name := range t.stats {
		names = append(names, name)
	}
	t.mu.RUnlock()

	out := make(map[string]UsageSnapshot, len(names))
	for _, name := range names {
		out[name] = t.Snapshot(name)
	}
	return out
}
