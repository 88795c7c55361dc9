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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCounters(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordSuccess("alpha")
	tracker.RecordSuccess("alpha")
	tracker.RecordFailure("alpha")
	tracker.RecordRateLimit("alpha")

	snap := tracker.Snapshot("alpha")
	assert.Equal(t, int64(2), snap.SuccessCount)
	assert.Equal(t, int64(1), snap.FailureCount)
	assert.Equal(t, int64(1), snap.RateLimitCount)
	assert.NotNil(t, snap.LastSuccess)
	assert.NotNil(t, snap.LastFailure)
	assert.NotNil(t, snap.LastRateLimit)
	assert.Equal(t, int64(4), snap.CallsLastMinute)
	assert.Equal(t, int64(4), snap.CallsLastHour)
}

func TestTrackerUnknownProvider(t *testing.T) {
	tracker := NewTracker()

	snap := tracker.Snapshot("never-seen")
	assert.Equal(t, UsageSnapshot{}, snap)
	assert.False(t, tracker.IsRateLimitedRecently("never-seen"))
}

func TestTrackerRateLimitCooldown(t *testing.T) {
	tracker := NewTracker()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker.SetClock(func() time.Time { return current })

	tracker.RecordRateLimit("alpha")
	assert.True(t, tracker.IsRateLimitedRecently("alpha"))

	// Just inside the cooldown
	current = current.Add(RateLimitCooldown - time.Second)
	assert.True(t, tracker.IsRateLimitedRecently("alpha"))

	// Past the cooldown
	current = current.Add(2 * time.Second)
	assert.False(t, tracker.IsRateLimitedRecently("alpha"))

	// A fresh event restarts the cooldown
	tracker.RecordRateLimit("alpha")
	assert.True(t, tracker.IsRateLimitedRecently("alpha"))
}

func TestTrackerWindowRollover(t *testing.T) {
	tracker := NewTracker()

	current := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)
	tracker.SetClock(func() time.Time { return current })

	tracker.RecordSuccess("alpha")
	tracker.RecordSuccess("alpha")

	snap := tracker.Snapshot("alpha")
	assert.Equal(t, int64(2), snap.CallsLastMinute)
	assert.Equal(t, int64(2), snap.CallsLastHour)

	// Next minute bucket: the minute counter resets, the hour one keeps going
	current = current.Add(time.Minute)
	tracker.RecordSuccess("alpha")

	snap = tracker.Snapshot("alpha")
	assert.Equal(t, int64(1), snap.CallsLastMinute)
	assert.Equal(t, int64(3), snap.CallsLastHour)

	// Next hour bucket resets both
	current = current.Add(time.Hour)
	snap = tracker.Snapshot("alpha")
	assert.Equal(t, int64(0), snap.CallsLastMinute)
	assert.Equal(t, int64(0), snap.CallsLastHour)
}

func TestTrackerConcurrentRecording(t *testing.T) {
	tracker := NewTracker()

	const goroutines = 8
	const perGoroutine = 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				tracker.RecordSuccess("alpha")
				tracker.RecordFailure("beta")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(goroutines*perGoroutine), tracker.Snapshot("alpha").SuccessCount)
	assert.Equal(t, int64(goroutines*perGoroutine), tracker.Snapshot("beta").FailureCount)
}

func TestTrackerSnapshotAll(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordSuccess("alpha")
	tracker.RecordFailure("beta")

	all := tracker.SnapshotAll()
	assert.Len(t, all, 2)
	assert.Equal(t, int64(1), all["alpha"].SuccessCount)
	assert.Equal(t, int64(1), all["beta"].FailureCount)
}
