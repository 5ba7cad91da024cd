// Package dedup suppresses reprocessing of retried webhook deliveries.
//
// Twilio retries a delivery with the same MessageSid when it times out or
// receives a 5xx, so the gateway must recognize a SID it has already
// processed and skip side effects for it. State is in-memory only and reset
// on restart; provider retry windows are short enough that this is safe.
package dedup

import (
	"context"
	"sync"
	"time"
)

// Outcome of a check-and-record call.
type Outcome int

const (
	// FirstSeen means the message ID was not in the window; it is now recorded.
	FirstSeen Outcome = iota
	// Duplicate means the message ID was recorded within the retention window.
	Duplicate
)

func (o Outcome) String() string {
	if o == Duplicate {
		return "duplicate"
	}
	return "first_seen"
}

// Defaults applied when the corresponding Tracker options are zero.
const (
	DefaultRetention     = 5 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Tracker records recently seen message IDs. Safe for concurrent use; the
// map is guarded by a mutex so racing deliveries of the same ID resolve to
// exactly one FirstSeen.
type Tracker struct {
	retention time.Duration
	sweep     time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
}

// New creates a tracker with the given retention window. Zero durations
// fall back to the package defaults.
func New(retention, sweepInterval time.Duration) *Tracker {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	return &Tracker{
		retention: retention,
		sweep:     sweepInterval,
		seen:      make(map[string]time.Time),
	}
}

// CheckAndRecord looks up id and records it if unseen. An entry older than
// the retention window has logically expired and is overwritten, yielding
// FirstSeen again. Duplicate hits do not refresh the stored timestamp.
func (t *Tracker) CheckAndRecord(id string, now time.Time) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	if at, ok := t.seen[id]; ok && now.Sub(at) <= t.retention {
		return Duplicate
	}
	t.seen[id] = now
	return FirstSeen
}

// Len returns the number of tracked entries, expired ones included.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

// Sweep drops entries past the retention window and reports how many were
// removed.
func (t *Tracker) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, at := range t.seen {
		if now.Sub(at) > t.retention {
			delete(t.seen, id)
			removed++
		}
	}
	return removed
}

// Run sweeps periodically until the context is cancelled. This bounds
// memory under sustained traffic; correctness does not depend on it because
// CheckAndRecord treats expired entries as unseen.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			t.Sweep(now)
		}
	}
}
