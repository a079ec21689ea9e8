package debounce

import (
	"sort"
	"sync"
	"time"
)

// DefaultQuietPeriod is the quiet period used when callers pass a
// non-positive duration to New.
const DefaultQuietPeriod = 300 * time.Millisecond

// FlushFunc receives one batch of accumulated invalidation keys.
// Keys are sorted and deduplicated. The function is called from a timer
// goroutine with no internal locks held.
type FlushFunc func(keys []string)

// Debouncer accumulates invalidation keys and flushes them in one batch
// after a quiet period with no new signals. It is safe for concurrent use.
type Debouncer struct {
	mu sync.Mutex

	quiet time.Duration
	flush FlushFunc

	pending map[string]struct{}
	timer   *time.Timer

	// epoch invalidates flush timers that were superseded or cancelled.
	epoch uint64

	closed bool
}

// New creates a debouncer that delivers batches to flush after quiet has
// elapsed without a new signal. A non-positive quiet falls back to
// DefaultQuietPeriod.
func New(quiet time.Duration, flush FlushFunc) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{
		quiet:   quiet,
		flush:   flush,
		pending: make(map[string]struct{}),
	}
}

// Signal adds keys to the pending set and restarts the quiet-period timer,
// replacing any earlier pending flush. Signals with no keys are ignored.
// Signals after Close are ignored.
func (d *Debouncer) Signal(keys ...string) {
	if len(keys) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	for _, k := range keys {
		d.pending[k] = struct{}{}
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.epoch++
	epoch := d.epoch
	d.timer = time.AfterFunc(d.quiet, func() {
		d.fire(epoch)
	})
}

// Pending returns the number of keys accumulated since the last flush.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Close cancels any pending flush and drops accumulated keys. It is safe to
// call multiple times. After Close returns no flush will be delivered.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	d.epoch++

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = make(map[string]struct{})
}

// fire delivers the accumulated batch if this timer is still current.
func (d *Debouncer) fire(epoch uint64) {
	d.mu.Lock()

	if d.closed || epoch != d.epoch || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}

	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	d.pending = make(map[string]struct{})
	d.timer = nil
	flush := d.flush

	d.mu.Unlock()

	sort.Strings(keys)
	if flush != nil {
		flush(keys)
	}
}
