package debounce

import (
	"reflect"
	"sync"
	"testing"
	"time"
)

// flushRecorder collects flushed batches for assertions.
type flushRecorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *flushRecorder) flush(keys []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, keys)
}

func (r *flushRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func (r *flushRecorder) batch(i int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches[i]
}

func TestBurstCollapsesToOneFlush(t *testing.T) {
	rec := &flushRecorder{}
	d := New(60*time.Millisecond, rec.flush)
	defer d.Close()

	// Signals arriving faster than the quiet period.
	d.Signal("orders", "cart")
	time.Sleep(15 * time.Millisecond)
	d.Signal("orders")
	time.Sleep(15 * time.Millisecond)
	d.Signal("loyalty")

	// Let the quiet period elapse.
	time.Sleep(150 * time.Millisecond)

	if got := rec.count(); got != 1 {
		t.Fatalf("flush count = %d, want exactly 1", got)
	}
	want := []string{"cart", "loyalty", "orders"}
	if got := rec.batch(0); !reflect.DeepEqual(got, want) {
		t.Errorf("flushed keys = %v, want %v", got, want)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d after flush, want 0", d.Pending())
	}
}

func TestSeparateBurstsFlushSeparately(t *testing.T) {
	rec := &flushRecorder{}
	d := New(40*time.Millisecond, rec.flush)
	defer d.Close()

	d.Signal("menu")
	time.Sleep(100 * time.Millisecond)
	d.Signal("reservations")
	time.Sleep(100 * time.Millisecond)

	if got := rec.count(); got != 2 {
		t.Fatalf("flush count = %d, want 2", got)
	}
	if got := rec.batch(0); !reflect.DeepEqual(got, []string{"menu"}) {
		t.Errorf("first batch = %v, want [menu]", got)
	}
	if got := rec.batch(1); !reflect.DeepEqual(got, []string{"reservations"}) {
		t.Errorf("second batch = %v, want [reservations]", got)
	}
}

func TestCloseCancelsPendingFlush(t *testing.T) {
	rec := &flushRecorder{}
	d := New(50*time.Millisecond, rec.flush)

	d.Signal("orders")
	d.Close()

	time.Sleep(120 * time.Millisecond)

	if got := rec.count(); got != 0 {
		t.Errorf("flush count after Close = %d, want 0 (pending flush dropped)", got)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d after Close, want 0", d.Pending())
	}
}

func TestSignalAfterCloseIgnored(t *testing.T) {
	rec := &flushRecorder{}
	d := New(20*time.Millisecond, rec.flush)

	d.Close()
	d.Close() // idempotent
	d.Signal("orders")

	time.Sleep(60 * time.Millisecond)

	if got := rec.count(); got != 0 {
		t.Errorf("flush count = %d, want 0", got)
	}
}

func TestEmptySignalIgnored(t *testing.T) {
	rec := &flushRecorder{}
	d := New(20*time.Millisecond, rec.flush)
	defer d.Close()

	d.Signal()
	time.Sleep(60 * time.Millisecond)

	if got := rec.count(); got != 0 {
		t.Errorf("flush count = %d, want 0 for keyless signal", got)
	}
}

func TestDefaultQuietPeriodApplied(t *testing.T) {
	d := New(0, nil)
	defer d.Close()

	if d.quiet != DefaultQuietPeriod {
		t.Errorf("quiet = %v, want %v", d.quiet, DefaultQuietPeriod)
	}
}
