package log

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLoggerWritesReadableStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "realtime.rlog")

	fl, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	fl.Log(Event{
		Timestamp:      time.Now(),
		SubscriptionID: "sub-1",
		Topic:          "orders",
		Category:       CategoryState,
		StateChange:    &StateChangeEvent{NewState: "CONNECTING"},
	})
	fl.Log(Event{
		Timestamp:      time.Now(),
		SubscriptionID: "sub-1",
		Topic:          "orders",
		Category:       CategoryFlush,
		Flush:          &FlushEvent{Keys: []string{"orders"}},
	})

	if err := fl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Errorf("second Close: %v, want nil", err)
	}

	// Log after Close is silently ignored.
	fl.Log(Event{SubscriptionID: "sub-1", Category: CategoryError})

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer f.Close()

	dec := NewDecoder(f)
	var events []Event
	for {
		var e Event
		if err := dec.Decode(&e); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		events = append(events, e)
	}

	if len(events) != 2 {
		t.Fatalf("decoded %d events, want 2", len(events))
	}
	if events[0].Category != CategoryState {
		t.Errorf("first event category = %v, want CategoryState", events[0].Category)
	}
	if events[1].Flush == nil || len(events[1].Flush.Keys) != 1 {
		t.Errorf("second event flush payload = %+v, want one key", events[1].Flush)
	}
}
