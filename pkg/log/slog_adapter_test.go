package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func newJSONSlog(buf *bytes.Buffer) *slog.Logger {
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler)
}

func TestSlogAdapterLogsStateChange(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newJSONSlog(&buf))

	adapter.Log(Event{
		Timestamp:      time.Now(),
		SubscriptionID: "sub-123",
		Topic:          "orders",
		Category:       CategoryState,
		StateChange: &StateChangeEvent{
			OldState: "CONNECTING",
			NewState: "SUBSCRIBED",
		},
	})

	output := buf.String()
	if output == "" {
		t.Fatal("no output produced")
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(output), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if entry["sub_id"] != "sub-123" {
		t.Errorf("sub_id: got %v, want %q", entry["sub_id"], "sub-123")
	}
	if entry["topic"] != "orders" {
		t.Errorf("topic: got %v, want %q", entry["topic"], "orders")
	}
	if entry["category"] != "STATE" {
		t.Errorf("category: got %v, want %q", entry["category"], "STATE")
	}
	if entry["new_state"] != "SUBSCRIBED" {
		t.Errorf("new_state: got %v, want %q", entry["new_state"], "SUBSCRIBED")
	}
	if entry["level"] != "DEBUG" {
		t.Errorf("level: got %v, want DEBUG", entry["level"])
	}
}

func TestSlogAdapterLogsErrorAtWarn(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newJSONSlog(&buf))

	adapter.Log(Event{
		Timestamp:      time.Now(),
		SubscriptionID: "sub-123",
		Topic:          "orders",
		Category:       CategoryError,
		Error: &ErrorEventData{
			Op:      "retries_exhausted",
			Message: "5 consecutive reconnect attempts failed",
			Filter:  "store_id=eq.42",
		},
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if entry["level"] != "WARN" {
		t.Errorf("level: got %v, want WARN", entry["level"])
	}
	if entry["op"] != "retries_exhausted" {
		t.Errorf("op: got %v, want retries_exhausted", entry["op"])
	}
	if entry["filter"] != "store_id=eq.42" {
		t.Errorf("filter: got %v, want store_id=eq.42", entry["filter"])
	}
}

func TestSlogAdapterLogsFlush(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newJSONSlog(&buf))

	adapter.Log(Event{
		Timestamp:      time.Now(),
		SubscriptionID: "sub-123",
		Topic:          "orders",
		Category:       CategoryFlush,
		Flush:          &FlushEvent{Keys: []string{"cart", "orders"}},
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	keys, ok := entry["keys"].([]any)
	if !ok || len(keys) != 2 {
		t.Fatalf("keys: got %v, want two entries", entry["keys"])
	}
	if keys[0] != "cart" || keys[1] != "orders" {
		t.Errorf("keys: got %v, want [cart orders]", keys)
	}
}
