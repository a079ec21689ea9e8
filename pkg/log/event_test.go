package log

import (
	"testing"
	"time"
)

func TestEncodeDecodeStateChangeEvent(t *testing.T) {
	orig := Event{
		Timestamp:      time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC),
		SubscriptionID: "8d4c7a2e-0000-4000-8000-000000000001",
		Topic:          "orders",
		Category:       CategoryState,
		StateChange: &StateChangeEvent{
			OldState: "SUBSCRIBED",
			NewState: "RECONNECTING",
			Cause:    "CLOSED",
		},
	}

	data, err := EncodeEvent(orig)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}

	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}

	if got.SubscriptionID != orig.SubscriptionID {
		t.Errorf("SubscriptionID = %q, want %q", got.SubscriptionID, orig.SubscriptionID)
	}
	if got.Topic != orig.Topic {
		t.Errorf("Topic = %q, want %q", got.Topic, orig.Topic)
	}
	if got.Category != CategoryState {
		t.Errorf("Category = %v, want CategoryState", got.Category)
	}
	if got.StateChange == nil {
		t.Fatal("StateChange payload missing after decode")
	}
	if got.StateChange.Cause != "CLOSED" {
		t.Errorf("Cause = %q, want CLOSED", got.StateChange.Cause)
	}
	if !got.Timestamp.Equal(orig.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, orig.Timestamp)
	}
}

func TestEncodeDecodeRetryEvent(t *testing.T) {
	orig := Event{
		Timestamp:      time.Now(),
		SubscriptionID: "sub-1",
		Topic:          "orders",
		Category:       CategoryRetry,
		Retry:          &RetryEvent{Attempt: 3, Delay: 4 * time.Second},
	}

	data, err := EncodeEvent(orig)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}

	if got.Retry == nil {
		t.Fatal("Retry payload missing after decode")
	}
	if got.Retry.Attempt != 3 {
		t.Errorf("Attempt = %d, want 3", got.Retry.Attempt)
	}
	if got.Retry.Delay != 4*time.Second {
		t.Errorf("Delay = %v, want 4s", got.Retry.Delay)
	}
}

func TestCategoryString(t *testing.T) {
	cases := map[Category]string{
		CategoryState:   "STATE",
		CategoryRetry:   "RETRY",
		CategoryPayload: "PAYLOAD",
		CategoryFlush:   "FLUSH",
		CategoryError:   "ERROR",
		Category(99):    "UNKNOWN",
	}
	for c, want := range cases {
		if got := c.String(); got != want {
			t.Errorf("Category(%d).String() = %q, want %q", c, got, want)
		}
	}
}
