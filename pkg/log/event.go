package log

import (
	"time"
)

// Event represents one diagnostic event in a subscription's life.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SubscriptionID uniquely identifies the subscription instance (UUID).
	SubscriptionID string `cbor:"2,keyasint"`

	// Topic is the subscribed topic.
	Topic string `cbor:"3,keyasint,omitempty"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Type-specific payload (one of these will be set).
	StateChange *StateChangeEvent `cbor:"5,keyasint,omitempty"` // connection state transition
	Retry       *RetryEvent       `cbor:"6,keyasint,omitempty"` // reconnect scheduled
	Payload     *PayloadEvent     `cbor:"7,keyasint,omitempty"` // change record delivered
	Flush       *FlushEvent       `cbor:"8,keyasint,omitempty"` // invalidation batch delivered
	Error       *ErrorEventData   `cbor:"9,keyasint,omitempty"` // errors at any point
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a connection state transition.
	CategoryState Category = 0
	// CategoryRetry indicates a reconnect attempt was scheduled.
	CategoryRetry Category = 1
	// CategoryPayload indicates a change record was delivered.
	CategoryPayload Category = 2
	// CategoryFlush indicates an invalidation batch was delivered.
	CategoryFlush Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryRetry:
		return "RETRY"
	case CategoryPayload:
		return "PAYLOAD"
	case CategoryFlush:
		return "FLUSH"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures a connection state transition.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Cause of the transition, for disturbance-driven transitions
	// (TIMED_OUT, CLOSED, CHANNEL_ERROR, HEALTH_CHECK).
	Cause string `cbor:"3,keyasint,omitempty"`
}

// RetryEvent captures a scheduled reconnect attempt.
type RetryEvent struct {
	// Attempt is the one-based reconnect attempt number.
	Attempt int `cbor:"1,keyasint"`

	// Delay before the attempt, in nanoseconds.
	Delay time.Duration `cbor:"2,keyasint"`
}

// PayloadEvent captures delivery of a change record.
type PayloadEvent struct {
	// Kind is the change operation ("INSERT", "UPDATE", "DELETE").
	Kind string `cbor:"1,keyasint"`

	// Schema of the changed row.
	Schema string `cbor:"2,keyasint,omitempty"`

	// Table of the changed row.
	Table string `cbor:"3,keyasint,omitempty"`
}

// FlushEvent captures delivery of one invalidation batch.
type FlushEvent struct {
	// Keys is the batch of invalidation keys, sorted and deduplicated.
	Keys []string `cbor:"1,keyasint"`
}

// ErrorEventData captures an error at any point of the lifecycle.
type ErrorEventData struct {
	// Op is the operation that failed ("subscribe", "unsubscribe",
	// "channel", "retries_exhausted").
	Op string `cbor:"1,keyasint,omitempty"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`

	// Filter carries the subscription's row filter for diagnostics on
	// terminal failures.
	Filter string `cbor:"3,keyasint,omitempty"`
}
