package backoff

import (
	"math/rand"
	"time"
)

// Default policy constants.
const (
	// InitialDelay is the delay before the first reconnect attempt.
	InitialDelay = 1 * time.Second

	// MaxDelay caps the reconnect delay.
	MaxDelay = 30 * time.Second
)

// Policy computes the delay before a reconnect attempt.
// The zero value is not useful; use DefaultPolicy or fill in all fields.
type Policy struct {
	// Initial is the delay for attempt 0.
	Initial time.Duration

	// Max caps the computed delay.
	Max time.Duration

	// Jitter is the maximum extra delay as a fraction of the base delay.
	// Zero (the default) keeps the delay schedule deterministic.
	Jitter float64
}

// DefaultPolicy returns the standard unjittered policy: 1s doubling up to 30s.
func DefaultPolicy() Policy {
	return Policy{
		Initial: InitialDelay,
		Max:     MaxDelay,
	}
}

// Delay returns the delay before reconnect attempt number attempt.
// Attempt numbers are zero-based; negative values are treated as zero.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := p.Initial
	// Doubling in a loop rather than shifting avoids overflow for large
	// attempt numbers.
	for i := 0; i < attempt && delay < p.Max; i++ {
		delay *= 2
	}
	if delay > p.Max {
		delay = p.Max
	}

	if p.Jitter > 0 {
		delay += time.Duration(float64(delay) * p.Jitter * rand.Float64())
	}

	return delay
}

// Delay returns the delay for the given attempt under the default policy.
func Delay(attempt int) time.Duration {
	return DefaultPolicy().Delay(attempt)
}

// Sequence returns the base delay values of the default policy up to the cap.
func Sequence() []time.Duration {
	return []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second, // max
	}
}
