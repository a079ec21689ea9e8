// Package backoff computes reconnection delays for change-stream
// subscriptions.
//
// # Delay Schedule
//
// Delays grow exponentially from a zero-based attempt number:
//
//	delay(attempt) = min(Initial * 2^attempt, Max)
//
// With the default policy (Initial 1s, Max 30s):
//
//	delay(0) = 1s
//	delay(1) = 2s
//	delay(2) = 4s
//	delay(3) = 8s
//	delay(4) = 16s
//	delay(5) = 30s (capped)
//
// # Jitter
//
// The default policy applies no jitter; every client observes the same
// delay schedule. When many clients lose the same backend simultaneously
// this synchronizes their retries. Policy.Jitter exists for deployments
// that need to spread the retry spike, but it changes the observable retry
// timing and is therefore off unless explicitly enabled.
package backoff
