// Package reconnect implements the connection state machine for a
// change-stream subscription.
//
// # States
//
//	Idle ──start──▶ Connecting ──ack──▶ Subscribed
//	Connecting|Subscribed ──disturb──▶ Reconnecting ──timer──▶ Connecting
//	Reconnecting: after MaxAttempts failed reconnects ──▶ Failed
//	any ──disable──▶ Disabled ──enable──▶ Connecting
//	Failed ──enable──▶ Connecting (attempt counter starts from zero)
//
// A disturbance is any terminal channel condition: a join timeout, an
// explicit close, a channel error, or a failed health probe. All are
// funneled through the same retry path.
//
// # Retry Accounting
//
// The attempt counter counts consecutive failed (re)connection attempts
// since the last successful entry into Subscribed, which resets it to zero.
// Reconnect attempt N waits Policy.Delay(N-1) before connecting, so with the
// default policy the observed waits are 1s, 2s, 4s, 8s, 16s. When the final
// permitted reconnect fails, the controller enters Failed, surfaces the
// failure once, and schedules nothing further; only an explicit Enable
// leaves Failed.
//
// # Handle Ownership
//
// Every entry into Reconnecting releases the current channel handle (via the
// Teardown hook) before the retry timer is armed, so two handles for one
// logical subscription never coexist, even transiently.
package reconnect
