// Package health provides periodic liveness monitoring for a subscribed
// change-stream channel.
//
// Real-time backends can silently age out a connection well before emitting
// an explicit close event. A subscription would then appear alive
// indefinitely while delivering nothing. The monitor periodically probes the
// channel's reported join state and raises a stale callback when the channel
// is neither joined nor joining, so the owner can force a reconnect through
// the same path as an explicit close.
//
// The monitor runs only while the subscription is in the subscribed state:
// the owner stops it on every exit from that state and starts a fresh one on
// every re-entry.
package health
