// Package realtimetest provides a scriptable in-memory Transport for
// exercising subscription lifecycles without a real change-stream backend.
//
// Tests (and the rowstream-sim tool) drive the transport by hand: emit
// lifecycle statuses and payloads into the manager's callbacks, flip the
// reported channel state to simulate a silently-dead connection, and inject
// subscribe/unsubscribe errors. Emission is synchronous on the caller's
// goroutine.
package realtimetest
