// Package debounce collapses bursts of change notifications into a single
// downstream invalidation signal.
//
// # Quiet Period
//
// Each signal unions its invalidation keys into a pending set and re-arms a
// flush timer for the quiet period. The flush fires only once no further
// signal arrives within that window, delivering the accumulated keys in one
// batch. A sustained burst of N events therefore produces exactly one flush
// carrying the union of all keys touched during the burst.
//
// # Teardown Contract
//
// Close cancels any pending flush and drops the accumulated keys. Delivery
// is at-most-once: a consumer that tears down a subscription before the
// quiet period elapses never sees the final batch. Callers that need the
// last batch must leave the debouncer open until it fires.
package debounce
