// Package realtime manages long-lived subscriptions to server-pushed feeds
// of row-level change events.
//
// A Manager owns a set of independent logical subscriptions, one per topic.
// Each subscription opens a channel on an external Transport and keeps it
// alive indefinitely: transient disruptions (join timeouts, closes, channel
// errors) are retried with exponential backoff up to a fixed budget, a
// periodic health probe catches connections that died without any explicit
// event, and bursts of change notifications are debounced into single
// invalidation batches for the downstream cache.
//
// # Lifecycle
//
//	transport := ... // external change-stream backend
//	mgr := realtime.New(transport, realtime.WithLogger(logger))
//	sub, err := mgr.Open(realtime.SubscriptionConfig{
//	    Topic:            "orders",
//	    Table:            "orders",
//	    Filter:           "store_id=eq.42",
//	    InvalidationKeys: []string{"orders", "order-stats"},
//	    OnInvalidate: func(keys []string) {
//	        cache.Invalidate(keys...)
//	    },
//	})
//
// Opening the same topic again with a changed configuration tears the old
// subscription down and creates a fresh one; configurations are never
// mutated in place. Close is deterministic and idempotent: it cancels every
// pending timer, releases the channel handle, and guarantees that no
// consumer callback fires after it returns.
//
// # Failure Surface
//
// All failures stay local to one subscription. Transient disruptions are
// recovered transparently; when the retry budget is exhausted the
// subscription parks in the Failed state, surfaces the failure once through
// OnFailure and the diagnostic log, and waits for an explicit Enable.
// Errors from Unsubscribe during teardown are logged and swallowed.
package realtime
