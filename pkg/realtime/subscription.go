package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rowstream/rowstream-go/pkg/debounce"
	"github.com/rowstream/rowstream-go/pkg/health"
	"github.com/rowstream/rowstream-go/pkg/log"
	"github.com/rowstream/rowstream-go/pkg/reconnect"
)

// Subscription orchestrates one logical subscription end-to-end: it owns the
// channel handle, drives the reconnect state machine, runs the liveness
// monitor while subscribed, and debounces change notifications into
// invalidation batches.
type Subscription struct {
	id      string
	manager *Manager
	config  SubscriptionConfig
	logger  log.Logger

	ctrl    *reconnect.Controller
	monitor *health.Monitor
	deb     *debounce.Debouncer

	mu sync.Mutex

	// generation stale-ifies transport callbacks across teardowns: every
	// callback closure carries the generation current when its channel was
	// opened and is dropped once they diverge.
	generation uint64

	// callbacks tracks in-flight consumer callback deliveries so Close can
	// drain them. Add happens under mu while closed is still false.
	callbacks sync.WaitGroup

	channel Channel
	closed  bool
}

// newSubscription wires the controller, monitor, and debouncer around one
// not-yet-started subscription.
func newSubscription(m *Manager, cfg SubscriptionConfig) *Subscription {
	s := &Subscription{
		id:      uuid.NewString(),
		manager: m,
		config:  cfg,
		logger:  m.logger,
	}

	s.deb = debounce.New(cfg.Debounce, s.deliverInvalidations)

	s.monitor = health.New(
		health.Config{Interval: m.healthInterval},
		s.probeChannel,
		s.channelStale,
	)

	s.ctrl = reconnect.NewWithConfig(reconnect.Hooks{
		Connect:     s.connect,
		Teardown:    s.releaseChannel,
		StateChange: s.stateChanged,
		Retrying:    s.retryScheduled,
		Failed:      s.retriesExhausted,
	}, reconnect.Config{
		MaxAttempts: m.maxAttempts,
		Policy:      m.policy,
	})

	return s
}

// start begins the lifecycle according to the config's Disabled flag.
func (s *Subscription) start() {
	if s.config.Disabled {
		s.ctrl.Disable()
		return
	}
	s.ctrl.Start()
}

// ID returns the subscription instance identifier used for log correlation.
// A recreated subscription gets a fresh ID.
func (s *Subscription) ID() string {
	return s.id
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string {
	return s.config.Topic
}

// State returns the current connection state.
func (s *Subscription) State() reconnect.State {
	return s.ctrl.State()
}

// Config returns a copy of the subscription's configuration.
func (s *Subscription) Config() SubscriptionConfig {
	return s.config
}

// Enable (re)starts a Disabled or Failed subscription from scratch.
// No-op after Close.
func (s *Subscription) Enable() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.ctrl.Enable()
}

// Disable tears down the live channel and parks the subscription. The
// subscription stays registered; Enable restarts it.
func (s *Subscription) Disable() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.ctrl.Disable()
}

// Close tears the subscription down for good: the retry timer, health
// probe, and any pending invalidation flush are cancelled, the channel
// handle released, and any in-flight consumer callback drained before
// Close returns. No consumer callback runs after Close returns; for that
// reason callbacks must not call Close (or reopen the topic) on their own
// subscription. Idempotent.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	s.mu.Unlock()

	s.ctrl.Disable()   // cancels the retry timer, releases the channel
	s.monitor.Stop()   // already stopped on leaving Subscribed; belt here
	s.deb.Close()      // drops any pending flush (at-most-once contract)
	s.callbacks.Wait() // drain deliveries that passed the closed check
	s.manager.remove(s)
}

// connect opens a fresh channel handle. Invoked by the controller on every
// entry into Connecting.
func (s *Subscription) connect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	gen := s.generation
	opts := ChannelOptions{
		Event:  s.config.Event,
		Schema: s.config.Schema,
		Table:  s.config.Table,
		Filter: s.config.Filter,
	}
	s.mu.Unlock()

	ch, err := s.manager.transport.Subscribe(s.config.Topic, opts, ChannelCallbacks{
		OnStatus: func(status ChannelStatus, err error) {
			s.handleStatus(gen, status, err)
		},
		OnPayload: func(p Payload) {
			s.handlePayload(gen, p)
		},
	})
	if err != nil {
		s.logError("subscribe", err)
		s.ctrl.Disturb(reconnect.CauseChannelError)
		return
	}

	s.mu.Lock()
	if s.closed || gen != s.generation {
		// Torn down while the subscribe was in flight; the stray handle
		// must not survive.
		s.mu.Unlock()
		s.unsubscribe(ch)
		return
	}
	s.channel = ch
	s.mu.Unlock()
}

// releaseChannel releases the current channel handle, if any. Invoked by the
// controller before every retry, on Disable, and on entry into Failed.
func (s *Subscription) releaseChannel() {
	s.mu.Lock()
	ch := s.channel
	s.channel = nil
	s.generation++
	s.mu.Unlock()

	if ch != nil {
		s.unsubscribe(ch)
	}
}

// unsubscribe releases a handle. Best effort: failures are logged, never
// propagated to the caller's Close.
func (s *Subscription) unsubscribe(ch Channel) {
	if err := s.manager.transport.Unsubscribe(ch); err != nil {
		s.logError("unsubscribe", err)
	}
}

// handleStatus translates a transport lifecycle status into a controller
// transition. Stale callbacks from a released channel are dropped.
func (s *Subscription) handleStatus(gen uint64, status ChannelStatus, err error) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	switch status {
	case StatusSubscribed:
		s.ctrl.Ack()
	case StatusTimedOut:
		s.ctrl.Disturb(reconnect.CauseTimeout)
	case StatusClosed:
		s.ctrl.Disturb(reconnect.CauseClosed)
	case StatusChannelError:
		if err != nil {
			s.logError("channel", err)
		}
		s.ctrl.Disturb(reconnect.CauseChannelError)
	}
}

// handlePayload forwards a change record to the consumer and feeds the
// debouncer. The raw payload callback runs before debounced invalidation.
func (s *Subscription) handlePayload(gen uint64, p Payload) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	onPayload := s.config.OnPayload
	keys := s.config.InvalidationKeys
	s.callbacks.Add(1)
	s.mu.Unlock()
	defer s.callbacks.Done()

	s.logEvent(log.Event{
		Category: log.CategoryPayload,
		Payload: &log.PayloadEvent{
			Kind:   p.Kind.String(),
			Schema: p.Schema,
			Table:  p.Table,
		},
	})

	if onPayload != nil {
		onPayload(p)
	}
	if len(keys) > 0 {
		s.deb.Signal(keys...)
	}
}

// deliverInvalidations hands one debounced batch to the consumer.
func (s *Subscription) deliverInvalidations(keys []string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	onInvalidate := s.config.OnInvalidate
	s.callbacks.Add(1)
	s.mu.Unlock()
	defer s.callbacks.Done()

	s.logEvent(log.Event{
		Category: log.CategoryFlush,
		Flush:    &log.FlushEvent{Keys: keys},
	})

	if onInvalidate != nil {
		onInvalidate(keys)
	}
}

// probeChannel reports channel liveness to the health monitor. A missing
// handle counts as dead: a probe can only race a teardown, and the
// resulting disturbance is deduplicated by the controller.
func (s *Subscription) probeChannel() bool {
	s.mu.Lock()
	ch := s.channel
	s.mu.Unlock()

	if ch == nil {
		return false
	}
	return ch.State().IsLive()
}

// channelStale forces a reconnect for a silently-dead channel, through the
// same path as an explicit close.
func (s *Subscription) channelStale() {
	s.ctrl.Disturb(reconnect.CauseHealthCheck)
}

// stateChanged logs every transition and keeps the health monitor bound to
// the Subscribed state.
func (s *Subscription) stateChanged(old, new reconnect.State, cause reconnect.Cause) {
	if old == reconnect.StateSubscribed {
		s.monitor.Stop()
	}
	if new == reconnect.StateSubscribed {
		s.monitor.Start(context.Background())
	}

	s.logEvent(log.Event{
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: old.String(),
			NewState: new.String(),
			Cause:    cause.String(),
		},
	})
}

// retryScheduled logs a scheduled reconnect attempt.
func (s *Subscription) retryScheduled(attempt int, delay time.Duration) {
	s.logEvent(log.Event{
		Category: log.CategoryRetry,
		Retry:    &log.RetryEvent{Attempt: attempt, Delay: delay},
	})
}

// retriesExhausted surfaces the terminal failure once.
func (s *Subscription) retriesExhausted(attempts int) {
	s.logEvent(log.Event{
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Op:      "retries_exhausted",
			Message: fmt.Sprintf("%d consecutive reconnect attempts failed", attempts),
			Filter:  s.config.Filter,
		},
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	onFailure := s.config.OnFailure
	s.callbacks.Add(1)
	s.mu.Unlock()
	defer s.callbacks.Done()

	if onFailure != nil {
		onFailure(s.config.Topic, s.config.Filter)
	}
}

// logError records a non-fatal error event.
func (s *Subscription) logError(op string, err error) {
	s.logEvent(log.Event{
		Category: log.CategoryError,
		Error:    &log.ErrorEventData{Op: op, Message: err.Error()},
	})
}

// logEvent stamps and emits one diagnostic event.
func (s *Subscription) logEvent(e log.Event) {
	e.Timestamp = time.Now()
	e.SubscriptionID = s.id
	e.Topic = s.config.Topic
	s.logger.Log(e)
}
