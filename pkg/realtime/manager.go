package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/rowstream/rowstream-go/pkg/backoff"
	"github.com/rowstream/rowstream-go/pkg/log"
)

// ErrManagerClosed is returned by Open after the manager has been closed.
var ErrManagerClosed = errors.New("realtime manager closed")

// Manager owns a set of independent logical subscriptions, one per topic.
// It is safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	transport Transport
	logger    log.Logger

	healthInterval time.Duration
	maxAttempts    int
	policy         backoff.Policy

	subs   map[string]*Subscription
	closed bool
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the diagnostic event logger. Defaults to NoopLogger.
func WithLogger(l log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithHealthInterval sets the liveness probe interval for all subscriptions.
// Defaults to health.DefaultInterval.
func WithHealthInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.healthInterval = d
	}
}

// WithBackoffPolicy sets the reconnect delay policy. Defaults to the
// standard unjittered 1s-to-30s schedule.
func WithBackoffPolicy(p backoff.Policy) Option {
	return func(m *Manager) {
		m.policy = p
	}
}

// WithMaxAttempts sets the reconnect attempt budget. Defaults to
// reconnect.DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(m *Manager) {
		m.maxAttempts = n
	}
}

// New creates a manager on the given transport.
func New(transport Transport, opts ...Option) *Manager {
	m := &Manager{
		transport: transport,
		logger:    log.NoopLogger{},
		subs:      make(map[string]*Subscription),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open begins the lifecycle of the subscription described by cfg.
//
// If a subscription for the same topic is already open with an identical
// configuration (callbacks excluded), the existing one is returned. If the
// configuration changed, the old subscription is deterministically torn down
// first and a fresh one created; configs are never rebound in place.
// Concurrent Opens for the same topic are serialized through the registry:
// exactly one subscription per topic survives.
func (m *Manager) Open(cfg SubscriptionConfig) (*Subscription, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, ErrManagerClosed
		}

		existing, ok := m.subs[cfg.Topic]
		if !ok {
			sub := newSubscription(m, cfg)
			m.subs[cfg.Topic] = sub
			m.mu.Unlock()

			sub.start()
			return sub, nil
		}
		if existing.config.sameStream(cfg) {
			m.mu.Unlock()
			return existing, nil
		}
		delete(m.subs, cfg.Topic)
		m.mu.Unlock()

		// Teardown outside the registry lock; Close re-enters the manager
		// to deregister. A concurrent Open may register its own subscription
		// for the topic while we wait, so reconcile from scratch instead of
		// overwriting whatever the registry now holds.
		existing.Close()
	}
}

// Get returns the open subscription for topic, if any.
func (m *Manager) Get(topic string) (*Subscription, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[topic]
	return sub, ok
}

// Count returns the number of open subscriptions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Close tears down every subscription and rejects further opens.
// It is idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	subs := make([]*Subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		subs = append(subs, sub)
	}
	m.subs = make(map[string]*Subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

// remove deregisters a subscription after its Close. Only the exact
// instance is removed, so a replacement opened for the same topic is left
// alone.
func (m *Manager) remove(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.subs[sub.config.Topic]; ok && current == sub {
		delete(m.subs, sub.config.Topic)
	}
}
