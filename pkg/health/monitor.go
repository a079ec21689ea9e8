package health

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the default probe interval. Transports that age out
// idle connections typically do so on the order of hours; a 30 minute probe
// catches silent death well inside that window without meaningful load.
const DefaultInterval = 30 * time.Minute

// Config holds monitor configuration.
type Config struct {
	// Interval between liveness probes. Zero means DefaultInterval.
	Interval time.Duration
}

// ProbeFunc reports whether the monitored channel is still live
// (joined or joining).
type ProbeFunc func() bool

// Monitor periodically probes channel liveness and raises a stale callback
// when the probe fails. It is safe for concurrent use.
type Monitor struct {
	interval time.Duration
	probe    ProbeFunc
	onStale  func()

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// New creates a monitor. probe is called on every tick; onStale is called at
// most once per Start when a probe fails, after which the monitor stops
// itself.
func New(cfg Config, probe ProbeFunc, onStale func()) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Monitor{
		interval: cfg.Interval,
		probe:    probe,
		onStale:  onStale,
	}
}

// Start begins probing. It is a no-op if the monitor is already running.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	stopCh := m.stopCh
	m.mu.Unlock()

	go m.loop(ctx, stopCh)
}

// Stop halts probing. It is idempotent and safe to call from any goroutine,
// including the stale callback itself.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false
	close(m.stopCh)
}

// IsRunning reports whether the monitor is currently probing.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// loop probes at the configured interval until stopped, cancelled, or a
// probe fails.
func (m *Monitor) loop(ctx context.Context, stopCh chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if m.probe() {
				continue
			}

			// Claim the stop before firing the callback so a racing
			// Stop or restart never produces a stale callback for a
			// superseded run.
			m.mu.Lock()
			if !m.running || m.stopCh != stopCh {
				m.mu.Unlock()
				return
			}
			m.running = false
			m.mu.Unlock()

			if m.onStale != nil {
				m.onStale()
			}
			return
		}
	}
}
