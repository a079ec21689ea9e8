package reconnect

import (
	"sync"
	"time"

	"github.com/rowstream/rowstream-go/pkg/backoff"
)

// DefaultMaxAttempts is the number of consecutive failed reconnect attempts
// tolerated before the controller gives up and enters Failed.
const DefaultMaxAttempts = 5

// State represents the subscription connection state.
type State uint8

const (
	// StateIdle indicates the controller has not been started.
	StateIdle State = iota

	// StateConnecting indicates a channel join is in flight.
	StateConnecting

	// StateSubscribed indicates the transport confirmed the join.
	StateSubscribed

	// StateReconnecting indicates a retry is waiting on its backoff delay.
	StateReconnecting

	// StateFailed indicates retry attempts are exhausted; only an explicit
	// Enable leaves this state.
	StateFailed

	// StateDisabled indicates the subscription was switched off.
	StateDisabled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateSubscribed:
		return "SUBSCRIBED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateFailed:
		return "FAILED"
	case StateDisabled:
		return "DISABLED"
	default:
		return "UNKNOWN"
	}
}

// Cause identifies what disturbed a live or joining channel.
type Cause uint8

const (
	// CauseNone marks transitions not driven by a disturbance.
	CauseNone Cause = iota

	// CauseTimeout indicates the transport reported a join timeout.
	CauseTimeout

	// CauseClosed indicates the transport reported the channel closed.
	CauseClosed

	// CauseChannelError indicates the transport reported a channel error.
	CauseChannelError

	// CauseHealthCheck indicates a liveness probe found the channel dead
	// without any explicit transport event.
	CauseHealthCheck
)

// String returns the cause name.
func (c Cause) String() string {
	switch c {
	case CauseNone:
		return ""
	case CauseTimeout:
		return "TIMED_OUT"
	case CauseClosed:
		return "CLOSED"
	case CauseChannelError:
		return "CHANNEL_ERROR"
	case CauseHealthCheck:
		return "HEALTH_CHECK"
	default:
		return "UNKNOWN"
	}
}

// Hooks are the controller's outputs. All hooks are optional and are invoked
// outside the controller's internal lock, on the goroutine that triggered
// the transition (a transport callback, a timer, or a caller of Start,
// Enable, or Disable). Hooks may call back into the controller.
type Hooks struct {
	// Connect is invoked on every entry into Connecting; it must open a
	// fresh channel handle.
	Connect func()

	// Teardown is invoked before a retry is scheduled, on Disable, and on
	// entry into Failed; it must release the current channel handle if one
	// exists.
	Teardown func()

	// StateChange is invoked after every transition. cause is CauseNone
	// except for disturbance-driven transitions.
	StateChange func(old, new State, cause Cause)

	// Retrying is invoked when a reconnect attempt has been scheduled,
	// after Teardown and before the backoff timer is armed.
	Retrying func(attempt int, delay time.Duration)

	// Failed is invoked exactly once when retry attempts are exhausted.
	Failed func(attempts int)
}

// Config holds controller configuration.
type Config struct {
	// MaxAttempts is the retry budget. Zero means DefaultMaxAttempts.
	MaxAttempts int

	// Policy computes retry delays. The zero value means the default
	// unjittered policy.
	Policy backoff.Policy
}

// Controller drives the connect/subscribed/reconnect/failed lifecycle of one
// logical subscription. It is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	state    State
	attempts int

	maxAttempts int
	policy      backoff.Policy

	retryTimer *time.Timer

	// epoch invalidates retry timers armed before a Disable or Ack.
	epoch uint64

	hooks Hooks
}

// New creates a controller with the default retry budget and backoff policy.
func New(hooks Hooks) *Controller {
	return NewWithConfig(hooks, Config{})
}

// NewWithConfig creates a controller with custom retry configuration.
func NewWithConfig(hooks Hooks, cfg Config) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Policy == (backoff.Policy{}) {
		cfg.Policy = backoff.DefaultPolicy()
	}
	return &Controller{
		state:       StateIdle,
		maxAttempts: cfg.MaxAttempts,
		policy:      cfg.Policy,
		hooks:       hooks,
	}
}

// State returns the current connection state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempts returns the count of consecutive failed (re)connection attempts
// since the last successful entry into Subscribed.
func (c *Controller) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Start begins the lifecycle from Idle. It also restarts from Disabled or
// Failed, identically to Enable. In any other state it is a no-op.
func (c *Controller) Start() {
	c.begin()
}

// Enable restarts a Disabled or Failed subscription from scratch with a
// fresh attempt budget.
func (c *Controller) Enable() {
	c.begin()
}

func (c *Controller) begin() {
	c.mu.Lock()
	switch c.state {
	case StateIdle, StateDisabled, StateFailed:
	default:
		c.mu.Unlock()
		return
	}
	old := c.state
	c.state = StateConnecting
	c.attempts = 0
	c.mu.Unlock()

	c.notifyState(old, StateConnecting, CauseNone)
	if c.hooks.Connect != nil {
		c.hooks.Connect()
	}
}

// Ack records transport confirmation of the join: Connecting → Subscribed,
// attempt counter reset, any pending retry timer cancelled.
func (c *Controller) Ack() {
	c.mu.Lock()
	if c.state != StateConnecting {
		c.mu.Unlock()
		return
	}
	c.state = StateSubscribed
	c.attempts = 0
	c.epoch++
	c.stopRetryTimerLocked()
	c.mu.Unlock()

	c.notifyState(StateConnecting, StateSubscribed, CauseNone)
}

// Disturb reports a terminal channel condition. From Connecting or
// Subscribed it either schedules a reconnect attempt or, when the retry
// budget is spent, enters Failed. In any other state the disturbance is
// ignored; in particular a stray transport event arriving during the backoff
// wait does not consume an extra attempt.
func (c *Controller) Disturb(cause Cause) {
	c.mu.Lock()
	switch c.state {
	case StateConnecting, StateSubscribed:
	default:
		c.mu.Unlock()
		return
	}
	old := c.state

	if c.attempts >= c.maxAttempts {
		exhausted := c.attempts
		c.state = StateFailed
		c.attempts = 0 // a later Enable retries from scratch
		c.epoch++
		c.stopRetryTimerLocked()
		c.mu.Unlock()

		if c.hooks.Teardown != nil {
			c.hooks.Teardown()
		}
		c.notifyState(old, StateFailed, cause)
		if c.hooks.Failed != nil {
			c.hooks.Failed(exhausted)
		}
		return
	}

	c.attempts++
	attempt := c.attempts
	delay := c.policy.Delay(attempt - 1)
	c.state = StateReconnecting
	c.epoch++
	epoch := c.epoch
	c.stopRetryTimerLocked()
	c.mu.Unlock()

	// Release the current handle before arming the timer: two handles for
	// one logical subscription must never coexist.
	if c.hooks.Teardown != nil {
		c.hooks.Teardown()
	}
	c.notifyState(old, StateReconnecting, cause)
	if c.hooks.Retrying != nil {
		c.hooks.Retrying(attempt, delay)
	}

	c.mu.Lock()
	if c.epoch != epoch || c.state != StateReconnecting {
		// Disabled (or otherwise superseded) while the hooks ran.
		c.mu.Unlock()
		return
	}
	c.retryTimer = time.AfterFunc(delay, func() {
		c.retryFire(epoch)
	})
	c.mu.Unlock()
}

// Disable tears down any live handle, cancels the pending retry timer, and
// parks the controller in Disabled. Idempotent.
func (c *Controller) Disable() {
	c.mu.Lock()
	if c.state == StateDisabled {
		c.mu.Unlock()
		return
	}
	old := c.state
	c.state = StateDisabled
	c.attempts = 0
	c.epoch++
	c.stopRetryTimerLocked()
	c.mu.Unlock()

	if c.hooks.Teardown != nil {
		c.hooks.Teardown()
	}
	c.notifyState(old, StateDisabled, CauseNone)
}

// retryFire transitions Reconnecting → Connecting when the backoff timer for
// the given epoch elapses.
func (c *Controller) retryFire(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch || c.state != StateReconnecting {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.retryTimer = nil
	c.mu.Unlock()

	c.notifyState(StateReconnecting, StateConnecting, CauseNone)
	if c.hooks.Connect != nil {
		c.hooks.Connect()
	}
}

// stopRetryTimerLocked cancels the pending retry timer. Callers must hold mu.
func (c *Controller) stopRetryTimerLocked() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
}

func (c *Controller) notifyState(old, new State, cause Cause) {
	if c.hooks.StateChange != nil {
		c.hooks.StateChange(old, new, cause)
	}
}
