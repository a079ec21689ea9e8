package realtimetest

import (
	"sync"

	"github.com/rowstream/rowstream-go/pkg/realtime"
)

// StubTransport is an in-memory realtime.Transport. It records every
// subscribe and unsubscribe, hands out StubChannels, and tracks how many
// handles are live so tests can assert that handles never coexist.
type StubTransport struct {
	mu sync.Mutex

	channels []*StubChannel

	subscribeErr   error
	unsubscribeErr error

	unsubscribes int
	live         int
	maxLive      int
}

// NewStubTransport creates an empty stub transport.
func NewStubTransport() *StubTransport {
	return &StubTransport{}
}

// SetSubscribeError makes subsequent Subscribe calls fail with err.
// Pass nil to clear.
func (t *StubTransport) SetSubscribeError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribeErr = err
}

// SetUnsubscribeError makes subsequent Unsubscribe calls return err while
// still releasing the handle. Pass nil to clear.
func (t *StubTransport) SetUnsubscribeError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unsubscribeErr = err
}

// Subscribe records the call and returns a fresh joining channel.
func (t *StubTransport) Subscribe(topic string, opts realtime.ChannelOptions, cb realtime.ChannelCallbacks) (realtime.Channel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.subscribeErr != nil {
		return nil, t.subscribeErr
	}

	ch := &StubChannel{
		topic:     topic,
		opts:      opts,
		callbacks: cb,
		state:     realtime.ChannelJoining,
	}
	t.channels = append(t.channels, ch)
	t.live++
	if t.live > t.maxLive {
		t.maxLive = t.live
	}
	return ch, nil
}

// Unsubscribe releases the handle and records the call.
func (t *StubTransport) Unsubscribe(ch realtime.Channel) error {
	sc, ok := ch.(*StubChannel)
	if ok {
		sc.release()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.unsubscribes++
	if ok && t.live > 0 {
		t.live--
	}
	return t.unsubscribeErr
}

// SubscribeCount returns the number of successful Subscribe calls.
func (t *StubTransport) SubscribeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.channels)
}

// UnsubscribeCount returns the number of Unsubscribe calls.
func (t *StubTransport) UnsubscribeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unsubscribes
}

// LiveCount returns the number of handles currently held by subscribers.
func (t *StubTransport) LiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

// MaxLiveCount returns the highest number of simultaneously live handles
// ever observed.
func (t *StubTransport) MaxLiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxLive
}

// LastChannel returns the most recently created channel, or nil.
func (t *StubTransport) LastChannel() *StubChannel {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.channels) == 0 {
		return nil
	}
	return t.channels[len(t.channels)-1]
}

// Channel returns the i-th created channel.
func (t *StubTransport) Channel(i int) *StubChannel {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channels[i]
}

// Compile-time interface satisfaction check.
var _ realtime.Transport = (*StubTransport)(nil)

// StubChannel is a scriptable channel handle.
type StubChannel struct {
	mu sync.Mutex

	topic     string
	opts      realtime.ChannelOptions
	callbacks realtime.ChannelCallbacks
	state     realtime.ChannelState
	released  bool
}

// Topic returns the topic the channel was opened for.
func (c *StubChannel) Topic() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topic
}

// Options returns the options the channel was opened with.
func (c *StubChannel) Options() realtime.ChannelOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// State returns the currently scripted channel state.
func (c *StubChannel) State() realtime.ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState scripts the reported join state without emitting any status
// event, simulating a connection that died silently.
func (c *StubChannel) SetState(state realtime.ChannelState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// Released reports whether the handle was passed to Unsubscribe.
func (c *StubChannel) Released() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

// EmitStatus delivers a lifecycle status to the subscriber, synchronously
// on the caller's goroutine, and adjusts the reported state to match.
func (c *StubChannel) EmitStatus(status realtime.ChannelStatus, err error) {
	c.mu.Lock()
	switch status {
	case realtime.StatusSubscribed:
		c.state = realtime.ChannelJoined
	case realtime.StatusTimedOut:
		c.state = realtime.ChannelErrored
	case realtime.StatusClosed:
		c.state = realtime.ChannelClosed
	case realtime.StatusChannelError:
		c.state = realtime.ChannelErrored
	}
	cb := c.callbacks.OnStatus
	c.mu.Unlock()

	if cb != nil {
		cb(status, err)
	}
}

// EmitPayload delivers a change record to the subscriber, synchronously on
// the caller's goroutine.
func (c *StubChannel) EmitPayload(p realtime.Payload) {
	c.mu.Lock()
	cb := c.callbacks.OnPayload
	c.mu.Unlock()

	if cb != nil {
		cb(p)
	}
}

// release marks the handle as returned to the transport.
func (c *StubChannel) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = true
	c.state = realtime.ChannelClosed
}

// Compile-time interface satisfaction check.
var _ realtime.Channel = (*StubChannel)(nil)
