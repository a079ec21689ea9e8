package realtime

// ChannelStatus is a lifecycle status reported by the transport for one
// channel.
type ChannelStatus uint8

const (
	// StatusSubscribed indicates the transport confirmed the join.
	StatusSubscribed ChannelStatus = iota

	// StatusTimedOut indicates the join attempt timed out.
	StatusTimedOut

	// StatusClosed indicates the channel was closed by the server.
	StatusClosed

	// StatusChannelError indicates a channel-level error.
	StatusChannelError
)

// String returns the transport status name.
func (s ChannelStatus) String() string {
	switch s {
	case StatusSubscribed:
		return "SUBSCRIBED"
	case StatusTimedOut:
		return "TIMED_OUT"
	case StatusClosed:
		return "CLOSED"
	case StatusChannelError:
		return "CHANNEL_ERROR"
	default:
		return "UNKNOWN"
	}
}

// ChannelState is the transport's reported join state for a channel handle,
// consumed by the liveness probe.
type ChannelState uint8

const (
	// ChannelJoining indicates a join is in flight.
	ChannelJoining ChannelState = iota

	// ChannelJoined indicates the channel is live.
	ChannelJoined

	// ChannelLeaving indicates the channel is shutting down.
	ChannelLeaving

	// ChannelClosed indicates the channel is closed.
	ChannelClosed

	// ChannelErrored indicates the channel failed.
	ChannelErrored
)

// String returns the channel state name.
func (s ChannelState) String() string {
	switch s {
	case ChannelJoining:
		return "joining"
	case ChannelJoined:
		return "joined"
	case ChannelLeaving:
		return "leaving"
	case ChannelClosed:
		return "closed"
	case ChannelErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// IsLive reports whether the channel is joined or joining. Anything else
// means the connection is dead even if no explicit close was delivered.
func (s ChannelState) IsLive() bool {
	return s == ChannelJoined || s == ChannelJoining
}

// Channel is an opaque handle to one open transport channel. The handle is
// owned exclusively by the subscription that created it; consumers never
// touch it directly.
type Channel interface {
	// State returns the transport's current view of the channel's join
	// state. Must be safe to call from any goroutine.
	State() ChannelState
}

// ChannelOptions select which change events a channel receives.
type ChannelOptions struct {
	// Event filters by operation kind.
	Event ChangeEvent

	// Schema of the watched table.
	Schema string

	// Table being watched.
	Table string

	// Filter is an optional row-level filter expression
	// (e.g. "store_id=eq.42").
	Filter string
}

// ChannelCallbacks receive transport events for one channel. The transport
// must not invoke them concurrently for the same channel.
type ChannelCallbacks struct {
	// OnStatus is invoked on every lifecycle status change. err is non-nil
	// only for StatusChannelError, when the transport can attribute the
	// failure.
	OnStatus func(status ChannelStatus, err error)

	// OnPayload delivers one change record.
	OnPayload func(p Payload)
}

// Transport is the external real-time messaging backend. Implementations
// must be safe for concurrent use; one Transport serves many channels.
type Transport interface {
	// Subscribe opens a channel for topic with the given options and begins
	// delivering events to cb. The returned handle stays valid until passed
	// to Unsubscribe.
	Subscribe(topic string, opts ChannelOptions, cb ChannelCallbacks) (Channel, error)

	// Unsubscribe releases a channel handle. Best effort: the handle is
	// considered released even when an error is returned.
	Unsubscribe(ch Channel) error
}
