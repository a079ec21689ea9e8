package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes subscription events to an slog.Logger.
// Useful for development when you want to see lifecycle events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Errors are logged at Warn level,
// everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("sub_id", event.SubscriptionID),
		slog.String("category", event.Category.String()),
	}

	if event.Topic != "" {
		attrs = append(attrs, slog.String("topic", event.Topic))
	}

	level := slog.LevelDebug

	// Add type-specific attributes
	switch {
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Cause != "" {
			attrs = append(attrs, slog.String("cause", event.StateChange.Cause))
		}
	case event.Retry != nil:
		attrs = append(attrs,
			slog.Int("attempt", event.Retry.Attempt),
			slog.Duration("delay", event.Retry.Delay),
		)
	case event.Payload != nil:
		attrs = append(attrs, slog.String("kind", event.Payload.Kind))
		if event.Payload.Table != "" {
			attrs = append(attrs, slog.String("table", event.Payload.Table))
		}
	case event.Flush != nil:
		attrs = append(attrs, slog.Any("keys", event.Flush.Keys))
	case event.Error != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("op", event.Error.Op),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Filter != "" {
			attrs = append(attrs, slog.String("filter", event.Error.Filter))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "realtime", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
