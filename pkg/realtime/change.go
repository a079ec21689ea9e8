package realtime

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ChangeEvent selects which row-level operations a subscription receives.
type ChangeEvent uint8

const (
	// EventAll matches inserts, updates, and deletes.
	EventAll ChangeEvent = iota

	// EventInsert matches row inserts only.
	EventInsert

	// EventUpdate matches row updates only.
	EventUpdate

	// EventDelete matches row deletes only.
	EventDelete
)

// String returns the wire name of the event filter.
func (e ChangeEvent) String() string {
	switch e {
	case EventAll:
		return "*"
	case EventInsert:
		return "INSERT"
	case EventUpdate:
		return "UPDATE"
	case EventDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// ParseChangeEvent parses an event filter name. It accepts the wire names
// ("*", "INSERT", ...) case-insensitively, plus "all" as an alias for "*".
func ParseChangeEvent(s string) (ChangeEvent, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "*", "ALL", "":
		return EventAll, nil
	case "INSERT":
		return EventInsert, nil
	case "UPDATE":
		return EventUpdate, nil
	case "DELETE":
		return EventDelete, nil
	default:
		return EventAll, fmt.Errorf("unknown change event %q", s)
	}
}

// MarshalYAML encodes the event filter as its wire name.
func (e ChangeEvent) MarshalYAML() (any, error) {
	return e.String(), nil
}

// UnmarshalYAML decodes an event filter from its wire name.
func (e *ChangeEvent) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseChangeEvent(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Payload is an opaque row-level change record delivered by the transport.
// It is passed through to the consumer untouched; this package never
// inspects row contents.
type Payload struct {
	// Kind is the operation that produced the change.
	Kind ChangeEvent

	// Schema of the changed row.
	Schema string

	// Table of the changed row.
	Table string

	// CommitTimestamp is when the change was committed upstream.
	CommitTimestamp time.Time

	// OldRecord is the row snapshot before the change (updates and deletes).
	OldRecord map[string]any

	// NewRecord is the row snapshot after the change (inserts and updates).
	NewRecord map[string]any

	// Errors carries upstream per-record error strings, if the backend
	// reported any. Passed through verbatim.
	Errors []string
}
