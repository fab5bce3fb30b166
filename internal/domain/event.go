package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Stream types. One stream per aggregate instance, typed by the aggregate.
const (
	StreamTypeProject      = "Project"
	StreamTypeDocument     = "Document"
	StreamTypeProjectIndex = "ProjectIndex"
)

// Event is the immutable record persisted for every state change.
// Sequence is the 1-based position within its stream, assigned by the store
// at append time. The event log is the only durable representation of state.
type Event struct {
	StreamID   uuid.UUID
	StreamType string
	Sequence   int64
	Type       string
	Payload    json.RawMessage
	CreatedAt  time.Time
}

// EventData is a not-yet-appended event produced by an aggregate command.
// The store turns it into an Event by assigning sequence and timestamp.
type EventData struct {
	Type    string
	Payload json.RawMessage
}
