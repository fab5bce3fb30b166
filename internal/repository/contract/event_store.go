package contract

import (
	"context"

	"text-annotation-be/internal/domain"

	"github.com/google/uuid"
)

// PositionedEvent pairs a stored event with its global position within the
// stream type. Positions are strictly monotonic and total-order the events
// of one stream type across all streams; the process runner uses them as
// tracking cursors.
type PositionedEvent struct {
	domain.Event
	Position int64
}

// TrackingRecord is the durable cursor of one pipeline over one upstream
// stream type.
type TrackingRecord struct {
	Pipeline   string
	StreamType string
	Position   int64
}

// EventStore is the append-only, optimistic-concurrency event log every
// backing store must satisfy. Append fails with
// domain.ErrConcurrencyConflict when expectedVersion does not match the
// stream's current highest sequence number; on success the new events get
// sequence numbers expectedVersion+1..expectedVersion+len(events),
// atomically, and the returned new version equals
// expectedVersion+len(events).
type EventStore interface {
	Append(ctx context.Context, streamID uuid.UUID, streamType string, expectedVersion int64, events []domain.EventData) (int64, error)

	// Read returns all events of one stream in ascending sequence order.
	// An unknown stream yields an empty slice, not an error.
	Read(ctx context.Context, streamID uuid.UUID) ([]domain.Event, error)

	// ReadAll returns up to limit events of the stream type with a global
	// position greater than afterPosition, in ascending position order.
	ReadAll(ctx context.Context, streamType string, afterPosition int64, limit int) ([]PositionedEvent, error)

	// Tracking returns the last recorded cursor for a pipeline over a
	// stream type, zero when the pipeline has never progressed.
	Tracking(ctx context.Context, pipeline, streamType string) (int64, error)

	// AppendTracked performs Append and persists the cursor as one atomic
	// unit, so a crash can never separate a projection write from its
	// tracking advance.
	AppendTracked(ctx context.Context, streamID uuid.UUID, streamType string, expectedVersion int64, events []domain.EventData, cursor TrackingRecord) (int64, error)

	// SaveTracking advances a cursor without appending, used for upstream
	// events the projection policy ignores.
	SaveTracking(ctx context.Context, cursor TrackingRecord) error
}
