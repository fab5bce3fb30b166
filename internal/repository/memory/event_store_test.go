package memory

import (
	"context"
	"encoding/json"
	"testing"

	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func events(types ...string) []domain.EventData {
	out := make([]domain.EventData, 0, len(types))
	for _, tp := range types {
		out = append(out, domain.EventData{Type: tp, Payload: json.RawMessage(`{}`)})
	}
	return out
}

func TestAppendAssignsSequences(t *testing.T) {
	store := NewEventStore(nil)
	ctx := context.Background()
	streamId := uuid.New()

	version, err := store.Append(ctx, streamId, domain.StreamTypeProject, 0, events("Created", "DocumentAdded"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	version, err = store.Append(ctx, streamId, domain.StreamTypeProject, 2, events("DocumentMarked"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	stored, err := store.Read(ctx, streamId)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, ev := range stored {
		assert.Equal(t, int64(i+1), ev.Sequence)
		assert.Equal(t, streamId, ev.StreamID)
		assert.Equal(t, domain.StreamTypeProject, ev.StreamType)
	}
}

func TestAppendStaleVersionConflicts(t *testing.T) {
	store := NewEventStore(nil)
	ctx := context.Background()
	streamId := uuid.New()

	_, err := store.Append(ctx, streamId, domain.StreamTypeProject, 0, events("Created"))
	require.NoError(t, err)

	// Writer raced past: it still believes version 0
	_, err = store.Append(ctx, streamId, domain.StreamTypeProject, 0, events("Updated"))
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	// The losing append left no trace
	stored, err := store.Read(ctx, streamId)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Created", stored[0].Type)
}

func TestAppendGapVersionConflicts(t *testing.T) {
	store := NewEventStore(nil)
	ctx := context.Background()

	_, err := store.Append(ctx, uuid.New(), domain.StreamTypeProject, 5, events("Created"))
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

func TestReadUnknownStreamIsEmpty(t *testing.T) {
	store := NewEventStore(nil)

	stored, err := store.Read(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestReadAllOrdersByPosition(t *testing.T) {
	store := NewEventStore(nil)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	_, err := store.Append(ctx, a, domain.StreamTypeProject, 0, events("Created"))
	require.NoError(t, err)
	_, err = store.Append(ctx, b, domain.StreamTypeProject, 0, events("Created"))
	require.NoError(t, err)
	_, err = store.Append(ctx, a, domain.StreamTypeProject, 1, events("DocumentAdded"))
	require.NoError(t, err)
	// A different stream type never shows up in the Project feed
	_, err = store.Append(ctx, uuid.New(), domain.StreamTypeDocument, 0, events("Created"))
	require.NoError(t, err)

	all, err := store.ReadAll(ctx, domain.StreamTypeProject, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].Position, all[i-1].Position)
	}
	assert.Equal(t, []uuid.UUID{a, b, a}, []uuid.UUID{all[0].StreamID, all[1].StreamID, all[2].StreamID})

	// afterPosition resumes mid-feed
	tail, err := store.ReadAll(ctx, domain.StreamTypeProject, all[1].Position, 100)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, all[2].Position, tail[0].Position)

	// limit bounds one pull
	first, err := store.ReadAll(ctx, domain.StreamTypeProject, 0, 2)
	require.NoError(t, err)
	assert.Len(t, first, 2)
}

func TestTrackingDefaultsToZero(t *testing.T) {
	store := NewEventStore(nil)

	position, err := store.Tracking(context.Background(), "project-index", domain.StreamTypeProject)
	require.NoError(t, err)
	assert.Equal(t, int64(0), position)
}

func TestSaveTracking(t *testing.T) {
	store := NewEventStore(nil)
	ctx := context.Background()

	cursor := contract.TrackingRecord{Pipeline: "project-index", StreamType: domain.StreamTypeProject, Position: 7}
	require.NoError(t, store.SaveTracking(ctx, cursor))

	position, err := store.Tracking(ctx, "project-index", domain.StreamTypeProject)
	require.NoError(t, err)
	assert.Equal(t, int64(7), position)

	// Cursors are per (pipeline, stream type)
	other, err := store.Tracking(ctx, "other", domain.StreamTypeProject)
	require.NoError(t, err)
	assert.Equal(t, int64(0), other)
}

func TestAppendTrackedCommitsBothOrNeither(t *testing.T) {
	store := NewEventStore(nil)
	ctx := context.Background()
	streamId := uuid.New()
	cursor := contract.TrackingRecord{Pipeline: "project-index", StreamType: domain.StreamTypeProject, Position: 3}

	version, err := store.AppendTracked(ctx, streamId, domain.StreamTypeProjectIndex, 0, events("Created"), cursor)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	position, err := store.Tracking(ctx, "project-index", domain.StreamTypeProject)
	require.NoError(t, err)
	assert.Equal(t, int64(3), position)

	// A conflicting append advances nothing
	conflicting := contract.TrackingRecord{Pipeline: "project-index", StreamType: domain.StreamTypeProject, Position: 9}
	_, err = store.AppendTracked(ctx, streamId, domain.StreamTypeProjectIndex, 0, events("ProjectAddedEvent"), conflicting)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	position, err = store.Tracking(ctx, "project-index", domain.StreamTypeProject)
	require.NoError(t, err)
	assert.Equal(t, int64(3), position)

	stored, err := store.Read(ctx, streamId)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
