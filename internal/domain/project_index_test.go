package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitIndex(t *testing.T, x *ProjectIndex) *ProjectIndex {
	t.Helper()
	events := make([]Event, 0, len(x.Uncommitted()))
	for i, ev := range x.Uncommitted() {
		events = append(events, Event{
			StreamID:   x.Id,
			StreamType: StreamTypeProjectIndex,
			Sequence:   x.Version + int64(i) + 1,
			Type:       ev.Type,
			Payload:    ev.Payload,
		})
	}
	loaded, err := LoadProjectIndex(events)
	require.NoError(t, err)
	return loaded
}

func TestProjectIndexIDIsStable(t *testing.T) {
	assert.Equal(t, ProjectIndexID(), ProjectIndexID())
	assert.NotEqual(t, uuid.Nil, ProjectIndexID())
}

func TestProjectIndexAddRemove(t *testing.T) {
	idx, err := NewProjectIndex()
	require.NoError(t, err)

	a, b := uuid.New(), uuid.New()
	require.NoError(t, idx.AddProject(a))
	require.NoError(t, idx.AddProject(b))
	require.NoError(t, idx.RemoveProject(a))

	loaded := commitIndex(t, idx)
	assert.ElementsMatch(t, []uuid.UUID{b}, loaded.ProjectIds())
}

func TestProjectIndexDuplicateAdd(t *testing.T) {
	idx, err := NewProjectIndex()
	require.NoError(t, err)

	a := uuid.New()
	require.NoError(t, idx.AddProject(a))
	require.NoError(t, idx.AddProject(a))

	// Both events are raised; the set state absorbs the duplicate.
	assert.Len(t, idx.Uncommitted(), 3)
	loaded := commitIndex(t, idx)
	assert.ElementsMatch(t, []uuid.UUID{a}, loaded.ProjectIds())
}

func TestProjectIndexRemoveAbsent(t *testing.T) {
	idx, err := NewProjectIndex()
	require.NoError(t, err)

	require.NoError(t, idx.RemoveProject(uuid.New()))
	loaded := commitIndex(t, idx)
	assert.Empty(t, loaded.ProjectIds())
}

func TestLoadProjectIndexEmptyStream(t *testing.T) {
	_, err := LoadProjectIndex(nil)
	assert.ErrorIs(t, err, ErrAggregateNotFound)
}
