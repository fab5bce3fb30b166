package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProject(t *testing.T) *Project {
	t.Helper()
	p, err := NewProject(uuid.New(), "corpus", "2026-09-01", "alice", uuid.New(), uuid.New())
	require.NoError(t, err)
	return p
}

// commit simulates a successful append: replays the pending events onto a
// fresh aggregate the way a load would.
func commitProject(t *testing.T, p *Project) *Project {
	t.Helper()
	events := make([]Event, 0, len(p.Uncommitted()))
	for i, ev := range p.Uncommitted() {
		events = append(events, Event{
			StreamID:   p.Id,
			StreamType: StreamTypeProject,
			Sequence:   p.Version + int64(i) + 1,
			Type:       ev.Type,
			Payload:    ev.Payload,
		})
	}
	loaded, err := LoadProject(p.Id, events)
	require.NoError(t, err)
	return loaded
}

func TestNewProjectRaisesCreated(t *testing.T) {
	p := newTestProject(t)

	require.Len(t, p.Uncommitted(), 1)
	assert.Equal(t, EventProjectCreated, p.Uncommitted()[0].Type)
	assert.Equal(t, "corpus", p.Name)
	assert.Equal(t, "alice", p.Creator)
	assert.False(t, p.Deleted)
}

func TestNewProjectRejectsNilSetIds(t *testing.T) {
	_, err := NewProject(uuid.New(), "corpus", "2026-09-01", "alice", uuid.Nil, uuid.New())
	assert.True(t, IsValidation(err))

	_, err = NewProject(uuid.New(), "corpus", "2026-09-01", "alice", uuid.New(), uuid.Nil)
	assert.True(t, IsValidation(err))
}

func TestLoadProjectEmptyStream(t *testing.T) {
	_, err := LoadProject(uuid.New(), nil)
	assert.ErrorIs(t, err, ErrAggregateNotFound)
}

func TestReplayMatchesLiveState(t *testing.T) {
	p := newTestProject(t)
	docId := uuid.New()
	require.NoError(t, p.AddDocument(docId))
	require.NoError(t, p.MarkDocument(docId, "bob", AiStats{NerF1: 0.9, RelF1: 0.8}))

	loaded := commitProject(t, p)

	assert.Equal(t, p.Documents, loaded.Documents)
	assert.Equal(t, p.Labelled, loaded.Labelled)
	assert.Equal(t, p.LabelledBy, loaded.LabelledBy)
	assert.Equal(t, p.AiStats, loaded.AiStats)
	assert.Equal(t, int64(3), loaded.Version)
}

func TestAddDocumentIdempotent(t *testing.T) {
	p := newTestProject(t)
	docId := uuid.New()

	require.NoError(t, p.AddDocument(docId))
	before := len(p.Uncommitted())
	require.NoError(t, p.AddDocument(docId))

	assert.Len(t, p.Uncommitted(), before)
	assert.Equal(t, []uuid.UUID{docId}, p.Documents)
	assert.False(t, p.Labelled[docId])
	assert.Equal(t, NoAiStats(), p.AiStats[docId])
}

func TestRemoveDocumentUnknown(t *testing.T) {
	p := newTestProject(t)
	err := p.RemoveDocument(uuid.New())
	assert.ErrorIs(t, err, ErrDocumentNotInProject)
}

func TestRemoveDocumentClearsBookkeeping(t *testing.T) {
	p := newTestProject(t)
	docId := uuid.New()
	require.NoError(t, p.AddDocument(docId))
	require.NoError(t, p.MarkDocument(docId, "bob", NoAiStats()))
	require.NoError(t, p.RemoveDocument(docId))

	assert.Empty(t, p.Documents)
	_, ok := p.Labelled[docId]
	assert.False(t, ok)
	_, ok = p.LabelledBy[docId]
	assert.False(t, ok)
	_, ok = p.AiStats[docId]
	assert.False(t, ok)
}

func TestMarkDocument(t *testing.T) {
	p := newTestProject(t)
	docId := uuid.New()
	require.NoError(t, p.AddDocument(docId))

	stats := AiStats{NerF1: 0.75, RelF1: 0.5}
	require.NoError(t, p.MarkDocument(docId, "bob", stats))

	assert.True(t, p.Labelled[docId])
	assert.Equal(t, []string{"bob"}, p.LabelledBy[docId])
	assert.Equal(t, stats, p.AiStats[docId])

	// Re-marking by the same user appends nothing
	before := len(p.Uncommitted())
	require.NoError(t, p.MarkDocument(docId, "bob", stats))
	assert.Len(t, p.Uncommitted(), before)
	assert.Equal(t, []string{"bob"}, p.LabelledBy[docId])

	// A second annotator is recorded alongside
	require.NoError(t, p.MarkDocument(docId, "carol", stats))
	assert.Equal(t, []string{"bob", "carol"}, p.LabelledBy[docId])
}

func TestMarkDocumentUnknown(t *testing.T) {
	p := newTestProject(t)
	err := p.MarkDocument(uuid.New(), "bob", NoAiStats())
	assert.ErrorIs(t, err, ErrDocumentNotInProject)
}

func TestUnmarkDocument(t *testing.T) {
	p := newTestProject(t)
	docId := uuid.New()
	require.NoError(t, p.AddDocument(docId))
	require.NoError(t, p.MarkDocument(docId, "bob", AiStats{NerF1: 0.9, RelF1: 0.9}))

	require.NoError(t, p.UnmarkDocument(docId))

	assert.False(t, p.Labelled[docId])
	assert.Empty(t, p.LabelledBy[docId])
	assert.Equal(t, NoAiStats(), p.AiStats[docId])

	// Unknown doc is a silent no-op
	before := len(p.Uncommitted())
	require.NoError(t, p.UnmarkDocument(uuid.New()))
	assert.Len(t, p.Uncommitted(), before)
}

func TestDeletedProjectRejectsMutations(t *testing.T) {
	p := newTestProject(t)
	docId := uuid.New()
	require.NoError(t, p.AddDocument(docId))
	require.NoError(t, p.Delete())
	require.True(t, p.Deleted)

	assert.ErrorIs(t, p.UpdateMetadata("x", "y"), ErrProjectDeleted)
	assert.ErrorIs(t, p.AddDocument(uuid.New()), ErrProjectDeleted)
	assert.ErrorIs(t, p.RemoveDocument(docId), ErrProjectDeleted)
	assert.ErrorIs(t, p.MarkDocument(docId, "bob", NoAiStats()), ErrProjectDeleted)
	assert.ErrorIs(t, p.UnmarkDocument(docId), ErrProjectDeleted)
}

func TestDeleteReEmits(t *testing.T) {
	p := newTestProject(t)
	require.NoError(t, p.Delete())
	require.NoError(t, p.Delete())

	deletes := 0
	for _, ev := range p.Uncommitted() {
		if ev.Type == EventProjectDeleted {
			deletes++
		}
	}
	assert.Equal(t, 2, deletes)
	assert.True(t, p.Deleted)
}

func TestUpdateMetadata(t *testing.T) {
	p := newTestProject(t)
	require.NoError(t, p.UpdateMetadata("renamed", "bob"))

	loaded := commitProject(t, p)
	assert.Equal(t, "renamed", loaded.Name)
	assert.Equal(t, "bob", loaded.Creator)
	// Date is fixed at creation
	assert.Equal(t, "2026-09-01", loaded.Date)
}
