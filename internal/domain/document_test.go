package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument(t *testing.T) *Document {
	t.Helper()
	d, err := NewDocument(uuid.New())
	require.NoError(t, err)
	return d
}

func commitDocument(t *testing.T, d *Document) *Document {
	t.Helper()
	events := make([]Event, 0, len(d.Uncommitted()))
	for i, ev := range d.Uncommitted() {
		events = append(events, Event{
			StreamID:   d.Id,
			StreamType: StreamTypeDocument,
			Sequence:   d.Version + int64(i) + 1,
			Type:       ev.Type,
			Payload:    ev.Payload,
		})
	}
	loaded, err := LoadDocument(d.Id, events)
	require.NoError(t, err)
	return loaded
}

func sampleLabels() (map[string]Entity, []json.RawMessage, map[string]Relation) {
	entities := map[string]Entity{
		"e1": {SentenceIndex: 0, Start: 0, End: 5, Type: "PER"},
		"e2": {SentenceIndex: 1, Start: 3, End: 9, Type: "ORG"},
	}
	sentences := []json.RawMessage{json.RawMessage(`{"idx":0,"spans":[[0,5]]}`)}
	relations := map[string]Relation{
		"r1": {Head: "e1", Tail: "e2", Type: "works_for"},
	}
	return entities, sentences, relations
}

func TestNewDocumentStartsEmpty(t *testing.T) {
	d := newTestDocument(t)

	require.Len(t, d.Uncommitted(), 1)
	assert.Equal(t, EventDocumentCreated, d.Uncommitted()[0].Type)
	assert.Empty(t, d.Entities)
	assert.Empty(t, d.Relations)
	assert.Empty(t, d.RecEntities)
	assert.Empty(t, d.OrigEntityPreds)
}

func TestUpdateReplacesLabels(t *testing.T) {
	d := newTestDocument(t)
	entities, sentences, relations := sampleLabels()

	require.NoError(t, d.Update(entities, sentences, relations))

	loaded := commitDocument(t, d)
	assert.Equal(t, entities, loaded.Entities)
	assert.Equal(t, sentences, loaded.SentenceEntities)
	assert.Equal(t, relations, loaded.Relations)

	// A later update fully replaces, never merges
	require.NoError(t, loaded.Update(map[string]Entity{}, nil, map[string]Relation{}))
	reloaded := commitDocument(t, loaded)
	assert.Empty(t, reloaded.Entities)
	assert.Empty(t, reloaded.Relations)
}

func TestUpdateRecLeavesBaselineAlone(t *testing.T) {
	d := newTestDocument(t)
	entities, sentences, relations := sampleLabels()

	require.NoError(t, d.SetRec(entities, sentences, relations))
	require.NoError(t, d.UpdateRec(map[string]Entity{}, nil, map[string]Relation{}))

	loaded := commitDocument(t, d)
	assert.Empty(t, loaded.RecEntities)
	assert.Equal(t, entities, loaded.OrigEntityPreds)
	assert.Equal(t, relations, loaded.OrigRelationPreds)
}

func TestSetRecFirstWriteWins(t *testing.T) {
	d := newTestDocument(t)
	entities, sentences, relations := sampleLabels()

	require.NoError(t, d.SetRec(entities, sentences, relations))
	loaded := commitDocument(t, d)
	assert.Equal(t, entities, loaded.RecEntities)
	assert.Equal(t, entities, loaded.OrigEntityPreds)

	// Second snapshot is ignored entirely
	other := map[string]Entity{"x": {SentenceIndex: 2, Start: 1, End: 2, Type: "LOC"}}
	require.NoError(t, loaded.SetRec(other, nil, nil))
	assert.Empty(t, loaded.Uncommitted())
	assert.Equal(t, entities, loaded.OrigEntityPreds)
}

func TestBaselineDoesNotShareStorageWithRec(t *testing.T) {
	d := newTestDocument(t)
	entities, sentences, relations := sampleLabels()

	require.NoError(t, d.SetRec(entities, sentences, relations))
	loaded := commitDocument(t, d)

	// An in-place edit of the live recommendation maps must leave the
	// original-prediction baseline untouched.
	loaded.RecEntities["e1"] = Entity{SentenceIndex: 9, Start: 9, End: 9, Type: "LOC"}
	delete(loaded.RecRelations, "r1")

	assert.Equal(t, entities["e1"], loaded.OrigEntityPreds["e1"])
	assert.Equal(t, relations["r1"], loaded.OrigRelationPreds["r1"])
}

func TestSetRecEmptySnapshotDoesNotLock(t *testing.T) {
	d := newTestDocument(t)

	// An empty snapshot leaves the baseline empty, so a later real snapshot
	// still lands.
	require.NoError(t, d.SetRec(map[string]Entity{}, nil, map[string]Relation{}))
	loaded := commitDocument(t, d)

	entities, sentences, relations := sampleLabels()
	require.NoError(t, loaded.SetRec(entities, sentences, relations))
	reloaded := commitDocument(t, loaded)
	assert.Equal(t, entities, reloaded.OrigEntityPreds)
	assert.Equal(t, relations, reloaded.OrigRelationPreds)
}

func TestLoadDocumentEmptyStream(t *testing.T) {
	_, err := LoadDocument(uuid.New(), nil)
	assert.ErrorIs(t, err, ErrAggregateNotFound)
}

func TestReplayUnknownEventType(t *testing.T) {
	id := uuid.New()
	events := []Event{
		{StreamID: id, StreamType: StreamTypeDocument, Sequence: 1, Type: EventDocumentCreated, Payload: json.RawMessage(`{}`)},
		{StreamID: id, StreamType: StreamTypeDocument, Sequence: 2, Type: "Bogus", Payload: json.RawMessage(`{}`)},
	}
	_, err := LoadDocument(id, events)
	assert.Error(t, err)
}
