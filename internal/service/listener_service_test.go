package service

import (
	"context"
	"encoding/json"
	"testing"

	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/dto"
	"text-annotation-be/internal/entity"
	"text-annotation-be/internal/pkg/logger"
	"text-annotation-be/internal/repository/contract"
	"text-annotation-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listenerStack struct {
	*testStack
	registers contract.DocRegisterRepository
	listener  IListenerService
}

func newListenerStack(t *testing.T) *listenerStack {
	t.Helper()
	stack := newTestStack(nil)
	registers := memory.NewDocRegisterRepository()
	listener := NewListenerService(nil, stack.events, registers, logger.NewNopLogger())
	return &listenerStack{testStack: stack, registers: registers, listener: listener}
}

func registerAggregate(t *testing.T, ls *listenerStack, projectId, docId uuid.UUID, userId string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	aggregateId, err := ls.events.CreateDocument(ctx)
	require.NoError(t, err)
	require.NoError(t, ls.registers.Create(ctx, &entity.DocRegister{
		AggregateId: aggregateId,
		ProjectId:   projectId,
		DocId:       docId,
		UserId:      userId,
	}))
	return aggregateId
}

func aiUpdatePayload(t *testing.T, projectId, docId uuid.UUID) []byte {
	t.Helper()
	data, err := json.Marshal(dto.AiUpdateMessage{
		ProjectId:  projectId.String(),
		DocumentId: docId.String(),
		RecEntities: map[string]domain.Entity{
			"e1": {SentenceIndex: 0, Start: 0, End: 4, Type: "PER"},
		},
		RecRelations: map[string]domain.Relation{},
	})
	require.NoError(t, err)
	return data
}

func TestHandleAiUpdateSetsRecommendations(t *testing.T) {
	ls := newListenerStack(t)
	ctx := context.Background()

	projectId := createProject(t, ls.testStack, "alpha")
	docId := uuid.New()
	require.NoError(t, ls.events.AddDocument(ctx, projectId, docId))

	bobAgg := registerAggregate(t, ls, projectId, docId, "bob")
	carolAgg := registerAggregate(t, ls, projectId, docId, "carol")

	require.NoError(t, ls.listener.HandleAiUpdate(ctx, aiUpdatePayload(t, projectId, docId)))

	for _, aggId := range []uuid.UUID{bobAgg, carolAgg} {
		doc, err := ls.events.GetDocument(ctx, aggId)
		require.NoError(t, err)
		assert.Len(t, doc.RecEntities, 1)
		assert.Len(t, doc.OrigEntityPreds, 1)
	}
}

func TestHandleAiUpdateSkipsLabelledDocument(t *testing.T) {
	ls := newListenerStack(t)
	ctx := context.Background()

	projectId := createProject(t, ls.testStack, "alpha")
	docId := uuid.New()
	require.NoError(t, ls.events.AddDocument(ctx, projectId, docId))

	bobAgg := registerAggregate(t, ls, projectId, docId, "bob")
	carolAgg := registerAggregate(t, ls, projectId, docId, "carol")

	// Once anyone labelled the doc, no aggregate receives the update,
	// not even the annotators who never labelled it themselves.
	require.NoError(t, ls.events.MarkDocument(ctx, projectId, docId, "carol", domain.NoAiStats()))

	require.NoError(t, ls.listener.HandleAiUpdate(ctx, aiUpdatePayload(t, projectId, docId)))

	for _, aggId := range []uuid.UUID{bobAgg, carolAgg} {
		doc, err := ls.events.GetDocument(ctx, aggId)
		require.NoError(t, err)
		assert.Empty(t, doc.RecEntities)
		assert.Empty(t, doc.OrigEntityPreds)
	}
}

func TestHandleAiUpdateUnknownProjectIsIgnored(t *testing.T) {
	ls := newListenerStack(t)
	err := ls.listener.HandleAiUpdate(context.Background(), aiUpdatePayload(t, uuid.New(), uuid.New()))
	assert.NoError(t, err)
}

func TestHandleDocumentDeleted(t *testing.T) {
	ls := newListenerStack(t)
	ctx := context.Background()

	a := createProject(t, ls.testStack, "alpha")
	b := createProject(t, ls.testStack, "beta")
	docId := uuid.New()
	require.NoError(t, ls.events.AddDocument(ctx, a, docId))
	require.NoError(t, ls.events.AddDocument(ctx, b, docId))
	keep := uuid.New()
	require.NoError(t, ls.events.AddDocument(ctx, b, keep))

	payload, err := json.Marshal(dto.DocumentIdsMessage{DocumentIds: []string{docId.String()}})
	require.NoError(t, err)
	require.NoError(t, ls.listener.HandleDocumentDeleted(ctx, payload))

	projectA, err := ls.events.GetProject(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, projectA.Documents)

	projectB, err := ls.events.GetProject(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{keep}, projectB.Documents)
}

func TestHandleDocumentModified(t *testing.T) {
	ls := newListenerStack(t)
	ctx := context.Background()

	projectId := createProject(t, ls.testStack, "alpha")
	docId := uuid.New()
	require.NoError(t, ls.events.AddDocument(ctx, projectId, docId))

	aggId := registerAggregate(t, ls, projectId, docId, "bob")
	entities := map[string]domain.Entity{"e1": {SentenceIndex: 0, Start: 0, End: 4, Type: "PER"}}
	require.NoError(t, ls.events.UpdateDocument(ctx, aggId, entities, nil, map[string]domain.Relation{}))
	require.NoError(t, ls.events.MarkDocument(ctx, projectId, docId, "bob", domain.NoAiStats()))

	payload, err := json.Marshal(dto.DocumentIdsMessage{DocumentIds: []string{docId.String()}})
	require.NoError(t, err)
	require.NoError(t, ls.listener.HandleDocumentModified(ctx, payload))

	doc, err := ls.events.GetDocument(ctx, aggId)
	require.NoError(t, err)
	assert.Empty(t, doc.Entities)

	project, err := ls.events.GetProject(ctx, projectId)
	require.NoError(t, err)
	assert.False(t, project.Labelled[docId])
	assert.Empty(t, project.LabelledBy[docId])
}

func TestHandleMalformedPayload(t *testing.T) {
	ls := newListenerStack(t)
	ctx := context.Background()

	assert.Error(t, ls.listener.HandleAiUpdate(ctx, []byte("not json")))
	assert.Error(t, ls.listener.HandleDocumentDeleted(ctx, []byte("not json")))
	assert.Error(t, ls.listener.HandleDocumentModified(ctx, []byte("not json")))
}
