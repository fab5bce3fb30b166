package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Document event types, part of the persisted format.
const (
	EventDocumentCreated    = "Created"
	EventDocumentUpdated    = "UpdatedDocument"
	EventDocumentRecUpdated = "UpdatedDocumentRecommendations"
	EventDocumentRecSet     = "SetDocumentRecommendations"
)

// Entity is one labelled span, keyed by an annotator-assigned id.
type Entity struct {
	SentenceIndex int    `json:"sentenceIndex"`
	Start         int    `json:"start"`
	End           int    `json:"end"`
	Type          string `json:"type"`
}

// Relation links two entity ids with a relation type.
type Relation struct {
	Head string `json:"head"`
	Tail string `json:"tail"`
	Type string `json:"type"`
}

// Document holds one annotator's labels and the AI recommendations for one
// text. Sentence-level entities are stored verbatim: the backend never
// inspects their shape, it only round-trips them between frontend and AI
// service.
//
// OrigEntityPreds/OrigRelationPreds retain the first non-empty
// recommendation snapshot forever; later recommendation updates only touch
// the Rec* fields.
type Document struct {
	Id                  uuid.UUID
	Entities            map[string]Entity
	SentenceEntities    []json.RawMessage
	Relations           map[string]Relation
	RecEntities         map[string]Entity
	RecSentenceEntities []json.RawMessage
	RecRelations        map[string]Relation
	OrigEntityPreds     map[string]Entity
	OrigRelationPreds   map[string]Relation
	Version             int64

	pending []EventData
}

type documentUpdatedPayload struct {
	Entities         map[string]Entity   `json:"entities"`
	SentenceEntities []json.RawMessage   `json:"sentence_entities"`
	Relations        map[string]Relation `json:"relations"`
}

type documentRecPayload struct {
	RecEntities         map[string]Entity   `json:"rec_entities"`
	RecSentenceEntities []json.RawMessage   `json:"rec_sentence_entities"`
	RecRelations        map[string]Relation `json:"rec_relations"`
}

var documentApply = map[string]ApplyFunc[Document]{
	EventDocumentCreated:    applyDocumentCreated,
	EventDocumentUpdated:    applyDocumentUpdated,
	EventDocumentRecUpdated: applyDocumentRecUpdated,
	EventDocumentRecSet:     applyDocumentRecSet,
}

func newDocumentState(id uuid.UUID) *Document {
	return &Document{
		Id:                  id,
		Entities:            make(map[string]Entity),
		SentenceEntities:    make([]json.RawMessage, 0),
		Relations:           make(map[string]Relation),
		RecEntities:         make(map[string]Entity),
		RecSentenceEntities: make([]json.RawMessage, 0),
		RecRelations:        make(map[string]Relation),
		OrigEntityPreds:     make(map[string]Entity),
		OrigRelationPreds:   make(map[string]Relation),
	}
}

// NewDocument creates an empty document aggregate.
func NewDocument(id uuid.UUID) (*Document, error) {
	d := newDocumentState(id)
	if err := d.raise(EventDocumentCreated, struct{}{}); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadDocument replays a document stream from its zero state.
func LoadDocument(id uuid.UUID, events []Event) (*Document, error) {
	if len(events) == 0 {
		return nil, ErrAggregateNotFound
	}
	d := newDocumentState(id)
	version, err := Replay(d, documentApply, events)
	if err != nil {
		return nil, err
	}
	d.Version = version
	return d, nil
}

// Uncommitted returns the events raised since load, in order.
func (d *Document) Uncommitted() []EventData {
	return d.pending
}

func (d *Document) raise(eventType string, payload interface{}) error {
	return raise(d, documentApply, &d.pending, eventType, payload)
}

// Update replaces the annotator's labels.
func (d *Document) Update(entities map[string]Entity, sentenceEntities []json.RawMessage, relations map[string]Relation) error {
	return d.raise(EventDocumentUpdated, documentUpdatedPayload{
		Entities:         entities,
		SentenceEntities: sentenceEntities,
		Relations:        relations,
	})
}

// UpdateRec replaces the current AI recommendations.
func (d *Document) UpdateRec(recEntities map[string]Entity, recSentenceEntities []json.RawMessage, recRelations map[string]Relation) error {
	return d.raise(EventDocumentRecUpdated, documentRecPayload{
		RecEntities:         recEntities,
		RecSentenceEntities: recSentenceEntities,
		RecRelations:        recRelations,
	})
}

// SetRec records the first recommendation snapshot, which doubles as the
// original-prediction baseline. First write wins: once either baseline map
// is non-empty the command is a no-op.
func (d *Document) SetRec(recEntities map[string]Entity, recSentenceEntities []json.RawMessage, recRelations map[string]Relation) error {
	if len(d.OrigEntityPreds) != 0 || len(d.OrigRelationPreds) != 0 {
		return nil
	}
	return d.raise(EventDocumentRecSet, documentRecPayload{
		RecEntities:         recEntities,
		RecSentenceEntities: recSentenceEntities,
		RecRelations:        recRelations,
	})
}

func applyDocumentCreated(_ *Document, _ json.RawMessage) error {
	return nil
}

func applyDocumentUpdated(d *Document, payload json.RawMessage) error {
	var data documentUpdatedPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return err
	}
	d.Entities = data.Entities
	d.SentenceEntities = data.SentenceEntities
	d.Relations = data.Relations
	return nil
}

func applyDocumentRecUpdated(d *Document, payload json.RawMessage) error {
	var data documentRecPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return err
	}
	d.RecEntities = data.RecEntities
	d.RecSentenceEntities = data.RecSentenceEntities
	d.RecRelations = data.RecRelations
	return nil
}

func applyDocumentRecSet(d *Document, payload json.RawMessage) error {
	var data documentRecPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return err
	}
	d.RecEntities = data.RecEntities
	d.RecSentenceEntities = data.RecSentenceEntities
	d.RecRelations = data.RecRelations
	// The baseline must not share storage with the live recommendation
	// maps, or a later in-place edit of Rec* would rewrite history.
	d.OrigEntityPreds = copyEntities(data.RecEntities)
	d.OrigRelationPreds = copyRelations(data.RecRelations)
	return nil
}

func copyEntities(src map[string]Entity) map[string]Entity {
	out := make(map[string]Entity, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func copyRelations(src map[string]Relation) map[string]Relation {
	out := make(map[string]Relation, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
