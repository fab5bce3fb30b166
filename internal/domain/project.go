package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Project event types. The names follow the upstream event catalogue and are
// part of the persisted format; do not rename.
const (
	EventProjectCreated   = "Created"
	EventProjectUpdated   = "Updated"
	EventProjectDeleted   = "Deleted"
	EventDocumentAdded    = "DocumentAdded"
	EventDocumentRemoved  = "DocumentRemoved"
	EventDocumentMarked   = "DocumentMarked"
	EventDocumentUnmarked = "DocumentUnmarked"
)

// AiStats carries the per-document model quality scores an external
// collaborator computes. {-1, -1} means "no prediction yet".
type AiStats struct {
	NerF1 float64 `json:"ner_f1"`
	RelF1 float64 `json:"rel_f1"`
}

// NoAiStats is the sentinel used until a prediction arrives.
func NoAiStats() AiStats {
	return AiStats{NerF1: -1, RelF1: -1}
}

// Project is the annotation-project aggregate. State is derived purely by
// replaying its event stream; the labelled/labelledBy/aiStats maps are keyed
// by exactly the current document set.
type Project struct {
	Id            uuid.UUID
	Name          string
	Date          string
	Creator       string
	LabelSetId    uuid.UUID
	RelationSetId uuid.UUID
	Documents     []uuid.UUID
	Labelled      map[uuid.UUID]bool
	LabelledBy    map[uuid.UUID][]string
	AiStats       map[uuid.UUID]AiStats
	Deleted       bool
	Version       int64

	pending []EventData
}

type projectCreatedPayload struct {
	Name          string    `json:"name"`
	Date          string    `json:"date"`
	Creator       string    `json:"creator"`
	LabelSetId    uuid.UUID `json:"label_set_id"`
	RelationSetId uuid.UUID `json:"relation_set_id"`
}

type projectUpdatedPayload struct {
	Name    string `json:"name"`
	Creator string `json:"creator"`
}

type projectDocPayload struct {
	DocId uuid.UUID `json:"doc_id"`
}

type documentMarkedPayload struct {
	DocId   uuid.UUID `json:"doc_id"`
	UserId  string    `json:"user_id"`
	AiStats AiStats   `json:"ai_stats"`
}

var projectApply = map[string]ApplyFunc[Project]{
	EventProjectCreated:   applyProjectCreated,
	EventProjectUpdated:   applyProjectUpdated,
	EventProjectDeleted:   applyProjectDeleted,
	EventDocumentAdded:    applyDocumentAdded,
	EventDocumentRemoved:  applyDocumentRemoved,
	EventDocumentMarked:   applyDocumentMarked,
	EventDocumentUnmarked: applyDocumentUnmarked,
}

func newProjectState(id uuid.UUID) *Project {
	return &Project{
		Id:         id,
		Documents:  make([]uuid.UUID, 0),
		Labelled:   make(map[uuid.UUID]bool),
		LabelledBy: make(map[uuid.UUID][]string),
		AiStats:    make(map[uuid.UUID]AiStats),
	}
}

// NewProject creates a project aggregate by raising its Created event.
func NewProject(id uuid.UUID, name, date, creator string, labelSetId, relationSetId uuid.UUID) (*Project, error) {
	if labelSetId == uuid.Nil {
		return nil, NewValidationError("label set id must be a valid uuid")
	}
	if relationSetId == uuid.Nil {
		return nil, NewValidationError("relation set id must be a valid uuid")
	}
	p := newProjectState(id)
	err := p.raise(EventProjectCreated, projectCreatedPayload{
		Name:          name,
		Date:          date,
		Creator:       creator,
		LabelSetId:    labelSetId,
		RelationSetId: relationSetId,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// LoadProject replays a project stream from its zero state.
func LoadProject(id uuid.UUID, events []Event) (*Project, error) {
	if len(events) == 0 {
		return nil, ErrAggregateNotFound
	}
	p := newProjectState(id)
	version, err := Replay(p, projectApply, events)
	if err != nil {
		return nil, err
	}
	p.Version = version
	return p, nil
}

// Uncommitted returns the events raised since load, in order.
func (p *Project) Uncommitted() []EventData {
	return p.pending
}

func (p *Project) raise(eventType string, payload interface{}) error {
	return raise(p, projectApply, &p.pending, eventType, payload)
}

// UpdateMetadata changes name and creator.
func (p *Project) UpdateMetadata(name, creator string) error {
	if p.Deleted {
		return ErrProjectDeleted
	}
	return p.raise(EventProjectUpdated, projectUpdatedPayload{Name: name, Creator: creator})
}

// Delete marks the project deleted. Deliberately not idempotent at the event
// level: re-deleting emits another Deleted event, matching the historical
// behaviour other consumers replay against. The apply handler is idempotent,
// so state stays correct.
func (p *Project) Delete() error {
	return p.raise(EventProjectDeleted, struct{}{})
}

// AddDocument registers a document id. No-op when already present.
func (p *Project) AddDocument(docId uuid.UUID) error {
	if p.Deleted {
		return ErrProjectDeleted
	}
	if p.hasDocument(docId) {
		return nil
	}
	return p.raise(EventDocumentAdded, projectDocPayload{DocId: docId})
}

// RemoveDocument drops a document id and its labelling bookkeeping.
func (p *Project) RemoveDocument(docId uuid.UUID) error {
	if p.Deleted {
		return ErrProjectDeleted
	}
	if !p.hasDocument(docId) {
		return ErrDocumentNotInProject
	}
	return p.raise(EventDocumentRemoved, projectDocPayload{DocId: docId})
}

// MarkDocument records that userId labelled the document. Emits only when
// the user is not already recorded, which keeps retried deliveries from
// growing labelledBy.
func (p *Project) MarkDocument(docId uuid.UUID, userId string, stats AiStats) error {
	if p.Deleted {
		return ErrProjectDeleted
	}
	users, ok := p.LabelledBy[docId]
	if !ok {
		return ErrDocumentNotInProject
	}
	for _, u := range users {
		if u == userId {
			return nil
		}
	}
	return p.raise(EventDocumentMarked, documentMarkedPayload{DocId: docId, UserId: userId, AiStats: stats})
}

// UnmarkDocument clears the labelled state of a document. No-op for unknown
// document ids.
func (p *Project) UnmarkDocument(docId uuid.UUID) error {
	if p.Deleted {
		return ErrProjectDeleted
	}
	if _, ok := p.Labelled[docId]; !ok {
		return nil
	}
	return p.raise(EventDocumentUnmarked, projectDocPayload{DocId: docId})
}

func (p *Project) hasDocument(docId uuid.UUID) bool {
	for _, d := range p.Documents {
		if d == docId {
			return true
		}
	}
	return false
}

func applyProjectCreated(p *Project, payload json.RawMessage) error {
	var data projectCreatedPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return err
	}
	p.Name = data.Name
	p.Date = data.Date
	p.Creator = data.Creator
	p.LabelSetId = data.LabelSetId
	p.RelationSetId = data.RelationSetId
	return nil
}

func applyProjectUpdated(p *Project, payload json.RawMessage) error {
	var data projectUpdatedPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return err
	}
	p.Name = data.Name
	p.Creator = data.Creator
	return nil
}

func applyProjectDeleted(p *Project, _ json.RawMessage) error {
	p.Deleted = true
	return nil
}

func applyDocumentAdded(p *Project, payload json.RawMessage) error {
	var data projectDocPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return err
	}
	p.Documents = append(p.Documents, data.DocId)
	p.Labelled[data.DocId] = false
	p.LabelledBy[data.DocId] = []string{}
	p.AiStats[data.DocId] = NoAiStats()
	return nil
}

func applyDocumentRemoved(p *Project, payload json.RawMessage) error {
	var data projectDocPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return err
	}
	for i, d := range p.Documents {
		if d == data.DocId {
			p.Documents = append(p.Documents[:i], p.Documents[i+1:]...)
			break
		}
	}
	delete(p.Labelled, data.DocId)
	delete(p.LabelledBy, data.DocId)
	delete(p.AiStats, data.DocId)
	return nil
}

func applyDocumentMarked(p *Project, payload json.RawMessage) error {
	var data documentMarkedPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return err
	}
	p.Labelled[data.DocId] = true
	for _, u := range p.LabelledBy[data.DocId] {
		if u == data.UserId {
			return nil
		}
	}
	p.LabelledBy[data.DocId] = append(p.LabelledBy[data.DocId], data.UserId)
	p.AiStats[data.DocId] = data.AiStats
	return nil
}

func applyDocumentUnmarked(p *Project, payload json.RawMessage) error {
	var data projectDocPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return err
	}
	p.Labelled[data.DocId] = false
	p.LabelledBy[data.DocId] = []string{}
	p.AiStats[data.DocId] = NoAiStats()
	return nil
}
