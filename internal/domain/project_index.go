package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ProjectIndex event types, part of the persisted format. The Added/Removed
// names carry an Event suffix for historical reasons; existing logs use them.
const (
	EventIndexCreated        = "Created"
	EventIndexProjectAdded   = "ProjectAddedEvent"
	EventIndexProjectRemoved = "ProjectRemovedEvent"
)

const projectIndexName = "/projects"

// ProjectIndexID returns the fixed stream id of the singleton index,
// a UUIDv5 derived from a well-known name so every process agrees on it.
func ProjectIndexID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(projectIndexName))
}

// ProjectIndex is the singleton aggregate tracking which projects are live.
// It is the read-model behind get_all_projects.
type ProjectIndex struct {
	Id       uuid.UUID
	Projects map[uuid.UUID]struct{}
	Version  int64

	pending []EventData
}

type indexProjectPayload struct {
	ProjectId uuid.UUID `json:"project_id"`
}

var projectIndexApply = map[string]ApplyFunc[ProjectIndex]{
	EventIndexCreated:        applyIndexCreated,
	EventIndexProjectAdded:   applyIndexProjectAdded,
	EventIndexProjectRemoved: applyIndexProjectRemoved,
}

func newProjectIndexState() *ProjectIndex {
	return &ProjectIndex{
		Id:       ProjectIndexID(),
		Projects: make(map[uuid.UUID]struct{}),
	}
}

// NewProjectIndex creates the singleton index aggregate. Used lazily the
// first time the process runner needs it.
func NewProjectIndex() (*ProjectIndex, error) {
	idx := newProjectIndexState()
	if err := idx.raise(EventIndexCreated, struct{}{}); err != nil {
		return nil, err
	}
	return idx, nil
}

// LoadProjectIndex replays the index stream from its zero state.
func LoadProjectIndex(events []Event) (*ProjectIndex, error) {
	if len(events) == 0 {
		return nil, ErrAggregateNotFound
	}
	idx := newProjectIndexState()
	version, err := Replay(idx, projectIndexApply, events)
	if err != nil {
		return nil, err
	}
	idx.Version = version
	return idx, nil
}

// Uncommitted returns the events raised since load, in order.
func (x *ProjectIndex) Uncommitted() []EventData {
	return x.pending
}

func (x *ProjectIndex) raise(eventType string, payload interface{}) error {
	return raise(x, projectIndexApply, &x.pending, eventType, payload)
}

// AddProject records a project id. Set semantics absorb duplicates at apply
// time, so the event is raised unconditionally.
func (x *ProjectIndex) AddProject(projectId uuid.UUID) error {
	return x.raise(EventIndexProjectAdded, indexProjectPayload{ProjectId: projectId})
}

// RemoveProject drops a project id; applying against an absent id is a no-op.
func (x *ProjectIndex) RemoveProject(projectId uuid.UUID) error {
	return x.raise(EventIndexProjectRemoved, indexProjectPayload{ProjectId: projectId})
}

// ProjectIds returns the current members in unspecified order.
func (x *ProjectIndex) ProjectIds() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(x.Projects))
	for id := range x.Projects {
		ids = append(ids, id)
	}
	return ids
}

func applyIndexCreated(_ *ProjectIndex, _ json.RawMessage) error {
	return nil
}

func applyIndexProjectAdded(x *ProjectIndex, payload json.RawMessage) error {
	var data indexProjectPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return err
	}
	x.Projects[data.ProjectId] = struct{}{}
	return nil
}

func applyIndexProjectRemoved(x *ProjectIndex, payload json.RawMessage) error {
	var data indexProjectPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return err
	}
	delete(x.Projects, data.ProjectId)
	return nil
}
