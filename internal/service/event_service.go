package service

import (
	"context"
	"encoding/json"

	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/pkg/logger"

	"github.com/google/uuid"
)

type IEventService interface {
	CreateProject(ctx context.Context, name, date, creator string, labelSetId, relationSetId uuid.UUID) (uuid.UUID, error)
	UpdateProject(ctx context.Context, projectId uuid.UUID, name, creator string) error
	DeleteProject(ctx context.Context, projectId uuid.UUID) error
	AddDocument(ctx context.Context, projectId, docId uuid.UUID) error
	RemoveDocument(ctx context.Context, projectId, docId uuid.UUID) error
	MarkDocument(ctx context.Context, projectId, docId uuid.UUID, userId string, stats domain.AiStats) error
	UnmarkDocument(ctx context.Context, projectId, docId uuid.UUID) error
	GetProject(ctx context.Context, projectId uuid.UUID) (*domain.Project, error)
	GetAllProjects(ctx context.Context) ([]*domain.Project, error)

	CreateDocument(ctx context.Context) (uuid.UUID, error)
	UpdateDocument(ctx context.Context, docId uuid.UUID, entities map[string]domain.Entity, sentenceEntities []json.RawMessage, relations map[string]domain.Relation) error
	UpdateDocumentRec(ctx context.Context, docId uuid.UUID, recEntities map[string]domain.Entity, recSentenceEntities []json.RawMessage, recRelations map[string]domain.Relation) error
	SetDocumentRec(ctx context.Context, docId uuid.UUID, recEntities map[string]domain.Entity, recSentenceEntities []json.RawMessage, recRelations map[string]domain.Relation) error
	ResetDocument(ctx context.Context, docId uuid.UUID) error
	GetDocument(ctx context.Context, docId uuid.UUID) (*domain.Document, error)
}

// eventService is the command/query surface the transport layer talks to.
// Every mutating command drives the runner to quiescence before returning,
// so callers observe a projection that already reflects their write.
type eventService struct {
	projects  IProjectService
	documents IDocumentService
	index     IProjectIndexService
	runner    IRunnerService
	log       logger.ILogger
}

func NewEventService(
	projects IProjectService,
	documents IDocumentService,
	index IProjectIndexService,
	runner IRunnerService,
	log logger.ILogger,
) IEventService {
	return &eventService{
		projects:  projects,
		documents: documents,
		index:     index,
		runner:    runner,
		log:       log,
	}
}

func (s *eventService) CreateProject(ctx context.Context, name, date, creator string, labelSetId, relationSetId uuid.UUID) (uuid.UUID, error) {
	projectId, err := s.projects.Create(ctx, name, date, creator, labelSetId, relationSetId)
	if err != nil {
		return uuid.Nil, err
	}
	s.log.Info("EventService", "created project", map[string]interface{}{"project_id": projectId.String()})
	return projectId, s.runner.Sync(ctx)
}

func (s *eventService) UpdateProject(ctx context.Context, projectId uuid.UUID, name, creator string) error {
	s.log.Info("EventService", "updating project", map[string]interface{}{"project_id": projectId.String()})
	if err := s.projects.Update(ctx, projectId, name, creator); err != nil {
		return err
	}
	return s.runner.Sync(ctx)
}

func (s *eventService) DeleteProject(ctx context.Context, projectId uuid.UUID) error {
	s.log.Info("EventService", "deleting project", map[string]interface{}{"project_id": projectId.String()})
	if err := s.projects.Delete(ctx, projectId); err != nil {
		return err
	}
	return s.runner.Sync(ctx)
}

func (s *eventService) AddDocument(ctx context.Context, projectId, docId uuid.UUID) error {
	s.log.Info("EventService", "adding document to project", map[string]interface{}{
		"project_id": projectId.String(),
		"doc_id":     docId.String(),
	})
	if err := s.projects.AddDocument(ctx, projectId, docId); err != nil {
		return err
	}
	return s.runner.Sync(ctx)
}

func (s *eventService) RemoveDocument(ctx context.Context, projectId, docId uuid.UUID) error {
	s.log.Info("EventService", "removing document from project", map[string]interface{}{
		"project_id": projectId.String(),
		"doc_id":     docId.String(),
	})
	if err := s.projects.RemoveDocument(ctx, projectId, docId); err != nil {
		return err
	}
	return s.runner.Sync(ctx)
}

func (s *eventService) MarkDocument(ctx context.Context, projectId, docId uuid.UUID, userId string, stats domain.AiStats) error {
	s.log.Info("EventService", "marking document as labelled", map[string]interface{}{
		"project_id": projectId.String(),
		"doc_id":     docId.String(),
		"user_id":    userId,
	})
	if err := s.projects.MarkDocument(ctx, projectId, docId, userId, stats); err != nil {
		return err
	}
	return s.runner.Sync(ctx)
}

func (s *eventService) UnmarkDocument(ctx context.Context, projectId, docId uuid.UUID) error {
	s.log.Info("EventService", "unmarking document", map[string]interface{}{
		"project_id": projectId.String(),
		"doc_id":     docId.String(),
	})
	if err := s.projects.UnmarkDocument(ctx, projectId, docId); err != nil {
		return err
	}
	return s.runner.Sync(ctx)
}

func (s *eventService) GetProject(ctx context.Context, projectId uuid.UUID) (*domain.Project, error) {
	return s.projects.Get(ctx, projectId)
}

// GetAllProjects resolves the live project ids from the index, then loads
// each project. The index spares replaying every Project stream on every
// listing.
func (s *eventService) GetAllProjects(ctx context.Context) ([]*domain.Project, error) {
	ids, err := s.index.GetAllProjectIds(ctx)
	if err != nil {
		return nil, err
	}
	projects := make([]*domain.Project, 0, len(ids))
	for _, id := range ids {
		project, err := s.projects.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}

func (s *eventService) CreateDocument(ctx context.Context) (uuid.UUID, error) {
	docId, err := s.documents.Create(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	s.log.Info("EventService", "created document", map[string]interface{}{"doc_id": docId.String()})
	return docId, s.runner.Sync(ctx)
}

func (s *eventService) UpdateDocument(ctx context.Context, docId uuid.UUID, entities map[string]domain.Entity, sentenceEntities []json.RawMessage, relations map[string]domain.Relation) error {
	s.log.Info("EventService", "updating document", map[string]interface{}{"doc_id": docId.String()})
	if err := s.documents.Update(ctx, docId, entities, sentenceEntities, relations); err != nil {
		return err
	}
	return s.runner.Sync(ctx)
}

func (s *eventService) UpdateDocumentRec(ctx context.Context, docId uuid.UUID, recEntities map[string]domain.Entity, recSentenceEntities []json.RawMessage, recRelations map[string]domain.Relation) error {
	s.log.Info("EventService", "updating document recommendations", map[string]interface{}{"doc_id": docId.String()})
	if err := s.documents.UpdateRec(ctx, docId, recEntities, recSentenceEntities, recRelations); err != nil {
		return err
	}
	return s.runner.Sync(ctx)
}

func (s *eventService) SetDocumentRec(ctx context.Context, docId uuid.UUID, recEntities map[string]domain.Entity, recSentenceEntities []json.RawMessage, recRelations map[string]domain.Relation) error {
	s.log.Info("EventService", "setting document recommendations", map[string]interface{}{"doc_id": docId.String()})
	if err := s.documents.SetRec(ctx, docId, recEntities, recSentenceEntities, recRelations); err != nil {
		return err
	}
	return s.runner.Sync(ctx)
}

// ResetDocument clears the annotator's labels and the current
// recommendations. The original-prediction baseline survives a reset.
func (s *eventService) ResetDocument(ctx context.Context, docId uuid.UUID) error {
	s.log.Info("EventService", "resetting document", map[string]interface{}{"doc_id": docId.String()})
	err := s.documents.Update(ctx, docId, map[string]domain.Entity{}, []json.RawMessage{}, map[string]domain.Relation{})
	if err != nil {
		return err
	}
	err = s.documents.UpdateRec(ctx, docId, map[string]domain.Entity{}, []json.RawMessage{}, map[string]domain.Relation{})
	if err != nil {
		return err
	}
	return s.runner.Sync(ctx)
}

func (s *eventService) GetDocument(ctx context.Context, docId uuid.UUID) (*domain.Document, error) {
	return s.documents.Get(ctx, docId)
}
