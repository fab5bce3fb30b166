package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/dto"
	"text-annotation-be/internal/pkg/logger"
	"text-annotation-be/internal/repository/contract"
	"text-annotation-be/internal/repository/specification"
	"text-annotation-be/pkg/nats"

	"github.com/google/uuid"
)

type IListenerService interface {
	// Start registers the durable subscriptions for every bus subject this
	// backend reacts to.
	Start(ctx context.Context) error
	HandleAiUpdate(ctx context.Context, data []byte) error
	HandleDocumentDeleted(ctx context.Context, data []byte) error
	HandleDocumentModified(ctx context.Context, data []byte) error
}

// listenerService reacts to bus traffic from the surrounding document and AI
// services: fresh predictions, upstream document deletions and modifications.
type listenerService struct {
	subscriber *nats.Subscriber
	events     IEventService
	registers  contract.DocRegisterRepository
	log        logger.ILogger
}

func NewListenerService(
	subscriber *nats.Subscriber,
	events IEventService,
	registers contract.DocRegisterRepository,
	log logger.ILogger,
) IListenerService {
	return &listenerService{
		subscriber: subscriber,
		events:     events,
		registers:  registers,
		log:        log,
	}
}

func (s *listenerService) Start(ctx context.Context) error {
	subscriptions := []struct {
		subject string
		durable string
		handler func(ctx context.Context, data []byte) error
	}{
		{dto.SubjectAiUpdate, "annotation-ai-update", s.HandleAiUpdate},
		{dto.SubjectDocumentDeleted, "annotation-doc-deleted", s.HandleDocumentDeleted},
		{dto.SubjectDocumentModified, "annotation-doc-modified", s.HandleDocumentModified},
	}
	for _, sub := range subscriptions {
		handler := sub.handler
		err := s.subscriber.Subscribe(sub.subject, sub.durable, func(ctx context.Context, _ string, data []byte) error {
			return handler(ctx, data)
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", sub.subject, err)
		}
	}
	return nil
}

// HandleAiUpdate stores fresh predictions on every aggregate registered for
// the (project, doc) pair. Once any annotator labelled the document the
// whole update is dropped so predictions never clobber human work.
func (s *listenerService) HandleAiUpdate(ctx context.Context, data []byte) error {
	var msg dto.AiUpdateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode ai_update: %w", err)
	}
	projectId, err := uuid.Parse(msg.ProjectId)
	if err != nil {
		return fmt.Errorf("ai_update project id: %w", err)
	}
	docId, err := uuid.Parse(msg.DocumentId)
	if err != nil {
		return fmt.Errorf("ai_update document id: %w", err)
	}

	project, err := s.events.GetProject(ctx, projectId)
	if errors.Is(err, domain.ErrAggregateNotFound) {
		s.log.Warn("Listener", "ai_update for unknown project", map[string]interface{}{
			"project_id": msg.ProjectId,
		})
		return nil
	}
	if err != nil {
		return err
	}

	if project.Labelled[docId] {
		s.log.Info("Listener", "ai_update skipped, document already labelled", map[string]interface{}{
			"project_id": msg.ProjectId,
			"doc_id":     msg.DocumentId,
		})
		return nil
	}

	registers, err := s.registers.FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.ByDocID{DocID: docId},
	)
	if err != nil {
		return err
	}

	for _, reg := range registers {
		err := s.events.SetDocumentRec(ctx, reg.AggregateId, msg.RecEntities, msg.RecSentenceEntities, msg.RecRelations)
		if err != nil {
			return err
		}
	}

	s.log.Info("Listener", "applied ai_update", map[string]interface{}{
		"project_id": msg.ProjectId,
		"doc_id":     msg.DocumentId,
		"aggregates": len(registers),
	})
	return nil
}

// HandleDocumentDeleted removes the named documents from every project that
// still contains them.
func (s *listenerService) HandleDocumentDeleted(ctx context.Context, data []byte) error {
	var msg dto.DocumentIdsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode document_deleted: %w", err)
	}
	projects, err := s.events.GetAllProjects(ctx)
	if err != nil {
		return err
	}
	for _, raw := range msg.DocumentIds {
		docId, err := uuid.Parse(raw)
		if err != nil {
			s.log.Warn("Listener", "document_deleted with invalid id", map[string]interface{}{"doc_id": raw})
			continue
		}
		for _, project := range projects {
			if _, ok := project.Labelled[docId]; !ok {
				continue
			}
			if err := s.events.RemoveDocument(ctx, project.Id, docId); err != nil {
				return err
			}
		}
	}
	return nil
}

// HandleDocumentModified resets every aggregate registered for the named
// documents and clears their labelled state. An edited text invalidates both
// the annotations and the predictions made against the old text.
func (s *listenerService) HandleDocumentModified(ctx context.Context, data []byte) error {
	var msg dto.DocumentIdsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode document_modified: %w", err)
	}
	for _, raw := range msg.DocumentIds {
		docId, err := uuid.Parse(raw)
		if err != nil {
			s.log.Warn("Listener", "document_modified with invalid id", map[string]interface{}{"doc_id": raw})
			continue
		}
		registers, err := s.registers.FindAll(ctx, specification.ByDocID{DocID: docId})
		if err != nil {
			return err
		}
		unmarked := make(map[uuid.UUID]struct{})
		for _, reg := range registers {
			if err := s.events.ResetDocument(ctx, reg.AggregateId); err != nil {
				return err
			}
			if _, done := unmarked[reg.ProjectId]; done {
				continue
			}
			if err := s.events.UnmarkDocument(ctx, reg.ProjectId, docId); err != nil {
				return err
			}
			unmarked[reg.ProjectId] = struct{}{}
		}
	}
	return nil
}
