package service

import (
	"context"
	"errors"
	"fmt"

	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/repository/contract"

	"github.com/google/uuid"
)

type IProjectIndexService interface {
	ProcessHandler
	GetAllProjectIds(ctx context.Context) ([]uuid.UUID, error)
}

// projectIndexService keeps the singleton project index consistent with the
// Project stream. Its policy turns Created into an index add and Deleted
// into an index remove; every other Project event only advances the cursor.
type projectIndexService struct {
	store contract.EventStore
}

func NewProjectIndexService(store contract.EventStore) IProjectIndexService {
	return &projectIndexService{store: store}
}

// Handle applies the projection policy to one upstream event. The index
// append and the cursor advance commit as one atomic unit, so reprocessing
// after a crash can never double-apply an event.
func (s *projectIndexService) Handle(ctx context.Context, ev contract.PositionedEvent, cursor contract.TrackingRecord) error {
	switch ev.Type {
	case domain.EventProjectCreated, domain.EventProjectDeleted:
	default:
		return s.store.SaveTracking(ctx, cursor)
	}

	index, err := s.load(ctx)
	if errors.Is(err, domain.ErrAggregateNotFound) {
		// First projected event: create the singleton lazily.
		index, err = domain.NewProjectIndex()
	}
	if err != nil {
		return err
	}

	switch ev.Type {
	case domain.EventProjectCreated:
		err = index.AddProject(ev.StreamID)
	case domain.EventProjectDeleted:
		err = index.RemoveProject(ev.StreamID)
	}
	if err != nil {
		return err
	}

	_, err = s.store.AppendTracked(ctx, index.Id, domain.StreamTypeProjectIndex, index.Version, index.Uncommitted(), cursor)
	if err != nil {
		return fmt.Errorf("project index append: %w", err)
	}
	return nil
}

// GetAllProjectIds returns the live project ids. An index that has never
// been created reads as empty, not as an error.
func (s *projectIndexService) GetAllProjectIds(ctx context.Context) ([]uuid.UUID, error) {
	index, err := s.load(ctx)
	if errors.Is(err, domain.ErrAggregateNotFound) {
		return []uuid.UUID{}, nil
	}
	if err != nil {
		return nil, err
	}
	return index.ProjectIds(), nil
}

func (s *projectIndexService) load(ctx context.Context) (*domain.ProjectIndex, error) {
	events, err := s.store.Read(ctx, domain.ProjectIndexID())
	if err != nil {
		return nil, err
	}
	return domain.LoadProjectIndex(events)
}
