package service

import (
	"context"
	"time"

	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/repository/contract"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

type IProjectService interface {
	Create(ctx context.Context, name, date, creator string, labelSetId, relationSetId uuid.UUID) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, name, creator string) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddDocument(ctx context.Context, id, docId uuid.UUID) error
	RemoveDocument(ctx context.Context, id, docId uuid.UUID) error
	MarkDocument(ctx context.Context, id, docId uuid.UUID, userId string, stats domain.AiStats) error
	UnmarkDocument(ctx context.Context, id, docId uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Project, error)
}

// projectService is the command facade over the Project stream: load by
// replay, run the guarded mutation, append with the version seen at load.
// Conflicts surface to the caller; retry policy belongs there.
type projectService struct {
	store contract.EventStore
	cache *gocache.Cache
}

func NewProjectService(store contract.EventStore) IProjectService {
	return &projectService{
		store: store,
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *projectService) Create(ctx context.Context, name, date, creator string, labelSetId, relationSetId uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()
	project, err := domain.NewProject(id, name, date, creator, labelSetId, relationSetId)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := s.store.Append(ctx, id, domain.StreamTypeProject, 0, project.Uncommitted()); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *projectService) Update(ctx context.Context, id uuid.UUID, name, creator string) error {
	return s.mutate(ctx, id, func(p *domain.Project) error {
		return p.UpdateMetadata(name, creator)
	})
}

func (s *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, id, func(p *domain.Project) error {
		return p.Delete()
	})
}

func (s *projectService) AddDocument(ctx context.Context, id, docId uuid.UUID) error {
	return s.mutate(ctx, id, func(p *domain.Project) error {
		return p.AddDocument(docId)
	})
}

func (s *projectService) RemoveDocument(ctx context.Context, id, docId uuid.UUID) error {
	return s.mutate(ctx, id, func(p *domain.Project) error {
		return p.RemoveDocument(docId)
	})
}

func (s *projectService) MarkDocument(ctx context.Context, id, docId uuid.UUID, userId string, stats domain.AiStats) error {
	return s.mutate(ctx, id, func(p *domain.Project) error {
		return p.MarkDocument(docId, userId, stats)
	})
}

func (s *projectService) UnmarkDocument(ctx context.Context, id, docId uuid.UUID) error {
	return s.mutate(ctx, id, func(p *domain.Project) error {
		return p.UnmarkDocument(docId)
	})
}

// Get returns the current project state. Cached replays are shared between
// callers and must be treated as read-only.
func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached.(*domain.Project), nil
	}
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(id.String(), project)
	return project, nil
}

func (s *projectService) load(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	events, err := s.store.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.LoadProject(id, events)
}

// mutate loads a fresh replay (never the cached copy), applies fn and
// appends whatever events it raised. Guarded no-ops append nothing.
func (s *projectService) mutate(ctx context.Context, id uuid.UUID, fn func(*domain.Project) error) error {
	project, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(project); err != nil {
		return err
	}
	pending := project.Uncommitted()
	if len(pending) == 0 {
		return nil
	}
	if _, err := s.store.Append(ctx, id, domain.StreamTypeProject, project.Version, pending); err != nil {
		return err
	}
	s.cache.Delete(id.String())
	return nil
}
