package service

import (
	"context"
	"encoding/json"
	"time"

	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/repository/contract"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

type IDocumentService interface {
	Create(ctx context.Context) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, entities map[string]domain.Entity, sentenceEntities []json.RawMessage, relations map[string]domain.Relation) error
	UpdateRec(ctx context.Context, id uuid.UUID, recEntities map[string]domain.Entity, recSentenceEntities []json.RawMessage, recRelations map[string]domain.Relation) error
	SetRec(ctx context.Context, id uuid.UUID, recEntities map[string]domain.Entity, recSentenceEntities []json.RawMessage, recRelations map[string]domain.Relation) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Document, error)
}

// documentService is the command facade over Document streams. A document
// aggregate holds labels and relations for one text, in one project, for
// one specific annotator.
type documentService struct {
	store contract.EventStore
	cache *gocache.Cache
}

func NewDocumentService(store contract.EventStore) IDocumentService {
	return &documentService{
		store: store,
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *documentService) Create(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()
	doc, err := domain.NewDocument(id)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := s.store.Append(ctx, id, domain.StreamTypeDocument, 0, doc.Uncommitted()); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *documentService) Update(ctx context.Context, id uuid.UUID, entities map[string]domain.Entity, sentenceEntities []json.RawMessage, relations map[string]domain.Relation) error {
	return s.mutate(ctx, id, func(d *domain.Document) error {
		return d.Update(entities, sentenceEntities, relations)
	})
}

func (s *documentService) UpdateRec(ctx context.Context, id uuid.UUID, recEntities map[string]domain.Entity, recSentenceEntities []json.RawMessage, recRelations map[string]domain.Relation) error {
	return s.mutate(ctx, id, func(d *domain.Document) error {
		return d.UpdateRec(recEntities, recSentenceEntities, recRelations)
	})
}

func (s *documentService) SetRec(ctx context.Context, id uuid.UUID, recEntities map[string]domain.Entity, recSentenceEntities []json.RawMessage, recRelations map[string]domain.Relation) error {
	return s.mutate(ctx, id, func(d *domain.Document) error {
		return d.SetRec(recEntities, recSentenceEntities, recRelations)
	})
}

// Get returns the current document state. Cached replays are shared between
// callers and must be treated as read-only.
func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached.(*domain.Document), nil
	}
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(id.String(), doc)
	return doc, nil
}

func (s *documentService) load(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	events, err := s.store.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.LoadDocument(id, events)
}

func (s *documentService) mutate(ctx context.Context, id uuid.UUID, fn func(*domain.Document) error) error {
	doc, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	pending := doc.Uncommitted()
	if len(pending) == 0 {
		return nil
	}
	if _, err := s.store.Append(ctx, id, domain.StreamTypeDocument, doc.Version, pending); err != nil {
		return err
	}
	s.cache.Delete(id.String())
	return nil
}
