package memory

import (
	"context"
	"sync"
	"time"

	"text-annotation-be/internal/entity"
	"text-annotation-be/internal/repository/contract"
	"text-annotation-be/internal/repository/specification"
)

// DocRegisterRepository is the in-memory registration store for tests and
// the simulation binary.
type DocRegisterRepository struct {
	mu        sync.RWMutex
	registers []*entity.DocRegister
}

func NewDocRegisterRepository() contract.DocRegisterRepository {
	return &DocRegisterRepository{}
}

func (r *DocRegisterRepository) Create(ctx context.Context, reg *entity.DocRegister) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *reg
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.registers = append(r.registers, &stored)
	return nil
}

func (r *DocRegisterRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocRegister, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, reg := range r.registers {
		if matches(reg, specs) {
			found := *reg
			return &found, nil
		}
	}
	return nil, nil
}

func (r *DocRegisterRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocRegister, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.DocRegister, 0)
	for _, reg := range r.registers {
		if matches(reg, specs) {
			found := *reg
			out = append(out, &found)
		}
	}
	return out, nil
}

func matches(reg *entity.DocRegister, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByProjectID:
			if reg.ProjectId != sp.ProjectID {
				return false
			}
		case specification.ByDocID:
			if reg.DocId != sp.DocID {
				return false
			}
		case specification.ByUserID:
			if reg.UserId != sp.UserID {
				return false
			}
		}
	}
	return true
}
