package contract

import (
	"context"

	"text-annotation-be/internal/entity"
	"text-annotation-be/internal/repository/specification"
)

// DocRegisterRepository stores the (project, doc, user) registration triples
// that map externally visible document ids to Document aggregate streams.
// One aggregate exists per triple: every annotator labels their own copy.
type DocRegisterRepository interface {
	Create(ctx context.Context, reg *entity.DocRegister) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocRegister, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocRegister, error)
}
