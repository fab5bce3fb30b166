package implementation

import (
	"context"
	"errors"

	"text-annotation-be/internal/entity"
	"text-annotation-be/internal/mapper"
	"text-annotation-be/internal/model"
	"text-annotation-be/internal/repository/contract"
	"text-annotation-be/internal/repository/specification"

	"gorm.io/gorm"
)

type DocRegisterRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocRegisterMapper
}

func NewDocRegisterRepository(db *gorm.DB) contract.DocRegisterRepository {
	return &DocRegisterRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocRegisterMapper(),
	}
}

func (r *DocRegisterRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocRegisterRepositoryImpl) Create(ctx context.Context, reg *entity.DocRegister) error {
	m := r.mapper.ToModel(reg)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*reg = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocRegisterRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocRegister, error) {
	var m model.DocRegister
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocRegisterRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocRegister, error) {
	var models []*model.DocRegister
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
