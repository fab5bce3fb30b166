package mapper

import (
	"text-annotation-be/internal/entity"
	"text-annotation-be/internal/model"
)

type DocRegisterMapper struct{}

func NewDocRegisterMapper() *DocRegisterMapper {
	return &DocRegisterMapper{}
}

func (m *DocRegisterMapper) ToModel(e *entity.DocRegister) *model.DocRegister {
	return &model.DocRegister{
		AggregateId: e.AggregateId,
		ProjectId:   e.ProjectId,
		DocId:       e.DocId,
		UserId:      e.UserId,
		CreatedAt:   e.CreatedAt,
	}
}

func (m *DocRegisterMapper) ToEntity(mo *model.DocRegister) *entity.DocRegister {
	return &entity.DocRegister{
		AggregateId: mo.AggregateId,
		ProjectId:   mo.ProjectId,
		DocId:       mo.DocId,
		UserId:      mo.UserId,
		CreatedAt:   mo.CreatedAt,
	}
}

func (m *DocRegisterMapper) ToEntities(models []*model.DocRegister) []*entity.DocRegister {
	entities := make([]*entity.DocRegister, 0, len(models))
	for _, mo := range models {
		entities = append(entities, m.ToEntity(mo))
	}
	return entities
}
