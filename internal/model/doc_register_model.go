package model

import (
	"time"

	"github.com/google/uuid"
)

// DocRegister maps a (project, doc, user) triple to its Document aggregate.
type DocRegister struct {
	AggregateId uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProjectId   uuid.UUID `gorm:"type:uuid;not null;index:idx_register_triple,unique"`
	DocId       uuid.UUID `gorm:"type:uuid;not null;index:idx_register_triple,unique;index"`
	UserId      string    `gorm:"type:varchar(255);not null;index:idx_register_triple,unique"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (DocRegister) TableName() string {
	return "doc_register"
}
