package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocRegister links one annotator's Document aggregate to the project/doc
// pair it belongs to. AggregateId is the Document stream id; DocId is the
// id the surrounding document service knows the text by.
type DocRegister struct {
	AggregateId uuid.UUID
	ProjectId   uuid.UUID
	DocId       uuid.UUID
	UserId      string
	CreatedAt   time.Time
}
