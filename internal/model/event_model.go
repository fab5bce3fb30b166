package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Event is the persisted form of a domain event. Position is the global
// append order used by the process runner's cursors; the unique
// (stream_id, sequence_number) index is the backstop for the optimistic
// concurrency check.
type Event struct {
	Position       int64          `gorm:"primaryKey;autoIncrement"`
	StreamId       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_stream_sequence;index"`
	StreamType     string         `gorm:"type:varchar(64);not null;index"`
	SequenceNumber int64          `gorm:"not null;uniqueIndex:idx_stream_sequence"`
	EventType      string         `gorm:"type:varchar(64);not null"`
	Payload        datatypes.JSON `gorm:"not null"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

func (Event) TableName() string {
	return "events"
}
