package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/model"
	"text-annotation-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventStoreImpl persists event streams in PostgreSQL. The optimistic
// concurrency check compares the caller's expected version with
// MAX(sequence_number) inside a transaction; the unique
// (stream_id, sequence_number) index catches the race two writers would
// otherwise win together.
type EventStoreImpl struct {
	db        *gorm.DB
	publisher message.Publisher
}

// NewEventStore creates the PostgreSQL store. publisher may be nil when no
// in-process consumer exists (migrations, one-off tools).
func NewEventStore(db *gorm.DB, publisher message.Publisher) contract.EventStore {
	return &EventStoreImpl{
		db:        db,
		publisher: publisher,
	}
}

func (s *EventStoreImpl) Append(ctx context.Context, streamID uuid.UUID, streamType string, expectedVersion int64, events []domain.EventData) (int64, error) {
	var newVersion int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		newVersion, err = s.appendTx(tx, streamID, streamType, expectedVersion, events)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.notify(streamID, streamType, newVersion)
	return newVersion, nil
}

func (s *EventStoreImpl) AppendTracked(ctx context.Context, streamID uuid.UUID, streamType string, expectedVersion int64, events []domain.EventData, cursor contract.TrackingRecord) (int64, error) {
	var newVersion int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		newVersion, err = s.appendTx(tx, streamID, streamType, expectedVersion, events)
		if err != nil {
			return err
		}
		return upsertTracking(tx, cursor)
	})
	if err != nil {
		return 0, err
	}
	s.notify(streamID, streamType, newVersion)
	return newVersion, nil
}

func (s *EventStoreImpl) SaveTracking(ctx context.Context, cursor contract.TrackingRecord) error {
	return upsertTracking(s.db.WithContext(ctx), cursor)
}

func (s *EventStoreImpl) Tracking(ctx context.Context, pipeline, streamType string) (int64, error) {
	var m model.TrackingRecord
	err := s.db.WithContext(ctx).
		Where("pipeline_name = ? AND upstream_stream_type = ?", pipeline, streamType).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return m.LastPosition, nil
}

func (s *EventStoreImpl) Read(ctx context.Context, streamID uuid.UUID) ([]domain.Event, error) {
	var models []*model.Event
	err := s.db.WithContext(ctx).
		Where("stream_id = ?", streamID).
		Order("sequence_number ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	events := make([]domain.Event, 0, len(models))
	for _, m := range models {
		events = append(events, toDomainEvent(m))
	}
	return events, nil
}

func (s *EventStoreImpl) ReadAll(ctx context.Context, streamType string, afterPosition int64, limit int) ([]contract.PositionedEvent, error) {
	var models []*model.Event
	err := s.db.WithContext(ctx).
		Where("stream_type = ? AND position > ?", streamType, afterPosition).
		Order("position ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	events := make([]contract.PositionedEvent, 0, len(models))
	for _, m := range models {
		events = append(events, contract.PositionedEvent{
			Event:    toDomainEvent(m),
			Position: m.Position,
		})
	}
	return events, nil
}

func (s *EventStoreImpl) appendTx(tx *gorm.DB, streamID uuid.UUID, streamType string, expectedVersion int64, events []domain.EventData) (int64, error) {
	var current int64
	err := tx.Model(&model.Event{}).
		Where("stream_id = ?", streamID).
		Select("COALESCE(MAX(sequence_number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	if current != expectedVersion {
		return 0, fmt.Errorf("stream %s at version %d, expected %d: %w",
			streamID, current, expectedVersion, domain.ErrConcurrencyConflict)
	}
	for i, ev := range events {
		m := &model.Event{
			StreamId:       streamID,
			StreamType:     streamType,
			SequenceNumber: expectedVersion + int64(i) + 1,
			EventType:      ev.Type,
			Payload:        []byte(ev.Payload),
		}
		if err := tx.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return 0, fmt.Errorf("stream %s lost append race: %w", streamID, domain.ErrConcurrencyConflict)
			}
			return 0, err
		}
	}
	return expectedVersion + int64(len(events)), nil
}

func upsertTracking(tx *gorm.DB, cursor contract.TrackingRecord) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pipeline_name"}, {Name: "upstream_stream_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_position", "updated_at"}),
	}).Create(&model.TrackingRecord{
		PipelineName:       cursor.Pipeline,
		UpstreamStreamType: cursor.StreamType,
		LastPosition:       cursor.Position,
	}).Error
}

func (s *EventStoreImpl) notify(streamID uuid.UUID, streamType string, version int64) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(contract.AppendedNotification{
		StreamId:   streamID,
		StreamType: streamType,
		Version:    version,
	})
	if err != nil {
		return
	}
	// Best effort: the runner also drains synchronously, so a lost
	// notification delays propagation instead of losing it.
	_ = s.publisher.Publish(contract.TopicEventsAppended, message.NewMessage(watermill.NewUUID(), payload))
}

func toDomainEvent(m *model.Event) domain.Event {
	return domain.Event{
		StreamID:   m.StreamId,
		StreamType: m.StreamType,
		Sequence:   m.SequenceNumber,
		Type:       m.EventType,
		Payload:    json.RawMessage(m.Payload),
		CreatedAt:  m.CreatedAt,
	}
}
