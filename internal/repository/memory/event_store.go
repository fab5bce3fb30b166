package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// EventStore is the in-memory implementation of the store contract, used by
// tests and the simulation binary. All operations happen under one mutex so
// AppendTracked keeps the same atomicity guarantee as the SQL store.
type EventStore struct {
	mu        sync.RWMutex
	streams   map[uuid.UUID][]domain.Event
	byType    map[string][]contract.PositionedEvent
	position  int64
	tracking  map[string]int64
	publisher message.Publisher
}

// NewEventStore creates an empty in-memory store. publisher may be nil.
func NewEventStore(publisher message.Publisher) *EventStore {
	return &EventStore{
		streams:   make(map[uuid.UUID][]domain.Event),
		byType:    make(map[string][]contract.PositionedEvent),
		tracking:  make(map[string]int64),
		publisher: publisher,
	}
}

func trackingKey(pipeline, streamType string) string {
	return pipeline + "/" + streamType
}

func (s *EventStore) Append(ctx context.Context, streamID uuid.UUID, streamType string, expectedVersion int64, events []domain.EventData) (int64, error) {
	s.mu.Lock()
	newVersion, err := s.appendLocked(streamID, streamType, expectedVersion, events)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	s.notify(streamID, streamType, newVersion)
	return newVersion, nil
}

func (s *EventStore) AppendTracked(ctx context.Context, streamID uuid.UUID, streamType string, expectedVersion int64, events []domain.EventData, cursor contract.TrackingRecord) (int64, error) {
	s.mu.Lock()
	newVersion, err := s.appendLocked(streamID, streamType, expectedVersion, events)
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.tracking[trackingKey(cursor.Pipeline, cursor.StreamType)] = cursor.Position
	s.mu.Unlock()
	s.notify(streamID, streamType, newVersion)
	return newVersion, nil
}

func (s *EventStore) SaveTracking(ctx context.Context, cursor contract.TrackingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracking[trackingKey(cursor.Pipeline, cursor.StreamType)] = cursor.Position
	return nil
}

func (s *EventStore) Tracking(ctx context.Context, pipeline, streamType string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracking[trackingKey(pipeline, streamType)], nil
}

func (s *EventStore) Read(ctx context.Context, streamID uuid.UUID) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stream := s.streams[streamID]
	out := make([]domain.Event, len(stream))
	copy(out, stream)
	return out, nil
}

func (s *EventStore) ReadAll(ctx context.Context, streamType string, afterPosition int64, limit int) ([]contract.PositionedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]contract.PositionedEvent, 0)
	for _, ev := range s.byType[streamType] {
		if ev.Position <= afterPosition {
			continue
		}
		out = append(out, ev)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *EventStore) appendLocked(streamID uuid.UUID, streamType string, expectedVersion int64, events []domain.EventData) (int64, error) {
	current := int64(len(s.streams[streamID]))
	if current != expectedVersion {
		return 0, fmt.Errorf("stream %s at version %d, expected %d: %w",
			streamID, current, expectedVersion, domain.ErrConcurrencyConflict)
	}
	now := time.Now()
	for i, ev := range events {
		stored := domain.Event{
			StreamID:   streamID,
			StreamType: streamType,
			Sequence:   expectedVersion + int64(i) + 1,
			Type:       ev.Type,
			Payload:    ev.Payload,
			CreatedAt:  now,
		}
		s.streams[streamID] = append(s.streams[streamID], stored)
		s.position++
		s.byType[streamType] = append(s.byType[streamType], contract.PositionedEvent{
			Event:    stored,
			Position: s.position,
		})
	}
	return expectedVersion + int64(len(events)), nil
}

func (s *EventStore) notify(streamID uuid.UUID, streamType string, version int64) {
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
	_ = s.publisher.Publish(contract.TopicEventsAppended, message.NewMessage(watermill.NewUUID(), payload))
}
