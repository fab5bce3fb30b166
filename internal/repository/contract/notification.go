package contract

import "github.com/google/uuid"

// TopicEventsAppended is the in-process pub/sub topic a store publishes to
// after committing an append. The process runner subscribes to it so
// projections catch up even for writes that bypass the command facade.
const TopicEventsAppended = "events.appended"

// AppendedNotification is the payload published on TopicEventsAppended.
type AppendedNotification struct {
	StreamId   uuid.UUID `json:"stream_id"`
	StreamType string    `json:"stream_type"`
	Version    int64     `json:"version"`
}
