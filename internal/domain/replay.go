package domain

import (
	"encoding/json"
	"fmt"
)

// ApplyFunc mutates aggregate state from one event payload. Apply handlers
// are the only place state transitions happen; commands never touch state
// directly, so replaying the log always reproduces the same aggregate.
type ApplyFunc[S any] func(state *S, payload json.RawMessage) error

// Replay folds events over the zero state using the aggregate's apply table
// and returns the version (sequence of the last applied event). Events must
// arrive in ascending sequence order, which the store guarantees.
func Replay[S any](state *S, table map[string]ApplyFunc[S], events []Event) (int64, error) {
	var version int64
	for _, ev := range events {
		apply, ok := table[ev.Type]
		if !ok {
			return 0, fmt.Errorf("replay: no apply handler for event type %q", ev.Type)
		}
		if err := apply(state, ev.Payload); err != nil {
			return 0, fmt.Errorf("replay: apply %s (seq %d): %w", ev.Type, ev.Sequence, err)
		}
		version = ev.Sequence
	}
	return version, nil
}

// raise marshals the payload, runs it through the apply table and records it
// as pending. Shared by all aggregates so a command can never produce an
// event its own replay would not accept.
func raise[S any](state *S, table map[string]ApplyFunc[S], pending *[]EventData, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	apply, ok := table[eventType]
	if !ok {
		return fmt.Errorf("no apply handler for event type %q", eventType)
	}
	if err := apply(state, data); err != nil {
		return err
	}
	*pending = append(*pending, EventData{Type: eventType, Payload: data})
	return nil
}
