package service

import (
	"context"
	"errors"
	"fmt"

	"text-annotation-be/internal/domain"
	"text-annotation-be/internal/pkg/logger"
	"text-annotation-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
)

// readBatchSize bounds one ReadAll pull; the drain loop keeps pulling until
// the upstream is exhausted.
const readBatchSize = 100

// ProcessHandler consumes one upstream event together with the cursor that
// must be persisted atomically with whatever the handler writes downstream.
type ProcessHandler interface {
	Handle(ctx context.Context, ev contract.PositionedEvent, cursor contract.TrackingRecord) error
}

// Pipeline statically wires one upstream stream type to one downstream
// projection handler.
type Pipeline struct {
	Name         string
	UpstreamType string
	Handler      ProcessHandler
}

type IRunnerService interface {
	// Sync drains every pipeline to quiescence. Called synchronously after
	// each accepted upstream command.
	Sync(ctx context.Context) error
	// Consume drives Sync from append notifications in the background.
	Consume(ctx context.Context) error
}

// runnerService sequences projection propagation. Single active runner per
// process: commands and their propagation complete before the next command
// is accepted, so an index write conflict means a bug, not a race. It is
// retried once and then treated as fatal for the tick.
type runnerService struct {
	store      contract.EventStore
	pipelines  []Pipeline
	subscriber message.Subscriber
	log        logger.ILogger
}

func NewRunnerService(store contract.EventStore, pipelines []Pipeline, subscriber message.Subscriber, log logger.ILogger) IRunnerService {
	return &runnerService{
		store:      store,
		pipelines:  pipelines,
		subscriber: subscriber,
		log:        log,
	}
}

func (r *runnerService) Sync(ctx context.Context) error {
	for _, p := range r.pipelines {
		if err := r.drain(ctx, p); err != nil {
			return fmt.Errorf("pipeline %s: %w", p.Name, err)
		}
	}
	return nil
}

func (r *runnerService) drain(ctx context.Context, p Pipeline) error {
	for {
		position, err := r.store.Tracking(ctx, p.Name, p.UpstreamType)
		if err != nil {
			return err
		}
		events, err := r.store.ReadAll(ctx, p.UpstreamType, position, readBatchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		for _, ev := range events {
			cursor := contract.TrackingRecord{
				Pipeline:   p.Name,
				StreamType: p.UpstreamType,
				Position:   ev.Position,
			}
			if err := r.handle(ctx, p, ev, cursor); err != nil {
				return err
			}
		}
	}
}

func (r *runnerService) handle(ctx context.Context, p Pipeline, ev contract.PositionedEvent, cursor contract.TrackingRecord) error {
	err := p.Handler.Handle(ctx, ev, cursor)
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		// No other writer should exist; log, reload once and reapply.
		r.log.Warn("Runner", "conflict on projection write, retrying once", map[string]interface{}{
			"pipeline": p.Name,
			"stream":   ev.StreamID.String(),
			"position": ev.Position,
		})
		err = p.Handler.Handle(ctx, ev, cursor)
	}
	if err != nil {
		r.log.Error("Runner", "projection propagation failed", map[string]interface{}{
			"pipeline": p.Name,
			"stream":   ev.StreamID.String(),
			"position": ev.Position,
			"error":    err.Error(),
		})
		return err
	}
	return nil
}

// Consume subscribes to store append notifications and re-syncs on each.
// Propagation caused by the command facade is already synchronous; this
// catches writes that bypass it.
func (r *runnerService) Consume(ctx context.Context) error {
	if r.subscriber == nil {
		return nil
	}
	messages, err := r.subscriber.Subscribe(ctx, contract.TopicEventsAppended)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			if err := r.Sync(ctx); err != nil {
				r.log.Error("Runner", "background sync failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
			msg.Ack()
		}
	}()

	return nil
}
