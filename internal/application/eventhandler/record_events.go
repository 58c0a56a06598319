// Package eventhandler wires domain event listeners onto the event bus.
package eventhandler

import (
	"context"
	"log/slog"

	"github.com/snapx-edu/academy-hub/internal/domain/shared"
)

// EventSink persists domain events. Satisfied by the postgres sync journal.
type EventSink interface {
	RecordEvent(ctx context.Context, event shared.Event) error
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT RECORDER
// Mirrors every published domain event into the event log, making optimistic
// mutations and session changes auditable after the fact.
// ══════════════════════════════════════════════════════════════════════════════

// EventRecorder subscribes the event sink to all bus traffic.
type EventRecorder struct {
	sink   EventSink
	logger *slog.Logger
}

// NewEventRecorder creates a new EventRecorder.
func NewEventRecorder(sink EventSink, logger *slog.Logger) *EventRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventRecorder{
		sink:   sink,
		logger: logger.With(slog.String("component", "event_recorder")),
	}
}

// Register subscribes the recorder to every event on the bus.
func (r *EventRecorder) Register(bus shared.EventSubscriber) error {
	return bus.SubscribeAll(r.Handle)
}

// Handle persists one event. Errors are returned for the bus to log; event
// recording never feeds back into the publishing flow.
func (r *EventRecorder) Handle(ctx context.Context, event shared.Event) error {
	if r.sink == nil {
		return nil
	}
	if err := r.sink.RecordEvent(ctx, event); err != nil {
		r.logger.Warn("event record failed",
			slog.String("event_type", string(event.EventType())),
			slog.String("aggregate_id", event.AggregateID()),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
