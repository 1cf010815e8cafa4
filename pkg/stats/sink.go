// Package stats provides fire-and-forget workflow statistics recording and aggregation.
package stats

import (
	"context"
	"log/slog"

	"github.com/dukex/flowrun/pkg/eventbus"
	"github.com/dukex/flowrun/pkg/events"
)

// Sink receives one success/failure signal per finished execution. Recording
// must never affect the outcome of the execution being recorded.
type Sink interface {
	Record(ctx context.Context, workflowID string, success bool)
}

// EventBusSink publishes workflow outcomes to the event bus. Publish errors
// are logged and swallowed.
type EventBusSink struct {
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

func NewEventBusSink(publisher eventbus.EventPublisher, logger *slog.Logger) *EventBusSink {
	return &EventBusSink{
		publisher: publisher,
		logger:    logger,
	}
}

func (s *EventBusSink) Record(ctx context.Context, workflowID string, success bool) {
	event := events.WorkflowStats{
		BaseEvent: events.NewBaseEvent(events.WorkflowStatsEvent, workflowID),
		Success:   success,
	}

	if err := s.publisher.Publish(ctx, workflowID, event); err != nil {
		s.logger.Warn("Failed to record workflow stats",
			"workflow_id", workflowID,
			"error", err)
	}
}

// NoopSink discards all statistics.
type NoopSink struct{}

func (NoopSink) Record(ctx context.Context, workflowID string, success bool) {}
