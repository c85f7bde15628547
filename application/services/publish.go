package services

import (
	"context"

	"go.uber.org/zap"

	"provenance-backend/application/ports"
	"provenance-backend/domain/events"
	"provenance-backend/pkg/observability"
)

// EventDispatcher publishes events once their transaction has committed.
// Publishing is best effort: failures are logged and counted, never
// returned, because the state change they describe is already durable.
type EventDispatcher struct {
	publisher ports.EventPublisher
	logger    *zap.Logger
	metrics   *observability.Collector
}

func NewEventDispatcher(publisher ports.EventPublisher, logger *zap.Logger, metrics *observability.Collector) *EventDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventDispatcher{publisher: publisher, logger: logger, metrics: metrics}
}

func (d *EventDispatcher) Dispatch(ctx context.Context, evts ...events.DomainEvent) {
	if d == nil || d.publisher == nil || len(evts) == 0 {
		return
	}

	var err error
	if len(evts) == 1 {
		err = d.publisher.Publish(ctx, evts[0])
	} else {
		err = d.publisher.PublishBatch(ctx, evts)
	}
	d.metrics.RecordEventPublish(len(evts), err)
	if err != nil {
		d.logger.Warn("Failed to publish domain events",
			zap.Error(err),
			zap.Int("count", len(evts)),
			zap.String("first_type", evts[0].GetEventType()),
		)
	}
}
