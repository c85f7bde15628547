// Package messaging holds event publishers that do not talk to a broker
// directly, and decorators shared by all publishers.
package messaging

import (
	"context"

	"go.uber.org/zap"

	"provenance-backend/application/ports"
	"provenance-backend/domain/events"
)

// LogPublisher writes events to the log instead of a bus. It is used when
// no event bus is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

var _ ports.EventPublisher = (*LogPublisher)(nil)

func (p *LogPublisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.logger.Info("Domain event",
		zap.String("event_id", event.GetEventID()),
		zap.String("event_type", event.GetEventType()),
		zap.String("aggregate_id", event.GetAggregateID()),
		zap.Time("timestamp", event.GetTimestamp()),
		zap.Any("event", event),
	)
	return nil
}

func (p *LogPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	for _, e := range evts {
		_ = p.Publish(ctx, e)
	}
	return nil
}
