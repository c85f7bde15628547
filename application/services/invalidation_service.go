package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"provenance-backend/application/ports"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/domain/events"
	pkgerrors "provenance-backend/pkg/errors"
	"provenance-backend/pkg/observability"
)

// InvalidationService propagates an invalid mark upward through derivation edges.
type InvalidationService struct {
	uow        ports.UnitOfWork
	dispatcher *EventDispatcher
	logger     *zap.Logger
	metrics    *observability.Collector
	tracer     *observability.Tracer
}

func NewInvalidationService(uow ports.UnitOfWork, dispatcher *EventDispatcher, logger *zap.Logger, metrics *observability.Collector) *InvalidationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvalidationService{
		uow:        uow,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		tracer:     observability.NewTracer("provenance-backend/invalidation"),
	}
}

// Invalidate marks id and every bullet point transitively derived from it
// as invalid, in one transaction. Already invalid bullet points are still
// walked through so that parents linked since an earlier call are reached.
// Each id is visited at most once, so cycles end quietly. The returned ids
// are in visit order, starting with id.
func (s *InvalidationService) Invalidate(ctx context.Context, id valueobjects.BulletPointID) ([]valueobjects.BulletPointID, error) {
	ctx, span := s.tracer.Start(ctx, "InvalidationService.Invalidate", attribute.Int64("bullet_point_id", int64(id)))
	defer span.End()

	var visitedOrder []valueobjects.BulletPointID
	err := s.uow.Do(ctx, func(ctx context.Context, repos ports.Repositories) error {
		ok, err := repos.BulletPoints().Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.NewNotFoundError("bullet point", int64(id))
		}

		visited := make(map[valueobjects.BulletPointID]bool)
		stack := []valueobjects.BulletPointID{id}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[current] {
				continue
			}
			visited[current] = true

			if err := repos.BulletPoints().SetValidity(ctx, current, valueobjects.StatusInvalid); err != nil {
				return err
			}
			visitedOrder = append(visitedOrder, current)

			parents, err := repos.Provenance().ParentsOf(ctx, current)
			if err != nil {
				return err
			}
			stack = append(stack, parents...)
		}
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordInvalidation(len(visitedOrder))
	span.SetAttributes(attribute.Int("invalidated", len(visitedOrder)))
	s.logger.Info("Invalidated bullet points",
		zap.Int64("bullet_point_id", int64(id)),
		zap.Int("count", len(visitedOrder)),
	)
	s.dispatcher.Dispatch(ctx, events.NewBulletPointInvalidated(id, visitedOrder, time.Now()))
	return visitedOrder, nil
}
