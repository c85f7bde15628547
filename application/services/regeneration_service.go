package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"provenance-backend/application/ports"
	"provenance-backend/domain/config"
	"provenance-backend/domain/core/aggregates"
	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/domain/events"
	pkgerrors "provenance-backend/pkg/errors"
	"provenance-backend/pkg/observability"
)

// RegenerationResult summarizes one regeneration run.
type RegenerationResult struct {
	UnitsProcessed int
	BulletsCreated int
	Order          []valueobjects.UnitID
	Keywords       []string
	CCIRID         *valueobjects.CCIRID
	Duration       time.Duration
}

// RegenerationService rebuilds the whole bullet point layer from raw facts.
type RegenerationService struct {
	uow        ports.UnitOfWork
	dispatcher *EventDispatcher
	logger     *zap.Logger
	metrics    *observability.Collector
	tracer     *observability.Tracer
	cfg        *config.DomainConfig
}

func NewRegenerationService(
	uow ports.UnitOfWork,
	dispatcher *EventDispatcher,
	logger *zap.Logger,
	metrics *observability.Collector,
	cfg *config.DomainConfig,
) *RegenerationService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegenerationService{
		uow:        uow,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		tracer:     observability.NewTracer("provenance-backend/regeneration"),
		cfg:        cfg,
	}
}

// RegenerateAll deletes every bullet point and edge and rebuilds them
// bottom-up in one transaction. Each unit gets one bullet per surviving
// child-unit bullet (linked by a derivation edge) followed by one bullet
// per surviving raw fact (linked by a raw ref). The filter is applied to
// content only; an empty filter keeps everything.
func (s *RegenerationService) RegenerateAll(ctx context.Context, filter valueobjects.KeywordFilter) (*RegenerationResult, error) {
	return s.run(ctx, func(ctx context.Context, repos ports.Repositories) (valueobjects.KeywordFilter, *valueobjects.CCIRID, error) {
		return filter, nil, nil
	})
}

// RegenerateForCCIR runs RegenerateAll with the keywords of an active CCIR.
// The CCIR is read inside the same transaction as the rebuild.
func (s *RegenerationService) RegenerateForCCIR(ctx context.Context, id valueobjects.CCIRID) (*RegenerationResult, error) {
	return s.run(ctx, func(ctx context.Context, repos ports.Repositories) (valueobjects.KeywordFilter, *valueobjects.CCIRID, error) {
		ccir, err := repos.CCIRs().GetByID(ctx, id)
		if err != nil {
			return valueobjects.KeywordFilter{}, nil, err
		}
		if !ccir.Active() {
			return valueobjects.KeywordFilter{}, nil, pkgerrors.NewValidationError("ccir is not active").
				WithDetail("ccir_id", int64(id))
		}
		ccirID := ccir.ID()
		return ccir.Filter(), &ccirID, nil
	})
}

type filterSource func(ctx context.Context, repos ports.Repositories) (valueobjects.KeywordFilter, *valueobjects.CCIRID, error)

func (s *RegenerationService) run(ctx context.Context, source filterSource) (*RegenerationResult, error) {
	ctx, span := s.tracer.Start(ctx, "RegenerationService.Regenerate")
	defer span.End()

	start := time.Now()
	var result *RegenerationResult
	err := s.uow.Do(ctx, func(ctx context.Context, repos ports.Repositories) error {
		filter, ccirID, err := source(ctx, repos)
		if err != nil {
			return err
		}
		result, err = s.rebuild(ctx, repos, filter)
		if err != nil {
			return err
		}
		result.CCIRID = ccirID
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		observability.RecordError(span, err)
		s.metrics.RecordRegeneration(0, err, duration)
		s.logger.Error("Regeneration failed", zap.Error(err), zap.Duration("duration", duration))
		return nil, err
	}

	result.Duration = duration
	s.metrics.RecordRegeneration(result.BulletsCreated, nil, duration)
	span.SetAttributes(
		attribute.Int("units_processed", result.UnitsProcessed),
		attribute.Int("bullets_created", result.BulletsCreated),
	)
	s.logger.Info("Regenerated summaries",
		zap.Int("units", result.UnitsProcessed),
		zap.Int("bullets", result.BulletsCreated),
		zap.Strings("keywords", result.Keywords),
		zap.Duration("duration", duration),
	)

	s.dispatcher.Dispatch(ctx, events.NewSummariesRegenerated(
		result.Keywords, result.CCIRID, result.UnitsProcessed, result.BulletsCreated, duration, time.Now(),
	))
	return result, nil
}

func (s *RegenerationService) rebuild(ctx context.Context, repos ports.Repositories, filter valueobjects.KeywordFilter) (*RegenerationResult, error) {
	// Edges reference bullet points, so they go first.
	if _, err := repos.Provenance().DeleteAllRawRefs(ctx); err != nil {
		return nil, err
	}
	if _, err := repos.Provenance().DeleteAllDerivations(ctx); err != nil {
		return nil, err
	}
	if _, err := repos.BulletPoints().DeleteAll(ctx); err != nil {
		return nil, err
	}

	units, err := repos.Units().List(ctx)
	if err != nil {
		return nil, err
	}
	tree := aggregates.NewUnitTree(units)
	order, err := tree.BottomUpOrder()
	if err != nil {
		return nil, err
	}

	result := &RegenerationResult{Order: order, Keywords: filter.Terms()}
	created := make(map[valueobjects.UnitID][]*entities.BulletPoint, len(order))

	for _, unitID := range order {
		unit, _ := tree.Unit(unitID)
		var produced []*entities.BulletPoint

		for _, childUnit := range tree.Children(unitID) {
			for _, source := range created[childUnit] {
				if !filter.Matches(source.Content().String()) {
					continue
				}
				bullet := entities.DeriveBulletPoint(unit, source.Content())
				if _, err := repos.BulletPoints().Create(ctx, bullet); err != nil {
					return nil, err
				}
				edge := entities.DerivationEdge{Parent: bullet.ID(), Child: source.ID()}
				if err := repos.Provenance().AddDerivation(ctx, edge); err != nil {
					return nil, err
				}
				produced = append(produced, bullet)
			}
		}

		facts, err := repos.RawFacts().ListByUnit(ctx, unitID)
		if err != nil {
			return nil, err
		}
		for _, fact := range facts {
			if !filter.Matches(fact.Content().String()) {
				continue
			}
			bullet := entities.DeriveBulletPoint(unit, fact.Content())
			if _, err := repos.BulletPoints().Create(ctx, bullet); err != nil {
				return nil, err
			}
			ref := entities.RawRef{Bullet: bullet.ID(), RawFact: fact.ID(), SourceType: s.cfg.RegeneratedRefSource}
			if err := repos.Provenance().AddRawRef(ctx, ref); err != nil {
				return nil, err
			}
			produced = append(produced, bullet)
		}

		created[unitID] = produced
		result.UnitsProcessed++
		result.BulletsCreated += len(produced)
	}

	return result, nil
}
