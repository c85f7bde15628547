package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"provenance-backend/application/ports"
	"provenance-backend/domain/config"
	"provenance-backend/domain/core/aggregates"
	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/domain/events"
)

// CatalogService manages the inputs regeneration works from: units, raw
// facts and CCIRs.
type CatalogService struct {
	uow        ports.UnitOfWork
	dispatcher *EventDispatcher
	logger     *zap.Logger
	cfg        *config.DomainConfig
}

func NewCatalogService(uow ports.UnitOfWork, dispatcher *EventDispatcher, logger *zap.Logger, cfg *config.DomainConfig) *CatalogService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{uow: uow, dispatcher: dispatcher, logger: logger, cfg: cfg}
}

// CreateUnit stores a unit under parentID, or as a root when parentID is nil.
func (s *CatalogService) CreateUnit(ctx context.Context, name string, echelon string, parentID *valueobjects.UnitID) (*entities.Unit, error) {
	level, err := valueobjects.NewEchelonLevelWithConfig(echelon, s.cfg)
	if err != nil {
		return nil, err
	}
	unit, err := entities.NewUnitWithConfig(name, level, parentID, s.cfg)
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(ctx context.Context, repos ports.Repositories) error {
		_, err := repos.Units().Create(ctx, unit)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created unit",
		zap.Int64("unit_id", int64(unit.ID())),
		zap.String("echelon_level", unit.EchelonLevel().String()),
	)
	s.dispatcher.Dispatch(ctx, events.NewUnitCreated(unit.ID(), unit.Name(), unit.EchelonLevel(), unit.ParentID(), time.Now()))
	return unit, nil
}

// ListUnits returns every unit ordered by id.
func (s *CatalogService) ListUnits(ctx context.Context) ([]*entities.Unit, error) {
	var units []*entities.Unit
	err := s.uow.View(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		units, err = repos.Units().List(ctx)
		return err
	})
	return units, err
}

// UnitSubtree returns the unit with all of its descendants nested.
func (s *CatalogService) UnitSubtree(ctx context.Context, id valueobjects.UnitID) (aggregates.UnitNode, error) {
	var node aggregates.UnitNode
	err := s.uow.View(ctx, func(ctx context.Context, repos ports.Repositories) error {
		units, err := repos.Units().List(ctx)
		if err != nil {
			return err
		}
		node, err = aggregates.NewUnitTree(units).Nested(id)
		return err
	})
	return node, err
}

// CreateRawFact records an observation for a unit. An empty source type
// means the configured default.
func (s *CatalogService) CreateRawFact(ctx context.Context, unitID valueobjects.UnitID, text, sourceType string) (*entities.RawFact, error) {
	content, err := valueobjects.NewContentWithConfig(text, s.cfg)
	if err != nil {
		return nil, err
	}
	fact, err := entities.NewRawFactWithConfig(unitID, content, sourceType, s.cfg)
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(ctx context.Context, repos ports.Repositories) error {
		_, err := repos.RawFacts().Create(ctx, fact)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Created raw fact",
		zap.Int64("raw_fact_id", int64(fact.ID())),
		zap.Int64("unit_id", int64(unitID)),
	)
	s.dispatcher.Dispatch(ctx, events.NewRawFactCreated(fact.ID(), fact.UnitID(), fact.SourceType(), time.Now()))
	return fact, nil
}

// ListRawFacts returns the unit's own raw facts ordered by id.
func (s *CatalogService) ListRawFacts(ctx context.Context, unitID valueobjects.UnitID) ([]*entities.RawFact, error) {
	var facts []*entities.RawFact
	err := s.uow.View(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := repos.Units().GetByID(ctx, unitID); err != nil {
			return err
		}
		var err error
		facts, err = repos.RawFacts().ListByUnit(ctx, unitID)
		return err
	})
	return facts, err
}

// CreateCCIR stores an information requirement for a unit.
func (s *CatalogService) CreateCCIR(ctx context.Context, unitID valueobjects.UnitID, description string, keywords []string, active bool) (*entities.CCIR, error) {
	ccir, err := entities.NewCCIRWithConfig(unitID, description, keywords, active, s.cfg)
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(ctx context.Context, repos ports.Repositories) error {
		_, err := repos.CCIRs().Create(ctx, ccir)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created CCIR",
		zap.Int64("ccir_id", int64(ccir.ID())),
		zap.Int64("unit_id", int64(unitID)),
		zap.Strings("keywords", ccir.Keywords()),
	)
	s.dispatcher.Dispatch(ctx, events.NewCCIRCreated(ccir.ID(), ccir.UnitID(), ccir.Keywords(), ccir.Active(), time.Now()))
	return ccir, nil
}

// ListCCIRs returns the unit's CCIRs ordered by id.
func (s *CatalogService) ListCCIRs(ctx context.Context, unitID valueobjects.UnitID, activeOnly bool) ([]*entities.CCIR, error) {
	var ccirs []*entities.CCIR
	err := s.uow.View(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := repos.Units().GetByID(ctx, unitID); err != nil {
			return err
		}
		var err error
		ccirs, err = repos.CCIRs().ListByUnit(ctx, unitID, activeOnly)
		return err
	})
	return ccirs, err
}
