package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"provenance-backend/application/ports"
	"provenance-backend/domain/config"
	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/domain/events"
	pkgerrors "provenance-backend/pkg/errors"
)

// AuthorBulletInput describes a manually written bullet point and its sources.
type AuthorBulletInput struct {
	UnitID       valueobjects.UnitID
	Content      valueobjects.Content
	EchelonLevel valueobjects.EchelonLevel // empty means the unit's level
	ChildBullets []valueobjects.BulletPointID
	RawFacts     []valueobjects.RawFactID
}

// BulletPointDetails is a bullet point with its direct provenance.
type BulletPointDetails struct {
	Bullet       *entities.BulletPoint
	ChildBullets []valueobjects.BulletPointID
	ParentIDs    []valueobjects.BulletPointID
	RawRefs      []entities.RawRef
}

// ProvenanceService handles bullet points created outside regeneration
// and manual provenance links.
type ProvenanceService struct {
	uow        ports.UnitOfWork
	dispatcher *EventDispatcher
	logger     *zap.Logger
	cfg        *config.DomainConfig
}

func NewProvenanceService(uow ports.UnitOfWork, dispatcher *EventDispatcher, logger *zap.Logger, cfg *config.DomainConfig) *ProvenanceService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvenanceService{uow: uow, dispatcher: dispatcher, logger: logger, cfg: cfg}
}

// CreateBulletPoint stores a bullet point together with its source edges.
// Every referenced unit, bullet point and raw fact must exist; otherwise
// nothing is written.
func (s *ProvenanceService) CreateBulletPoint(ctx context.Context, in AuthorBulletInput) (*entities.BulletPoint, error) {
	if n := len(in.ChildBullets) + len(in.RawFacts); n > s.cfg.MaxSourcesPerBullet {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("a bullet point can have at most %d sources", s.cfg.MaxSourcesPerBullet))
	}

	var bullet *entities.BulletPoint
	err := s.uow.Do(ctx, func(ctx context.Context, repos ports.Repositories) error {
		unit, err := repos.Units().GetByID(ctx, in.UnitID)
		if err != nil {
			return err
		}
		echelon := in.EchelonLevel
		if echelon == "" {
			echelon = unit.EchelonLevel()
		}

		bullet, err = entities.NewBulletPoint(unit.ID(), echelon, in.Content)
		if err != nil {
			return err
		}
		if _, err := repos.BulletPoints().Create(ctx, bullet); err != nil {
			return err
		}

		for _, child := range in.ChildBullets {
			ok, err := repos.BulletPoints().Exists(ctx, child)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.NewNotFoundError("child bullet point", int64(child))
			}
			if err := repos.Provenance().AddDerivation(ctx, entities.DerivationEdge{Parent: bullet.ID(), Child: child}); err != nil {
				return err
			}
		}

		for _, raw := range in.RawFacts {
			ok, err := repos.RawFacts().Exists(ctx, raw)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.NewNotFoundError("raw fact", int64(raw))
			}
			ref := entities.RawRef{Bullet: bullet.ID(), RawFact: raw, SourceType: s.cfg.RegeneratedRefSource}
			if err := repos.Provenance().AddRawRef(ctx, ref); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created bullet point",
		zap.Int64("bullet_point_id", int64(bullet.ID())),
		zap.Int64("unit_id", int64(bullet.UnitID())),
		zap.Int("child_bullets", len(in.ChildBullets)),
		zap.Int("raw_facts", len(in.RawFacts)),
	)
	s.dispatcher.Dispatch(ctx, events.NewBulletPointCreated(bullet.ID(), bullet.UnitID(), in.ChildBullets, in.RawFacts, time.Now()))
	return bullet, nil
}

// LinkBulletPoints records that parent was derived from child. Any two
// distinct existing bullet points may be linked, across units and without
// a cycle check; readers guard against the cycles this can create.
// Linking an already linked pair is a no-op.
func (s *ProvenanceService) LinkBulletPoints(ctx context.Context, parent, child valueobjects.BulletPointID) error {
	err := s.uow.Do(ctx, func(ctx context.Context, repos ports.Repositories) error {
		for _, id := range []valueobjects.BulletPointID{parent, child} {
			ok, err := repos.BulletPoints().Exists(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.NewNotFoundError("bullet point", int64(id))
			}
		}
		return repos.Provenance().AddDerivation(ctx, entities.DerivationEdge{Parent: parent, Child: child})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Linked bullet points",
		zap.Int64("parent_id", int64(parent)),
		zap.Int64("child_id", int64(child)),
	)
	s.dispatcher.Dispatch(ctx, events.NewBulletPointsLinked(parent, child, time.Now()))
	return nil
}

// Details loads a bullet point with its direct sources and derivers.
func (s *ProvenanceService) Details(ctx context.Context, id valueobjects.BulletPointID) (*BulletPointDetails, error) {
	var details *BulletPointDetails
	err := s.uow.View(ctx, func(ctx context.Context, repos ports.Repositories) error {
		bullet, err := repos.BulletPoints().GetByID(ctx, id)
		if err != nil {
			return err
		}
		children, err := repos.Provenance().ChildrenOf(ctx, id)
		if err != nil {
			return err
		}
		parents, err := repos.Provenance().ParentsOf(ctx, id)
		if err != nil {
			return err
		}
		refs, err := repos.Provenance().RawRefsOf(ctx, id)
		if err != nil {
			return err
		}
		details = &BulletPointDetails{Bullet: bullet, ChildBullets: children, ParentIDs: parents, RawRefs: refs}
		return nil
	})
	return details, err
}
