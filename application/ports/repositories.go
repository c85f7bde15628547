package ports

import (
	"context"

	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/domain/events"
)

// UnitRepository persists organizational units.
type UnitRepository interface {
	// Create stores the unit and returns its new id. The parent must exist.
	Create(ctx context.Context, unit *entities.Unit) (valueobjects.UnitID, error)

	// GetByID fails with a not found error for unknown ids.
	GetByID(ctx context.Context, id valueobjects.UnitID) (*entities.Unit, error)

	Exists(ctx context.Context, id valueobjects.UnitID) (bool, error)

	// List returns every unit ordered by id.
	List(ctx context.Context) ([]*entities.Unit, error)
}

// RawFactRepository persists raw facts. Raw facts are never updated or deleted.
type RawFactRepository interface {
	Create(ctx context.Context, fact *entities.RawFact) (valueobjects.RawFactID, error)
	GetByID(ctx context.Context, id valueobjects.RawFactID) (*entities.RawFact, error)
	Exists(ctx context.Context, id valueobjects.RawFactID) (bool, error)

	// ListByUnit returns the unit's facts ordered by id.
	ListByUnit(ctx context.Context, unitID valueobjects.UnitID) ([]*entities.RawFact, error)
}

// BulletPointRepository persists bullet points.
type BulletPointRepository interface {
	Create(ctx context.Context, bullet *entities.BulletPoint) (valueobjects.BulletPointID, error)
	GetByID(ctx context.Context, id valueobjects.BulletPointID) (*entities.BulletPoint, error)
	Exists(ctx context.Context, id valueobjects.BulletPointID) (bool, error)

	// List returns every bullet point ordered by id.
	List(ctx context.Context) ([]*entities.BulletPoint, error)

	// ListByUnits returns the bullet points owned by any of unitIDs, ordered by id.
	ListByUnits(ctx context.Context, unitIDs []valueobjects.UnitID) ([]*entities.BulletPoint, error)

	SetValidity(ctx context.Context, id valueobjects.BulletPointID, status valueobjects.ValidityStatus) error

	// DeleteAll removes every bullet point. Edges must be removed first.
	DeleteAll(ctx context.Context) (int64, error)
}

// ProvenanceRepository persists both edge kinds.
type ProvenanceRepository interface {
	// AddDerivation is idempotent for an existing (parent, child) pair.
	AddDerivation(ctx context.Context, edge entities.DerivationEdge) error
	AddRawRef(ctx context.Context, ref entities.RawRef) error

	// ListDerivations returns every edge ordered by parent then child.
	ListDerivations(ctx context.Context) ([]entities.DerivationEdge, error)
	ListRawRefs(ctx context.Context) ([]entities.RawRef, error)

	ChildrenOf(ctx context.Context, parent valueobjects.BulletPointID) ([]valueobjects.BulletPointID, error)
	ParentsOf(ctx context.Context, child valueobjects.BulletPointID) ([]valueobjects.BulletPointID, error)
	RawRefsOf(ctx context.Context, bullet valueobjects.BulletPointID) ([]entities.RawRef, error)

	DeleteAllRawRefs(ctx context.Context) (int64, error)
	DeleteAllDerivations(ctx context.Context) (int64, error)
}

// CCIRRepository persists critical information requirements.
type CCIRRepository interface {
	Create(ctx context.Context, ccir *entities.CCIR) (valueobjects.CCIRID, error)
	GetByID(ctx context.Context, id valueobjects.CCIRID) (*entities.CCIR, error)

	// ListByUnit returns the unit's CCIRs ordered by id. activeOnly drops inactive ones.
	ListByUnit(ctx context.Context, unitID valueobjects.UnitID, activeOnly bool) ([]*entities.CCIR, error)
}

// Repositories is the set of repositories bound to one transaction.
type Repositories interface {
	Units() UnitRepository
	RawFacts() RawFactRepository
	BulletPoints() BulletPointRepository
	Provenance() ProvenanceRepository
	CCIRs() CCIRRepository
}

// UnitOfWork runs work against a single transaction.
//
// Do serializes writers: no two Do calls overlap, and a failure anywhere in
// fn rolls back everything fn wrote. A failed commit surfaces as a
// transaction error. View gives fn a consistent read snapshot and may run
// concurrently with other View calls. Neither call may be nested inside
// the other.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	View(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// EventPublisher sends domain events to subscribers outside the process.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
