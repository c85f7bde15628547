package entities

import (
	"time"

	"provenance-backend/domain/core/valueobjects"
	pkgerrors "provenance-backend/pkg/errors"
)

// BulletPoint is a derived statement attributed to a unit. Its sources are
// recorded separately as DerivationEdges and RawRefs.
type BulletPoint struct {
	id           valueobjects.BulletPointID
	unitID       valueobjects.UnitID
	echelonLevel valueobjects.EchelonLevel
	content      valueobjects.Content
	validity     valueobjects.ValidityStatus
	createdAt    time.Time
}

// NewBulletPoint creates a valid bullet point. The echelon level is taken
// from the owning unit by callers.
func NewBulletPoint(unitID valueobjects.UnitID, echelon valueobjects.EchelonLevel, content valueobjects.Content) (*BulletPoint, error) {
	if !unitID.Valid() {
		return nil, pkgerrors.NewValidationError("unit id must be positive")
	}
	if content.String() == "" {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}
	return &BulletPoint{
		unitID:       unitID,
		echelonLevel: echelon,
		content:      content,
		validity:     valueobjects.StatusValid,
		createdAt:    time.Now().UTC(),
	}, nil
}

// DeriveBulletPoint copies source content verbatim onto unit. It is the
// regeneration path and never fails on stored content.
func DeriveBulletPoint(unit *Unit, content valueobjects.Content) *BulletPoint {
	return &BulletPoint{
		unitID:       unit.ID(),
		echelonLevel: unit.EchelonLevel(),
		content:      content,
		validity:     valueobjects.StatusValid,
		createdAt:    time.Now().UTC(),
	}
}

func ReconstructBulletPoint(
	id valueobjects.BulletPointID,
	unitID valueobjects.UnitID,
	echelon valueobjects.EchelonLevel,
	content valueobjects.Content,
	validity valueobjects.ValidityStatus,
	createdAt time.Time,
) *BulletPoint {
	return &BulletPoint{
		id:           id,
		unitID:       unitID,
		echelonLevel: echelon,
		content:      content,
		validity:     validity,
		createdAt:    createdAt,
	}
}

func (b *BulletPoint) ID() valueobjects.BulletPointID          { return b.id }
func (b *BulletPoint) UnitID() valueobjects.UnitID             { return b.unitID }
func (b *BulletPoint) EchelonLevel() valueobjects.EchelonLevel { return b.echelonLevel }
func (b *BulletPoint) Content() valueobjects.Content           { return b.content }
func (b *BulletPoint) Validity() valueobjects.ValidityStatus   { return b.validity }
func (b *BulletPoint) CreatedAt() time.Time                    { return b.createdAt }
func (b *BulletPoint) AssignID(id valueobjects.BulletPointID)  { b.id = id }

// Invalidate marks the bullet point invalid. It reports whether the status changed.
func (b *BulletPoint) Invalidate() bool {
	if b.validity == valueobjects.StatusInvalid {
		return false
	}
	b.validity = valueobjects.StatusInvalid
	return true
}
