package entities

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"provenance-backend/domain/config"
	"provenance-backend/domain/core/valueobjects"
	pkgerrors "provenance-backend/pkg/errors"
)

// Unit is an organizational node in the reporting hierarchy. Units are
// never reparented or deleted, so parentID is fixed at creation.
type Unit struct {
	id           valueobjects.UnitID
	name         string
	echelonLevel valueobjects.EchelonLevel
	parentID     *valueobjects.UnitID
	createdAt    time.Time
}

// NewUnit validates a unit that has not been stored yet. The caller is
// responsible for checking that parentID exists.
func NewUnit(name string, echelon valueobjects.EchelonLevel, parentID *valueobjects.UnitID) (*Unit, error) {
	return NewUnitWithConfig(name, echelon, parentID, config.DefaultDomainConfig())
}

func NewUnitWithConfig(name string, echelon valueobjects.EchelonLevel, parentID *valueobjects.UnitID, cfg *config.DomainConfig) (*Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewValidationError("unit name cannot be empty")
	}
	if utf8.RuneCountInString(name) > cfg.MaxUnitNameLength {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("unit name exceeds maximum length of %d characters", cfg.MaxUnitNameLength))
	}
	if echelon == "" {
		return nil, pkgerrors.NewValidationError("echelon level cannot be empty")
	}
	if parentID != nil && !parentID.Valid() {
		return nil, pkgerrors.NewValidationError("parent unit id must be positive")
	}

	return &Unit{
		name:         name,
		echelonLevel: echelon,
		parentID:     copyUnitID(parentID),
		createdAt:    time.Now().UTC(),
	}, nil
}

// ReconstructUnit rebuilds a unit from storage.
func ReconstructUnit(id valueobjects.UnitID, name string, echelon valueobjects.EchelonLevel, parentID *valueobjects.UnitID, createdAt time.Time) *Unit {
	return &Unit{
		id:           id,
		name:         name,
		echelonLevel: echelon,
		parentID:     copyUnitID(parentID),
		createdAt:    createdAt,
	}
}

func (u *Unit) ID() valueobjects.UnitID                 { return u.id }
func (u *Unit) Name() string                            { return u.name }
func (u *Unit) EchelonLevel() valueobjects.EchelonLevel { return u.echelonLevel }
func (u *Unit) CreatedAt() time.Time                    { return u.createdAt }

// ParentID returns nil for a root unit.
func (u *Unit) ParentID() *valueobjects.UnitID { return copyUnitID(u.parentID) }

func (u *Unit) IsRoot() bool { return u.parentID == nil }

// AssignID records the identifier chosen by the store.
func (u *Unit) AssignID(id valueobjects.UnitID) { u.id = id }

func copyUnitID(id *valueobjects.UnitID) *valueobjects.UnitID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
