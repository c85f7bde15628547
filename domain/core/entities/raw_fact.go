package entities

import (
	"fmt"
	"strings"
	"time"

	"provenance-backend/domain/config"
	"provenance-backend/domain/core/valueobjects"
	pkgerrors "provenance-backend/pkg/errors"
)

// RawFact is an unprocessed observation reported by a unit. It is a leaf
// of every provenance chain and is immutable once stored.
type RawFact struct {
	id         valueobjects.RawFactID
	unitID     valueobjects.UnitID
	content    valueobjects.Content
	sourceType string
	createdAt  time.Time
}

// NewRawFact defaults an empty source type to the configured default ("sitrep").
func NewRawFact(unitID valueobjects.UnitID, content valueobjects.Content, sourceType string) (*RawFact, error) {
	return NewRawFactWithConfig(unitID, content, sourceType, config.DefaultDomainConfig())
}

func NewRawFactWithConfig(unitID valueobjects.UnitID, content valueobjects.Content, sourceType string, cfg *config.DomainConfig) (*RawFact, error) {
	if !unitID.Valid() {
		return nil, pkgerrors.NewValidationError("unit id must be positive")
	}
	if content.String() == "" {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}
	sourceType = strings.TrimSpace(sourceType)
	if sourceType == "" {
		sourceType = cfg.DefaultRawSourceType
	}
	if len(sourceType) > cfg.MaxSourceTypeLength {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("source type exceeds maximum length of %d characters", cfg.MaxSourceTypeLength))
	}

	return &RawFact{
		unitID:     unitID,
		content:    content,
		sourceType: sourceType,
		createdAt:  time.Now().UTC(),
	}, nil
}

func ReconstructRawFact(id valueobjects.RawFactID, unitID valueobjects.UnitID, content valueobjects.Content, sourceType string, createdAt time.Time) *RawFact {
	return &RawFact{
		id:         id,
		unitID:     unitID,
		content:    content,
		sourceType: sourceType,
		createdAt:  createdAt,
	}
}

func (r *RawFact) ID() valueobjects.RawFactID         { return r.id }
func (r *RawFact) UnitID() valueobjects.UnitID        { return r.unitID }
func (r *RawFact) Content() valueobjects.Content      { return r.content }
func (r *RawFact) SourceType() string                 { return r.sourceType }
func (r *RawFact) CreatedAt() time.Time               { return r.createdAt }
func (r *RawFact) AssignID(id valueobjects.RawFactID) { r.id = id }
