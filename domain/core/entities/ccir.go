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

// CCIR is a commander's critical information requirement: a named set of
// keywords a unit can regenerate summaries against.
type CCIR struct {
	id          valueobjects.CCIRID
	unitID      valueobjects.UnitID
	description string
	keywords    []string
	active      bool
	createdAt   time.Time
}

func NewCCIR(unitID valueobjects.UnitID, description string, keywords []string, active bool) (*CCIR, error) {
	return NewCCIRWithConfig(unitID, description, keywords, active, config.DefaultDomainConfig())
}

func NewCCIRWithConfig(unitID valueobjects.UnitID, description string, keywords []string, active bool, cfg *config.DomainConfig) (*CCIR, error) {
	if !unitID.Valid() {
		return nil, pkgerrors.NewValidationError("unit id must be positive")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, pkgerrors.NewValidationError("ccir description cannot be empty")
	}
	if utf8.RuneCountInString(description) > cfg.MaxCCIRDescriptionLength {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("ccir description exceeds maximum length of %d characters", cfg.MaxCCIRDescriptionLength))
	}

	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if utf8.RuneCountInString(k) > cfg.MaxKeywordLength {
			return nil, pkgerrors.NewValidationError(
				fmt.Sprintf("keyword exceeds maximum length of %d characters", cfg.MaxKeywordLength))
		}
		cleaned = append(cleaned, k)
	}
	if len(cleaned) == 0 {
		return nil, pkgerrors.NewValidationError("ccir requires at least one keyword")
	}
	if len(cleaned) > cfg.MaxKeywordsPerCCIR {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("ccir cannot have more than %d keywords", cfg.MaxKeywordsPerCCIR))
	}

	return &CCIR{
		unitID:      unitID,
		description: description,
		keywords:    cleaned,
		active:      active,
		createdAt:   time.Now().UTC(),
	}, nil
}

func ReconstructCCIR(id valueobjects.CCIRID, unitID valueobjects.UnitID, description string, keywords []string, active bool, createdAt time.Time) *CCIR {
	return &CCIR{
		id:          id,
		unitID:      unitID,
		description: description,
		keywords:    append([]string(nil), keywords...),
		active:      active,
		createdAt:   createdAt,
	}
}

func (c *CCIR) ID() valueobjects.CCIRID         { return c.id }
func (c *CCIR) UnitID() valueobjects.UnitID     { return c.unitID }
func (c *CCIR) Description() string             { return c.description }
func (c *CCIR) Keywords() []string              { return append([]string(nil), c.keywords...) }
func (c *CCIR) Active() bool                    { return c.active }
func (c *CCIR) CreatedAt() time.Time            { return c.createdAt }
func (c *CCIR) AssignID(id valueobjects.CCIRID) { c.id = id }

// Filter returns the keyword filter a regeneration run uses for this CCIR.
func (c *CCIR) Filter() valueobjects.KeywordFilter {
	return valueobjects.NewKeywordFilter(c.keywords...)
}
