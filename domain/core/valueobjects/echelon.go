package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"provenance-backend/domain/config"
	pkgerrors "provenance-backend/pkg/errors"
)

// EchelonLevel names a layer of the reporting hierarchy ("company", "battalion").
// Levels are free-form; the hierarchy itself is defined by unit parentage.
type EchelonLevel string

func NewEchelonLevel(level string) (EchelonLevel, error) {
	return NewEchelonLevelWithConfig(level, config.DefaultDomainConfig())
}

func NewEchelonLevelWithConfig(level string, cfg *config.DomainConfig) (EchelonLevel, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		return "", pkgerrors.NewValidationError("echelon level cannot be empty")
	}
	if utf8.RuneCountInString(level) > cfg.MaxEchelonNameLength {
		return "", pkgerrors.NewValidationError(
			fmt.Sprintf("echelon level exceeds maximum length of %d characters", cfg.MaxEchelonNameLength))
	}
	return EchelonLevel(level), nil
}

func (e EchelonLevel) String() string { return string(e) }
