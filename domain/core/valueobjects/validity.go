package valueobjects

import pkgerrors "provenance-backend/pkg/errors"

// ValidityStatus of a bullet point. Valid to invalid is the only transition.
type ValidityStatus string

const (
	StatusValid   ValidityStatus = "valid"
	StatusInvalid ValidityStatus = "invalid"
)

func ParseValidityStatus(s string) (ValidityStatus, error) {
	switch ValidityStatus(s) {
	case StatusValid, StatusInvalid:
		return ValidityStatus(s), nil
	default:
		return "", pkgerrors.NewValidationError("unknown validity status: " + s)
	}
}

func (s ValidityStatus) String() string { return string(s) }

func (s ValidityStatus) IsValid() bool { return s == StatusValid }
