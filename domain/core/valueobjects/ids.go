package valueobjects

import (
	"strconv"
	"strings"

	pkgerrors "provenance-backend/pkg/errors"
)

// Identifiers are assigned by the store and are always positive.
type (
	UnitID        int64
	RawFactID     int64
	BulletPointID int64
	CCIRID        int64
)

func (id UnitID) String() string        { return strconv.FormatInt(int64(id), 10) }
func (id RawFactID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id BulletPointID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id CCIRID) String() string        { return strconv.FormatInt(int64(id), 10) }

func (id UnitID) Valid() bool        { return id > 0 }
func (id RawFactID) Valid() bool     { return id > 0 }
func (id BulletPointID) Valid() bool { return id > 0 }
func (id CCIRID) Valid() bool        { return id > 0 }

func ParseUnitID(s string) (UnitID, error) {
	v, err := parseID(s, "unit id")
	return UnitID(v), err
}

func ParseRawFactID(s string) (RawFactID, error) {
	v, err := parseID(s, "raw fact id")
	return RawFactID(v), err
}

func ParseBulletPointID(s string) (BulletPointID, error) {
	v, err := parseID(s, "bullet point id")
	return BulletPointID(v), err
}

func ParseCCIRID(s string) (CCIRID, error) {
	v, err := parseID(s, "ccir id")
	return CCIRID(v), err
}

func parseID(s, what string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, pkgerrors.NewValidationError("invalid " + what + ": " + strconv.Quote(s))
	}
	return v, nil
}

// UnitIDsToInt64 converts ids for error details and SQL arguments.
func UnitIDsToInt64(ids []UnitID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
