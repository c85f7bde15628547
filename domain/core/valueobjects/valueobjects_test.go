package valueobjects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provenance-backend/domain/config"
	pkgerrors "provenance-backend/pkg/errors"
)

func TestKeywordFilter_Matches(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		content  string
		want     bool
	}{
		{"empty filter passes everything", nil, "anything", true},
		{"empty keyword is no filter", []string{""}, "anything", true},
		{"whitespace keyword is a real term", []string{" "}, "armor", false},
		{"whitespace keyword matches spaced content", []string{" "}, "enemy armor", true},
		{"trailing space is kept", []string{"armor "}, "armor", false},
		{"trailing space matches inside content", []string{"armor "}, "enemy armor spotted", true},
		{"leading space is kept", []string{" armor"}, "armor spotted", false},
		{"case insensitive", []string{"ARMOR"}, "enemy armor spotted", true},
		{"substring match", []string{"arm"}, "Enemy ARMOR spotted", true},
		{"no match", []string{"logistics"}, "enemy armor spotted", false},
		{"any of several", []string{"fuel", "armor"}, "enemy armor spotted", true},
		{"none of several", []string{"fuel", "water"}, "enemy armor spotted", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewKeywordFilter(tt.keywords...)
			assert.Equal(t, tt.want, f.Matches(tt.content))
		})
	}
}

func TestKeywordFilter_Normalizes(t *testing.T) {
	f := NewKeywordFilter(" Armor ", "armor", "ARMOR", "", "Fuel")
	assert.Equal(t, []string{" armor ", "armor", "fuel"}, f.Terms())
	assert.Equal(t, " armor |armor|fuel", f.String())
	assert.True(t, NewKeywordFilter("").IsEmpty())
	assert.False(t, NewKeywordFilter(" ").IsEmpty())
	assert.True(t, KeywordFilter{}.IsEmpty())
}

func TestParseIDs(t *testing.T) {
	id, err := ParseBulletPointID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, BulletPointID(42), id)

	for _, bad := range []string{"", "0", "-3", "abc", "1.5"} {
		_, err := ParseUnitID(bad)
		assert.True(t, pkgerrors.IsValidation(err), bad)
	}
}

func TestContent(t *testing.T) {
	c, err := NewContent("  enemy armor spotted  ")
	require.NoError(t, err)
	assert.Equal(t, "  enemy armor spotted  ", c.String())

	_, err = NewContent("   ")
	assert.True(t, pkgerrors.IsValidation(err))

	cfg := config.DefaultDomainConfig()
	cfg.MaxContentLength = 5
	_, err = NewContentWithConfig(strings.Repeat("x", 6), cfg)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestEchelonAndValidity(t *testing.T) {
	e, err := NewEchelonLevel(" company ")
	require.NoError(t, err)
	assert.Equal(t, EchelonLevel("company"), e)

	_, err = NewEchelonLevel("")
	assert.Error(t, err)

	s, err := ParseValidityStatus("invalid")
	require.NoError(t, err)
	assert.False(t, s.IsValid())

	_, err = ParseValidityStatus("stale")
	assert.Error(t, err)
}
