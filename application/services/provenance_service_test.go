package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	pkgerrors "provenance-backend/pkg/errors"
)

func TestCreateBulletPoint_WithSources(t *testing.T) {
	f := newFixture(t)
	unit := f.unit("A", "company", 0)
	fact := f.rawFact(unit, "bridge intact")
	child := f.manualBullet(unit, "child")

	content, err := valueobjects.NewContent("bridge at grid 1234 intact")
	require.NoError(t, err)
	bullet, err := f.provenance().CreateBulletPoint(f.ctx, AuthorBulletInput{
		UnitID:       unit,
		Content:      content,
		ChildBullets: []valueobjects.BulletPointID{child},
		RawFacts:     []valueobjects.RawFactID{fact},
	})
	require.NoError(t, err)
	assert.True(t, bullet.ID().Valid())
	assert.Equal(t, valueobjects.EchelonLevel("company"), bullet.EchelonLevel())
	assert.Equal(t, valueobjects.StatusValid, bullet.Validity())

	details, err := f.provenance().Details(f.ctx, bullet.ID())
	require.NoError(t, err)
	assert.Equal(t, []valueobjects.BulletPointID{child}, details.ChildBullets)
	assert.Empty(t, details.ParentIDs)
	require.Len(t, details.RawRefs, 1)
	assert.Equal(t, fact, details.RawRefs[0].RawFact)
	assert.Equal(t, "raw_source", details.RawRefs[0].SourceType)

	childDetails, err := f.provenance().Details(f.ctx, child)
	require.NoError(t, err)
	assert.Equal(t, []valueobjects.BulletPointID{bullet.ID()}, childDetails.ParentIDs)
}

func TestCreateBulletPoint_EchelonOverride(t *testing.T) {
	f := newFixture(t)
	unit := f.unit("A", "company", 0)
	content, err := valueobjects.NewContent("override")
	require.NoError(t, err)

	bullet, err := f.provenance().CreateBulletPoint(f.ctx, AuthorBulletInput{
		UnitID:       unit,
		Content:      content,
		EchelonLevel: "platoon",
	})
	require.NoError(t, err)
	assert.Equal(t, valueobjects.EchelonLevel("platoon"), bullet.EchelonLevel())
}

func TestCreateBulletPoint_MissingReferencesWriteNothing(t *testing.T) {
	content, err := valueobjects.NewContent("orphan")
	require.NoError(t, err)

	tests := []struct {
		name  string
		input func(unit valueobjects.UnitID) AuthorBulletInput
	}{
		{
			name: "unknown unit",
			input: func(valueobjects.UnitID) AuthorBulletInput {
				return AuthorBulletInput{UnitID: 999, Content: content}
			},
		},
		{
			name: "unknown child bullet",
			input: func(unit valueobjects.UnitID) AuthorBulletInput {
				return AuthorBulletInput{UnitID: unit, Content: content, ChildBullets: []valueobjects.BulletPointID{999}}
			},
		},
		{
			name: "unknown raw fact",
			input: func(unit valueobjects.UnitID) AuthorBulletInput {
				return AuthorBulletInput{UnitID: unit, Content: content, RawFacts: []valueobjects.RawFactID{999}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			unit := f.unit("A", "company", 0)

			_, err := f.provenance().CreateBulletPoint(f.ctx, tt.input(unit))
			assert.True(t, pkgerrors.IsNotFound(err), "got %v", err)

			s := f.snapshot()
			assert.Empty(t, s.bullets)
			assert.Empty(t, s.edges)
			assert.Empty(t, s.refs)
		})
	}
}

func TestCreateBulletPoint_TooManySources(t *testing.T) {
	f := newFixture(t)
	unit := f.unit("A", "company", 0)
	content, err := valueobjects.NewContent("busy")
	require.NoError(t, err)

	facts := make([]valueobjects.RawFactID, 501)
	for i := range facts {
		facts[i] = valueobjects.RawFactID(i + 1)
	}
	_, err = f.provenance().CreateBulletPoint(f.ctx, AuthorBulletInput{UnitID: unit, Content: content, RawFacts: facts})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestLinkBulletPoints(t *testing.T) {
	f := newFixture(t)
	a := f.unit("A", "company", 0)
	b := f.unit("B", "company", 0)
	parent := f.manualBullet(a, "parent")
	child := f.manualBullet(b, "child in another unit")

	require.NoError(t, f.provenance().LinkBulletPoints(f.ctx, parent, child))
	require.NoError(t, f.provenance().LinkBulletPoints(f.ctx, parent, child))
	assert.Len(t, f.snapshot().edges, 1)

	require.NoError(t, f.provenance().LinkBulletPoints(f.ctx, parent, parent))
	assert.Contains(t, f.snapshot().edges, entities.DerivationEdge{Parent: parent, Child: parent})

	err := f.provenance().LinkBulletPoints(f.ctx, parent, 999)
	assert.True(t, pkgerrors.IsNotFound(err))
	err = f.provenance().LinkBulletPoints(f.ctx, 999, child)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDetails_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.provenance().Details(f.ctx, 42)
	assert.True(t, pkgerrors.IsNotFound(err))
}
