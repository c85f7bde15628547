package services

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"provenance-backend/application/ports"
	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	pkgerrors "provenance-backend/pkg/errors"
)

func TestRegenerateAll_ArmorScenario(t *testing.T) {
	f := newFixture(t)
	a := f.unit("A", "battalion", 0)
	b := f.unit("B", "company", a)
	r1 := f.rawFact(b, "enemy armor spotted")

	result, err := f.regeneration().RegenerateAll(f.ctx, valueobjects.NewKeywordFilter("armor"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.UnitsProcessed)
	assert.Equal(t, 2, result.BulletsCreated)
	assert.Equal(t, []valueobjects.UnitID{b, a}, result.Order)

	snap := f.snapshot()
	onB := snap.bulletsOf(b)
	onA := snap.bulletsOf(a)
	require.Len(t, onB, 1)
	require.Len(t, onA, 1)

	assert.Equal(t, "enemy armor spotted", onB[0].Content().String())
	assert.Equal(t, "enemy armor spotted", onA[0].Content().String())
	assert.Equal(t, valueobjects.EchelonLevel("company"), onB[0].EchelonLevel())
	assert.Equal(t, valueobjects.EchelonLevel("battalion"), onA[0].EchelonLevel())

	assert.Equal(t, []entities.RawRef{{Bullet: onB[0].ID(), RawFact: r1, SourceType: "raw_source"}}, snap.refs)
	assert.Equal(t, []entities.DerivationEdge{{Parent: onA[0].ID(), Child: onB[0].ID()}}, snap.edges)

	result, err = f.regeneration().RegenerateAll(f.ctx, valueobjects.NewKeywordFilter("logistics"))
	require.NoError(t, err)
	assert.Zero(t, result.BulletsCreated)

	snap = f.snapshot()
	assert.Empty(t, snap.bullets)
	assert.Empty(t, snap.edges)
	assert.Empty(t, snap.refs)
}

func TestRegenerateAll_ProcessesEveryUnitOnce(t *testing.T) {
	f := newFixture(t)
	ids := f.brigade()

	result, err := f.regeneration().RegenerateAll(f.ctx, valueobjects.KeywordFilter{})
	require.NoError(t, err)

	assert.Equal(t, len(ids), result.UnitsProcessed)
	assert.ElementsMatch(t, []valueobjects.UnitID{ids["brigade"], ids["bn1"], ids["bn2"], ids["a"], ids["b"], ids["c"]}, result.Order)
	assert.Equal(t, []valueobjects.UnitID{ids["a"], ids["b"], ids["c"], ids["bn1"], ids["bn2"], ids["brigade"]}, result.Order)

	snap := f.snapshot()
	assert.Len(t, snap.bulletsOf(ids["a"]), 2)
	assert.Len(t, snap.bulletsOf(ids["b"]), 1)
	assert.Empty(t, snap.bulletsOf(ids["c"]))
	assert.Len(t, snap.bulletsOf(ids["bn1"]), 3)
	assert.Len(t, snap.bulletsOf(ids["bn2"]), 1)
	assert.Len(t, snap.bulletsOf(ids["brigade"]), 4)
	assert.Equal(t, 11, result.BulletsCreated)
}

func TestRegenerateAll_EveryBulletHasExactlyOneSource(t *testing.T) {
	f := newFixture(t)
	f.brigade()

	_, err := f.regeneration().RegenerateAll(f.ctx, valueobjects.KeywordFilter{})
	require.NoError(t, err)

	snap := f.snapshot()
	sources := make(map[valueobjects.BulletPointID]int)
	for _, e := range snap.edges {
		sources[e.Parent]++
	}
	for _, r := range snap.refs {
		sources[r.Bullet]++
	}
	require.NotEmpty(t, snap.bullets)
	for _, b := range snap.bullets {
		assert.Equal(t, 1, sources[b.ID()], "bullet %d on unit %d", b.ID(), b.UnitID())
	}
}

func TestRegenerateAll_DerivedFromDirectChildrenOnly(t *testing.T) {
	f := newFixture(t)
	ids := f.brigade()

	_, err := f.regeneration().RegenerateAll(f.ctx, valueobjects.KeywordFilter{})
	require.NoError(t, err)

	snap := f.snapshot()
	owner := make(map[valueobjects.BulletPointID]valueobjects.UnitID)
	for _, b := range snap.bullets {
		owner[b.ID()] = b.UnitID()
	}
	parentOf := make(map[valueobjects.UnitID]valueobjects.UnitID)
	for _, u := range snap.units {
		if p := u.ParentID(); p != nil {
			parentOf[u.ID()] = *p
		}
	}
	for _, e := range snap.edges {
		assert.Equal(t, owner[e.Parent], parentOf[owner[e.Child]], "edge %d -> %d", e.Parent, e.Child)
	}
	assert.Empty(t, snap.bulletsOf(ids["c"]))
}

func TestRegenerateAll_FilteredIsSubsetOfUnfiltered(t *testing.T) {
	f := newFixture(t)
	f.brigade()

	_, err := f.regeneration().RegenerateAll(f.ctx, valueobjects.KeywordFilter{})
	require.NoError(t, err)
	full := contentCounts(f.snapshot().bullets)

	result, err := f.regeneration().RegenerateAll(f.ctx, valueobjects.NewKeywordFilter("ARMOR"))
	require.NoError(t, err)
	assert.Equal(t, 5, result.BulletsCreated)

	filtered := f.snapshot().bullets
	require.NotEmpty(t, filtered)
	for _, b := range filtered {
		assert.True(t, contains(b.Content().String(), "armor"), b.Content().String())
	}
	for key, n := range contentCounts(filtered) {
		assert.LessOrEqual(t, n, full[key], key)
	}
}

func TestRegenerateAll_KeywordWhitespaceIsPartOfTheTerm(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		want    []string
	}{
		{"trailing space", "armor ", []string{"enemy armor spotted"}},
		{"leading space", " armor", []string{"enemy armor spotted"}},
		{"single space", " ", []string{"enemy armor spotted"}},
		{"bare keyword", "armor", []string{"armor", "enemy armor spotted"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			u := f.unit("A", "company", 0)
			f.rawFact(u, "armor")
			f.rawFact(u, "enemy armor spotted")

			result, err := f.regeneration().RegenerateAll(f.ctx, valueobjects.NewKeywordFilter(tt.keyword))
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), result.BulletsCreated)

			var got []string
			for _, b := range f.snapshot().bullets {
				assert.True(t, contains(b.Content().String(), tt.keyword), b.Content().String())
				got = append(got, b.Content().String())
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func contentCounts(bullets []*entities.BulletPoint) map[string]int {
	out := make(map[string]int)
	for _, b := range bullets {
		out[b.UnitID().String()+"|"+b.Content().String()]++
	}
	return out
}

func TestRegenerateAll_RepeatedRunsAreIsomorphic(t *testing.T) {
	f := newFixture(t)
	f.brigade()

	_, err := f.regeneration().RegenerateAll(f.ctx, valueobjects.KeywordFilter{})
	require.NoError(t, err)
	firstIDs := f.snapshot().bullets
	first, err := f.forest().FullHierarchy(f.ctx)
	require.NoError(t, err)

	_, err = f.regeneration().RegenerateAll(f.ctx, valueobjects.KeywordFilter{})
	require.NoError(t, err)
	second, err := f.forest().FullHierarchy(f.ctx)
	require.NoError(t, err)

	if d := cmp.Diff(contentForest(first), contentForest(second)); d != "" {
		t.Errorf("forests differ (-first +second):\n%s", d)
	}
	assert.NotEqual(t, firstIDs[0].ID(), f.snapshot().bullets[0].ID(), "ids are reassigned")
}

func TestRegenerateAll_CycleLeavesPriorLayerIntact(t *testing.T) {
	f := newFixture(t)
	ids := f.brigade()

	_, err := f.regeneration().RegenerateAll(f.ctx, valueobjects.KeywordFilter{})
	require.NoError(t, err)
	before := f.snapshot()

	// Units cannot be reparented through the API, so corrupt the table directly.
	_, err = f.store.DB().ExecContext(f.ctx, "UPDATE units SET parent_id = ? WHERE id = ?", int64(ids["a"]), int64(ids["bn1"]))
	require.NoError(t, err)

	_, err = f.regeneration().RegenerateAll(f.ctx, valueobjects.KeywordFilter{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsHierarchyCycle(err))

	after := f.snapshot()
	assert.Equal(t, len(before.bullets), len(after.bullets))
	assert.Equal(t, before.edges, after.edges)
	assert.Equal(t, before.refs, after.refs)
}

func TestRegenerateAll_ReplacesManualBullets(t *testing.T) {
	f := newFixture(t)
	a := f.unit("A", "company", 0)
	f.manualBullet(a, "hand written")

	_, err := f.regeneration().RegenerateAll(f.ctx, valueobjects.KeywordFilter{})
	require.NoError(t, err)
	assert.Empty(t, f.snapshot().bullets)
}

func TestRegenerateForCCIR(t *testing.T) {
	f := newFixture(t)
	ids := f.brigade()

	var active, inactive valueobjects.CCIRID
	err := f.store.Do(f.ctx, func(ctx context.Context, repos ports.Repositories) error {
		c, err := entities.NewCCIR(ids["brigade"], "bridges and fuel", []string{"bridge", "fuel"}, true)
		require.NoError(t, err)
		if active, err = repos.CCIRs().Create(ctx, c); err != nil {
			return err
		}
		c, err = entities.NewCCIR(ids["brigade"], "old", []string{"armor"}, false)
		require.NoError(t, err)
		inactive, err = repos.CCIRs().Create(ctx, c)
		return err
	})
	require.NoError(t, err)

	result, err := f.regeneration().RegenerateForCCIR(f.ctx, active)
	require.NoError(t, err)
	require.NotNil(t, result.CCIRID)
	assert.Equal(t, active, *result.CCIRID)
	assert.Equal(t, []string{"bridge", "fuel"}, result.Keywords)
	// fuel and bridge facts on two companies, each copied to bn1 and brigade.
	assert.Equal(t, 6, result.BulletsCreated)

	_, err = f.regeneration().RegenerateForCCIR(f.ctx, inactive)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = f.regeneration().RegenerateForCCIR(f.ctx, 999)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Len(t, f.snapshot().bullets, 6, "failed runs keep the previous layer")
}

func TestRegenerateAll_PublishesSummaryEvent(t *testing.T) {
	f := newFixture(t)
	f.brigade()

	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.SummariesRegenerated")).Return(nil).Once()

	svc := NewRegenerationService(f.store, NewEventDispatcher(publisher, nil, nil), nil, nil, nil)
	_, err := svc.RegenerateAll(f.ctx, valueobjects.KeywordFilter{})
	require.NoError(t, err)

	publisher.AssertExpectations(t)
}

func TestRegenerateAll_EmptyStore(t *testing.T) {
	f := newFixture(t)

	result, err := f.regeneration().RegenerateAll(f.ctx, valueobjects.KeywordFilter{})
	require.NoError(t, err)
	assert.Zero(t, result.UnitsProcessed)

	forest, err := f.forest().FullHierarchy(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, forest)
}
