package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"provenance-backend/domain/core/valueobjects"
	pkgerrors "provenance-backend/pkg/errors"
)

func validity(f *fixture) map[valueobjects.BulletPointID]valueobjects.ValidityStatus {
	out := make(map[valueobjects.BulletPointID]valueobjects.ValidityStatus)
	for _, b := range f.snapshot().bullets {
		out[b.ID()] = b.Validity()
	}
	return out
}

func TestInvalidate_PropagatesToDerivers(t *testing.T) {
	f := newFixture(t)
	unit := f.unit("A", "company", 0)
	leaf := f.manualBullet(unit, "leaf")
	mid := f.manualBullet(unit, "mid", leaf)
	root := f.manualBullet(unit, "root", mid)
	other := f.manualBullet(unit, "unrelated")

	got, err := f.invalidation().Invalidate(f.ctx, leaf)
	require.NoError(t, err)
	assert.Equal(t, []valueobjects.BulletPointID{leaf, mid, root}, got)

	status := validity(f)
	assert.Equal(t, valueobjects.StatusInvalid, status[leaf])
	assert.Equal(t, valueobjects.StatusInvalid, status[mid])
	assert.Equal(t, valueobjects.StatusInvalid, status[root])
	assert.Equal(t, valueobjects.StatusValid, status[other])
}

func TestInvalidate_DoesNotPropagateDownward(t *testing.T) {
	f := newFixture(t)
	unit := f.unit("A", "company", 0)
	leaf := f.manualBullet(unit, "leaf")
	root := f.manualBullet(unit, "root", leaf)

	_, err := f.invalidation().Invalidate(f.ctx, root)
	require.NoError(t, err)

	status := validity(f)
	assert.Equal(t, valueobjects.StatusInvalid, status[root])
	assert.Equal(t, valueobjects.StatusValid, status[leaf])
}

func TestInvalidate_Idempotent(t *testing.T) {
	f := newFixture(t)
	unit := f.unit("A", "company", 0)
	leaf := f.manualBullet(unit, "leaf")
	f.manualBullet(unit, "root", leaf)

	_, err := f.invalidation().Invalidate(f.ctx, leaf)
	require.NoError(t, err)
	once := validity(f)

	_, err = f.invalidation().Invalidate(f.ctx, leaf)
	require.NoError(t, err)
	assert.Equal(t, once, validity(f))
}

func TestInvalidate_ReachesParentsLinkedLater(t *testing.T) {
	f := newFixture(t)
	unit := f.unit("A", "company", 0)
	leaf := f.manualBullet(unit, "leaf")
	mid := f.manualBullet(unit, "mid", leaf)

	_, err := f.invalidation().Invalidate(f.ctx, leaf)
	require.NoError(t, err)

	late := f.manualBullet(unit, "late parent")
	require.NoError(t, f.provenance().LinkBulletPoints(f.ctx, late, mid))

	got, err := f.invalidation().Invalidate(f.ctx, leaf)
	require.NoError(t, err)
	assert.Contains(t, got, late)
	assert.Equal(t, valueobjects.StatusInvalid, validity(f)[late])
}

func TestInvalidate_TerminatesOnCycles(t *testing.T) {
	f := newFixture(t)
	unit := f.unit("A", "company", 0)
	x := f.manualBullet(unit, "x")
	y := f.manualBullet(unit, "y", x)
	require.NoError(t, f.provenance().LinkBulletPoints(f.ctx, x, y))

	got, err := f.invalidation().Invalidate(f.ctx, x)
	require.NoError(t, err)
	assert.ElementsMatch(t, []valueobjects.BulletPointID{x, y}, got)
}

func TestInvalidate_SelfLinkTerminates(t *testing.T) {
	f := newFixture(t)
	unit := f.unit("A", "company", 0)
	x := f.manualBullet(unit, "x")
	top := f.manualBullet(unit, "top", x)
	require.NoError(t, f.provenance().LinkBulletPoints(f.ctx, x, x))

	got, err := f.invalidation().Invalidate(f.ctx, x)
	require.NoError(t, err)
	assert.ElementsMatch(t, []valueobjects.BulletPointID{x, top}, got)

	once := validity(f)
	_, err = f.invalidation().Invalidate(f.ctx, x)
	require.NoError(t, err)
	assert.Equal(t, once, validity(f))
}

func TestInvalidate_DiamondVisitsOnce(t *testing.T) {
	f := newFixture(t)
	unit := f.unit("A", "company", 0)
	leaf := f.manualBullet(unit, "leaf")
	left := f.manualBullet(unit, "left", leaf)
	right := f.manualBullet(unit, "right", leaf)
	top := f.manualBullet(unit, "top", left, right)

	got, err := f.invalidation().Invalidate(f.ctx, leaf)
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.ElementsMatch(t, []valueobjects.BulletPointID{leaf, left, right, top}, got)
}

func TestInvalidate_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.invalidation().Invalidate(f.ctx, 12345)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestInvalidate_PublishesEvent(t *testing.T) {
	f := newFixture(t)
	unit := f.unit("A", "company", 0)
	leaf := f.manualBullet(unit, "leaf")

	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.BulletPointInvalidated")).Return(nil).Once()

	svc := NewInvalidationService(f.store, NewEventDispatcher(publisher, nil, nil), nil, nil)
	_, err := svc.Invalidate(f.ctx, leaf)
	require.NoError(t, err)
	publisher.AssertExpectations(t)
}
