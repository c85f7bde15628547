package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"provenance-backend/domain/core/valueobjects"
	pkgerrors "provenance-backend/pkg/errors"
)

func (f *fixture) catalog() *CatalogService {
	return NewCatalogService(f.store, nil, nil, nil)
}

func TestCatalog_Units(t *testing.T) {
	f := newFixture(t)
	svc := f.catalog()

	root, err := svc.CreateUnit(f.ctx, "1st Brigade", "brigade", nil)
	require.NoError(t, err)
	rootID := root.ID()
	child, err := svc.CreateUnit(f.ctx, " 1st Battalion ", "battalion", &rootID)
	require.NoError(t, err)
	assert.Equal(t, "1st Battalion", child.Name())

	missing := valueobjects.UnitID(999)
	_, err = svc.CreateUnit(f.ctx, "Lost", "company", &missing)
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = svc.CreateUnit(f.ctx, "", "company", nil)
	assert.True(t, pkgerrors.IsValidation(err))
	_, err = svc.CreateUnit(f.ctx, "No echelon", "  ", nil)
	assert.True(t, pkgerrors.IsValidation(err))

	units, err := svc.ListUnits(f.ctx)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, rootID, units[0].ID())
	assert.Equal(t, child.ID(), units[1].ID())
}

func TestCatalog_UnitSubtree(t *testing.T) {
	f := newFixture(t)
	ids := f.brigade()

	node, err := f.catalog().UnitSubtree(f.ctx, ids["bn1"])
	require.NoError(t, err)
	assert.Equal(t, ids["bn1"], node.Unit.ID())
	require.Len(t, node.Children, 2)
	assert.Equal(t, ids["a"], node.Children[0].Unit.ID())
	assert.Equal(t, ids["b"], node.Children[1].Unit.ID())
	assert.Empty(t, node.Children[0].Children)

	_, err = f.catalog().UnitSubtree(f.ctx, 999)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCatalog_RawFacts(t *testing.T) {
	f := newFixture(t)
	ids := f.brigade()
	svc := f.catalog()

	fact, err := svc.CreateRawFact(f.ctx, ids["c"], "civilians moving south", "")
	require.NoError(t, err)
	assert.Equal(t, "sitrep", fact.SourceType())

	_, err = svc.CreateRawFact(f.ctx, 999, "nobody", "")
	assert.True(t, pkgerrors.IsNotFound(err))
	_, err = svc.CreateRawFact(f.ctx, ids["c"], "   ", "")
	assert.True(t, pkgerrors.IsValidation(err))

	facts, err := svc.ListRawFacts(f.ctx, ids["a"])
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, "enemy armor spotted", facts[0].Content().String())

	facts, err = svc.ListRawFacts(f.ctx, ids["bn1"])
	require.NoError(t, err)
	assert.Empty(t, facts, "descendant facts are not listed")

	_, err = svc.ListRawFacts(f.ctx, 999)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCatalog_CCIRs(t *testing.T) {
	f := newFixture(t)
	ids := f.brigade()
	svc := f.catalog()

	active, err := svc.CreateCCIR(f.ctx, ids["brigade"], "Bridge status", []string{"bridge", " ", "crossing"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"bridge", "crossing"}, active.Keywords())
	_, err = svc.CreateCCIR(f.ctx, ids["brigade"], "Old requirement", []string{"fuel"}, false)
	require.NoError(t, err)

	_, err = svc.CreateCCIR(f.ctx, ids["brigade"], "Empty", []string{" "}, true)
	assert.True(t, pkgerrors.IsValidation(err))
	_, err = svc.CreateCCIR(f.ctx, 999, "Nobody", []string{"x"}, true)
	assert.True(t, pkgerrors.IsNotFound(err))

	all, err := svc.ListCCIRs(f.ctx, ids["brigade"], false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyActive, err := svc.ListCCIRs(f.ctx, ids["brigade"], true)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, active.ID(), onlyActive[0].ID())

	_, err = svc.ListCCIRs(f.ctx, 999, false)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCatalog_PublishesEvents(t *testing.T) {
	f := newFixture(t)
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.UnitCreated")).Return(nil).Once()
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.RawFactCreated")).Return(nil).Once()

	svc := NewCatalogService(f.store, NewEventDispatcher(publisher, nil, nil), nil, nil)
	unit, err := svc.CreateUnit(f.ctx, "A", "company", nil)
	require.NoError(t, err)
	_, err = svc.CreateRawFact(f.ctx, unit.ID(), "contact", "")
	require.NoError(t, err)

	publisher.AssertExpectations(t)
}
