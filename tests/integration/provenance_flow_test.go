package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"provenance-backend/application/services"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/domain/events"
	"provenance-backend/infrastructure/persistence/sqlstore/sqlstoretest"
	pkgerrors "provenance-backend/pkg/errors"
)

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, e events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, e.GetEventType())
	return nil
}

func (p *recordingPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	for _, e := range evts {
		_ = p.Publish(ctx, e)
	}
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}

// TestProvenanceFlow drives every service against one store: catalog,
// regeneration, manual provenance, invalidation and the forest views.
func TestProvenanceFlow(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)
	logger := zaptest.NewLogger(t)
	publisher := &recordingPublisher{}
	dispatcher := services.NewEventDispatcher(publisher, logger, nil)

	catalog := services.NewCatalogService(store, dispatcher, logger, nil)
	provenance := services.NewProvenanceService(store, dispatcher, logger, nil)
	invalidation := services.NewInvalidationService(store, dispatcher, logger, nil)
	regeneration := services.NewRegenerationService(store, dispatcher, logger, nil, nil)
	forest := services.NewForestService(store)

	brigade, err := catalog.CreateUnit(ctx, "1st Brigade", "brigade", nil)
	require.NoError(t, err)
	parent := brigade.ID()
	company, err := catalog.CreateUnit(ctx, "A Company", "company", &parent)
	require.NoError(t, err)
	armor, err := catalog.CreateRawFact(ctx, company.ID(), "enemy armor spotted", "")
	require.NoError(t, err)
	_, err = catalog.CreateRawFact(ctx, company.ID(), "supply route open", "")
	require.NoError(t, err)
	_, err = catalog.CreateCCIR(ctx, brigade.ID(), "Armor", []string{"armor"}, false)
	require.NoError(t, err)

	result, err := regeneration.RegenerateAll(ctx, valueobjects.KeywordFilter{})
	require.NoError(t, err)
	assert.Equal(t, []valueobjects.UnitID{company.ID(), brigade.ID()}, result.Order)
	assert.Equal(t, 4, result.BulletsCreated)

	t.Run("inactive ccir is rejected before anything is rebuilt", func(t *testing.T) {
		_, err := regeneration.RegenerateForCCIR(ctx, 1)
		assert.True(t, pkgerrors.IsValidation(err), "got %v", err)

		bullets, err := forest.ListBulletPoints(ctx, brigade.ID(), true)
		require.NoError(t, err)
		assert.Len(t, bullets, 4)
	})

	t.Run("failed bullet point creation writes nothing", func(t *testing.T) {
		content, err := valueobjects.NewContent("orphaned summary")
		require.NoError(t, err)
		_, err = provenance.CreateBulletPoint(ctx, services.AuthorBulletInput{
			UnitID:   brigade.ID(),
			Content:  content,
			RawFacts: []valueobjects.RawFactID{armor.ID(), 999},
		})
		assert.True(t, pkgerrors.IsNotFound(err), "got %v", err)

		bullets, err := forest.ListBulletPoints(ctx, brigade.ID(), false)
		require.NoError(t, err)
		assert.Len(t, bullets, 2)
	})

	content, err := valueobjects.NewContent("armor column moving north")
	require.NoError(t, err)
	manual, err := provenance.CreateBulletPoint(ctx, services.AuthorBulletInput{
		UnitID:       brigade.ID(),
		Content:      content,
		ChildBullets: []valueobjects.BulletPointID{1},
		RawFacts:     []valueobjects.RawFactID{armor.ID()},
	})
	require.NoError(t, err)
	assert.Equal(t, brigade.EchelonLevel(), manual.EchelonLevel())

	details, err := provenance.Details(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []valueobjects.BulletPointID{3, manual.ID()}, details.ParentIDs)

	invalidated, err := invalidation.Invalidate(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []valueobjects.BulletPointID{1, 3, manual.ID()}, invalidated)

	roots, err := forest.FullHierarchy(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 3)
	for _, root := range roots {
		require.NotEmpty(t, root.Children)
		wantValid := root.Children[0].ID != 1
		assert.Equal(t, wantValid, root.Validity.IsValid(), "root %d", root.ID)
	}

	assert.Equal(t, []string{
		events.TypeUnitCreated,
		events.TypeUnitCreated,
		events.TypeRawFactCreated,
		events.TypeRawFactCreated,
		events.TypeCCIRCreated,
		events.TypeSummariesRegenerated,
		events.TypeBulletPointCreated,
		events.TypeBulletPointInvalid,
	}, publisher.Types())
}
