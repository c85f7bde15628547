package commands

import (
	"provenance-backend/application/commands/bus"
	"provenance-backend/application/services"
)

// RegisterHandlers registers every command handler on b.
func RegisterHandlers(
	b *bus.CommandBus,
	catalog *services.CatalogService,
	provenance *services.ProvenanceService,
	invalidation *services.InvalidationService,
	regeneration *services.RegenerationService,
) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{CreateUnitCommand{}, NewCreateUnitHandler(catalog)},
		{CreateRawFactCommand{}, NewCreateRawFactHandler(catalog)},
		{CreateCCIRCommand{}, NewCreateCCIRHandler(catalog)},
		{CreateBulletPointCommand{}, NewCreateBulletPointHandler(provenance)},
		{LinkBulletPointsCommand{}, NewLinkBulletPointsHandler(provenance)},
		{InvalidateBulletPointCommand{}, NewInvalidateBulletPointHandler(invalidation)},
		{RegenerateSummariesCommand{}, NewRegenerateSummariesHandler(regeneration)},
	}
	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}
