package di

import (
	"net/http"

	"provenance-backend/application/commands/bus"
	"provenance-backend/application/ports"
	querybus "provenance-backend/application/queries/bus"
	"provenance-backend/application/services"
	"provenance-backend/infrastructure/config"
	"provenance-backend/infrastructure/persistence/sqlstore"
	"provenance-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logging      *Logging
	Store        *sqlstore.Store
	Publisher    ports.EventPublisher
	Metrics      *observability.Collector
	Catalog      *services.CatalogService
	Provenance   *services.ProvenanceService
	Invalidation *services.InvalidationService
	Regeneration *services.RegenerationService
	Forest       *services.ForestService
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	Handler      http.Handler
}
