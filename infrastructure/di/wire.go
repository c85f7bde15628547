//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"provenance-backend/application/services"
	"provenance-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogging,
	ProvideLogger,
	ProvideStore,
	ProvideUnitOfWork,
	ProvideMetrics,
	ProvideEventPublisher,
	ProvideEventDispatcher,
	ProvideDomainConfig,
	services.NewCatalogService,
	services.NewProvenanceService,
	services.NewInvalidationService,
	services.NewRegenerationService,
	services.NewForestService,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideRouterOptions,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
