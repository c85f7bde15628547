package di

import (
	"context"
	"fmt"
	"net/http"

	"provenance-backend/application/commands"
	"provenance-backend/application/commands/bus"
	"provenance-backend/application/ports"
	querybus "provenance-backend/application/queries/bus"
	queryhandlers "provenance-backend/application/queries/handlers"
	"provenance-backend/application/services"
	domainconfig "provenance-backend/domain/config"
	"provenance-backend/infrastructure/config"
	"provenance-backend/infrastructure/messaging"
	"provenance-backend/infrastructure/messaging/eventbridge"
	"provenance-backend/infrastructure/persistence/sqlstore"
	"provenance-backend/interfaces/http/rest"
	"provenance-backend/pkg/auth"
	"provenance-backend/pkg/observability"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// MetricsNamespace prefixes every exported Prometheus metric
const MetricsNamespace = "provenance"

// Logging bundles the logger with the level the config watcher adjusts
type Logging struct {
	Logger *zap.Logger
	Level  zap.AtomicLevel
}

// ProvideLogging creates the service logger
func ProvideLogging(cfg *config.Config) (*Logging, func(), error) {
	logger, level, err := config.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	cleanup := func() { _ = logger.Sync() }
	return &Logging{Logger: logger, Level: level}, cleanup, nil
}

// ProvideLogger exposes the logger on its own for constructors that need it
func ProvideLogger(l *Logging) *zap.Logger {
	return l.Logger
}

// ProvideStore opens the relational store and brings its schema up to date
func ProvideStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlstore.Store, func(), error) {
	store, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DBDSN, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideUnitOfWork exposes the store as the transaction boundary
func ProvideUnitOfWork(store *sqlstore.Store) ports.UnitOfWork {
	return store
}

// ProvideMetrics creates the Prometheus collector, or nil when metrics are disabled
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector(MetricsNamespace)
}

// ProvideEventPublisher publishes to EventBridge when an event bus is
// configured and to the log otherwise. Either way a circuit breaker sits
// in front so a failing bus cannot slow down requests.
func ProvideEventPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.EventPublisher, error) {
	var publisher ports.EventPublisher
	if cfg.EventBusName == "" {
		publisher = messaging.NewLogPublisher(logger)
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		publisher = eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger)
	}
	return messaging.NewBreakerPublisher(publisher, messaging.DefaultBreakerConfig("event-publisher"), logger), nil
}

// ProvideEventDispatcher creates the post-commit event dispatcher
func ProvideEventDispatcher(publisher ports.EventPublisher, logger *zap.Logger, metrics *observability.Collector) *services.EventDispatcher {
	return services.NewEventDispatcher(publisher, logger, metrics)
}

// ProvideDomainConfig returns the domain limits
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	logger *zap.Logger,
	metrics *observability.Collector,
	catalog *services.CatalogService,
	provenance *services.ProvenanceService,
	invalidation *services.InvalidationService,
	regeneration *services.RegenerationService,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(metrics),
	)
	if err := commands.RegisterHandlers(commandBus, catalog, provenance, invalidation, regeneration); err != nil {
		return nil, err
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	metrics *observability.Collector,
	catalog *services.CatalogService,
	provenance *services.ProvenanceService,
	forest *services.ForestService,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()
	queryBus.Use(querybus.NewMetricsMiddleware(metrics).Wrap)
	if err := queryhandlers.RegisterHandlers(queryBus, catalog, provenance, forest); err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideRouterOptions derives the HTTP options from configuration
func ProvideRouterOptions(cfg *config.Config) (rest.Options, error) {
	opts := rest.Options{
		EnableCORS:          cfg.EnableCORS,
		AllowedOrigins:      cfg.CORSAllowedOrigins,
		ServeMetrics:        cfg.EnableMetrics && (cfg.IsLambda || cfg.MetricsAddress == ""),
		Debug:               cfg.IsDevelopment(),
		RegenerateLimiter:   auth.NewPerMinuteLimiter(cfg.RegenerateRatePerMinute),
		RegeneratePerMinute: cfg.RegenerateRatePerMinute,
		RegenerateRole:      cfg.RegenerateRole,
	}

	if cfg.AuthEnabled() {
		validator, err := auth.NewJWTValidator(auth.JWTConfig{
			SecretKey: cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
		})
		if err != nil {
			return opts, err
		}
		opts.Validator = validator
	}
	return opts, nil
}

// ProvideHTTPHandler builds the HTTP router
func ProvideHTTPHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	store *sqlstore.Store,
	metrics *observability.Collector,
	opts rest.Options,
	logger *zap.Logger,
) http.Handler {
	return rest.NewRouter(commandBus, queryBus, store, metrics, opts, logger).Setup()
}
