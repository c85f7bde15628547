package rest

import (
	"context"
	"net/http"
	"time"

	"provenance-backend/application/commands/bus"
	querybus "provenance-backend/application/queries/bus"
	"provenance-backend/interfaces/http/rest/handlers"
	"provenance-backend/interfaces/http/rest/middleware"
	v1 "provenance-backend/interfaces/http/rest/v1"
	"provenance-backend/pkg/auth"
	"provenance-backend/pkg/common"
	pkgerrors "provenance-backend/pkg/errors"
	"provenance-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Options tunes the router
type Options struct {
	EnableCORS     bool
	AllowedOrigins []string
	// ServeMetrics exposes /metrics on this router
	ServeMetrics bool
	Debug        bool
	// Validator enables bearer token authentication when set
	Validator *auth.JWTValidator
	// RegenerateLimiter guards regeneration, allowing RegeneratePerMinute per caller
	RegenerateLimiter   auth.RateLimiter
	RegeneratePerMinute int
	// RegenerateRole is the token role required to regenerate. It only
	// applies when Validator is set.
	RegenerateRole string
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	health     HealthChecker
	metrics    *observability.Collector
	opts       Options
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	health HealthChecker,
	metrics *observability.Collector,
	opts Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		health:     health,
		metrics:    metrics,
		opts:       opts,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errs := pkgerrors.NewErrorHandler(rt.logger, rt.opts.Debug)

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	router.Use(errs.Middleware)
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.opts.ServeMetrics && rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	authenticate := middleware.Authenticate(rt.opts.Validator, errs)
	regenerateGuard := rt.regenerateGuard(errs)

	units := handlers.NewUnitHandler(rt.commandBus, rt.queryBus, errs, rt.logger)
	bullets := handlers.NewBulletPointHandler(rt.commandBus, rt.queryBus, errs, rt.logger)

	// API v2 routes (current)
	router.Route("/api/v2", func(r chi.Router) {
		r.Use(authenticate)

		r.Route("/units", func(r chi.Router) {
			r.Post("/", units.CreateUnit)
			r.Get("/", units.ListUnits)
			r.Route("/{unitID}", func(r chi.Router) {
				r.Get("/subtree", units.GetSubtree)
				r.Get("/raw-facts", units.ListRawFacts)
				r.Get("/ccirs", units.ListCCIRs)
				r.Get("/bullet-points", bullets.ListUnitBulletPoints)
				r.Get("/hierarchy", bullets.GetUnitHierarchy)
			})
		})

		r.Post("/raw-facts", units.CreateRawFact)
		r.Post("/ccirs", units.CreateCCIR)

		r.Route("/bullet-points", func(r chi.Router) {
			r.Post("/", bullets.CreateBulletPoint)
			r.Post("/link", bullets.LinkBulletPoints)
			r.Get("/{bulletID}", bullets.GetBulletPoint)
			r.Post("/{bulletID}/invalidate", bullets.InvalidateBulletPoint)
		})

		r.Get("/hierarchy", bullets.GetHierarchy)
		r.With(regenerateGuard).Post("/summaries/regenerate", bullets.RegenerateSummaries)
	})

	// Original unversioned routes
	legacy := v1.NewRouter(rt.commandBus, rt.queryBus, v1.Config{
		Authenticate:    authenticate,
		RegenerateGuard: regenerateGuard,
	}, rt.logger)
	for _, prefix := range v1.Prefixes {
		router.Handle(prefix, legacy)
		router.Handle(prefix+"/*", legacy)
	}

	return otelhttp.NewHandler(router, "provenance-api")
}

func (rt *Router) regenerateGuard(errs *pkgerrors.ErrorHandler) func(http.Handler) http.Handler {
	requireRole := func(next http.Handler) http.Handler { return next }
	if rt.opts.Validator != nil {
		requireRole = middleware.RequireRole(rt.opts.RegenerateRole, errs)
	}
	if rt.opts.RegenerateLimiter == nil {
		return requireRole
	}
	limit := middleware.RateLimit(rt.opts.RegenerateLimiter, rt.opts.RegeneratePerMinute, errs, rt.logger)
	return func(next http.Handler) http.Handler {
		return requireRole(limit(next))
	}
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondRaw(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports ready only when the store answers a ping
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	if rt.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.health.Ping(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			common.RespondRaw(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	common.RespondRaw(w, http.StatusOK, map[string]string{"status": "ready"})
}
