package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// ServerConfig names the listeners Serve starts
type ServerConfig struct {
	Address string
	// MetricsAddress starts a second listener for /metrics when set
	MetricsAddress string
	Metrics        http.Handler
}

// Serve runs the API listener, plus the metrics listener when configured,
// until ctx is cancelled or a listener fails. Both are shut down gracefully.
func Serve(ctx context.Context, cfg ServerConfig, handler http.Handler, logger *zap.Logger) error {
	servers := []*http.Server{{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}}
	if cfg.MetricsAddress != "" && cfg.Metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", cfg.Metrics)
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Info("Starting server", zap.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
