package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"provenance-backend/infrastructure/di"
	"provenance-backend/interfaces/http/rest"
	"provenance-backend/pkg/observability"
)

func (c *cli) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return c.withContainer(ctx, func(container *di.Container) error {
				cfg := container.Config
				logger := container.Logging.Logger

				shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
					Enabled:     cfg.EnableTracing,
					ServiceName: "provenance-api",
					Environment: cfg.Environment,
					Endpoint:    cfg.OTLPEndpoint,
					SampleRate:  1.0,
				})
				if err != nil {
					return err
				}
				defer func() { _ = shutdownTracing(context.Background()) }()

				serverCfg := rest.ServerConfig{Address: cfg.ServerAddress}
				if addr != "" {
					serverCfg.Address = addr
				}
				if container.Metrics != nil {
					serverCfg.MetricsAddress = cfg.MetricsAddress
					serverCfg.Metrics = container.Metrics.Handler()
				}

				logger.Info("Provenance API starting", zap.String("address", serverCfg.Address))
				return rest.Serve(ctx, serverCfg, container.Handler, logger)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides SERVER_ADDRESS")
	return cmd
}
