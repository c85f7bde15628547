package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"provenance-backend/infrastructure/config"
	"provenance-backend/infrastructure/persistence/sqlstore"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			logger, _, err := config.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			store, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DBDSN, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx); err != nil {
				return err
			}
			version, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			logger.Info("Schema migrated", zap.String("driver", cfg.DBDriver), zap.Int("version", version))
			fmt.Fprintf(c.out, "schema version %d\n", version)
			return nil
		},
	}
}
