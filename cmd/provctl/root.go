package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"provenance-backend/infrastructure/config"
	"provenance-backend/infrastructure/di"
)

// cli carries the state shared by every subcommand
type cli struct {
	configPath string
	out        io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	cmd := &cobra.Command{
		Use:          "provctl",
		Short:        "Operate the provenance store: migrate, serve, regenerate and inspect",
		SilenceUsage: true,
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv("CONFIG_FILE"), "YAML config file layered under the environment")

	cmd.AddCommand(
		c.migrateCmd(),
		c.serveCmd(),
		c.regenerateCmd(),
		c.invalidateCmd(),
		c.hierarchyCmd(),
		c.tokenCmd(),
	)
	return cmd
}

func (c *cli) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withContainer builds the full dependency graph, runs fn and tears it down
func (c *cli) withContainer(ctx context.Context, fn func(*di.Container) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer cleanup()
	return fn(container)
}

func (c *cli) printJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
