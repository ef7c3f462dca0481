package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"evmap/internal/app"
	"evmap/internal/config"
	"evmap/pkg/contracts"
)

// cli holds the state shared by every subcommand
type cli struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Normalize EV fleet and environment spreadsheets and query them by region and year",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = c.logLevel
			}
			c.cfg = cfg
			return nil
		},
		Version:      contracts.GetFullVersionString(),
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to a YAML configuration file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")

	root.AddCommand(
		newIngestCmd(c),
		newServeCmd(c),
		newAggregateCmd(c),
		newExportCmd(c),
	)
	return root
}

// loadApplication builds the application and ingests every source.
// The caller must Close the application.
func (c *cli) loadApplication(ctx context.Context) (*app.Application, error) {
	a, err := app.NewApplication(c.cfg, nil)
	if err != nil {
		return nil, err
	}
	if err := a.Ingest(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	return a, nil
}
