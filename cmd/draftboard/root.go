package main

import (
	"fmt"

	"github.com/aristath/draftboard/internal/config"
	"github.com/aristath/draftboard/internal/di"
	"github.com/aristath/draftboard/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	logLevel string
	pretty   bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "draftboard",
		Short:         "Salary-cap fantasy draft valuation engine",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}
			a.cfg = cfg
			a.log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: a.pretty})
			logger.SetGlobalLogger(a.log)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	root.PersistentFlags().BoolVar(&a.pretty, "pretty", true, "human-readable console logs")

	root.AddCommand(
		newLoadCmd(a),
		newRecalculateCmd(a),
		newTrainCmd(a),
		newImportHistoryCmd(a),
		newDraftCmd(a),
		newUndoCmd(a),
		newLogCmd(a),
		newServeCmd(a),
		newBackupCmd(a),
	)

	return root
}

// withContainer wires the container, runs fn and closes it
func (a *app) withContainer(fn func(c *di.Container, jobs *di.JobInstances) error) error {
	container, jobs, err := di.Wire(a.cfg, a.log)
	if err != nil {
		return fmt.Errorf("failed to wire dependencies: %w", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close container")
		}
	}()
	return fn(container, jobs)
}
