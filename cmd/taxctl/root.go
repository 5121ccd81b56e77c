package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/infrastructure/config"
	"github.com/taxpayers/backend/internal/infrastructure/logger"
	"github.com/taxpayers/backend/internal/infrastructure/telemetry"
)

// app carries what every command needs once the root pre-run has finished
type app struct {
	configPath string

	cfg     *config.Config
	log     *zap.Logger
	metrics *telemetry.RunMetrics
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "taxctl",
		Short:         "Build and query the Pakistani taxpayer datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.finish()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: taxpayers.toml in . or ./config)")

	cmd.AddCommand(
		newLoadCmd(a),
		newParquetCmd(a),
		newConsolidateCmd(a),
		newWebDataCmd(a),
		newAcrossYearsCmd(a),
		newBuildCmd(a),
		newQueryCmd(a),
		newPublishCmd(a),
		newServeCmd(a),
		newMigrateCmd(a),
	)

	return cmd
}

// init loads the configuration, builds the logger and tags the command
// context with a fresh run id
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return err
	}

	logCfg := logger.DefaultConfig()
	if cfg.Log.Format == "json" {
		logCfg = logger.BatchConfig()
	}
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cfg.Log.Output

	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, log = logger.StartRun(ctx, log)
	cmd.SetContext(ctx)

	a.cfg = cfg
	a.log = log
	a.metrics = telemetry.NewRunMetrics()

	log.Debug("Configuration loaded",
		zap.String("command", cmd.CommandPath()),
		zap.Ints("years", cfg.Years),
		zap.String("data_dir", cfg.Paths.DataDir),
	)
	return nil
}

// finish writes the run metrics and flushes the logger
func (a *app) finish() error {
	if a.log == nil {
		return nil
	}
	defer func() {
		_ = logger.Sync(a.log)
	}()

	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			return err
		}
		a.log.Info("Run metrics written", zap.String("path", path))
	}
	return nil
}
