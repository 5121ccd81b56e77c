package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/application/pipeline"
	"github.com/taxpayers/backend/internal/infrastructure/columnar"
)

// withService runs fn against a pipeline service. The DuckDB engine is only
// opened when the step reads or writes Parquet.
func (a *app) withService(ctx context.Context, needsEngine bool, fn func(*pipeline.Service) error) error {
	if !needsEngine {
		return fn(pipeline.NewService(a.cfg, nil, pipeline.WithMetrics(a.metrics)))
	}

	engine, err := columnar.Open()
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			a.log.Warn("Error closing columnar engine", zap.Error(err))
		}
	}()

	return fn(pipeline.NewService(a.cfg, engine, pipeline.WithMetrics(a.metrics)))
}

func newLoadCmd(a *app) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Rebuild the SQLite database from one year's CSV files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if year != 0 {
				if !a.cfg.HasYear(year) {
					return fmt.Errorf("year %d is not one of the configured years %v", year, a.cfg.Years)
				}
				a.cfg.Database.Year = year
			}
			return a.withService(cmd.Context(), false, func(svc *pipeline.Service) error {
				_, err := svc.BuildDatabase(cmd.Context())
				return err
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year to load (default: database.year)")
	return cmd
}

func newParquetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parquet [year]",
		Short: "Convert the CSV files to sorted, compressed Parquet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				return a.withService(ctx, true, func(svc *pipeline.Service) error {
					_, err := svc.ConvertAll(ctx)
					return err
				})
			}

			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			return a.withService(ctx, true, func(svc *pipeline.Service) error {
				_, err := svc.ConvertYear(ctx, year)
				return err
			})
		},
	}
}

func newConsolidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "consolidate",
		Short: "Write every year and category into one Parquet file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), true, func(svc *pipeline.Service) error {
				_, err := svc.Consolidate(cmd.Context())
				return err
			})
		},
	}
}

func newWebDataCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "webdata",
		Short: "Export statistics.json and the top taxpayer documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), true, func(svc *pipeline.Service) error {
				_, err := svc.WebData(cmd.Context())
				return err
			})
		},
	}
}

func newAcrossYearsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "across-years",
		Short: "Export the top taxpayers by total tax over all years",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), true, func(svc *pipeline.Service) error {
				_, err := svc.AcrossYears(cmd.Context())
				return err
			})
		},
	}
}

func newBuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Run every step: load, parquet, consolidate, webdata, across-years",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withService(ctx, true, func(svc *pipeline.Service) error {
				if _, err := svc.BuildDatabase(ctx); err != nil {
					return err
				}
				if _, err := svc.ConvertAll(ctx); err != nil {
					return err
				}
				if _, err := svc.Consolidate(ctx); err != nil {
					return err
				}
				if _, err := svc.WebData(ctx); err != nil {
					return err
				}
				_, err := svc.AcrossYears(ctx)
				return err
			})
		},
	}
}
