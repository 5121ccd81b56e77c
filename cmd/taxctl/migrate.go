package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/infrastructure/migration"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	open := func() (*migration.Migrator, error) {
		if err := os.MkdirAll(filepath.Dir(a.cfg.Database.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		return migration.Open(a.cfg.Database.Path, a.log)
	}

	run := func(fn func(*migration.Migrator) error) error {
		m, err := open()
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				a.log.Warn("Error closing migrator", zap.Error(err))
			}
		}()
		return fn(m)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run((*migration.Migrator).Up)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run((*migration.Migrator).Down)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(func(m *migration.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version: %d, dirty: %t\n", version, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the embedded migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				names, err := migration.Available()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), "  -", name)
				}
				return nil
			},
		},
	)

	return cmd
}
