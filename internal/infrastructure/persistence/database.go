package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taxpayers/backend/internal/infrastructure/config"
	"github.com/taxpayers/backend/internal/infrastructure/logger"
)

// Database holds the SQLite connection used by the loader and the query tool
type Database struct {
	DB   *gorm.DB
	Path string
}

// NewDatabase opens (creating if needed) the SQLite file named by the configuration
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*Database, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:                 logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.LogLevel)),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// SQLite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, Path: cfg.Path}, nil
}

// OpenExisting opens a database that must already exist, as the query tool requires
func OpenExisting(cfg *config.DatabaseConfig, log *zap.Logger) (*Database, error) {
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	return NewDatabase(cfg, log)
}

// SQLDB returns the underlying database handle
func (d *Database) SQLDB() (*sql.DB, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.SQLDB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.SQLDB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Transaction executes a function within a database transaction
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}
