package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
	"github.com/taxpayers/backend/internal/infrastructure/migration"
	"github.com/taxpayers/backend/internal/infrastructure/persistence"
	"github.com/taxpayers/backend/internal/infrastructure/telemetry"
)

// BuildResult reports a database build
type BuildResult struct {
	Path  string
	Year  int
	Loads []*persistence.LoadResult
	Stats []*persistence.TableStats
}

// BuildDatabase regenerates the SQLite database from scratch: the file is
// removed, the schema migrated and the configured year's three category files
// loaded. Per-table statistics are logged once loading is done.
func (s *Service) BuildDatabase(ctx context.Context) (*BuildResult, error) {
	ctx, log, done := s.step(ctx, telemetry.StepLoad)
	defer done()

	dbCfg := s.cfg.Database
	result := &BuildResult{Path: dbCfg.Path, Year: dbCfg.Year}

	if err := os.Remove(dbCfg.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove old database: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbCfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := migrateSchema(dbCfg.Path, log); err != nil {
		return nil, err
	}

	db, err := persistence.NewDatabase(&dbCfg, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	loader := persistence.NewTaxpayerLoader(db.DB, s.decoder, dbCfg.BatchSize)
	for _, category := range taxpayer.AllCategories {
		path := s.source.CSVPath(dbCfg.Year, category)
		res, err := loader.LoadFile(ctx, path, category, dbCfg.Year)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveLoad(string(category), res.Read, res.Inserted, res.Duplicates, res.Skipped)
		result.Loads = append(result.Loads, res)
	}

	repo := persistence.NewGormTaxpayerRepository(db.DB)
	for _, category := range taxpayer.AllCategories {
		stats, err := repo.Stats(ctx, category)
		if err != nil {
			return nil, err
		}
		result.Stats = append(result.Stats, stats)
		log.Info("Table statistics",
			zap.String("table", category.Table()),
			zap.Int64("count", stats.Count),
			zap.String("total_tax", formatNullDecimal(stats.TotalTax)),
			zap.String("avg_tax", formatNullDecimal(stats.AvgTax)),
			zap.String("max_tax", formatNullDecimal(stats.MaxTax)),
		)
	}

	log.Info("Database created", zap.String("path", dbCfg.Path), zap.Int("year", dbCfg.Year))
	return result, nil
}

func migrateSchema(path string, log *zap.Logger) error {
	m, err := migration.Open(path, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migration connection", zap.Error(err))
		}
	}()
	return m.Up()
}
