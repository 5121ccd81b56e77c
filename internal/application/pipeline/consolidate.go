package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
	"github.com/taxpayers/backend/internal/infrastructure/columnar"
)

// ConsolidateResult reports the cross-year file
type ConsolidateResult struct {
	Path         string
	Rows         int
	Distribution []taxpayer.Distribution
}

// ConsolidatedPath is where the cross-year file is written
func (s *Service) ConsolidatedPath() string {
	return filepath.Join(s.cfg.Paths.DataDir, s.cfg.Parquet.ConsolidatedFile)
}

// Consolidate unions every configured year and category into one Parquet
// file ordered for identifier lookups, then reads back its per year and
// category row counts.
func (s *Service) Consolidate(ctx context.Context) (*ConsolidateResult, error) {
	ctx, log, done := s.step(ctx, "consolidate")
	defer done()

	if s.engine == nil {
		return nil, errors.New("consolidation requires a columnar engine")
	}

	var records []taxpayer.Record
	for _, year := range s.cfg.Years {
		yearRecords, err := s.readYear(ctx, year)
		if err != nil {
			return nil, err
		}
		records = append(records, yearRecords...)
	}

	rows := taxpayer.Consolidate(records)
	path := s.ConsolidatedPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	opts := columnar.WriteOptions{
		Compression:  s.cfg.Parquet.ConsolidatedCompression,
		RowGroupSize: s.cfg.Parquet.RowGroupSize,
	}
	if err := s.engine.WriteConsolidated(ctx, path, rows, opts); err != nil {
		return nil, err
	}
	s.metrics.FileWritten("parquet")

	dist, err := s.engine.Distribution(ctx, path)
	if err != nil {
		return nil, err
	}

	log.Info("Consolidated file written", zap.String("path", path), zap.Int("rows", len(rows)))
	for _, d := range dist {
		log.Info("Distribution",
			zap.Int("year", d.Year),
			zap.String("category", string(d.Category)),
			zap.Int("rows", d.Count),
		)
	}

	return &ConsolidateResult{Path: path, Rows: len(rows), Distribution: dist}, nil
}
