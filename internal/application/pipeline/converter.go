package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
	"github.com/taxpayers/backend/internal/infrastructure/columnar"
	"github.com/taxpayers/backend/internal/infrastructure/logger"
)

const stepParquet = "parquet"

// ConvertResult reports one converted category file
type ConvertResult struct {
	Category taxpayer.Category
	Year     int
	Path     string
	Rows     int
	Skipped  bool
	Size     SizeReport
}

// ConvertYear converts the three category CSV files of a year to Parquet.
// Identifiers are zero padded to the schema width and, when configured, rows
// are ordered by identifier so row-group statistics can prune lookups.
func (s *Service) ConvertYear(ctx context.Context, year int) ([]ConvertResult, error) {
	ctx, log, done := s.step(ctx, stepParquet)
	defer done()

	if s.engine == nil {
		return nil, errors.New("parquet conversion requires a columnar engine")
	}

	results := make([]ConvertResult, 0, len(taxpayer.AllCategories))
	for _, category := range taxpayer.AllCategories {
		res, err := s.convertFile(ctx, year, category)
		if err != nil {
			return nil, err
		}
		if res.Skipped {
			s.metrics.ObserveMissing(stepParquet, string(category))
		} else {
			s.metrics.ObserveRead(stepParquet, string(category), res.Rows)
			s.metrics.FileWritten("parquet")
			log.Info("Converted file",
				zap.Int("year", year),
				zap.String("category", string(category)),
				zap.String("path", res.Path),
				zap.Int("rows", res.Rows),
				zap.String("size", res.Size.String()),
			)
		}
		results = append(results, res)
	}
	return results, nil
}

// ConvertAll converts every configured year
func (s *Service) ConvertAll(ctx context.Context) ([]ConvertResult, error) {
	var all []ConvertResult
	for _, year := range s.cfg.Years {
		results, err := s.ConvertYear(ctx, year)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

func (s *Service) convertFile(ctx context.Context, year int, category taxpayer.Category) (ConvertResult, error) {
	res := ConvertResult{Category: category, Year: year, Path: s.source.ParquetPath(year, category)}

	schema, err := taxpayer.SchemaFor(year, category)
	if err != nil {
		return res, err
	}

	csvPath := s.source.CSVPath(year, category)
	records, err := s.decoder.DecodeFile(csvPath, schema)
	if errors.Is(err, fs.ErrNotExist) {
		logger.FromContext(ctx).Warn("Input file not found, skipping",
			zap.Int("year", year),
			zap.String("path", csvPath),
		)
		res.Skipped = true
		return res, nil
	}
	if err != nil {
		return res, err
	}

	for i := range records {
		records[i].RegNo = taxpayer.PadIdentifier(records[i].RegNo, schema.PadWidth)
	}
	if s.cfg.Parquet.SortByID {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].RegNo < records[j].RegNo
		})
	}

	opts := columnar.WriteOptions{
		Compression:  s.cfg.Parquet.Compression,
		RowGroupSize: s.cfg.Parquet.RowGroupSize,
	}
	if err := s.engine.WriteYearFile(ctx, res.Path, schema, records, opts); err != nil {
		return res, err
	}
	res.Rows = len(records)

	csvInfo, err := os.Stat(csvPath)
	if err != nil {
		return res, fmt.Errorf("stat %s: %w", csvPath, err)
	}
	parquetInfo, err := os.Stat(res.Path)
	if err != nil {
		return res, fmt.Errorf("stat %s: %w", res.Path, err)
	}
	res.Size = SizeReport{CSVBytes: csvInfo.Size(), ParquetBytes: parquetInfo.Size()}

	return res, nil
}
