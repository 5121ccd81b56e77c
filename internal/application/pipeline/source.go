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
	"github.com/taxpayers/backend/internal/infrastructure/config"
	csvimport "github.com/taxpayers/backend/internal/infrastructure/import"
	"github.com/taxpayers/backend/internal/infrastructure/logger"
)

// ParquetReader reads one year's category file
type ParquetReader interface {
	ReadYearFile(ctx context.Context, path string, schema taxpayer.YearSchema) ([]taxpayer.Record, error)
}

// YearSource loads one year's category records, preferring the Parquet file
// and falling back to the CSV. Identifiers from the CSV are padded to the
// schema width so both inputs yield the same values.
type YearSource struct {
	paths   config.PathsConfig
	parquet ParquetReader
	decoder *csvimport.Decoder
}

// NewYearSource creates a YearSource. A nil reader disables the Parquet path.
func NewYearSource(paths config.PathsConfig, parquet ParquetReader, decoder *csvimport.Decoder) *YearSource {
	if decoder == nil {
		decoder = csvimport.NewDecoder()
	}
	return &YearSource{paths: paths, parquet: parquet, decoder: decoder}
}

// CSVPath returns the input CSV of a category in a year
func (s *YearSource) CSVPath(year int, category taxpayer.Category) string {
	return filepath.Join(s.paths.YearDir(year), category.FileStem()+".csv")
}

// ParquetPath returns the Parquet file of a category in a year
func (s *YearSource) ParquetPath(year int, category taxpayer.Category) string {
	return filepath.Join(s.paths.YearDir(year), category.FileStem()+".parquet")
}

// Read returns the records of one category and year. found is false when
// neither file exists, which callers treat as a skipped input.
func (s *YearSource) Read(ctx context.Context, year int, category taxpayer.Category) (records []taxpayer.Record, found bool, err error) {
	log := logger.FromContext(ctx)

	schema, err := taxpayer.SchemaFor(year, category)
	if err != nil {
		return nil, false, err
	}

	if s.parquet != nil {
		path := s.ParquetPath(year, category)
		if exists, err := fileExists(path); err != nil {
			return nil, false, err
		} else if exists {
			records, err := s.parquet.ReadYearFile(ctx, path, schema)
			if err != nil {
				return nil, false, err
			}
			return records, true, nil
		}
	}

	path := s.CSVPath(year, category)
	records, err = s.decoder.DecodeFile(path, schema)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("Input file not found, skipping",
			zap.Int("year", year),
			zap.String("category", string(category)),
		)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	for i := range records {
		records[i].RegNo = taxpayer.PadIdentifier(records[i].RegNo, schema.PadWidth)
	}
	return records, true, nil
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return !info.IsDir(), nil
}
