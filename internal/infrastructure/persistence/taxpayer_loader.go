package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
	csvimport "github.com/taxpayers/backend/internal/infrastructure/import"
	"github.com/taxpayers/backend/internal/infrastructure/logger"
	"github.com/taxpayers/backend/internal/infrastructure/persistence/models"
)

// DefaultBatchSize is the number of rows sent per INSERT statement
const DefaultBatchSize = 1000

// LoadResult reports what one file contributed to its table
type LoadResult struct {
	Category   taxpayer.Category
	Path       string
	Skipped    bool
	Read       int
	Inserted   int
	Duplicates int
}

// TaxpayerLoader bulk-inserts decoded CSV files into the taxpayer tables
type TaxpayerLoader struct {
	db        *gorm.DB
	decoder   *csvimport.Decoder
	batchSize int
}

// NewTaxpayerLoader creates a loader. A non-positive batch size selects DefaultBatchSize.
func NewTaxpayerLoader(db *gorm.DB, decoder *csvimport.Decoder, batchSize int) *TaxpayerLoader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if decoder == nil {
		decoder = csvimport.NewDecoder()
	}
	return &TaxpayerLoader{db: db, decoder: decoder, batchSize: batchSize}
}

// LoadFile loads one category file of one year. A missing file is reported as
// skipped. Rows whose identifier is already present are ignored, so the first
// row seen for an identifier wins. A malformed row rejects the whole file and
// nothing from it is written.
func (l *TaxpayerLoader) LoadFile(ctx context.Context, path string, category taxpayer.Category, year int) (*LoadResult, error) {
	log := logger.FromContext(ctx)
	result := &LoadResult{Category: category, Path: path}

	schema, err := taxpayer.SchemaFor(year, category)
	if err != nil {
		return nil, err
	}

	records, err := l.decoder.DecodeFile(path, schema)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("Input file not found, skipping", zap.String("path", path))
		result.Skipped = true
		return result, nil
	}
	if err != nil {
		log.Error("Input file rejected",
			zap.String("path", path),
			zap.String("code", csvimport.ErrorCode(err)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to load %s: %w", category.Table(), err)
	}
	result.Read = len(records)

	inserted, err := l.Insert(ctx, category, records)
	if err != nil {
		return nil, err
	}
	result.Inserted = int(inserted)
	result.Duplicates = result.Read - result.Inserted

	log.Info("Loaded file",
		zap.String("table", category.Table()),
		zap.String("path", path),
		zap.Int("read", result.Read),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", result.Duplicates),
	)

	return result, nil
}

// Insert writes records in one transaction with insert-or-ignore semantics and
// returns the number of rows actually inserted.
func (l *TaxpayerLoader) Insert(ctx context.Context, category taxpayer.Category, records []taxpayer.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var inserted int64
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(models.RowsFor(category, records), l.batchSize)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", category.Table(), err)
	}
	return inserted, nil
}
