package persistence

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
	"github.com/taxpayers/backend/internal/infrastructure/persistence/models"
)

// TableStats summarises one taxpayer table
type TableStats struct {
	Category taxpayer.Category
	Count    int64
	TotalTax decimal.NullDecimal
	AvgTax   decimal.NullDecimal
	MaxTax   decimal.NullDecimal
}

// GormTaxpayerRepository answers the query tool's lookups over the taxpayer tables
type GormTaxpayerRepository struct {
	db *gorm.DB
}

// NewGormTaxpayerRepository creates a new GormTaxpayerRepository
func NewGormTaxpayerRepository(db *gorm.DB) *GormTaxpayerRepository {
	return &GormTaxpayerRepository{db: db}
}

// listing selects the common projection of a category's table
func (r *GormTaxpayerRepository) listing(ctx context.Context, category taxpayer.Category) *gorm.DB {
	return r.db.WithContext(ctx).
		Table(category.Table()).
		Select("name, " + category.IDColumn() + " AS reg_no, tax_paid")
}

func (r *GormTaxpayerRepository) find(query *gorm.DB, category taxpayer.Category, limit int) ([]taxpayer.Record, error) {
	var rows []models.ListingRow
	if err := query.Order("tax_paid DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", category.Table(), err)
	}

	records := make([]taxpayer.Record, len(rows))
	for i, row := range rows {
		records[i] = row.ToDomain(category)
	}
	return records, nil
}

// SearchByName finds taxpayers whose name contains term, highest tax first
func (r *GormTaxpayerRepository) SearchByName(ctx context.Context, category taxpayer.Category, term string, limit int) ([]taxpayer.Record, error) {
	return r.find(r.listing(ctx, category).Where("name LIKE ?", "%"+term+"%"), category, limit)
}

// Top returns the taxpayers with the highest positive tax
func (r *GormTaxpayerRepository) Top(ctx context.Context, category taxpayer.Category, limit int) ([]taxpayer.Record, error) {
	return r.find(r.listing(ctx, category).Where("tax_paid > 0"), category, limit)
}

// Range returns taxpayers whose tax lies within [min, max]
func (r *GormTaxpayerRepository) Range(ctx context.Context, category taxpayer.Category, min, max decimal.Decimal, limit int) ([]taxpayer.Record, error) {
	return r.find(
		r.listing(ctx, category).Where("tax_paid BETWEEN ? AND ?", min.InexactFloat64(), max.InexactFloat64()),
		category, limit,
	)
}

// FindByRegNo finds the taxpayer registered under regNo
func (r *GormTaxpayerRepository) FindByRegNo(ctx context.Context, category taxpayer.Category, regNo string) (*taxpayer.Record, error) {
	records, err := r.find(r.listing(ctx, category).Where(category.IDColumn()+" = ?", regNo), category, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, taxpayer.ErrNotFound
	}
	return &records[0], nil
}

// Stats returns count, sum, average and maximum tax of a table
func (r *GormTaxpayerRepository) Stats(ctx context.Context, category taxpayer.Category) (*TableStats, error) {
	stats := &TableStats{Category: category}
	err := r.db.WithContext(ctx).
		Table(category.Table()).
		Select("COUNT(*) AS count, SUM(tax_paid) AS total_tax, AVG(tax_paid) AS avg_tax, MAX(tax_paid) AS max_tax").
		Scan(stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics of %s: %w", category.Table(), err)
	}
	stats.Category = category
	return stats, nil
}
