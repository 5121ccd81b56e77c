package pipeline

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
)

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestYearSource_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("csv fallback pads identifiers", func(t *testing.T) {
		cfg := newTestConfig(t)
		writeInput(t, cfg, 2018, taxpayer.CategoryCompany, "sr,name,ntn_7,tax_paid\n1,Acme,345,10\n")
		source := NewYearSource(cfg.Paths, newFakeEngine(), nil)

		records, found, err := source.Read(ctx, 2018, taxpayer.CategoryCompany)
		require.NoError(t, err)
		assert.True(t, found)
		require.Len(t, records, 1)
		assert.Equal(t, "0000345", records[0].RegNo)
		assert.Equal(t, taxpayer.CategoryCompany, records[0].Category)
	})

	t.Run("parquet is preferred when present", func(t *testing.T) {
		cfg := newTestConfig(t)
		writeInput(t, cfg, 2018, taxpayer.CategoryCompany, "sr,name,ntn_7,tax_paid\n1,From CSV,345,10\n")
		engine := newFakeEngine()
		source := NewYearSource(cfg.Paths, engine, nil)

		path := source.ParquetPath(2018, taxpayer.CategoryCompany)
		schema, err := taxpayer.SchemaFor(2018, taxpayer.CategoryCompany)
		require.NoError(t, err)
		require.NoError(t, engine.WriteYearFile(ctx, path, schema, []taxpayer.Record{
			{Name: "From Parquet", RegNo: "0000345", TaxPaid: decimal.NewFromInt(10)},
		}, defaultWriteOptions()))

		records, found, err := source.Read(ctx, 2018, taxpayer.CategoryCompany)
		require.NoError(t, err)
		assert.True(t, found)
		require.Len(t, records, 1)
		assert.Equal(t, "From Parquet", records[0].Name)
	})

	t.Run("nil reader reads csv even when parquet exists", func(t *testing.T) {
		cfg := newTestConfig(t)
		writeInput(t, cfg, 2018, taxpayer.CategoryAOP, "sr,name,ntn_7,tax_paid\n1,From CSV,1,10\n")
		source := NewYearSource(cfg.Paths, nil, nil)
		require.NoError(t, os.WriteFile(source.ParquetPath(2018, taxpayer.CategoryAOP), []byte("PAR1"), 0o644))

		records, found, err := source.Read(ctx, 2018, taxpayer.CategoryAOP)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "From CSV", records[0].Name)
	})

	t.Run("missing input is not an error", func(t *testing.T) {
		cfg := newTestConfig(t)
		source := NewYearSource(cfg.Paths, newFakeEngine(), nil)

		records, found, err := source.Read(ctx, 2017, taxpayer.CategoryIndividual)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, records)
	})

	t.Run("unsupported year", func(t *testing.T) {
		cfg := newTestConfig(t)
		source := NewYearSource(cfg.Paths, nil, nil)

		_, _, err := source.Read(ctx, 2012, taxpayer.CategoryCompany)
		assert.ErrorIs(t, err, taxpayer.ErrUnknownYear)
	})
}
