package columnar

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
)

func TestDuckDB_YearFileRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping duckdb round trip in short mode")
	}

	engine, err := Open(WithInsertBatch(2))
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	ctx := context.Background()
	schema := mustSchema(t, 2018, taxpayer.CategoryCompany)
	sr1, sr3 := int64(1), int64(3)
	records := []taxpayer.Record{
		{Year: 2018, Category: taxpayer.CategoryCompany, Serial: &sr1, Name: "Acme", RegNo: "0001234", TaxPaid: decimal.NewFromInt(500000)},
		{Year: 2018, Category: taxpayer.CategoryCompany, Name: "Beta", RegNo: "0002345", TaxPaid: decimal.RequireFromString("12.5")},
		{Year: 2018, Category: taxpayer.CategoryCompany, Serial: &sr3, Name: "Gamma", RegNo: "1234567", TaxPaid: decimal.Zero},
	}
	path := filepath.Join(t.TempDir(), "companies.parquet")

	require.NoError(t, engine.WriteYearFile(ctx, path, schema, records, WriteOptions{Compression: "gzip", RowGroupSize: 5000}))

	n, err := engine.CountRows(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	got, err := engine.ReadYearFile(ctx, path, schema)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range records {
		assert.Equal(t, records[i].Name, got[i].Name)
		assert.Equal(t, records[i].RegNo, got[i].RegNo)
		assert.True(t, records[i].TaxPaid.Equal(got[i].TaxPaid), "row %d tax", i)
	}
	assert.Nil(t, got[1].Serial)
	require.NotNil(t, got[2].Serial)
	assert.Equal(t, int64(3), *got[2].Serial)
}

func TestDuckDB_ConsolidatedDistribution(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping duckdb round trip in short mode")
	}

	engine, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	ctx := context.Background()
	rows := taxpayer.Consolidate([]taxpayer.Record{
		{Year: 2017, Category: taxpayer.CategoryCompany, Name: "Acme", RegNo: "1234567", TaxPaid: decimal.NewFromInt(10)},
		{Year: 2018, Category: taxpayer.CategoryCompany, Name: "Acme", RegNo: "1234567", TaxPaid: decimal.NewFromInt(20)},
		{Year: 2018, Category: taxpayer.CategoryIndividual, Name: "Ali", RegNo: "3520112345671", TaxPaid: decimal.NewFromInt(5)},
	})
	path := filepath.Join(t.TempDir(), "all.parquet")

	require.NoError(t, engine.WriteConsolidated(ctx, path, rows, WriteOptions{Compression: "zstd"}))

	dist, err := engine.Distribution(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []taxpayer.Distribution{
		{Year: 2017, Category: taxpayer.CategoryCompany, Count: 1},
		{Year: 2018, Category: taxpayer.CategoryCompany, Count: 1},
		{Year: 2018, Category: taxpayer.CategoryIndividual, Count: 1},
	}, dist)
}
