package columnar

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
)

func mustSchema(t *testing.T, year int, category taxpayer.Category) taxpayer.YearSchema {
	t.Helper()
	s, err := taxpayer.SchemaFor(year, category)
	require.NoError(t, err)
	return s
}

func TestYearColumns(t *testing.T) {
	cols := YearColumns(mustSchema(t, 2018, taxpayer.CategoryCompany))
	assert.Equal(t, []Column{
		{Name: "sr", Type: "BIGINT"},
		{Name: "name", Type: "VARCHAR"},
		{Name: "ntn_7", Type: "VARCHAR"},
		{Name: "tax_paid", Type: "DOUBLE"},
	}, cols)

	cols = YearColumns(mustSchema(t, 2014, taxpayer.CategoryIndividual))
	require.Len(t, cols, 3)
	assert.Equal(t, "cnic", cols[1].Name)
}

func TestEngine_WriteYearFile(t *testing.T) {
	engine, mock := newMockEngine(t)
	sr := int64(7)

	mock.ExpectExec(regexp.QuoteMeta(
		`CREATE OR REPLACE TEMP TABLE parquet_staging (row_idx BIGINT, "sr" BIGINT, "name" VARCHAR, "ntn_7" VARCHAR, "tax_paid" DOUBLE)`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO parquet_staging").
		WithArgs(int64(0), int64(7), "Acme", "0001234", 500000.0, int64(1), nil, "Beta", "0002345", 12.5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta(`COPY (SELECT "sr", "name", "ntn_7", "tax_paid" FROM parquet_staging ORDER BY row_idx) TO '2018/companies.parquet'`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DROP TABLE").WillReturnResult(sqlmock.NewResult(0, 0))

	records := []taxpayer.Record{
		{Serial: &sr, Name: "Acme", RegNo: "0001234", TaxPaid: decimal.NewFromInt(500000)},
		{Name: "Beta", RegNo: "0002345", TaxPaid: decimal.RequireFromString("12.5")},
	}
	err := engine.WriteYearFile(context.Background(), "2018/companies.parquet",
		mustSchema(t, 2018, taxpayer.CategoryCompany), records, WriteOptions{Compression: "gzip"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_ReadYearFile(t *testing.T) {
	t.Run("with serial", func(t *testing.T) {
		engine, mock := newMockEngine(t)

		mock.ExpectQuery(regexp.QuoteMeta(
			`SELECT sr, name, CAST("ntn_7" AS VARCHAR), tax_paid FROM read_parquet('2017/aop.parquet')`)).
			WillReturnRows(sqlmock.NewRows([]string{"sr", "name", "ntn_7", "tax_paid"}).
				AddRow(int64(1), "Acme", "1234567", 500000.0).
				AddRow(nil, nil, nil, nil))

		records, err := engine.ReadYearFile(context.Background(), "2017/aop.parquet", mustSchema(t, 2017, taxpayer.CategoryAOP))
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, 2017, records[0].Year)
		assert.Equal(t, taxpayer.CategoryAOP, records[0].Category)
		require.NotNil(t, records[0].Serial)
		assert.Equal(t, int64(1), *records[0].Serial)
		assert.Equal(t, "1234567", records[0].RegNo)
		assert.True(t, decimal.NewFromInt(500000).Equal(records[0].TaxPaid))

		assert.Nil(t, records[1].Serial)
		assert.Empty(t, records[1].Name)
		assert.True(t, records[1].TaxPaid.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("without serial", func(t *testing.T) {
		engine, mock := newMockEngine(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT NULL, name, CAST("ntn_8" AS VARCHAR), tax_paid FROM read_parquet('2013/individuals.parquet')`)).
			WillReturnRows(sqlmock.NewRows([]string{"sr", "name", "ntn_8", "tax_paid"}).AddRow(nil, "Ali", "12345678", 10.0))

		records, err := engine.ReadYearFile(context.Background(), "2013/individuals.parquet", mustSchema(t, 2013, taxpayer.CategoryIndividual))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Nil(t, records[0].Serial)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		engine, mock := newMockEngine(t)
		mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

		_, err := engine.ReadYearFile(context.Background(), "x.parquet", mustSchema(t, 2016, taxpayer.CategoryCompany))
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestEngine_WriteConsolidated(t *testing.T) {
	engine, mock := newMockEngine(t)
	ntn7 := "1234567"

	mock.ExpectExec(regexp.QuoteMeta(`"year" INTEGER, "category" VARCHAR, "name" VARCHAR, "id" VARCHAR, "id_type" VARCHAR, "ntn_7" VARCHAR, "tax_paid" DOUBLE)`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO parquet_staging").
		WithArgs(
			int64(0), int32(2018), "company", "Acme", "1234567", "ntn", "1234567", 10.0,
			int64(1), int32(2017), "individual", "Ali", "3520112345671", "cnic", nil, 5.0,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta(`TO 'all.parquet' (FORMAT parquet, COMPRESSION ZSTD)`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DROP TABLE").WillReturnResult(sqlmock.NewResult(0, 0))

	rows := []taxpayer.ConsolidatedRow{
		{Year: 2018, Category: taxpayer.CategoryCompany, Name: "Acme", ID: "1234567", IDType: taxpayer.IDTypeNTN, NTN7: &ntn7, TaxPaid: decimal.NewFromInt(10)},
		{Year: 2017, Category: taxpayer.CategoryIndividual, Name: "Ali", ID: "3520112345671", IDType: taxpayer.IDTypeCNIC, TaxPaid: decimal.NewFromInt(5)},
	}
	err := engine.WriteConsolidated(context.Background(), "all.parquet", rows, WriteOptions{Compression: "zstd"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_Distribution(t *testing.T) {
	engine, mock := newMockEngine(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT year, category, COUNT(*) FROM read_parquet('all.parquet') GROUP BY year, category ORDER BY year, category`)).
		WillReturnRows(sqlmock.NewRows([]string{"year", "category", "count"}).
			AddRow(int64(2017), "company", int64(3)).
			AddRow(int64(2018), "aop", int64(1)))

	dist, err := engine.Distribution(context.Background(), "all.parquet")

	require.NoError(t, err)
	assert.Equal(t, []taxpayer.Distribution{
		{Year: 2017, Category: taxpayer.CategoryCompany, Count: 3},
		{Year: 2018, Category: taxpayer.CategoryAOP, Count: 1},
	}, dist)
	assert.NoError(t, mock.ExpectationsWereMet())
}
