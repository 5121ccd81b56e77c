package columnar

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
)

// YearColumns returns the Parquet columns of one year's category file, named
// as in the source CSV so downstream readers see the published layout.
func YearColumns(schema taxpayer.YearSchema) []Column {
	cols := make([]Column, 0, 4)
	if schema.HasSerial {
		cols = append(cols, Column{Name: "sr", Type: "BIGINT"})
	}
	return append(cols,
		Column{Name: "name", Type: "VARCHAR"},
		Column{Name: schema.IDColumn, Type: "VARCHAR"},
		Column{Name: "tax_paid", Type: "DOUBLE"},
	)
}

// ConsolidatedColumns are the columns of the cross-year file
var ConsolidatedColumns = []Column{
	{Name: "year", Type: "INTEGER"},
	{Name: "category", Type: "VARCHAR"},
	{Name: "name", Type: "VARCHAR"},
	{Name: "id", Type: "VARCHAR"},
	{Name: "id_type", Type: "VARCHAR"},
	{Name: "ntn_7", Type: "VARCHAR"},
	{Name: "tax_paid", Type: "DOUBLE"},
}

// WriteYearFile writes one year's category records in the given order
func (e *Engine) WriteYearFile(ctx context.Context, path string, schema taxpayer.YearSchema, records []taxpayer.Record, opts WriteOptions) error {
	rows := make([][]any, len(records))
	for i, r := range records {
		row := make([]any, 0, 4)
		if schema.HasSerial {
			if r.Serial != nil {
				row = append(row, *r.Serial)
			} else {
				row = append(row, nil)
			}
		}
		rows[i] = append(row, r.Name, r.RegNo, r.TaxPaid.InexactFloat64())
	}
	return e.WriteRows(ctx, path, YearColumns(schema), rows, opts)
}

// ReadYearFile reads a file written by WriteYearFile back into records
func (e *Engine) ReadYearFile(ctx context.Context, path string, schema taxpayer.YearSchema) ([]taxpayer.Record, error) {
	serial := "NULL"
	if schema.HasSerial {
		serial = "sr"
	}
	selectFmt := fmt.Sprintf("SELECT %s, name, CAST(%s AS VARCHAR), tax_paid FROM %%s", serial, quoteIdent(schema.IDColumn))

	rows, err := e.query(ctx, selectFmt, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []taxpayer.Record
	for rows.Next() {
		var (
			sr    sql.NullInt64
			name  sql.NullString
			regNo sql.NullString
			tax   sql.NullFloat64
		)
		if err := rows.Scan(&sr, &name, &regNo, &tax); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}

		rec := taxpayer.Record{
			Year:     schema.Year,
			Category: schema.Category,
			Name:     name.String,
			RegNo:    regNo.String,
			TaxPaid:  decimal.NewFromFloat(tax.Float64),
		}
		if sr.Valid {
			v := sr.Int64
			rec.Serial = &v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

// WriteConsolidated writes the cross-year rows in the given order
func (e *Engine) WriteConsolidated(ctx context.Context, path string, rows []taxpayer.ConsolidatedRow, opts WriteOptions) error {
	values := make([][]any, len(rows))
	for i, r := range rows {
		var ntn7 any
		if r.NTN7 != nil {
			ntn7 = *r.NTN7
		}
		values[i] = []any{
			int32(r.Year),
			string(r.Category),
			r.Name,
			r.ID,
			string(r.IDType),
			ntn7,
			r.TaxPaid.InexactFloat64(),
		}
	}
	return e.WriteRows(ctx, path, ConsolidatedColumns, values, opts)
}

// Distribution counts the rows of a consolidated file per year and category
func (e *Engine) Distribution(ctx context.Context, path string) ([]taxpayer.Distribution, error) {
	rows, err := e.query(ctx,
		"SELECT year, category, COUNT(*) FROM %s GROUP BY year, category ORDER BY year, category", path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dist []taxpayer.Distribution
	for rows.Next() {
		var (
			d        taxpayer.Distribution
			year     int64
			category string
			count    int64
		)
		if err := rows.Scan(&year, &category, &count); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		d.Year, d.Category, d.Count = int(year), taxpayer.Category(category), int(count)
		dist = append(dist, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read distribution: %w", err)
	}
	return dist, nil
}
