package pipeline

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

func formatNullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return "null"
	}
	return printer.Sprintf("%.2f", d.Decimal.InexactFloat64())
}

const megabyte = 1024 * 1024

// SizeReport compares an input CSV with the Parquet file written from it
type SizeReport struct {
	CSVBytes     int64
	ParquetBytes int64
}

// Reduction is the percentage by which the Parquet file is smaller
func (r SizeReport) Reduction() float64 {
	if r.CSVBytes == 0 {
		return 0
	}
	return (1 - float64(r.ParquetBytes)/float64(r.CSVBytes)) * 100
}

// String renders the report as "csv: 12.3 MB → parquet: 2.1 MB (82.9% smaller)"
func (r SizeReport) String() string {
	return printer.Sprintf("csv: %.1f MB → parquet: %.1f MB (%.1f%% smaller)",
		float64(r.CSVBytes)/megabyte, float64(r.ParquetBytes)/megabyte, r.Reduction())
}
