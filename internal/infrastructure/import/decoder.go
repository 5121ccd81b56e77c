package csvimport

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
)

// Decoder turns one published CSV file into taxpayer records using the
// hard-coded column layout of its year. Numeric fields are parsed strictly:
// a single malformed serial or tax value fails the whole file.
type Decoder struct {
	maxErrors  int
	parserOpts []ParserOption
}

// DecoderOption configures a Decoder
type DecoderOption func(*Decoder)

// WithMaxErrors caps how many row errors are reported for a rejected file
func WithMaxErrors(n int) DecoderOption {
	return func(d *Decoder) {
		d.maxErrors = n
	}
}

// WithParserOptions passes options through to the CSV parser
func WithParserOptions(opts ...ParserOption) DecoderOption {
	return func(d *Decoder) {
		d.parserOpts = append(d.parserOpts, opts...)
	}
}

// NewDecoder creates a decoder
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{maxErrors: 20}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RulesFor returns the field rules applied to rows of a year schema
func RulesFor(schema taxpayer.YearSchema) []FieldRule {
	rules := make([]FieldRule, 0, 2)
	if schema.HasSerial {
		rules = append(rules, Field("sr").Required().Int().MinValue(decimal.Zero).Build())
	}
	return append(rules, Field("tax_paid").Required().Decimal().Build())
}

// DecodeFile opens and decodes a CSV file. A missing file surfaces as an
// error matching os.ErrNotExist so callers can downgrade it to a warning.
func (d *Decoder) DecodeFile(path string, schema taxpayer.YearSchema) ([]taxpayer.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := d.Decode(f, schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Decode reads every data row of r. Blank lines are skipped.
func (d *Decoder) Decode(r io.Reader, schema taxpayer.YearSchema) ([]taxpayer.Record, error) {
	parser, err := NewCSVParser(r, d.parserOpts...)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.ValidateHeaders(schema.Columns()); len(missing) > 0 {
		return nil, &FileError{
			Code:   ErrCodeImportMissingColumn,
			Err:    ErrMissingColumn,
			Detail: fmt.Sprintf("%s (year %d, %s)", strings.Join(missing, ", "), schema.Year, schema.Category.FileStem()),
		}
	}

	validator := NewFieldValidator(RulesFor(schema), d.maxErrors)
	var records []taxpayer.Record

	for {
		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}
		if !validator.ValidateRow(row) {
			continue
		}
		if validator.Errors().HasErrors() {
			// Keep scanning for more errors, nothing will be returned
			continue
		}

		records = append(records, toRecord(row, schema))
	}

	if err := validator.Errors().Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// toRecord converts a validated row
func toRecord(row *Row, schema taxpayer.YearSchema) taxpayer.Record {
	rec := taxpayer.Record{
		Year:     schema.Year,
		Category: schema.Category,
		Name:     row.Get("name"),
		RegNo:    row.Get(schema.IDColumn),
		TaxPaid:  decimal.RequireFromString(row.Get("tax_paid")),
	}
	if schema.HasSerial {
		sr, _ := strconv.ParseInt(row.Get("sr"), 10, 64)
		rec.Serial = &sr
	}
	return rec
}
