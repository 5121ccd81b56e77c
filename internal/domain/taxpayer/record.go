package taxpayer

import "github.com/shopspring/decimal"

// Record is one taxpayer row of one year's published list
type Record struct {
	Year     int
	Category Category
	Serial   *int64
	Name     string
	RegNo    string
	TaxPaid  decimal.Decimal
}

// IDType returns the inferred identifier type of the record
func (r Record) IDType() IDType {
	return InferIDType(r.Year, r.Category, r.RegNo)
}

// FilterCategory returns the records belonging to a category, preserving order
func FilterCategory(records []Record, category Category) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}
