package taxpayer

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ConsolidatedRow is one record of the cross-year consolidated dataset
type ConsolidatedRow struct {
	Year     int
	Category Category
	Name     string
	ID       string
	IDType   IDType
	NTN7     *string
	TaxPaid  decimal.Decimal
}

// Consolidate unifies per-year records into the consolidated schema, inferring
// the identifier type and 7-digit NTN of every row. Rows are ordered by
// (id_type, ntn_7 nulls last, id, year, category) so that readers can prune
// row groups by identifier.
func Consolidate(records []Record) []ConsolidatedRow {
	rows := make([]ConsolidatedRow, 0, len(records))
	for _, r := range records {
		idType := r.IDType()
		rows = append(rows, ConsolidatedRow{
			Year:     r.Year,
			Category: r.Category,
			Name:     r.Name,
			ID:       r.RegNo,
			IDType:   idType,
			NTN7:     NTN7(idType, r.RegNo),
			TaxPaid:  r.TaxPaid,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return consolidatedLess(rows[i], rows[j])
	})
	return rows
}

func consolidatedLess(a, b ConsolidatedRow) bool {
	if a.IDType != b.IDType {
		return a.IDType < b.IDType
	}
	switch {
	case a.NTN7 == nil && b.NTN7 != nil:
		return false
	case a.NTN7 != nil && b.NTN7 == nil:
		return true
	case a.NTN7 != nil && b.NTN7 != nil && *a.NTN7 != *b.NTN7:
		return *a.NTN7 < *b.NTN7
	}
	if a.ID != b.ID {
		return a.ID < b.ID
	}
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	return a.Category < b.Category
}

// Distribution counts consolidated rows per (year, category)
type Distribution struct {
	Year     int
	Category Category
	Count    int
}

// Distribute returns row counts grouped by year then category, ascending
func Distribute(rows []ConsolidatedRow) []Distribution {
	counts := make(map[Distribution]int)
	for _, r := range rows {
		counts[Distribution{Year: r.Year, Category: r.Category}]++
	}

	out := make([]Distribution, 0, len(counts))
	for k, v := range counts {
		k.Count = v
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Category < out[j].Category
	})
	return out
}
