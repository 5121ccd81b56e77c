package taxpayer

import "sort"

// SortByTaxDesc orders records by tax paid, highest first. Records with equal
// tax keep their relative order.
func SortByTaxDesc(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TaxPaid.GreaterThan(records[j].TaxPaid)
	})
}

// TopN returns at most n records with tax_paid > 0, highest tax first.
// A non-positive n returns every qualifying record.
func TopN(records []Record, n int) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.TaxPaid.IsPositive() {
			out = append(out, r)
		}
	}
	SortByTaxDesc(out)
	return truncate(out, n)
}

// MergeByTax concatenates already ranked lists, re-sorts them by tax
// descending and keeps the first n.
func MergeByTax(n int, lists ...[]Record) []Record {
	var merged []Record
	for _, l := range lists {
		merged = append(merged, l...)
	}
	SortByTaxDesc(merged)
	return truncate(merged, n)
}

func truncate(records []Record, n int) []Record {
	if n > 0 && len(records) > n {
		return records[:n]
	}
	return records
}
