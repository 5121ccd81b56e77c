package taxpayer

import "github.com/shopspring/decimal"

// Statistics summarises the strictly positive tax payments of a record set.
// Aggregates are nil when no record qualifies.
type Statistics struct {
	Total    int
	TotalTax *decimal.Decimal
	AvgTax   *decimal.Decimal
	MaxTax   *decimal.Decimal
}

// ComputeStatistics returns count, sum, average and maximum over records with
// tax_paid > 0
func ComputeStatistics(records []Record) Statistics {
	var (
		stats  Statistics
		sum    decimal.Decimal
		maxTax decimal.Decimal
	)

	for _, r := range records {
		if !r.TaxPaid.IsPositive() {
			continue
		}
		if stats.Total == 0 || r.TaxPaid.GreaterThan(maxTax) {
			maxTax = r.TaxPaid
		}
		sum = sum.Add(r.TaxPaid)
		stats.Total++
	}

	if stats.Total == 0 {
		return stats
	}

	avg := sum.Div(decimal.NewFromInt(int64(stats.Total)))
	stats.TotalTax = &sum
	stats.AvgTax = &avg
	stats.MaxTax = &maxTax
	return stats
}
