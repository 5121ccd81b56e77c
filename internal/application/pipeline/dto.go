package pipeline

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
)

// CategoryStatistics is one category of statistics.json
type CategoryStatistics struct {
	Total    int      `json:"total"`
	TotalTax *float64 `json:"total_tax"`
	AvgTax   *float64 `json:"avg_tax"`
	MaxTax   *float64 `json:"max_tax"`
}

// StatisticsDocument is statistics.json
type StatisticsDocument struct {
	Companies   CategoryStatistics `json:"companies"`
	AOP         CategoryStatistics `json:"aop"`
	Individuals CategoryStatistics `json:"individuals"`
}

// TopEntry is one ranked taxpayer of top_taxpayers.json
type TopEntry struct {
	Name  string  `json:"name"`
	RegNo string  `json:"regno"`
	Tax   float64 `json:"tax"`
	Type  string  `json:"type"`
}

// TopDocument is top_taxpayers.json and top_taxpayers_<year>.json
type TopDocument struct {
	TopCompanies   []TopEntry `json:"top_companies"`
	TopAOP         []TopEntry `json:"top_aop"`
	TopIndividuals []TopEntry `json:"top_individuals"`
	TopAll         []TopEntry `json:"top_all"`
}

// EntityTotal is one company or AOP of top_taxpayers_across_years.json
type EntityTotal struct {
	Name  string             `json:"name"`
	NTN   string             `json:"ntn"`
	Years map[string]float64 `json:"years"`
	Total float64            `json:"total"`
}

// IndividualTotal is one individual of top_taxpayers_across_years.json
type IndividualTotal struct {
	Name     string             `json:"name"`
	ID       string             `json:"id"`
	Years    map[string]float64 `json:"years"`
	Total    float64            `json:"total"`
	LegacyID string             `json:"legacy_id,omitempty"`
}

// AcrossYearsDocument is top_taxpayers_across_years.json
type AcrossYearsDocument struct {
	Companies   []EntityTotal     `json:"companies"`
	AOP         []EntityTotal     `json:"aop"`
	Individuals []IndividualTotal `json:"individuals"`
}

func toCategoryStatistics(s taxpayer.Statistics) CategoryStatistics {
	return CategoryStatistics{
		Total:    s.Total,
		TotalTax: floatPtr(s.TotalTax),
		AvgTax:   floatPtr(s.AvgTax),
		MaxTax:   floatPtr(s.MaxTax),
	}
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func toTopEntries(records []taxpayer.Record) []TopEntry {
	entries := make([]TopEntry, len(records))
	for i, r := range records {
		entries[i] = TopEntry{
			Name:  r.Name,
			RegNo: r.RegNo,
			Tax:   r.TaxPaid.InexactFloat64(),
			Type:  string(r.Category),
		}
	}
	return entries
}

func yearsMap(years map[int]decimal.Decimal) map[string]float64 {
	m := make(map[string]float64, len(years))
	for y, tax := range years {
		m[strconv.Itoa(y)] = tax.InexactFloat64()
	}
	return m
}

func toEntityTotals(totals []taxpayer.YearlyTotal) []EntityTotal {
	out := make([]EntityTotal, len(totals))
	for i, t := range totals {
		out[i] = EntityTotal{
			Name:  t.Name,
			NTN:   t.ID,
			Years: yearsMap(t.Years),
			Total: t.Total.InexactFloat64(),
		}
	}
	return out
}

func toIndividualTotals(totals []taxpayer.YearlyTotal) []IndividualTotal {
	out := make([]IndividualTotal, len(totals))
	for i, t := range totals {
		out[i] = IndividualTotal{
			Name:     t.Name,
			ID:       t.ID,
			Years:    yearsMap(t.Years),
			Total:    t.Total.InexactFloat64(),
			LegacyID: t.LegacyID,
		}
	}
	return out
}
