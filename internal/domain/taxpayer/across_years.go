package taxpayer

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// YearlyTotal is one taxpayer's tax history across the requested years
type YearlyTotal struct {
	Category Category
	// Key is the 7-digit NTN for companies and AOPs, the raw identifier for individuals
	Key   string
	Name  string
	ID    string
	Years map[int]decimal.Decimal
	Total decimal.Decimal
	// LegacyID is set when the legacy year was backfilled by name
	LegacyID string

	latestYear int
}

// AggregateOptions controls AggregateAcrossYears
type AggregateOptions struct {
	Years []int
	TopN  int

	// LegacyNameMatch enables the legacy-year enrichment for individuals.
	// Legacy rows carry NTNs that cannot be joined to later CNICs, so they are
	// attached to the individual whose name occurs exactly once on both sides.
	// This is a best-effort heuristic, not identity resolution.
	LegacyNameMatch bool
	LegacyYear      int
}

type yearKey struct {
	key  string
	year int
}

type yearGroup struct {
	name string
	id   string
	tax  decimal.Decimal
}

// AggregationKey returns the cross-year grouping key of a record
func AggregationKey(r Record) string {
	if r.Category.IsNTNKeyed() {
		return LeftN(r.RegNo, NTN7Width)
	}
	return r.RegNo
}

// AggregateAcrossYears rolls one category's records up per taxpayer. Same-year
// duplicates are summed, the most recent year provides name and identifier,
// every requested year gets a slot (zero when absent) and the result is ranked
// by total tax descending, ties broken by key, truncated to opts.TopN.
func AggregateAcrossYears(records []Record, category Category, opts AggregateOptions) []YearlyTotal {
	wanted := make(map[int]bool, len(opts.Years))
	for _, y := range opts.Years {
		wanted[y] = true
	}

	enrich := opts.LegacyNameMatch && category == CategoryIndividual && wanted[opts.LegacyYear]

	var keyed, legacy []Record
	for _, r := range records {
		if r.Category != category || !wanted[r.Year] {
			continue
		}
		if enrich && r.Year == opts.LegacyYear {
			legacy = append(legacy, r)
			continue
		}
		keyed = append(keyed, r)
	}

	totals := rollUp(keyed, category, opts.Years)
	if enrich {
		unmatched := backfillLegacyYear(totals, legacy, opts.LegacyYear)
		totals = append(totals, rollUp(unmatched, category, opts.Years)...)
	}

	rankTotals(totals)
	if opts.TopN > 0 && len(totals) > opts.TopN {
		totals = totals[:opts.TopN]
	}
	return totals
}

func rollUp(records []Record, category Category, years []int) []YearlyTotal {
	groups := make(map[yearKey]*yearGroup)
	var order []yearKey
	for _, r := range records {
		k := yearKey{key: AggregationKey(r), year: r.Year}
		g, ok := groups[k]
		if !ok {
			g = &yearGroup{name: r.Name, id: r.RegNo}
			groups[k] = g
			order = append(order, k)
		}
		g.tax = g.tax.Add(r.TaxPaid)
	}

	byKey := make(map[string]*YearlyTotal)
	var keys []string
	for _, k := range order {
		g := groups[k]
		t, ok := byKey[k.key]
		if !ok {
			t = &YearlyTotal{Category: category, Key: k.key, Years: zeroYears(years)}
			byKey[k.key] = t
			keys = append(keys, k.key)
		}
		t.Years[k.year] = t.Years[k.year].Add(g.tax)
		t.Total = t.Total.Add(g.tax)
		if t.latestYear == 0 || k.year > t.latestYear {
			t.latestYear = k.year
			t.Name = g.name
			t.ID = g.id
		}
	}

	out := make([]YearlyTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}

func zeroYears(years []int) map[int]decimal.Decimal {
	m := make(map[int]decimal.Decimal, len(years))
	for _, y := range years {
		m[y] = decimal.Zero
	}
	return m
}

// backfillLegacyYear adds legacy-year tax to totals matched by unique name and
// returns the legacy rows that found no match.
func backfillLegacyYear(totals []YearlyTotal, legacy []Record, legacyYear int) []Record {
	legacyByName := make(map[string][]int)
	for i, r := range legacy {
		n := normalizeName(r.Name)
		legacyByName[n] = append(legacyByName[n], i)
	}

	totalsByName := make(map[string][]int)
	for i, t := range totals {
		n := normalizeName(t.Name)
		totalsByName[n] = append(totalsByName[n], i)
	}

	matched := make(map[int]bool)
	for name, idx := range legacyByName {
		if name == "" || len(idx) != 1 || len(totalsByName[name]) != 1 {
			continue
		}
		r := legacy[idx[0]]
		t := &totals[totalsByName[name][0]]
		t.Years[legacyYear] = t.Years[legacyYear].Add(r.TaxPaid)
		t.Total = t.Total.Add(r.TaxPaid)
		t.LegacyID = r.RegNo
		matched[idx[0]] = true
	}

	var unmatched []Record
	for i, r := range legacy {
		if !matched[i] {
			unmatched = append(unmatched, r)
		}
	}
	return unmatched
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

func rankTotals(totals []YearlyTotal) {
	sort.SliceStable(totals, func(i, j int) bool {
		if !totals[i].Total.Equal(totals[j].Total) {
			return totals[i].Total.GreaterThan(totals[j].Total)
		}
		return totals[i].Key < totals[j].Key
	})
}
