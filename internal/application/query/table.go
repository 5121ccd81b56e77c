package query

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
)

const (
	tableWidth   = 120
	maxNameRunes = 58
)

// TablePrinter renders query results as a fixed-width table
type TablePrinter struct {
	w io.Writer
	p *message.Printer
}

// NewTablePrinter creates a TablePrinter writing to w
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{w: w, p: message.NewPrinter(language.English)}
}

// SearchTitle prints the heading of a name search
func (t *TablePrinter) SearchTitle(term string, filter TypeFilter) {
	fmt.Fprintf(t.w, "\nSearching for: %s (Type: %s)\n", term, filter)
}

// RegNoTitle prints the heading of a registration number lookup
func (t *TablePrinter) RegNoTitle(regNo string) {
	fmt.Fprintf(t.w, "\nSearching for registration number: %s\n", regNo)
}

// TopTitle prints the heading of a top query
func (t *TablePrinter) TopTitle(limit int, filter TypeFilter) {
	fmt.Fprintf(t.w, "\nTop %d taxpayers (Type: %s)\n", limit, filter)
}

// RangeTitle prints the heading of a range query
func (t *TablePrinter) RangeTitle(min, max decimal.Decimal, filter TypeFilter) {
	fmt.Fprintf(t.w, "\nTaxpayers with tax paid between %s and %s (Type: %s)\n",
		t.amount(min), t.amount(max), filter)
}

// Print writes the result table, or a notice when records is empty
func (t *TablePrinter) Print(records []taxpayer.Record) {
	if len(records) == 0 {
		fmt.Fprintln(t.w, "No results found.")
		return
	}

	rule := strings.Repeat("=", tableWidth)
	fmt.Fprintf(t.w, "\n%s\n", rule)
	fmt.Fprintf(t.w, "%-12s %-60s %-15s %15s\n", "Type", "Name", "NTN/CNIC", "Tax Paid")
	fmt.Fprintln(t.w, rule)
	for _, r := range records {
		fmt.Fprintf(t.w, "%-12s %-60s %-15s %15s\n",
			r.Category.Label(), truncateRunes(r.Name, maxNameRunes), r.RegNo, t.amount(r.TaxPaid))
	}
	fmt.Fprintln(t.w, rule)
	fmt.Fprintf(t.w, "Total results: %d\n\n", len(records))
}

// amount formats a tax value with thousands separators and two decimals
func (t *TablePrinter) amount(d decimal.Decimal) string {
	return t.p.Sprintf("%.2f", d.InexactFloat64())
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
