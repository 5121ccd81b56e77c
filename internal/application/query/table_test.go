package query

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
)

func TestTablePrinter_Print(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		NewTablePrinter(&buf).Print(nil)
		assert.Equal(t, "No results found.\n", buf.String())
	})

	t.Run("rows", func(t *testing.T) {
		var buf bytes.Buffer
		NewTablePrinter(&buf).Print([]taxpayer.Record{
			{Category: taxpayer.CategoryCompany, Name: strings.Repeat("N", 70), RegNo: "1234567", TaxPaid: decimal.RequireFromString("1234567.891")},
			{Category: taxpayer.CategoryIndividual, Name: "Ali", RegNo: "3520112345671", TaxPaid: decimal.NewFromInt(25)},
		})

		lines := strings.Split(buf.String(), "\n")
		rule := strings.Repeat("=", 120)
		require.Len(t, lines, 10)
		assert.Equal(t, "", lines[0])
		assert.Equal(t, rule, lines[1])
		assert.Equal(t, "Type         Name                                                         NTN/CNIC               Tax Paid", lines[2])
		assert.Equal(t, rule, lines[3])
		assert.Equal(t, "Company      "+strings.Repeat("N", 58)+"   1234567            1,234,567.89", lines[4])
		assert.Equal(t, "Individual   Ali"+strings.Repeat(" ", 58)+"3520112345671             25.00", lines[5])
		assert.Equal(t, rule, lines[6])
		assert.Equal(t, "Total results: 2", lines[7])
		assert.Equal(t, "", lines[8])
		assert.Equal(t, "", lines[9])
		assert.True(t, strings.HasSuffix(buf.String(), "Total results: 2\n\n"))
	})
}

func TestTablePrinter_Titles(t *testing.T) {
	all, _ := ParseType("all")
	company, _ := ParseType("company")

	var buf bytes.Buffer
	p := NewTablePrinter(&buf)
	p.SearchTitle("abbott", company)
	p.RegNoTitle("1347561")
	p.TopTitle(20, all)
	p.RangeTitle(decimal.NewFromInt(1000000), decimal.NewFromInt(10000000), all)

	assert.Equal(t, "\nSearching for: abbott (Type: company)\n"+
		"\nSearching for registration number: 1347561\n"+
		"\nTop 20 taxpayers (Type: all)\n"+
		"\nTaxpayers with tax paid between 1,000,000.00 and 10,000,000.00 (Type: all)\n", buf.String())
}
