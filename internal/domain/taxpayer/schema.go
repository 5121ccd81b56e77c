package taxpayer

import "fmt"

// Identifier column names found in the published CSV files
const (
	ColumnNTN7 = "ntn_7"
	ColumnNTN8 = "ntn_8"
	ColumnCNIC = "cnic"
)

// Identifier widths used for zero padding
const (
	NTN7Width = 7
	NTN8Width = 8
	CNICWidth = 13
)

// YearSchema describes the column layout of one category's file for one year.
// The layouts differ between years and are not detectable from the data itself.
type YearSchema struct {
	Year      int
	Category  Category
	IDColumn  string
	PadWidth  int
	HasSerial bool
}

// Columns returns the header columns in file order
func (s YearSchema) Columns() []string {
	cols := make([]string, 0, 4)
	if s.HasSerial {
		cols = append(cols, "sr")
	}
	return append(cols, "name", s.IDColumn, "tax_paid")
}

// SupportedYears returns every year with a registered schema, ascending
func SupportedYears() []int {
	years := make([]int, 0, lastYear-firstYear+1)
	for y := firstYear; y <= lastYear; y++ {
		years = append(years, y)
	}
	return years
}

const (
	firstYear = 2013
	lastYear  = 2018
)

// SchemaFor returns the file layout of a category in a given year
func SchemaFor(year int, category Category) (YearSchema, error) {
	if year < firstYear || year > lastYear {
		return YearSchema{}, fmt.Errorf("%w: %d", ErrUnknownYear, year)
	}
	if !category.IsValid() {
		return YearSchema{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	schema := YearSchema{
		Year:      year,
		Category:  category,
		HasSerial: year >= 2017,
	}

	switch {
	case category == CategoryIndividual && year == firstYear:
		// 2013 publishes individuals under an 8-digit NTN instead of a CNIC
		schema.IDColumn, schema.PadWidth = ColumnNTN8, NTN8Width
	case category == CategoryIndividual:
		schema.IDColumn, schema.PadWidth = ColumnCNIC, CNICWidth
	case year <= 2016:
		schema.IDColumn, schema.PadWidth = ColumnNTN8, NTN8Width
	default:
		schema.IDColumn, schema.PadWidth = ColumnNTN7, NTN7Width
	}

	return schema, nil
}
