package taxpayer

import (
	"fmt"
	"strings"
)

// Category represents a taxpayer category
type Category string

const (
	CategoryCompany    Category = "company"
	CategoryAOP        Category = "aop"
	CategoryIndividual Category = "individual"
)

// AllCategories lists the categories in the order every report emits them
var AllCategories = []Category{CategoryCompany, CategoryAOP, CategoryIndividual}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryCompany, CategoryAOP, CategoryIndividual:
		return true
	}
	return false
}

// FileStem returns the name used for per-year CSV and Parquet files
func (c Category) FileStem() string {
	switch c {
	case CategoryCompany:
		return "companies"
	case CategoryIndividual:
		return "individuals"
	default:
		return string(c)
	}
}

// Table returns the relational table holding this category
func (c Category) Table() string {
	return c.FileStem()
}

// Label returns the display label used by the query tool
func (c Category) Label() string {
	switch c {
	case CategoryCompany:
		return "Company"
	case CategoryAOP:
		return "AOP"
	case CategoryIndividual:
		return "Individual"
	}
	return string(c)
}

// IDColumn returns the registration column of the relational table
func (c Category) IDColumn() string {
	if c == CategoryIndividual {
		return "cnic"
	}
	return "ntn"
}

// IsNTNKeyed returns true for categories always identified by NTN
func (c Category) IsNTNKeyed() bool {
	return c == CategoryCompany || c == CategoryAOP
}

// ParseCategory parses a category from its name, file stem or table name
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "company", "companies":
		return CategoryCompany, nil
	case "aop":
		return CategoryAOP, nil
	case "individual", "individuals":
		return CategoryIndividual, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}
