package models

import (
	"github.com/shopspring/decimal"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
)

// CompanyModel is a row of the companies table
type CompanyModel struct {
	NTN     string          `gorm:"column:ntn;primaryKey"`
	Sr      *int64          `gorm:"column:sr"`
	Name    string          `gorm:"column:name;not null"`
	TaxPaid decimal.Decimal `gorm:"column:tax_paid;type:real"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// AOPModel is a row of the aop table
type AOPModel struct {
	NTN     string          `gorm:"column:ntn;primaryKey"`
	Sr      *int64          `gorm:"column:sr"`
	Name    string          `gorm:"column:name;not null"`
	TaxPaid decimal.Decimal `gorm:"column:tax_paid;type:real"`
}

// TableName returns the table name for GORM
func (AOPModel) TableName() string {
	return "aop"
}

// IndividualModel is a row of the individuals table
type IndividualModel struct {
	CNIC    string          `gorm:"column:cnic;primaryKey"`
	Sr      *int64          `gorm:"column:sr"`
	Name    string          `gorm:"column:name;not null"`
	TaxPaid decimal.Decimal `gorm:"column:tax_paid;type:real"`
}

// TableName returns the table name for GORM
func (IndividualModel) TableName() string {
	return "individuals"
}

// RowsFor converts records of one category into the slice of models GORM inserts
// into that category's table.
func RowsFor(category taxpayer.Category, records []taxpayer.Record) any {
	switch category {
	case taxpayer.CategoryCompany:
		rows := make([]CompanyModel, len(records))
		for i, r := range records {
			rows[i] = CompanyModel{NTN: r.RegNo, Sr: r.Serial, Name: r.Name, TaxPaid: r.TaxPaid}
		}
		return rows
	case taxpayer.CategoryAOP:
		rows := make([]AOPModel, len(records))
		for i, r := range records {
			rows[i] = AOPModel{NTN: r.RegNo, Sr: r.Serial, Name: r.Name, TaxPaid: r.TaxPaid}
		}
		return rows
	default:
		rows := make([]IndividualModel, len(records))
		for i, r := range records {
			rows[i] = IndividualModel{CNIC: r.RegNo, Sr: r.Serial, Name: r.Name, TaxPaid: r.TaxPaid}
		}
		return rows
	}
}

// ListingRow is the projection every query of the taxpayer tables selects
type ListingRow struct {
	Name    string
	RegNo   string
	TaxPaid decimal.NullDecimal
}

// ToDomain converts the projection to a domain record of the given category
func (r ListingRow) ToDomain(category taxpayer.Category) taxpayer.Record {
	return taxpayer.Record{
		Category: category,
		Name:     r.Name,
		RegNo:    r.RegNo,
		TaxPaid:  r.TaxPaid.Decimal,
	}
}
