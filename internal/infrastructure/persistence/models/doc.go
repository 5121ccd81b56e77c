// Package models contains the GORM persistence models of the taxpayer tables.
// The schema itself is owned by the embedded migrations; these types only map
// rows to and from the domain records.
package models
