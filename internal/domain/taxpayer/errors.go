package taxpayer

import "errors"

var (
	// ErrUnknownYear is returned when no schema is registered for a tax year
	ErrUnknownYear = errors.New("unknown tax year")

	// ErrUnknownCategory is returned when a category name cannot be parsed
	ErrUnknownCategory = errors.New("unknown taxpayer category")

	// ErrNotFound is returned when no taxpayer matches a registration number
	ErrNotFound = errors.New("taxpayer not found")
)
