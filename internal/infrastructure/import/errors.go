package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Import error codes
const (
	ErrCodeImportInvalidFile     = "ERR_IMPORT_INVALID_FILE"
	ErrCodeImportEmptyFile       = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeImportInvalidEncoding = "ERR_IMPORT_INVALID_ENCODING"

	ErrCodeImportCSVParsing    = "ERR_IMPORT_CSV_PARSING"
	ErrCodeImportMissingHeader = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeImportMissingColumn = "ERR_IMPORT_MISSING_COLUMN"

	ErrCodeImportValidation    = "ERR_IMPORT_VALIDATION"
	ErrCodeImportRequiredField = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidType   = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeImportInvalidRange  = "ERR_IMPORT_INVALID_RANGE"
)

var (
	// ErrEmptyFile is returned when the CSV file is empty
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrInvalidEncoding is returned when the file is not UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the CSV file has no header row
	ErrMissingHeader = errors.New("CSV file missing header row")

	// ErrMissingColumn is returned when a column of the year schema is absent from the header
	ErrMissingColumn = errors.New("CSV file missing schema column")
)

// FileError attaches an import error code to a failure that concerns the
// whole file rather than one row. It unwraps to the underlying error.
type FileError struct {
	Code   string
	Err    error
	Detail string
}

func newFileError(code string, err error) *FileError {
	return &FileError{Code: code, Err: err}
}

func (e *FileError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the import error code carried by err, or "" when err
// did not come from this package
func ErrorCode(err error) string {
	var invalid *InvalidRowsError
	if errors.As(err, &invalid) {
		return ErrCodeImportValidation
	}
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Code
	}
	var rowErr RowError
	if errors.As(err, &rowErr) {
		return rowErr.Code
	}
	return ""
}

// RowError represents an error in a specific row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
	}
}

// NewRowErrorWithValue creates a new RowError with the invalid value
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
		Value:   value,
	}
}

// ErrorCollection gathers row errors up to a limit while counting all of them
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a new ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 20
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddRequiredError adds a required field error
func (ec *ErrorCollection) AddRequiredError(row int, column string) {
	ec.Add(NewRowError(row, column, ErrCodeImportRequiredField, fmt.Sprintf("field '%s' is required", column)))
}

// AddTypeError adds a type validation error
func (ec *ErrorCollection) AddTypeError(row int, column, expectedType, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportInvalidType,
		fmt.Sprintf("expected %s", expectedType), value))
}

// AddRangeError adds a numeric range error
func (ec *ErrorCollection) AddRangeError(row int, column, value, bound string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportInvalidRange,
		fmt.Sprintf("value must be %s", bound), value))
}

// Errors returns the collected errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// Count returns the number of collected errors (up to maxErrors)
func (ec *ErrorCollection) Count() int {
	return len(ec.errors)
}

// TotalCount returns the total number of errors including those not collected
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated returns true if some errors were not collected due to the limit
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}

// String returns a string representation of all errors
func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s) found", ec.totalCount)
	if ec.IsTruncated() {
		fmt.Fprintf(&sb, " (showing first %d)", ec.maxErrors)
	}
	sb.WriteString(":\n")

	for _, err := range ec.errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}

	return sb.String()
}

// Err returns the collection as an error, or nil when nothing was collected.
// The returned error unwraps to the individual RowError values.
func (ec *ErrorCollection) Err() error {
	if !ec.HasErrors() {
		return nil
	}
	return &InvalidRowsError{Rows: append([]RowError(nil), ec.errors...), Total: ec.totalCount}
}

// InvalidRowsError aborts a load when one or more rows failed strict decoding
type InvalidRowsError struct {
	Rows  []RowError
	Total int
}

func (e *InvalidRowsError) Error() string {
	if len(e.Rows) == 0 {
		return fmt.Sprintf("%d invalid row(s)", e.Total)
	}
	return fmt.Sprintf("%d invalid row(s), first: %s", e.Total, e.Rows[0].Error())
}

func (e *InvalidRowsError) Unwrap() []error {
	errs := make([]error, len(e.Rows))
	for i, r := range e.Rows {
		errs[i] = r
	}
	return errs
}
