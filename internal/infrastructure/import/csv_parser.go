package csvimport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// CSVParser reads a header-first CSV stream into rows keyed by column name
type CSVParser struct {
	delimiter  rune
	lazyQuotes bool
	trimSpace  bool
	headerMap  map[string]int
	headers    []string
	currentRow int
	totalRows  int
	reader     *csv.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithLazyQuotes enables lazy quote handling
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) {
		p.lazyQuotes = lazy
	}
}

// WithTrimSpace enables trimming of leading/trailing spaces from fields
func WithTrimSpace(trim bool) ParserOption {
	return func(p *CSVParser) {
		p.trimSpace = trim
	}
}

// NewCSVParser creates a new CSV parser from a reader.
// A leading UTF-8 BOM is dropped and the first block is checked for valid UTF-8.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		delimiter:  ',',
		lazyQuotes: true,
		trimSpace:  true,
		headerMap:  make(map[string]int),
	}

	for _, opt := range opts {
		opt(parser)
	}

	buf := bufio.NewReaderSize(r, 64*1024)

	bom, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, newFileError(ErrCodeImportInvalidFile, fmt.Errorf("failed to read file: %w", err))
	}
	if len(bom) == 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	if err := validateUTF8(buf); err != nil {
		return nil, err
	}

	parser.reader = csv.NewReader(buf)
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = parser.lazyQuotes
	parser.reader.TrimLeadingSpace = parser.trimSpace
	parser.reader.FieldsPerRecord = -1
	parser.reader.ReuseRecord = false

	return parser, nil
}

func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return newFileError(ErrCodeImportInvalidFile, fmt.Errorf("failed to read file for encoding validation: %w", err))
	}

	if len(content) == 0 {
		return newFileError(ErrCodeImportEmptyFile, ErrEmptyFile)
	}

	// A multi-byte rune may straddle the peek boundary
	if len(content) == checkSize {
		for i := 0; i < utf8.UTFMax && len(content) > 0 && !utf8.Valid(content); i++ {
			content = content[:len(content)-1]
		}
	}

	if !utf8.Valid(content) {
		return newFileError(ErrCodeImportInvalidEncoding, ErrInvalidEncoding)
	}

	return nil
}

// ParseHeader reads the header row. Header names are trimmed and lower-cased.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return newFileError(ErrCodeImportMissingHeader, ErrMissingHeader)
	}
	if err != nil {
		return newFileError(ErrCodeImportCSVParsing, fmt.Errorf("failed to read header: %w", err))
	}

	p.headers = make([]string, 0, len(record))
	for i, h := range record {
		header := strings.ToLower(strings.TrimSpace(h))
		p.headers = append(p.headers, header)
		if _, dup := p.headerMap[header]; !dup {
			p.headerMap[header] = i
		}
	}

	if len(p.headers) == 0 || (len(p.headers) == 1 && p.headers[0] == "") {
		return newFileError(ErrCodeImportMissingHeader, ErrMissingHeader)
	}

	p.currentRow = 1

	return nil
}

// Headers returns the parsed header names
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HasHeader checks if a header exists
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// ValidateHeaders returns the required headers that are absent
func (p *CSVParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one parsed data line
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next row. io.EOF is returned unwrapped at the end of input.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, NewRowError(p.currentRow, "", ErrCodeImportCSVParsing, err.Error())
	}
	p.totalRows++

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headerMap)),
	}
	for header, i := range p.headerMap {
		if i >= len(record) {
			row.Data[header] = ""
			continue
		}
		value := record[i]
		if p.trimSpace {
			value = strings.TrimSpace(value)
		}
		row.Data[header] = value
	}

	return row, nil
}

// CurrentRow returns the current row number (1-indexed, header included)
func (p *CSVParser) CurrentRow() int {
	return p.currentRow
}

// TotalRows returns the total number of data rows read
func (p *CSVParser) TotalRows() int {
	return p.totalRows
}
