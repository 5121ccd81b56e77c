// Package columnar reads and writes Parquet files through an embedded DuckDB
// engine. Rows are staged in a temporary table and exported with COPY ... TO,
// so the Parquet encoding, compression and row-group layout are DuckDB's.
package columnar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

const (
	stagingTable       = "parquet_staging"
	defaultInsertBatch = 500
)

// ErrUnsupportedCompression is returned for codecs DuckDB's Parquet writer lacks
var ErrUnsupportedCompression = errors.New("unsupported parquet compression")

var compressions = map[string]string{
	"snappy":       "SNAPPY",
	"gzip":         "GZIP",
	"zstd":         "ZSTD",
	"uncompressed": "UNCOMPRESSED",
}

// Column is one output column and its DuckDB type
type Column struct {
	Name string
	Type string
}

// WriteOptions controls the Parquet layout
type WriteOptions struct {
	Compression  string
	RowGroupSize int
}

// Engine wraps a DuckDB handle
type Engine struct {
	db          *sql.DB
	insertBatch int
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithInsertBatch sets how many rows go into one staging INSERT
func WithInsertBatch(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.insertBatch = n
		}
	}
}

// Open starts an in-memory DuckDB engine
func Open(opts ...EngineOption) (*Engine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return NewEngine(db, opts...), nil
}

// NewEngine wraps an existing handle. The pool is pinned to one connection so
// the temporary staging table stays visible between statements.
func NewEngine(db *sql.DB, opts ...EngineOption) *Engine {
	db.SetMaxOpenConns(1)
	e := &Engine{db: db, insertBatch: defaultInsertBatch}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases the DuckDB handle
func (e *Engine) Close() error {
	return e.db.Close()
}

// WriteRows writes rows to a Parquet file at path, preserving row order
func (e *Engine) WriteRows(ctx context.Context, path string, columns []Column, rows [][]any, opts WriteOptions) error {
	codec, ok := compressions[strings.ToLower(opts.Compression)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedCompression, opts.Compression)
	}
	if len(columns) == 0 {
		return errors.New("no columns to write")
	}

	defs := make([]string, 0, len(columns)+1)
	names := make([]string, 0, len(columns))
	defs = append(defs, "row_idx BIGINT")
	for _, c := range columns {
		defs = append(defs, quoteIdent(c.Name)+" "+c.Type)
		names = append(names, quoteIdent(c.Name))
	}

	create := fmt.Sprintf("CREATE OR REPLACE TEMP TABLE %s (%s)", stagingTable, strings.Join(defs, ", "))
	if _, err := e.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create staging table: %w", err)
	}
	defer func() {
		_, _ = e.db.ExecContext(context.WithoutCancel(ctx), "DROP TABLE IF EXISTS "+stagingTable)
	}()

	if err := e.stage(ctx, len(columns), rows); err != nil {
		return err
	}

	copyStmt := fmt.Sprintf("COPY (SELECT %s FROM %s ORDER BY row_idx) TO %s (FORMAT parquet, COMPRESSION %s",
		strings.Join(names, ", "), stagingTable, quoteLiteral(path), codec)
	if opts.RowGroupSize > 0 {
		copyStmt += fmt.Sprintf(", ROW_GROUP_SIZE %d", opts.RowGroupSize)
	}
	copyStmt += ")"

	if _, err := e.db.ExecContext(ctx, copyStmt); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}

// stage inserts rows in multi-row batches inside one transaction
func (e *Engine) stage(ctx context.Context, width int, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin staging: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", width+1), ", ") + ")"

	for start := 0; start < len(rows); start += e.insertBatch {
		end := min(start+e.insertBatch, len(rows))
		batch := rows[start:end]

		tuples := make([]string, len(batch))
		args := make([]any, 0, len(batch)*(width+1))
		for i, row := range batch {
			if len(row) != width {
				return fmt.Errorf("row %d has %d values, want %d", start+i, len(row), width)
			}
			tuples[i] = tuple
			args = append(args, int64(start+i))
			args = append(args, row...)
		}

		stmt := "INSERT INTO " + stagingTable + " VALUES " + strings.Join(tuples, ", ")
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("stage rows %d-%d: %w", start, end-1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit staging: %w", err)
	}
	return nil
}

// CountRows returns the number of rows stored in a Parquet file
func (e *Engine) CountRows(ctx context.Context, path string) (int64, error) {
	var n int64
	err := e.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM read_parquet("+quoteLiteral(path)+")").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", path, err)
	}
	return n, nil
}

// query runs a SELECT over read_parquet(path); %s in selectFmt receives the source
func (e *Engine) query(ctx context.Context, selectFmt, path string) (*sql.Rows, error) {
	rows, err := e.db.QueryContext(ctx, fmt.Sprintf(selectFmt, "read_parquet("+quoteLiteral(path)+")"))
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
