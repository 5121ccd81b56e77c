package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taxpayers/backend/internal/domain/taxpayer"
	"github.com/taxpayers/backend/internal/infrastructure/columnar"
	"github.com/taxpayers/backend/internal/infrastructure/config"
)

// fakeEngine keeps written Parquet content in memory and leaves a small
// placeholder file on disk so size reports and existence checks work
type fakeEngine struct {
	mu           sync.Mutex
	years        map[string][]taxpayer.Record
	consolidated map[string][]taxpayer.ConsolidatedRow
	opts         map[string]columnar.WriteOptions
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		years:        make(map[string][]taxpayer.Record),
		consolidated: make(map[string][]taxpayer.ConsolidatedRow),
		opts:         make(map[string]columnar.WriteOptions),
	}
}

func (f *fakeEngine) WriteYearFile(ctx context.Context, path string, schema taxpayer.YearSchema, records []taxpayer.Record, opts columnar.WriteOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := make([]taxpayer.Record, len(records))
	for i, r := range records {
		r.Year, r.Category = schema.Year, schema.Category
		stored[i] = r
	}
	f.years[path] = stored
	f.opts[path] = opts
	return os.WriteFile(path, []byte("PAR1"), 0o644)
}

func (f *fakeEngine) ReadYearFile(ctx context.Context, path string, schema taxpayer.YearSchema) ([]taxpayer.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]taxpayer.Record(nil), f.years[path]...), nil
}

func (f *fakeEngine) WriteConsolidated(ctx context.Context, path string, rows []taxpayer.ConsolidatedRow, opts columnar.WriteOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consolidated[path] = rows
	f.opts[path] = opts
	return os.WriteFile(path, []byte("PAR1"), 0o644)
}

func (f *fakeEngine) Distribution(ctx context.Context, path string) ([]taxpayer.Distribution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return taxpayer.Distribute(f.consolidated[path]), nil
}

func newTestConfig(t *testing.T, years ...int) *config.Config {
	t.Helper()
	if len(years) == 0 {
		years = []int{2017, 2018}
	}
	root := t.TempDir()
	return &config.Config{
		App:   config.AppConfig{Name: "taxpayers", Env: "test"},
		Paths: config.PathsConfig{DataDir: filepath.Join(root, "data")},
		Years: years,
		Database: config.DatabaseConfig{
			Path:      filepath.Join(root, "db", "taxpayers.db"),
			Year:      years[len(years)-1],
			BatchSize: 1000,
			LogLevel:  "silent",
		},
		Parquet: config.ParquetConfig{
			Compression:             "gzip",
			ConsolidatedCompression: "zstd",
			RowGroupSize:            5000,
			SortByID:                true,
			ConsolidatedFile:        "all.parquet",
		},
		Web: config.WebConfig{
			OutputDir: filepath.Join(root, "site"),
			TopLimit:  1000,
			ListSize:  100,
		},
		AcrossYears: config.AcrossYearsConfig{TopN: 100, LegacyYear: 2013},
	}
}

// writeInput writes <data_dir>/<year>/<stem>.csv
func writeInput(t *testing.T, cfg *config.Config, year int, category taxpayer.Category, content string) string {
	t.Helper()
	dir := cfg.Paths.YearDir(year)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, category.FileStem()+".csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func regNos(records []taxpayer.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.RegNo
	}
	return out
}

func defaultWriteOptions() columnar.WriteOptions {
	return columnar.WriteOptions{Compression: "gzip", RowGroupSize: 5000}
}
