package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "taxpayers", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, []int{2013, 2014, 2015, 2016, 2017, 2018}, cfg.Years)
		assert.Equal(t, filepath.Join("docs", "data"), cfg.Paths.DataDir)
		assert.Equal(t, filepath.Join("data", "taxpayers.db"), cfg.Database.Path)
		assert.Equal(t, 2018, cfg.Database.Year)
		assert.Equal(t, 1000, cfg.Database.BatchSize)
		assert.Equal(t, "gzip", cfg.Parquet.Compression)
		assert.Equal(t, "zstd", cfg.Parquet.ConsolidatedCompression)
		assert.Equal(t, 5000, cfg.Parquet.RowGroupSize)
		assert.True(t, cfg.Parquet.SortByID)
		assert.Equal(t, cfg.Paths.DataDir, cfg.Web.OutputDir)
		assert.Equal(t, 1000, cfg.Web.TopLimit)
		assert.Equal(t, 100, cfg.Web.ListSize)
		assert.Equal(t, 100, cfg.AcrossYears.TopN)
		assert.Equal(t, 2013, cfg.AcrossYears.LegacyYear)
		assert.False(t, cfg.AcrossYears.LegacyNameMatch)
		assert.Equal(t, 2018, cfg.PrimaryYear())
	})

	t.Run("loads values from environment variables with TAX prefix", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("TAX_DATABASE_PATH", "/tmp/tax.db")
		t.Setenv("TAX_YEARS", "2016,2017")
		t.Setenv("TAX_DATABASE_YEAR", "2016")
		t.Setenv("TAX_PARQUET_COMPRESSION", "SNAPPY")
		t.Setenv("TAX_PARQUET_SORT_BY_ID", "false")
		t.Setenv("TAX_ACROSS_YEARS_LEGACY_NAME_MATCH", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "/tmp/tax.db", cfg.Database.Path)
		assert.Equal(t, []int{2016, 2017}, cfg.Years)
		assert.Equal(t, 2016, cfg.Database.Year)
		assert.Equal(t, "snappy", cfg.Parquet.Compression)
		assert.False(t, cfg.Parquet.SortByID)
		assert.True(t, cfg.AcrossYears.LegacyNameMatch)
	})

	t.Run("rejects a database year outside the year set", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("TAX_YEARS", "2017,2018")
		t.Setenv("TAX_DATABASE_YEAR", "2014")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.year")
	})

	t.Run("rejects unsupported years", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("TAX_YEARS", "2012")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("rejects malformed years", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("TAX_YEARS", "2017,latest")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "latest")
	})

	t.Run("rejects unknown compression", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("TAX_PARQUET_COMPRESSION", "lz77")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("production requires json logs", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("TAX_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log.format")
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxpayers.toml")
	content := `
years = [2017, 2018]

[paths]
data_dir = "input"

[database]
path = "out/tax.db"

[web]
output_dir = "site/data"
list_size = 50

[storage]
bucket = "tax-site"
access_key = "key"
secret_key = "secret"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []int{2017, 2018}, cfg.Years)
	assert.Equal(t, "input", cfg.Paths.DataDir)
	assert.Equal(t, filepath.Join("input", "2017"), cfg.Paths.YearDir(2017))
	assert.Equal(t, "out/tax.db", cfg.Database.Path)
	assert.Equal(t, "site/data", cfg.Web.OutputDir)
	assert.Equal(t, 50, cfg.Web.ListSize)
	assert.True(t, cfg.Storage.IsConfigured())

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "missing.toml"))
		require.Error(t, err)
	})
}
