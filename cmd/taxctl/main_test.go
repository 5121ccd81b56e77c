package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workspace holds a config file pointing every path into a temp directory
type workspace struct {
	dir    string
	config string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	config := filepath.Join(dir, "taxpayers.toml")
	content := fmt.Sprintf(`
years = [2017, 2018]

[log]
level = "error"

[paths]
data_dir = %q

[database]
path = %q
log_level = "silent"

[web]
output_dir = %q
`, filepath.Join(dir, "data"), filepath.Join(dir, "db", "taxpayers.db"), filepath.Join(dir, "site"))
	require.NoError(t, os.WriteFile(config, []byte(content), 0o644))
	return &workspace{dir: dir, config: config}
}

func (w *workspace) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(w.dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (w *workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", w.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot(t *testing.T) {
	w := newWorkspace(t)

	t.Run("no arguments prints usage", func(t *testing.T) {
		out, err := w.run(t)
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
		assert.Contains(t, out, "query")
	})

	t.Run("unknown command fails", func(t *testing.T) {
		_, err := w.run(t, "frobnicate")
		require.Error(t, err)
	})

	t.Run("invalid config fails", func(t *testing.T) {
		_, err := w.run(t, "--config", filepath.Join(w.dir, "missing.toml"), "migrate", "list")
		require.Error(t, err)
	})
}

func TestQueryCommands(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, "data/2018/companies.csv",
		"sr,name,ntn_7,tax_paid\n1,Acme,1234567,500000.00\n2,Zenith Holdings,7654321,900000.00\n3,Acme Copy,1234567,1.00\n")
	w.write(t, "data/2018/individuals.csv",
		"sr,name,cnic,tax_paid\n1,Ali Acme,3520112345671,2500.50\n")

	_, err := w.run(t, "load")
	require.NoError(t, err)

	t.Run("top company 1", func(t *testing.T) {
		out, err := w.run(t, "query", "top", "company", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "Top 1 taxpayers (Type: company)")
		assert.Contains(t, out, "Zenith Holdings")
		assert.Contains(t, out, "900,000.00")
		assert.NotContains(t, out, "500,000.00")
		assert.Contains(t, out, "Total results: 1")
	})

	t.Run("name search across tables", func(t *testing.T) {
		out, err := w.run(t, "query", "name", "acme")
		require.NoError(t, err)
		assert.Contains(t, out, "Searching for: acme (Type: all)")
		assert.Contains(t, out, "Individual")
		assert.Contains(t, out, "Total results: 2")
	})

	t.Run("regno lookup", func(t *testing.T) {
		out, err := w.run(t, "query", "regno", "1234567")
		require.NoError(t, err)
		assert.Contains(t, out, "Searching for registration number: 1234567")
		assert.Contains(t, out, "500,000.00")
	})

	t.Run("range without results", func(t *testing.T) {
		out, err := w.run(t, "query", "range", "10", "20", "aop")
		require.NoError(t, err)
		assert.Contains(t, out, "Taxpayers with tax paid between 10.00 and 20.00 (Type: aop)")
		assert.Contains(t, out, "No results found.")
	})

	misuse := []struct {
		name string
		args []string
		msg  string
	}{
		{name: "unknown subcommand", args: []string{"query", "lookup"}, msg: "unknown command 'lookup'"},
		{name: "missing term", args: []string{"query", "name"}, msg: "search term"},
		{name: "missing regno", args: []string{"query", "regno"}, msg: "registration number"},
		{name: "missing bounds", args: []string{"query", "range", "10"}, msg: "min and max"},
		{name: "bad bound", args: []string{"query", "range", "ten", "20"}, msg: "invalid minimum"},
		{name: "unknown type", args: []string{"query", "top", "people"}, msg: "unknown taxpayer category"},
		{name: "bad limit", args: []string{"query", "top", "all", "many"}, msg: "invalid limit"},
	}
	for _, tt := range misuse {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	t.Run("query without arguments prints usage", func(t *testing.T) {
		out, err := w.run(t, "query")
		require.NoError(t, err)
		assert.Contains(t, out, "taxctl query regno 1347561")
	})
}

func TestQuery_MissingDatabase(t *testing.T) {
	w := newWorkspace(t)
	_, err := w.run(t, "query", "top")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not connect to database")
}

func TestPublishDryRun(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, "site/statistics.json", "{}")
	w.write(t, "site/2018/companies.parquet", "PAR1")

	out, err := w.run(t, "publish", "--dry-run")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, out, "2018/companies.parquet")
	assert.Contains(t, out, "application/json")
}

func TestPublish_RequiresStorage(t *testing.T) {
	w := newWorkspace(t)
	_, err := w.run(t, "publish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.bucket")
}

func TestMigrateCommands(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.run(t, "migrate", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0001_taxpayer_schema")

	_, err = w.run(t, "migrate", "up")
	require.NoError(t, err)

	out, err = w.run(t, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "version: 1, dirty: false\n", out)
}
