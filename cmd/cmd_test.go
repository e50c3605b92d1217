package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timeline/internal/store"
)

// run executes the root command with args against a workspace in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	cfgFile, dbFlag = "", ""
	exportFormat, exportOut = "", ""
	importDryRun = false
	showPreset, showEnd, showGroups = "", "", nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--db", filepath.Join(dir, "ws.db")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

const legacyPayload = `{
	"groups": ["Work"],
	"projects": {"Thesis": "Work"},
	"entries": [
		{"date": "2024-03-01", "project": "Thesis", "group": "Work", "percent": 50, "note": "chapter one"},
		{"date": "2024-03-02", "project": "Thesis", "group": "Work", "percent": 0, "note": ""}
	]
}`

func TestImportExportShow(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "legacy.json")
	writeFile(t, in, legacyPayload)

	out, err := run(t, dir, "import", in)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 groups, 1 tracks, 2 entries")

	yamlOut := filepath.Join(dir, "out.yaml")
	out, err = run(t, dir, "export", "--out", yamlOut)
	require.NoError(t, err)
	assert.Contains(t, out, yamlOut)
	data, err := os.ReadFile(yamlOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), "chapter one")

	csvOut := filepath.Join(dir, "out.txt")
	_, err = run(t, dir, "export", "--format", "csv", "--out", csvOut)
	require.NoError(t, err)
	data, err = os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Date,Group,Track"))

	out, err = run(t, dir, "show", "--preset", "30d", "--end", "2024-03-15")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-02-15..2024-03-15")
	assert.Contains(t, out, "Thesis")
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "chapter one")
	assert.Contains(t, out, "Mar 2024")
}

func TestImportDryRunLeavesWorkspace(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "legacy.json")
	writeFile(t, in, legacyPayload)

	out, err := run(t, dir, "import", "--dry-run", in)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid: 1 groups, 1 tracks, 2 entries")

	out, err = run(t, dir, "show", "--preset", "all")
	require.NoError(t, err)
	assert.NotContains(t, out, "Thesis")
}

func TestImportMalformedFails(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.json")
	writeFile(t, in, `{"groups": "Work"}`)

	_, err := run(t, dir, "import", in)
	assert.Error(t, err)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	_, err := run(t, t.TempDir(), "export", "--format", "xml")
	assert.ErrorContains(t, err, "unknown export format")
}

func TestSeedGroupsOnNewWorkspace(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "seed.yaml")
	writeFile(t, cfg, "seed_groups: [Health, Work]\nwindow:\n  preset: 30d\n")

	out, err := run(t, dir, "--config", cfg, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Health")
	assert.Contains(t, out, "(30 days)")
}

func storedCounts(t *testing.T, dir string) (int, int, int) {
	t.Helper()
	s, err := store.New(filepath.Join(dir, "ws.db"))
	require.NoError(t, err)
	defer s.Close()
	g, tr, e, err := s.Counts()
	require.NoError(t, err)
	return g, tr, e
}

func TestReadCommandsDoNotWriteSeeds(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "seed.yaml")
	writeFile(t, cfg, "seed_groups: [Health, Work]\n")

	_, err := run(t, dir, "--config", cfg, "show")
	require.NoError(t, err)
	_, err = run(t, dir, "--config", cfg, "export", "--out", filepath.Join(dir, "out.json"))
	require.NoError(t, err)

	g, tr, e := storedCounts(t, dir)
	assert.Zero(t, g+tr+e)
}

func TestOwningCommandPersistsSeeds(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "seed.yaml")
	writeFile(t, cfg, "seed_groups: [Health, Work]\n")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	cfgFile, dbFlag = cfg, filepath.Join(dir, "ws.db")
	t.Cleanup(func() { cfgFile, dbFlag = "", "" })

	w, err := openWorkspace(true)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	g, _, _ := storedCounts(t, dir)
	assert.Equal(t, 2, g)
}

func TestShowRejectsBadEnd(t *testing.T) {
	_, err := run(t, t.TempDir(), "show", "--end", "yesterday")
	assert.ErrorContains(t, err, "invalid --end date")
}
