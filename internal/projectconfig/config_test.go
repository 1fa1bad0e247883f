package projectconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ReturnsAllDefaults(t *testing.T) {
	cfg := New()

	// Catalog
	assertEqual(t, "Catalog.Dir", "", cfg.Catalog.Dir)
	assertBoolPtr(t, "Catalog.Watch", false, cfg.Catalog.Watch)

	// Selection
	assertEqualInt(t, "Selection.MaxResults", 5, cfg.Selection.MaxResults)
	assertEqualInt(t, "Selection.DiversityCap", 2, cfg.Selection.DiversityCap)
	assertBoolPtr(t, "Selection.RelaxStage", false, cfg.Selection.RelaxStage)
	assertBoolPtr(t, "Selection.DeriveChallenges", true, cfg.Selection.DeriveChallenges)
	if cfg.Selection.Weights != nil {
		t.Error("Selection.Weights should be nil by default")
	}

	// Server
	assertEqualInt(t, "Server.Port", 3000, cfg.Server.Port)
	assertEqual(t, "Server.RPCAddr", "", cfg.Server.RPCAddr)

	// History
	assertBoolPtr(t, "History.Enabled", false, cfg.History.Enabled)
	assertEqual(t, "History.Path", ".stratafit/history.db", cfg.History.Path)

	// Batch
	assertEqualInt(t, "Batch.Workers", 4, cfg.Batch.Workers)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
catalog:
  dir: ./frameworks
  watch: true
selection:
  max_results: 8
  diversity_cap: 3
  relax_stage: true
  derive_challenges: false
  weights:
    archetype: 0.5
    capability: 0.1
server:
  port: 8080
  rpc_addr: "127.0.0.1:9000"
history:
  enabled: true
  path: runs.db
batch:
  workers: 16
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assertEqual(t, "Catalog.Dir", "./frameworks", cfg.Catalog.Dir)
	assert.True(t, cfg.WatchCatalog())
	assertEqualInt(t, "Selection.MaxResults", 8, cfg.Selection.MaxResults)
	assertEqualInt(t, "Selection.DiversityCap", 3, cfg.Selection.DiversityCap)
	assertBoolPtr(t, "Selection.RelaxStage", true, cfg.Selection.RelaxStage)
	assertBoolPtr(t, "Selection.DeriveChallenges", false, cfg.Selection.DeriveChallenges)
	assert.Equal(t, map[string]float64{"archetype": 0.5, "capability": 0.1}, cfg.Selection.Weights)
	assertEqualInt(t, "Server.Port", 8080, cfg.Server.Port)
	assertEqual(t, "Server.RPCAddr", "127.0.0.1:9000", cfg.Server.RPCAddr)
	assert.True(t, cfg.HistoryEnabled())
	assertEqual(t, "History.Path", "runs.db", cfg.History.Path)
	assertEqualInt(t, "Batch.Workers", 16, cfg.Batch.Workers)
}

func TestLoad_PartialConfig_MergesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
selection:
  max_results: 3
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assertEqualInt(t, "Selection.MaxResults", 3, cfg.Selection.MaxResults)
	assertEqualInt(t, "Selection.DiversityCap", DefaultDiversityCap, cfg.Selection.DiversityCap)
	assertBoolPtr(t, "Selection.DeriveChallenges", true, cfg.Selection.DeriveChallenges)
	assertEqualInt(t, "Server.Port", DefaultServerPort, cfg.Server.Port)
	assertEqual(t, "History.Path", DefaultHistoryPath, cfg.History.Path)
	assert.False(t, cfg.WatchCatalog())
	assert.False(t, cfg.HistoryEnabled())
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, New(), cfg)
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
selection:
  max_results: [not valid yaml
    this is broken
`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .stratafit.yaml")
}

func TestLoad_InvalidValues_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
selection:
  max_results: -1
  weights:
    vibes: 1
server:
  port: 70000
`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selection.max_results must not be negative")
	assert.Contains(t, err.Error(), "unknown factor(s) vibes")
	assert.Contains(t, err.Error(), "server.port 70000 is out of range")
}

func TestLoad_WalksUpDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, `
catalog:
  dir: found-it
`)

	child := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(child, 0o755))

	cfg, err := Load(child)
	require.NoError(t, err)

	assertEqual(t, "Catalog.Dir", "found-it", cfg.Catalog.Dir)
	// Other defaults still populated
	assertEqualInt(t, "Selection.MaxResults", DefaultMaxResults, cfg.Selection.MaxResults)
}

func TestSelectionOptions(t *testing.T) {
	cfg := New()
	cfg.Selection.Weights = map[string]float64{"stage": 1}

	opts := cfg.SelectionOptions()
	assert.Equal(t, DefaultMaxResults, opts.MaxResults)
	assert.Equal(t, DefaultDiversityCap, opts.DiversityCap)
	assert.False(t, opts.RelaxStage)
	require.NotNil(t, opts.DeriveChallenges)
	assert.True(t, *opts.DeriveChallenges)
	assert.Equal(t, map[string]float64{"stage": 1}, opts.Weights)

	// the options own their weight map
	opts.Weights["stage"] = 2
	assert.Equal(t, 1.0, cfg.Selection.Weights["stage"])
}

func TestBoolPointerFields(t *testing.T) {
	t.Run("explicitly false", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, FileName, `
selection:
  derive_challenges: false
history:
  enabled: false
`)
		cfg, err := Load(dir)
		require.NoError(t, err)
		assertBoolPtr(t, "Selection.DeriveChallenges", false, cfg.Selection.DeriveChallenges)
		assertBoolPtr(t, "History.Enabled", false, cfg.History.Enabled)
	})

	t.Run("watch without a directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, FileName, `
catalog:
  watch: true
`)
		cfg, err := Load(dir)
		require.NoError(t, err)
		assertBoolPtr(t, "Catalog.Watch", true, cfg.Catalog.Watch)
		assert.False(t, cfg.WatchCatalog(), "the built-in catalog has nothing to watch")
	})
}

// --- test helpers ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertEqual(t *testing.T, field, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

func assertEqualInt(t *testing.T, field string, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", field, got, want)
	}
}

func assertBoolPtr(t *testing.T, field string, want bool, got *bool) {
	t.Helper()
	if got == nil {
		t.Errorf("%s is nil, want *%v", field, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %v, want %v", field, *got, want)
	}
}
