// Package projectconfig provides the ProjectConfig struct and loader for
// .stratafit.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/scoring"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".stratafit.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultMaxResults   = 5
	DefaultDiversityCap = 2

	DefaultServerPort = 3000

	DefaultHistoryPath = ".stratafit/history.db"

	DefaultBatchWorkers = 4
)

// CatalogConfig selects where frameworks are loaded from. An empty Dir means
// the built-in catalog.
type CatalogConfig struct {
	Dir   string `yaml:"dir,omitempty"`
	Watch *bool  `yaml:"watch,omitempty"`
}

// SelectionConfig holds the default selection options.
type SelectionConfig struct {
	MaxResults       int                `yaml:"max_results,omitempty"`
	DiversityCap     int                `yaml:"diversity_cap,omitempty"`
	RelaxStage       *bool              `yaml:"relax_stage,omitempty"`
	DeriveChallenges *bool              `yaml:"derive_challenges,omitempty"`
	Weights          map[string]float64 `yaml:"weights,omitempty"`
}

// ServerConfig holds HTTP and JSON-RPC server settings.
type ServerConfig struct {
	Port    int    `yaml:"port,omitempty"`
	RPCAddr string `yaml:"rpc_addr,omitempty"`
}

// HistoryConfig controls recording of selection runs.
type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// BatchConfig holds batch selection settings.
type BatchConfig struct {
	Workers int `yaml:"workers,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .stratafit.yaml.
type ProjectConfig struct {
	Catalog   CatalogConfig   `yaml:"catalog,omitempty"`
	Selection SelectionConfig `yaml:"selection,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	History   HistoryConfig   `yaml:"history,omitempty"`
	Batch     BatchConfig     `yaml:"batch,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Catalog: CatalogConfig{
			Watch: boolPtr(false),
		},
		Selection: SelectionConfig{
			MaxResults:       DefaultMaxResults,
			DiversityCap:     DefaultDiversityCap,
			RelaxStage:       boolPtr(false),
			DeriveChallenges: boolPtr(true),
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
		},
		History: HistoryConfig{
			Enabled: boolPtr(false),
			Path:    DefaultHistoryPath,
		},
		Batch: BatchConfig{
			Workers: DefaultBatchWorkers,
		},
	}
}

// Load finds .stratafit.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", FileName, err)
	}
	return cfg, nil
}

// Validate rejects values the engine would refuse at selection time, so a
// bad file fails at startup instead of on every request.
func (c *ProjectConfig) Validate() error {
	var errs []error
	if c.Selection.MaxResults < 0 {
		errs = append(errs, fmt.Errorf("selection.max_results must not be negative, got %d", c.Selection.MaxResults))
	}
	if c.Selection.DiversityCap < 0 {
		errs = append(errs, fmt.Errorf("selection.diversity_cap must not be negative, got %d", c.Selection.DiversityCap))
	}
	if _, err := scoring.ResolveWeights(c.Selection.Weights); err != nil {
		errs = append(errs, fmt.Errorf("selection.weights: %w", err))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if c.Batch.Workers < 0 {
		errs = append(errs, fmt.Errorf("batch.workers must not be negative, got %d", c.Batch.Workers))
	}
	return errors.Join(errs...)
}

// SelectionOptions converts the selection section into engine options.
func (c *ProjectConfig) SelectionOptions() models.SelectionOptions {
	opts := models.SelectionOptions{
		MaxResults:   c.Selection.MaxResults,
		DiversityCap: c.Selection.DiversityCap,
		RelaxStage:   c.Selection.RelaxStage != nil && *c.Selection.RelaxStage,
	}
	if c.Selection.DeriveChallenges != nil {
		opts.DeriveChallenges = boolPtr(*c.Selection.DeriveChallenges)
	}
	if len(c.Selection.Weights) > 0 {
		opts.Weights = make(map[string]float64, len(c.Selection.Weights))
		for k, v := range c.Selection.Weights {
			opts.Weights[k] = v
		}
	}
	return opts
}

// WatchCatalog reports whether a catalog directory is configured for reload.
func (c *ProjectConfig) WatchCatalog() bool {
	return c.Catalog.Dir != "" && c.Catalog.Watch != nil && *c.Catalog.Watch
}

// HistoryEnabled reports whether selection runs should be recorded.
func (c *ProjectConfig) HistoryEnabled() bool {
	return c.History.Enabled != nil && *c.History.Enabled
}

// findConfigFile walks up from dir looking for .stratafit.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Catalog
	if src.Catalog.Dir != "" {
		dst.Catalog.Dir = src.Catalog.Dir
	}
	if src.Catalog.Watch != nil {
		dst.Catalog.Watch = src.Catalog.Watch
	}

	// Selection
	if src.Selection.MaxResults != 0 {
		dst.Selection.MaxResults = src.Selection.MaxResults
	}
	if src.Selection.DiversityCap != 0 {
		dst.Selection.DiversityCap = src.Selection.DiversityCap
	}
	if src.Selection.RelaxStage != nil {
		dst.Selection.RelaxStage = src.Selection.RelaxStage
	}
	if src.Selection.DeriveChallenges != nil {
		dst.Selection.DeriveChallenges = src.Selection.DeriveChallenges
	}
	if src.Selection.Weights != nil {
		dst.Selection.Weights = src.Selection.Weights
	}

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.RPCAddr != "" {
		dst.Server.RPCAddr = src.Server.RPCAddr
	}

	// History
	if src.History.Enabled != nil {
		dst.History.Enabled = src.History.Enabled
	}
	if src.History.Path != "" {
		dst.History.Path = src.History.Path
	}

	// Batch
	if src.Batch.Workers != 0 {
		dst.Batch.Workers = src.Batch.Workers
	}
}

func boolPtr(b bool) *bool {
	return &b
}
