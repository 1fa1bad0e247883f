// Package dataset loads batches of startup contexts from CSV or YAML files.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spboyer/stratafit/internal/models"
	"gopkg.in/yaml.v3"
)

// Entry is one named context of a batch.
type Entry struct {
	Name    string                `json:"name" yaml:"name"`
	Context models.StartupContext `json:"context" yaml:"context"`
}

// Load reads a batch file, choosing the format by extension: .csv, or
// .yaml/.yml.
func Load(path string) ([]Entry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSVEntries(path)
	case ".yaml", ".yml":
		return loadYAMLEntries(path)
	default:
		return nil, fmt.Errorf("dataset: unsupported file type %q (want .csv, .yaml or .yml)", filepath.Ext(path))
	}
}

// LoadRange loads a batch and keeps entries in [start, end] (1-based,
// inclusive).
func LoadRange(path string, start, end int) ([]Entry, error) {
	if start < 1 {
		return nil, fmt.Errorf("dataset: range start must be >= 1, got %d", start)
	}
	if end < start {
		return nil, fmt.Errorf("dataset: range end (%d) must be >= start (%d)", end, start)
	}

	all, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Clamp end to available entries
	if end > len(all) {
		end = len(all)
	}
	if start > len(all) {
		return []Entry{}, nil
	}
	return all[start-1 : end], nil
}

// loadYAMLEntries accepts either a list of contexts or a stream of context
// documents separated by "---".
func loadYAMLEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("yaml: open %s: %w", path, err)
	}

	var list []models.StartupContext
	if err := yaml.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return named(list), nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var ctx models.StartupContext
		err := dec.Decode(&ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("yaml: parse %s: %w", path, err)
		}
		list = append(list, ctx)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("yaml: %s holds no contexts", path)
	}
	return named(list), nil
}

func named(list []models.StartupContext) []Entry {
	entries := make([]Entry, len(list))
	for i, ctx := range list {
		entries[i] = Entry{Name: entryName(ctx.Name, i+1), Context: ctx}
	}
	return entries
}

func entryName(name string, n int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("context-%d", n)
}
