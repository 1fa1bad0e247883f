package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/spboyer/stratafit/internal/validation"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var builtinFS embed.FS

// BuiltinSource is the Meta.Source of the embedded catalog.
const BuiltinSource = "builtin"

// Builtin loads the catalog shipped with the binary.
func Builtin() (*Snapshot, error) {
	return LoadFS(builtinFS, "data", BuiltinSource)
}

// LoadDir loads every *.yaml and *.yml file in dir (non-recursive).
func LoadDir(dir string) (*Snapshot, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading catalog directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog path %s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir), ".", dir)
}

// LoadFS loads every catalog file directly under root in fsys. Each file is
// schema-validated, decoded and merged; all problems across all files are
// reported together as one *IntegrityError.
func LoadFS(fsys fs.FS, root, source string) (*Snapshot, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("listing catalog files: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsCatalogFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var (
		d decoded
		p problems
	)
	for _, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("reading catalog file %s: %w", name, err)
		}
		decodeYAML(name, data, &d, &p)
	}
	slog.Debug("catalog files decoded", "source", source, "files", len(names), "frameworks", len(d.defs))
	return d.snapshot(source, &p)
}

// LoadBytes loads a single YAML catalog document.
func LoadBytes(name string, data []byte) (*Snapshot, error) {
	var (
		d decoded
		p problems
	)
	decodeYAML(name, data, &d, &p)
	return d.snapshot(name, &p)
}

// IsCatalogFile reports whether name has a catalog file extension.
func IsCatalogFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func decodeYAML(name string, data []byte, d *decoded, p *problems) {
	if errs := validation.ValidateCatalogBytes(data); len(errs) > 0 {
		for _, e := range errs {
			p.addf("%s: %s", name, e)
		}
		return
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		p.addf("%s: %v", name, err)
		return
	}
	d.add(name, &doc, p)
}

func (d *decoded) snapshot(source string, p *problems) (*Snapshot, error) {
	// Conversion problems and snapshot checks are reported as one error.
	snap, err := NewSnapshot(Meta{Source: source, Version: d.version, LoadedAt: time.Now()}, d.defs, d.profiles, d.records)
	if err != nil {
		if ie, ok := err.(*IntegrityError); ok {
			p.list = append(p.list, ie.Problems...)
		} else {
			return nil, err
		}
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	return snap, nil
}
