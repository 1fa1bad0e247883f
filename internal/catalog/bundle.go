package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spboyer/stratafit/internal/validation"
)

// BundleExt is the file extension of a compressed catalog bundle.
const BundleExt = ".json.gz"

// WriteBundle writes the snapshot as gzip-compressed JSON.
func WriteBundle(w io.Writer, s *Snapshot) error {
	gz := gzip.NewWriter(w)
	enc := json.NewEncoder(gz)
	if err := enc.Encode(s.ToDocument()); err != nil {
		_ = gz.Close()
		return fmt.Errorf("encoding bundle: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("closing bundle: %w", err)
	}
	return nil
}

// ReadBundle reads a bundle written by WriteBundle. The document is
// schema-validated and integrity-checked like any YAML catalog.
func ReadBundle(r io.Reader, source string) (*Snapshot, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening bundle: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("decompressing bundle: %w", err)
	}

	var (
		d decoded
		p problems
	)
	if errs := validation.ValidateCatalogJSON(data); len(errs) > 0 {
		for _, e := range errs {
			p.addf("%s: %s", source, e)
		}
		return nil, p.err()
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}
	d.add(source, &doc, &p)
	return d.snapshot(source, &p)
}

// IsBundle reports whether path names a compressed bundle.
func IsBundle(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), BundleExt)
}

// Load opens a catalog from path, which may be a directory of YAML files, a
// single YAML file or a bundle. An empty path loads the built-in catalog.
func Load(path string) (*Snapshot, error) {
	if path == "" {
		return Builtin()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	if IsBundle(path) {
		return ReadBundle(f, path)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return LoadBytes(path, data)
}
