// Package history records selection runs in a local SQLite database so they
// can be listed and inspected later.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spboyer/stratafit/internal/journey"
	"github.com/spboyer/stratafit/internal/models"
)

// ErrNotFound is returned when no run matches an id.
var ErrNotFound = errors.New("run not found")

// Kind says which operation produced a run.
type Kind string

const (
	KindSelect  Kind = "select"
	KindJourney Kind = "journey"
	KindBatch   Kind = "batch"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 20

// Run is one recorded selection.
type Run struct {
	ID             string    `db:"id" json:"id"`
	Kind           Kind      `db:"kind" json:"kind"`
	Source         string    `db:"source" json:"source"`
	CatalogVersion string    `db:"catalog_version" json:"catalog_version"`
	Status         string    `db:"status" json:"status"`
	Top            string    `db:"top_framework" json:"top_framework,omitempty"`
	ContextJSON    string    `db:"context_json" json:"context"`
	ResultJSON     string    `db:"result_json" json:"result"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// NewRun builds a run from the raw context and result, encoding both as JSON.
func NewRun(kind Kind, source, catalogVersion, status, top string, raw, result any) (*Run, error) {
	ctxJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding context: %w", err)
	}
	resJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return &Run{
		ID:             uuid.New().String(),
		Kind:           kind,
		Source:         source,
		CatalogVersion: catalogVersion,
		Status:         status,
		Top:            top,
		ContextJSON:    string(ctxJSON),
		ResultJSON:     string(resJSON),
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// FromSelection builds a select run from a selection result.
func FromSelection(source, catalogVersion string, raw models.StartupContext, res *models.SelectionResult) (*Run, error) {
	top := ""
	if len(res.Frameworks) > 0 {
		top = res.Frameworks[0].ID
	}
	return NewRun(KindSelect, source, catalogVersion, string(res.Status), top, raw, res)
}

// FromJourney builds a journey run. Its top framework is the head of the
// critical path.
func FromJourney(source, catalogVersion string, raw models.StartupContext, j *journey.Journey) (*Run, error) {
	top := ""
	if len(j.CriticalPath) > 0 {
		top = j.CriticalPath[0]
	}
	return NewRun(KindJourney, source, catalogVersion, string(j.Status), top, raw, j)
}

// Store wraps the history database connection
type Store struct {
	db   *sqlx.DB
	path string
}

// Open opens or creates the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("migrating history database: %w", err)
	}
	return s, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	for _, m := range []string{migrationRuns, migrationRunsIndex} {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

const migrationRuns = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    source TEXT NOT NULL,
    catalog_version TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    top_framework TEXT NOT NULL DEFAULT '',
    context_json TEXT NOT NULL,
    result_json TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

const migrationRunsIndex = `CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`

// Record stores run. A missing id or timestamp is filled in.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO runs (
			id, kind, source, catalog_version, status, top_framework,
			context_json, result_json, created_at
		) VALUES (
			:id, :kind, :source, :catalog_version, :status, :top_framework,
			:context_json, :result_json, :created_at
		)`, run)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Get returns the run whose id starts with id; a full id matches exactly.
// An ambiguous prefix is an error.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	var runs []Run
	// substr rather than LIKE so '%' and '_' in id match only themselves.
	err := s.db.SelectContext(ctx, &runs,
		`SELECT * FROM runs WHERE substr(id, 1, ?) = ? ORDER BY created_at DESC LIMIT 2`, len(id), id)
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", id, err)
	}
	switch {
	case len(runs) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case len(runs) > 1:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
	return &runs[0], nil
}

// List returns the most recent runs, newest first. A non-positive limit uses
// DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var runs []Run
	if err := s.db.SelectContext(ctx, &runs, `SELECT * FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Count returns the number of recorded runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM runs`); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}
