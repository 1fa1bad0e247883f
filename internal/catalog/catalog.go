// Package catalog holds the framework catalog, tag profiles and effectiveness
// records as one immutable snapshot.
//
// A Snapshot is built once, checked for integrity, and never mutated. Reloads
// build a new Snapshot and swap it into a Store; readers holding the old one
// keep a consistent view.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spboyer/stratafit/internal/models"
)

// ErrFrameworkNotFound is returned when a framework id is not in the snapshot.
var ErrFrameworkNotFound = errors.New("framework not found")

// Snapshot is a read-only view of the catalog and its collaborator stores.
// Values returned by its accessors must not be modified.
type Snapshot struct {
	ids        []string
	frameworks map[string]*models.FrameworkDefinition
	profiles   map[string]*models.TagProfile
	records    map[string]*models.EffectivenessRecord
	source     string
	version    string
	loadedAt   time.Time
}

// Meta describes where a snapshot came from.
type Meta struct {
	Source   string
	Version  string
	LoadedAt time.Time
}

// NewSnapshot checks the given data for integrity and freezes it. Every
// problem found is reported together in an *IntegrityError.
func NewSnapshot(meta Meta, defs []*models.FrameworkDefinition, profiles []*models.TagProfile, records []*models.EffectivenessRecord) (*Snapshot, error) {
	s := &Snapshot{
		frameworks: make(map[string]*models.FrameworkDefinition, len(defs)),
		profiles:   make(map[string]*models.TagProfile, len(profiles)),
		records:    make(map[string]*models.EffectivenessRecord, len(records)),
		source:     meta.Source,
		version:    meta.Version,
		loadedAt:   meta.LoadedAt,
	}
	if s.loadedAt.IsZero() {
		s.loadedAt = time.Now()
	}

	var p problems
	for _, d := range defs {
		if d.ID == "" {
			p.addf("framework %q: empty id", d.Name)
			continue
		}
		if _, dup := s.frameworks[d.ID]; dup {
			p.addf("framework %s: duplicate id", d.ID)
			continue
		}
		s.frameworks[d.ID] = d
		s.ids = append(s.ids, d.ID)
	}
	sort.Strings(s.ids)

	for _, tp := range profiles {
		if _, ok := s.frameworks[tp.FrameworkID]; !ok {
			p.addf("profile %s: no framework with this id", tp.FrameworkID)
			continue
		}
		if _, dup := s.profiles[tp.FrameworkID]; dup {
			p.addf("profile %s: duplicate profile", tp.FrameworkID)
			continue
		}
		s.profiles[tp.FrameworkID] = tp
	}

	for _, r := range records {
		if _, ok := s.frameworks[r.FrameworkID]; !ok {
			p.addf("effectiveness %s: no framework with this id", r.FrameworkID)
			continue
		}
		if _, dup := s.records[r.FrameworkID]; dup {
			p.addf("effectiveness %s: duplicate record", r.FrameworkID)
			continue
		}
		s.records[r.FrameworkID] = r
	}

	for _, id := range s.ids {
		checkFramework(&p, s.frameworks[id], s.frameworks)
		if tp, ok := s.profiles[id]; ok {
			checkProfile(&p, tp)
		}
		if r, ok := s.records[id]; ok {
			checkRecord(&p, r)
		}
	}

	if err := p.err(); err != nil {
		return nil, err
	}
	return s, nil
}

// Empty returns a snapshot with no frameworks.
func Empty() *Snapshot {
	s, _ := NewSnapshot(Meta{Source: "empty"}, nil, nil, nil)
	return s
}

// Len returns the number of frameworks.
func (s *Snapshot) Len() int { return len(s.ids) }

// IDs returns every framework id in lexical order.
func (s *Snapshot) IDs() []string { return append([]string(nil), s.ids...) }

// Frameworks returns every framework definition in id order.
func (s *Snapshot) Frameworks() []*models.FrameworkDefinition {
	out := make([]*models.FrameworkDefinition, len(s.ids))
	for i, id := range s.ids {
		out[i] = s.frameworks[id]
	}
	return out
}

// Framework looks up a definition by id.
func (s *Snapshot) Framework(id string) (*models.FrameworkDefinition, error) {
	d, ok := s.frameworks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFrameworkNotFound, id)
	}
	return d, nil
}

// Profile returns the tag profile for id, if the framework has one.
func (s *Snapshot) Profile(id string) (*models.TagProfile, bool) {
	tp, ok := s.profiles[id]
	return tp, ok
}

// Effectiveness returns the effectiveness record for id, if any.
func (s *Snapshot) Effectiveness(id string) (*models.EffectivenessRecord, bool) {
	r, ok := s.records[id]
	return r, ok
}

// Meta returns the snapshot's provenance.
func (s *Snapshot) Meta() Meta {
	return Meta{Source: s.source, Version: s.version, LoadedAt: s.loadedAt}
}

// Stats summarizes coverage of the collaborator stores.
type Stats struct {
	Frameworks    int `json:"frameworks"`
	Profiles      int `json:"profiles"`
	Effectiveness int `json:"effectiveness"`
}

// Stats counts frameworks, profiles and effectiveness records.
func (s *Snapshot) Stats() Stats {
	return Stats{Frameworks: len(s.ids), Profiles: len(s.profiles), Effectiveness: len(s.records)}
}
