package catalog

import (
	"log/slog"
	"sync/atomic"
)

// Store holds the current snapshot and swaps it atomically on reload.
// Readers call Current once per request and use that snapshot throughout.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a store serving snap. A nil snap serves an empty catalog.
func NewStore(snap *Snapshot) *Store {
	if snap == nil {
		snap = Empty()
	}
	s := &Store{}
	s.current.Store(snap)
	return s
}

// Current returns the snapshot in effect.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Swap installs snap and returns the previous snapshot. A nil snap installs
// an empty catalog, as NewStore does.
func (s *Store) Swap(snap *Snapshot) *Snapshot {
	if snap == nil {
		snap = Empty()
	}
	old := s.current.Swap(snap)
	slog.Info("catalog snapshot swapped", "source", snap.source, "frameworks", snap.Len())
	return old
}

// Reload builds a new snapshot with load and installs it. On error the current
// snapshot stays in place.
func (s *Store) Reload(load func() (*Snapshot, error)) error {
	snap, err := load()
	if err != nil {
		slog.Warn("catalog reload failed; keeping current snapshot", "error", err)
		return err
	}
	s.Swap(snap)
	return nil
}
