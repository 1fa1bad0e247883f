// Package watch reloads a catalog directory into a catalog.Store when its
// files change, coalescing bursts of file system events.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spboyer/stratafit/internal/catalog"
)

// DefaultDebounce is how long the watcher waits for events to settle before
// reloading.
const DefaultDebounce = 250 * time.Millisecond

// ReloadFunc is called after every reload attempt with the installed
// snapshot, or with the error that kept the previous one in place.
type ReloadFunc func(snap *catalog.Snapshot, err error)

// Watcher reloads one catalog directory.
type Watcher struct {
	store    *catalog.Store
	dir      string
	debounce time.Duration
	logger   *slog.Logger
	onReload ReloadFunc
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// OnReload registers a callback for reload attempts.
func OnReload(fn ReloadFunc) Option {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// New returns a watcher that reloads dir into store.
func New(store *catalog.Store, dir string, opts ...Option) *Watcher {
	w := &Watcher{
		store:    store,
		dir:      dir,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done. A failed reload is logged and reported to
// the OnReload callback; the store keeps serving its current snapshot.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating catalog watcher: %w", err)
	}
	defer fsw.Close() //nolint:errcheck

	abs, err := filepath.Abs(w.dir)
	if err != nil {
		return fmt.Errorf("resolving catalog directory: %w", err)
	}
	if err := fsw.Add(abs); err != nil {
		return fmt.Errorf("watching catalog directory %s: %w", abs, err)
	}
	w.logger.Info("watching catalog directory", "dir", abs, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := 0
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("catalog watcher stopped", "dir", abs)
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			pending++
			w.logger.Debug("catalog file changed", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", "error", err)

		case <-timer.C:
			w.reload(pending)
			pending = 0
		}
	}
}

func (w *Watcher) reload(events int) {
	var snap *catalog.Snapshot
	err := w.store.Reload(func() (*catalog.Snapshot, error) {
		s, err := catalog.LoadDir(w.dir)
		snap = s
		return s, err
	})
	if err != nil {
		w.logger.Warn("catalog reload rejected", "dir", w.dir, "events", events, "error", err)
	} else {
		w.logger.Info("catalog reloaded", "dir", w.dir, "events", events, "frameworks", snap.Len())
	}
	if w.onReload != nil {
		w.onReload(snap, err)
	}
}

// relevant ignores chmod-only events and files that are not catalog files.
func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return catalog.IsCatalogFile(ev.Name)
}
