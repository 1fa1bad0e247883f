// Package batch runs selection for many contexts against one catalog
// snapshot with a bounded number of workers.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spboyer/stratafit/internal/catalog"
	"github.com/spboyer/stratafit/internal/dataset"
	"github.com/spboyer/stratafit/internal/models"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when the worker count is not positive.
const DefaultWorkers = 4

// Selector runs one selection. *recommend.Engine satisfies it.
type Selector interface {
	Select(snap *catalog.Snapshot, raw models.StartupContext, opts models.SelectionOptions) *models.SelectionResult
}

// Item is the outcome for one entry of a batch.
type Item struct {
	Index    int                     `json:"index"`
	Name     string                  `json:"name"`
	Result   *models.SelectionResult `json:"result"`
	Duration time.Duration           `json:"duration_ns"`
}

// EventType represents the type of progress event
type EventType string

const (
	EventItemStart    EventType = "item_start"
	EventItemComplete EventType = "item_complete"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType EventType
	Name      string
	Num       int
	Total     int
	Status    models.SelectionStatus
}

// ProgressListener is a callback for progress events
type ProgressListener func(event ProgressEvent)

// Runner fans a batch out over a worker pool.
type Runner struct {
	sel     Selector
	workers int
	logger  *slog.Logger

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// NewRunner returns a Runner. A nil logger uses slog.Default().
func NewRunner(sel Selector, workers int, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{sel: sel, workers: workers, logger: logger}
}

// OnProgress registers a progress listener. Listeners are called from worker
// goroutines and must be safe for concurrent use.
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run selects for every entry against snap. Items come back in input order
// regardless of completion order. Cancelling ctx stops scheduling new entries
// and returns the context error.
func (r *Runner) Run(ctx context.Context, snap *catalog.Snapshot, entries []dataset.Entry, opts models.SelectionOptions) ([]Item, error) {
	items := make([]Item, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	start := time.Now()
	for i, e := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.notifyProgress(ProgressEvent{EventType: EventItemStart, Name: e.Name, Num: i + 1, Total: len(entries)})

			t0 := time.Now()
			res := r.sel.Select(snap, e.Context, opts)
			items[i] = Item{Index: i, Name: e.Name, Result: res, Duration: time.Since(t0)}

			r.logger.Debug("batch entry selected", "name", e.Name, "status", res.Status, "frameworks", len(res.Frameworks))
			r.notifyProgress(ProgressEvent{EventType: EventItemComplete, Name: e.Name, Num: i + 1, Total: len(entries), Status: res.Status})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch interrupted: %w", err)
	}

	stats := Summarize(items)
	r.logger.Info("batch complete", "total", stats.Total, "ok", stats.OK, "no_eligible", stats.NoEligible,
		"invalid", stats.Invalid, "workers", r.workers, "elapsed", time.Since(start))
	return items, nil
}

// Stats counts batch items by status.
type Stats struct {
	Total        int `json:"total"`
	OK           int `json:"ok"`
	NoEligible   int `json:"no_eligible"`
	EmptyCatalog int `json:"empty_catalog"`
	Invalid      int `json:"invalid_input"`
}

// Summarize tallies items by result status.
func Summarize(items []Item) Stats {
	s := Stats{Total: len(items)}
	for _, it := range items {
		if it.Result == nil {
			continue
		}
		switch it.Result.Status {
		case models.StatusOK:
			s.OK++
		case models.StatusNoEligible:
			s.NoEligible++
		case models.StatusEmptyCatalog:
			s.EmptyCatalog++
		case models.StatusInvalidInput:
			s.Invalid++
		}
	}
	return s
}
