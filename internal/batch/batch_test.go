package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spboyer/stratafit/internal/catalog"
	"github.com/spboyer/stratafit/internal/dataset"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/recommend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// slowSelector echoes the team size back as the status message, taking
// longer for earlier entries so completion order is reversed.
type slowSelector struct {
	total    int
	active   atomic.Int32
	maxSeen  atomic.Int32
	selected atomic.Int32
}

func (s *slowSelector) Select(_ *catalog.Snapshot, raw models.StartupContext, _ models.SelectionOptions) *models.SelectionResult {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(time.Duration(s.total-raw.TeamSize) * time.Millisecond)
	s.selected.Add(1)
	return &models.SelectionResult{Success: true, Status: models.StatusOK, Message: fmt.Sprint(raw.TeamSize)}
}

func entries(n int) []dataset.Entry {
	out := make([]dataset.Entry, n)
	for i := range out {
		out[i] = dataset.Entry{Name: fmt.Sprintf("e%d", i), Context: models.StartupContext{TeamSize: i}}
	}
	return out
}

func TestRun_PreservesInputOrder(t *testing.T) {
	sel := &slowSelector{total: 12}
	r := NewRunner(sel, 3, nil)

	items, err := r.Run(context.Background(), catalog.Empty(), entries(12), models.SelectionOptions{})
	require.NoError(t, err)
	require.Len(t, items, 12)
	for i, it := range items {
		assert.Equal(t, i, it.Index)
		assert.Equal(t, fmt.Sprintf("e%d", i), it.Name)
		assert.Equal(t, fmt.Sprint(i), it.Result.Message)
	}
	assert.LessOrEqual(t, sel.maxSeen.Load(), int32(3), "never more than the configured workers at once")
}

func TestRun_DefaultWorkers(t *testing.T) {
	r := NewRunner(&slowSelector{}, 0, nil)
	assert.Equal(t, DefaultWorkers, r.workers)
}

func TestRun_Progress(t *testing.T) {
	r := NewRunner(&slowSelector{total: 4}, 2, nil)

	var mu sync.Mutex
	counts := map[EventType]int{}
	r.OnProgress(func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		counts[e.EventType]++
		assert.Equal(t, 4, e.Total)
		if e.EventType == EventItemComplete {
			assert.Equal(t, models.StatusOK, e.Status)
		}
	})

	_, err := r.Run(context.Background(), catalog.Empty(), entries(4), models.SelectionOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[EventType]int{EventItemStart: 4, EventItemComplete: 4}, counts)
}

func TestRun_Cancelled(t *testing.T) {
	sel := &slowSelector{total: 50}
	r := NewRunner(sel, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	r.OnProgress(func(e ProgressEvent) {
		if e.EventType == EventItemComplete && e.Num == 2 {
			cancel()
		}
	})

	items, err := r.Run(ctx, catalog.Empty(), entries(50), models.SelectionOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, items)
	assert.Less(t, sel.selected.Load(), int32(50))
}

func TestRun_EmptyBatch(t *testing.T) {
	items, err := NewRunner(&slowSelector{}, 2, nil).Run(context.Background(), catalog.Empty(), nil, models.SelectionOptions{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRun_WithEngine(t *testing.T) {
	snap, err := catalog.Builtin()
	require.NoError(t, err)

	batch := []dataset.Entry{
		{Name: "seed", Context: models.StartupContext{Stage: "seed", Industry: "saas", TeamSize: 4}},
		{Name: "broken", Context: models.StartupContext{Stage: "seed", TeamSize: 0}},
		{Name: "growth", Context: models.StartupContext{
			Stage:      "series_b",
			Industry:   "fintech",
			TeamSize:   60,
			Challenges: []string{"intense competition from larger incumbents"},
		}},
	}
	items, err := NewRunner(recommend.NewEngine(nil), 2, nil).Run(context.Background(), snap, batch, models.SelectionOptions{})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, models.StatusOK, items[0].Result.Status)
	assert.Equal(t, models.StatusInvalidInput, items[1].Result.Status)
	assert.Equal(t, models.StatusOK, items[2].Result.Status)
	assert.Equal(t, Stats{Total: 3, OK: 2, Invalid: 1}, Summarize(items))
}

func TestSummarize(t *testing.T) {
	items := []Item{
		{Result: &models.SelectionResult{Status: models.StatusOK}},
		{Result: &models.SelectionResult{Status: models.StatusNoEligible}},
		{Result: &models.SelectionResult{Status: models.StatusEmptyCatalog}},
		{},
	}
	assert.Equal(t, Stats{Total: 4, OK: 1, NoEligible: 1, EmptyCatalog: 1}, Summarize(items))
}
