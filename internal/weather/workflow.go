package weather

import (
	"context"
	"strings"
	"sync"
)

// Searcher is the lookup a Workflow drives; *Client satisfies it.
type Searcher interface {
	Current(ctx context.Context, city string) (Snapshot, error)
}

// View is what the weather card shows.
type View struct {
	Loading  bool
	Snapshot *Snapshot
}

// Workflow holds the weather display state of one browser. Every search is
// numbered; a result is applied only if no newer search has started since.
type Workflow struct {
	mu       sync.Mutex
	searcher Searcher
	started  uint64
	pending  int
	snapshot *Snapshot
}

func NewWorkflow(s Searcher) *Workflow {
	return &Workflow{searcher: s}
}

// Search runs one lookup. A blank city fails with *ValidationError before any
// request. A failed lookup clears the snapshot and returns *RequestError. When
// a newer search overtook this one, the view is returned with ErrSuperseded.
func (w *Workflow) Search(ctx context.Context, city string) (View, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return w.View(), &ValidationError{Message: msgEmptyCity}
	}

	seq := w.begin()
	snap, err := w.searcher.Current(ctx, city)
	if !w.finish(seq, snap, err) {
		return w.View(), ErrSuperseded
	}
	return w.View(), err
}

func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{Loading: w.pending > 0}
	if w.snapshot != nil {
		snap := *w.snapshot
		v.Snapshot = &snap
	}
	return v
}

func (w *Workflow) begin() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.started++
	w.pending++
	return w.started
}

func (w *Workflow) finish(seq uint64, snap Snapshot, err error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending--
	if seq != w.started {
		return false
	}
	if err != nil {
		w.snapshot = nil
		return true
	}
	w.snapshot = &snap
	return true
}
