package weather

import (
	"sync"
	"time"
)

type registryEntry struct {
	workflow *Workflow
	lastSeen time.Time
}

// Registry hands out one Workflow per browser and forgets idle ones.
type Registry struct {
	mu       sync.Mutex
	ttl      time.Duration
	searcher Searcher
	entries  map[string]registryEntry
}

func NewRegistry(searcher Searcher, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{ttl: ttl, searcher: searcher, entries: map[string]registryEntry{}}
}

func (r *Registry) Get(clientID string, now time.Time) *Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[clientID]
	if !ok || now.Sub(entry.lastSeen) >= r.ttl {
		entry = registryEntry{workflow: NewWorkflow(r.searcher)}
	}
	entry.lastSeen = now
	r.entries[clientID] = entry
	return entry.workflow
}

// Forget drops the workflow of a browser, e.g. on logout.
func (r *Registry) Forget(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, clientID)
}

// Sweep removes workflows idle for longer than the ttl.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, entry := range r.entries {
		if now.Sub(entry.lastSeen) >= r.ttl {
			delete(r.entries, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
