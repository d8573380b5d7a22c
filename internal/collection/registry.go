package collection

import (
	"sync"

	"ragbench/internal/port"
	"ragbench/internal/store"
)

// Registry hands out one collection per embedding model, creating each
// lazily on first use. It is an explicit object owned by the orchestrator
// rather than package-level state, so the "one collection per embedding
// model" invariant holds without hidden globals.
type Registry struct {
	mu          sync.Mutex
	bolt        *store.Bolt
	collections map[string]*Collection
}

// NewRegistry creates a registry backed by the given store.
func NewRegistry(bolt *store.Bolt) *Registry {
	return &Registry{
		bolt:        bolt,
		collections: make(map[string]*Collection),
	}
}

// Get returns the collection bound to the embedder's model, creating it
// if this is the model's first use. Switching back to a previously used
// model reattaches to its existing index.
func (r *Registry) Get(embedder port.Embedder) (*Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := Name(embedder.ModelName())
	if c, ok := r.collections[name]; ok {
		return c, nil
	}

	c, err := New(embedder, r.bolt)
	if err != nil {
		return nil, err
	}
	r.collections[name] = c
	return c, nil
}
