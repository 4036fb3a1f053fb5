package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Registry owns one Store per browsing session. It is created once at the
// application root and handed to the handlers that need it.
type Registry struct {
	mu     sync.Mutex
	stores map[uuid.UUID]*Store
}

func NewRegistry() *Registry {
	return &Registry{stores: make(map[uuid.UUID]*Store)}
}

// Get returns the session's store, creating an empty one on first use.
func (r *Registry) Get(sessionID uuid.UUID) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.stores[sessionID]
	if !ok {
		store = NewStore()
		r.stores[sessionID] = store
	}
	return store
}

// Lookup returns the store without creating it.
func (r *Registry) Lookup(sessionID uuid.UUID) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.stores[sessionID]
	return store, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
