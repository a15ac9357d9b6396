package subscription

import (
	"sort"
	"sync"
)

// Registry is a set of subscribed model names.
// It is safe for concurrent use: the poll loop reads it during resubscribe
// while user-facing subscribe/unsubscribe calls mutate it.
type Registry struct {
	mu     sync.RWMutex
	models map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		models: make(map[string]struct{}),
	}
}

// Add records models as subscribed. Adding an existing model is a no-op.
func (r *Registry) Add(models ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range models {
		r.models[m] = struct{}{}
	}
}

// Remove forgets models. Removing an absent model is a no-op.
func (r *Registry) Remove(models ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range models {
		delete(r.models, m)
	}
}

// Contains reports whether the model is subscribed.
func (r *Registry) Contains(model string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.models[model]
	return ok
}

// Count returns the number of subscribed models.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// Snapshot returns the subscribed models, sorted for stable iteration.
// The returned slice is owned by the caller.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	models := make([]string, 0, len(r.models))
	for m := range r.models {
		models = append(models, m)
	}
	r.mu.RUnlock()

	sort.Strings(models)
	return models
}
