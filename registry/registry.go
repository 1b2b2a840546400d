// Package registry provides an ordered, uniquely keyed container used for
// the feature catalog, per-channel subscriptions, and the quiz content
// catalogs. Iteration follows insertion order; RandomPick draws uniformly
// over the keys live at call time.
package registry

import (
	"math/rand"
	"sync"

	"github.com/onnwee/quizbot/failure"
)

// Registry is safe for concurrent use. Chat commands mutate registries from
// the IRC reader goroutine while SSE snapshots read them from HTTP handler
// goroutines.
type Registry[T any] struct {
	mu   sync.RWMutex
	byID map[string]T
	ids  []string
}

func New[T any]() *Registry[T] {
	return &Registry[T]{byID: make(map[string]T)}
}

// Add appends (id, item). Inserting an existing id is rejected rather than
// replaced so a double-enable can never silently drop state.
func (r *Registry[T]) Add(id string, item T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; ok {
		return failure.New(failure.KindAlreadyExists, "registry.Add", "item %q already exists", id)
	}
	r.byID[id] = item
	r.ids = append(r.ids, id)
	return nil
}

// Remove deletes id from both the map and the iteration order.
func (r *Registry[T]) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return failure.New(failure.KindNotFound, "registry.Remove", "item %q does not exist", id)
	}
	delete(r.byID, id)
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the item and whether it was present. Absence is not an error;
// callers decide.
func (r *Registry[T]) Get(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.byID[id]
	return item, ok
}

func (r *Registry[T]) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}

func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}

// Keys returns the ids in insertion order.
func (r *Registry[T]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, len(r.ids))
	copy(keys, r.ids)
	return keys
}

// ForEach visits items in insertion order. The callback must not mutate the
// registry.
func (r *Registry[T]) ForEach(fn func(id string, item T)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.ids {
		fn(id, r.byID[id])
	}
}

// Map collects fn over the items in insertion order.
func Map[T, R any](r *Registry[T], fn func(item T) R) []R {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]R, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, fn(r.byID[id]))
	}
	return out
}

// Clear removes everything.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]T)
	r.ids = nil
}

// RandomPick returns a uniformly random member over the keys currently
// live, so mutation between calls changes future draws.
func (r *Registry[T]) RandomPick() (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var zero T
	if len(r.ids) == 0 {
		return zero, failure.New(failure.KindEmptyCollection, "registry.RandomPick", "registry is empty")
	}
	id := r.ids[rand.Intn(len(r.ids))]
	return r.byID[id], nil
}
