package music

import (
	"fmt"
	"sort"
)

// Router maps engine names to backend implementations with a fallback default.
type Router[T any] struct {
	backends map[string]T
	fallback string
}

// NewRouter creates a router with the given backends. fallback is used when
// the requested engine is empty.
func NewRouter[T any](backends map[string]T, fallback string) *Router[T] {
	return &Router[T]{backends: backends, fallback: fallback}
}

// Route returns the backend for engine. An empty name selects the fallback;
// an unregistered name is an error wrapping ErrUnknownEngine.
func (r *Router[T]) Route(engine string) (T, error) {
	if engine == "" {
		engine = r.fallback
	}
	if backend, ok := r.backends[engine]; ok {
		return backend, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
}

func (r *Router[T]) Has(engine string) bool {
	_, ok := r.backends[engine]
	return ok
}

// Engines returns the registered backend names, sorted.
func (r *Router[T]) Engines() []string {
	names := make([]string, 0, len(r.backends))
	for k := range r.backends {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
