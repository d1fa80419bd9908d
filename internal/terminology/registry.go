package terminology

import (
	"sync"
)

// Registry is a process-wide lookup of named value sets. Registration happens
// at startup; reads afterwards are lock-cheap.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]ValueSet
}

func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]ValueSet)}
}

// Register stores the set under its name, replacing any previous entry.
func (r *Registry) Register(vs ValueSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[vs.Name] = vs
}

// Lookup returns the named set and whether it exists.
func (r *Registry) Lookup(name string) (ValueSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	vs, ok := r.sets[name]
	return vs, ok
}

// Names returns the registered set names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sets))
	for name := range r.sets {
		out = append(out, name)
	}
	return out
}
