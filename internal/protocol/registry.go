package protocol

import (
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/medlogiq/protocol-engine/internal/model"
)

// Registry binds protocol keys to their registered rule. Registration
// happens at startup; Match is called on every dispatch.
type Registry struct {
	mu        sync.RWMutex
	protocols map[string]Protocol
}

func NewRegistry() *Registry {
	return &Registry{protocols: make(map[string]Protocol)}
}

// Register adds a protocol. When the key is already present only the higher
// version survives; versions are compared as semver where both parse and
// lexically otherwise.
func (r *Registry) Register(p Protocol) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.protocols[p.Key]
	if ok && !versionLess(existing.Version, p.Version) {
		return
	}
	r.protocols[p.Key] = p
}

// versionLess reports whether a is a lower version than b.
func versionLess(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.LessThan(vb)
	}
	return a < b
}

// Match returns the protocols subscribed to the change type in dispatch
// order: ascending priority, then title.
func (r *Registry) Match(t model.ChangeType) []Protocol {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Protocol
	for _, p := range r.protocols {
		if p.SubscribesTo(t) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// All returns every registered protocol in key order.
func (r *Registry) All() []Protocol {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Protocol, 0, len(r.protocols))
	for _, p := range r.protocols {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Len returns the number of registered protocols.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.protocols)
}
