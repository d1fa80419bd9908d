// Package terminology holds named code sets keyed by coding system and
// answers set-membership queries over record codings.
package terminology

import (
	"sort"

	"github.com/medlogiq/protocol-engine/internal/model"
)

// ValueSet is a named mapping from coding system to a set of codes. Values
// are treated as immutable once built; the algebra functions always return
// fresh sets.
type ValueSet struct {
	Name  string
	codes map[model.CodingSystem]map[string]struct{}
}

// New builds a ValueSet from per-system code lists. Empty codes are dropped.
func New(name string, codes map[model.CodingSystem][]string) ValueSet {
	vs := ValueSet{Name: name, codes: make(map[model.CodingSystem]map[string]struct{})}
	for system, list := range codes {
		for _, code := range list {
			if code == "" {
				continue
			}
			vs.add(system, code)
		}
	}
	return vs
}

func (v *ValueSet) add(system model.CodingSystem, code string) {
	set, ok := v.codes[system]
	if !ok {
		set = make(map[string]struct{})
		v.codes[system] = set
	}
	set[code] = struct{}{}
}

// Contains reports whether the coding's (system, code) pair is in the set.
func (v ValueSet) Contains(c model.Coding) bool {
	set, ok := v.codes[c.System]
	if !ok {
		return false
	}
	_, ok = set[c.Code]
	return ok
}

// ContainsAny reports whether any of the codings is a member.
func (v ValueSet) ContainsAny(codings []model.Coding) bool {
	for _, c := range codings {
		if v.Contains(c) {
			return true
		}
	}
	return false
}

// Codes returns the sorted codes for one system.
func (v ValueSet) Codes(system model.CodingSystem) []string {
	set := v.codes[system]
	out := make([]string, 0, len(set))
	for code := range set {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Systems returns the systems that carry at least one code, in enum order.
func (v ValueSet) Systems() []model.CodingSystem {
	var out []model.CodingSystem
	for _, system := range model.KnownSystems() {
		if len(v.codes[system]) > 0 {
			out = append(out, system)
		}
	}
	return out
}

// Len returns the total number of (system, code) members.
func (v ValueSet) Len() int {
	n := 0
	for _, set := range v.codes {
		n += len(set)
	}
	return n
}

// Union returns a set containing every member of a or b.
func Union(a, b ValueSet) ValueSet {
	out := ValueSet{Name: a.Name + "|" + b.Name, codes: make(map[model.CodingSystem]map[string]struct{})}
	for _, src := range []ValueSet{a, b} {
		for system, set := range src.codes {
			for code := range set {
				out.add(system, code)
			}
		}
	}
	return out
}

// Intersection returns a set containing the members present in both a and b.
func Intersection(a, b ValueSet) ValueSet {
	out := ValueSet{Name: a.Name + "&" + b.Name, codes: make(map[model.CodingSystem]map[string]struct{})}
	for system, set := range a.codes {
		other, ok := b.codes[system]
		if !ok {
			continue
		}
		for code := range set {
			if _, ok := other[code]; ok {
				out.add(system, code)
			}
		}
	}
	return out
}

// Difference returns the members of a that are not members of b.
func Difference(a, b ValueSet) ValueSet {
	out := ValueSet{Name: a.Name + "-" + b.Name, codes: make(map[model.CodingSystem]map[string]struct{})}
	for system, set := range a.codes {
		other := b.codes[system]
		for code := range set {
			if _, ok := other[code]; !ok {
				out.add(system, code)
			}
		}
	}
	return out
}
