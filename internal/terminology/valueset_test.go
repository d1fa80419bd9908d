package terminology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlogiq/protocol-engine/internal/model"
)

func TestValueSetMembership(t *testing.T) {
	vs := New("diabetes", map[model.CodingSystem][]string{
		model.SystemICD10:  {"E11.9", "E10.9"},
		model.SystemSNOMED: {"44054006"},
	})

	assert.True(t, vs.Contains(model.Coding{System: model.SystemICD10, Code: "E11.9"}))
	assert.True(t, vs.Contains(model.Coding{System: model.SystemSNOMED, Code: "44054006"}))
	assert.False(t, vs.Contains(model.Coding{System: model.SystemICD10, Code: "I10"}))
	// Same code under a different system is not a member.
	assert.False(t, vs.Contains(model.Coding{System: model.SystemCPT, Code: "E11.9"}))
}

func TestValueSetDropsEmptyCodes(t *testing.T) {
	vs := New("sparse", map[model.CodingSystem][]string{
		model.SystemICD10: {"", "F41.9"},
	})
	assert.Equal(t, 1, vs.Len())
}

func TestValueSetContainsAny(t *testing.T) {
	vs := New("anxiety", map[model.CodingSystem][]string{
		model.SystemICD10: {"F41.9"},
	})

	codings := []model.Coding{
		{System: model.SystemSNOMED, Code: "197480006"},
		{System: model.SystemICD10, Code: "F41.9"},
	}
	assert.True(t, vs.ContainsAny(codings))
	assert.False(t, vs.ContainsAny(codings[:1]))
	assert.False(t, vs.ContainsAny(nil))
}

func TestValueSetAlgebra(t *testing.T) {
	a := New("a", map[model.CodingSystem][]string{
		model.SystemICD10: {"E11.9", "I10"},
		model.SystemLOINC: {"4548-4"},
	})
	b := New("b", map[model.CodingSystem][]string{
		model.SystemICD10: {"I10", "J44.9"},
	})

	union := Union(a, b)
	intersection := Intersection(a, b)
	difference := Difference(a, b)

	codings := []model.Coding{
		{System: model.SystemICD10, Code: "E11.9"},
		{System: model.SystemICD10, Code: "I10"},
		{System: model.SystemICD10, Code: "J44.9"},
		{System: model.SystemLOINC, Code: "4548-4"},
		{System: model.SystemICD10, Code: "Z00.0"},
	}
	for _, c := range codings {
		assert.Equal(t, a.Contains(c) || b.Contains(c), union.Contains(c), "union %v", c)
		assert.Equal(t, a.Contains(c) && b.Contains(c), intersection.Contains(c), "intersection %v", c)
		assert.Equal(t, a.Contains(c) && !b.Contains(c), difference.Contains(c), "difference %v", c)
	}
}

func TestValueSetAlgebraIsPure(t *testing.T) {
	a := New("a", map[model.CodingSystem][]string{model.SystemICD10: {"E11.9"}})
	b := New("b", map[model.CodingSystem][]string{model.SystemICD10: {"I10"}})

	_ = Union(a, b)
	_ = Intersection(a, b)
	_ = Difference(a, b)

	assert.Equal(t, []string{"E11.9"}, a.Codes(model.SystemICD10))
	assert.Equal(t, []string{"I10"}, b.Codes(model.SystemICD10))
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(New("anxiety", map[model.CodingSystem][]string{model.SystemICD10: {"F41.9"}}))

	vs, ok := r.Lookup("anxiety")
	require.True(t, ok)
	assert.Equal(t, "anxiety", vs.Name)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestHCCIndex(t *testing.T) {
	idx := NewHCCIndex([]HCCEntry{
		{Code: "E11.9", Label: "Type 2 diabetes mellitus without complications", RAF: 0.105},
		{Code: "I50.9", Label: "Heart failure, unspecified", RAF: 0.331},
	})

	entry, ok := idx.Lookup("E11.9")
	require.True(t, ok)
	assert.Equal(t, "Type 2 diabetes mellitus without complications", entry.Label)
	assert.InDelta(t, 0.105, entry.RAF, 1e-9)

	_, ok = idx.LookupCoding(model.Coding{System: model.SystemSNOMED, Code: "E11.9"})
	assert.False(t, ok, "only ICD-10 codings resolve")

	vs := idx.ValueSet()
	assert.True(t, vs.Contains(model.Coding{System: model.SystemICD10, Code: "I50.9"}))
	assert.Equal(t, 2, vs.Len())
}
