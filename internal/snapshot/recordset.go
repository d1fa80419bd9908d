// Package snapshot provides the immutable per-evaluation view of one
// patient's record and the lazy query layer over it.
package snapshot

import (
	"sync"
	"time"

	"github.com/spf13/cast"

	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/terminology"
	"github.com/medlogiq/protocol-engine/internal/timeframe"
)

// RecordSet is a lazy, chainable query over a homogeneous collection of
// records. Operators return a new set sharing the underlying records;
// nothing is evaluated until the set is materialized, and the result of
// materialization is cached, so repeated reads are identical and cheap.
type RecordSet struct {
	source  []model.Record
	filters []func(model.Record) bool

	once    sync.Once
	matched []model.Record
}

// NewRecordSet wraps records in insertion order.
func NewRecordSet(records []model.Record) *RecordSet {
	return &RecordSet{source: records}
}

func (rs *RecordSet) extend(f func(model.Record) bool) *RecordSet {
	filters := make([]func(model.Record) bool, len(rs.filters), len(rs.filters)+1)
	copy(filters, rs.filters)
	return &RecordSet{source: rs.source, filters: append(filters, f)}
}

func (rs *RecordSet) materialize() []model.Record {
	rs.once.Do(func() {
		for _, r := range rs.source {
			keep := true
			for _, f := range rs.filters {
				if !f(r) {
					keep = false
					break
				}
			}
			if keep {
				rs.matched = append(rs.matched, r)
			}
		}
	})
	return rs.matched
}

// Filter retains records matching every predicate term. Terms that fail to
// resolve on a record exclude it; they never panic.
func (rs *RecordSet) Filter(preds Predicates) *RecordSet {
	return rs.extend(func(r model.Record) bool {
		for key, want := range preds {
			if !matches(r, key, want) {
				return false
			}
		}
		return true
	})
}

// Find retains records with any coding in the value set.
func (rs *RecordSet) Find(vs terminology.ValueSet) *RecordSet {
	return rs.extend(func(r model.Record) bool {
		return vs.ContainsAny(r.Meta().Codings)
	})
}

// Within retains records whose canonical timestamp falls inside the window.
func (rs *RecordSet) Within(tf timeframe.Timeframe) *RecordSet {
	return rs.extend(func(r model.Record) bool {
		return tf.Contains(r.EffectiveTime())
	})
}

// After retains records whose canonical timestamp is strictly after t.
func (rs *RecordSet) After(t time.Time) *RecordSet {
	return rs.extend(func(r model.Record) bool {
		return r.EffectiveTime().After(t)
	})
}

// Before retains records whose canonical timestamp is strictly before t.
func (rs *RecordSet) Before(t time.Time) *RecordSet {
	return rs.extend(func(r model.Record) bool {
		return r.EffectiveTime().Before(t)
	})
}

// Records returns the matched records in insertion order.
func (rs *RecordSet) Records() []model.Record {
	return rs.materialize()
}

// Len returns the number of matched records.
func (rs *RecordSet) Len() int {
	return len(rs.materialize())
}

// Empty reports whether no records matched.
func (rs *RecordSet) Empty() bool {
	return rs.Len() == 0
}

// First returns the earliest record by canonical timestamp, or nil.
func (rs *RecordSet) First() model.Record {
	var best model.Record
	for _, r := range rs.materialize() {
		if best == nil || r.EffectiveTime().Before(best.EffectiveTime()) {
			best = r
		}
	}
	return best
}

// Last returns the latest record by canonical timestamp, or nil. Ties go to
// the later-inserted record.
func (rs *RecordSet) Last() model.Record {
	var best model.Record
	for _, r := range rs.materialize() {
		if best == nil || !r.EffectiveTime().Before(best.EffectiveTime()) {
			best = r
		}
	}
	return best
}

// LastValue returns the numeric value of the most recent lab report in the
// set. The second result is false when the set is empty, holds no lab
// report, or the value does not parse as a number.
func (rs *RecordSet) LastValue() (float64, bool) {
	last := rs.Last()
	if last == nil {
		return 0, false
	}
	report, ok := last.(model.LabReport)
	if !ok {
		if p, isPtr := last.(*model.LabReport); isPtr {
			report, ok = *p, true
		}
	}
	if !ok {
		return 0, false
	}
	value, err := cast.ToFloat64E(report.Value)
	if err != nil {
		return 0, false
	}
	return value, true
}
