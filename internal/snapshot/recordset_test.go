package snapshot

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/terminology"
	"github.com/medlogiq/protocol-engine/internal/timeframe"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func interviewAt(name string, created time.Time) model.Interview {
	return model.Interview{
		RecordMeta: model.RecordMeta{ID: uuid.New(), Created: created},
		Name:       name,
		Status:     "AC",
	}
}

func labReport(value string, created time.Time, codings ...model.Coding) model.LabReport {
	return model.LabReport{
		RecordMeta: model.RecordMeta{ID: uuid.New(), Created: created, Codings: codings},
		Value:      value,
	}
}

func TestFilterOnStringTimestamp(t *testing.T) {
	rs := NewRecordSet([]model.Record{
		interviewAt("first", day(2023, 1, 1)),
		interviewAt("middle", day(2023, 6, 1)),
		interviewAt("latest", day(2024, 1, 1)),
	})

	matched := rs.Filter(Predicates{"created__gt": "2023-05-01"})
	assert.Equal(t, 2, matched.Len())

	last := matched.Last()
	require.NotNil(t, last)
	assert.Equal(t, "latest", last.(model.Interview).Name)
}

func TestFilterEquality(t *testing.T) {
	rs := NewRecordSet([]model.Record{
		model.Condition{RecordMeta: model.RecordMeta{Created: day(2024, 1, 1)}, ClinicalStatus: "active"},
		model.Condition{RecordMeta: model.RecordMeta{Created: day(2024, 2, 1)}, ClinicalStatus: "resolved"},
	})

	active := rs.Filter(Predicates{"clinical_status": "active"})
	require.Equal(t, 1, active.Len())
	assert.Equal(t, day(2024, 1, 1), active.Records()[0].EffectiveTime())
}

func TestFilterOperatorSuffixes(t *testing.T) {
	rs := NewRecordSet([]model.Record{
		interviewAt("GAD-7", day(2024, 1, 1)),
		interviewAt("GAD-2", day(2024, 2, 1)),
		interviewAt("PHQ-9", day(2024, 3, 1)),
	})

	assert.Equal(t, 2, rs.Filter(Predicates{"name__startswith": "GAD"}).Len())
	assert.Equal(t, 1, rs.Filter(Predicates{"created__gte": "2024-03-01"}).Len())
	assert.Equal(t, 2, rs.Filter(Predicates{"created__lt": "2024-03-01"}).Len())
	assert.Equal(t, 3, rs.Filter(Predicates{"created__lte": "2024-03-01"}).Len())
	assert.Equal(t, 1, rs.Filter(Predicates{"name__eq": "PHQ-9"}).Len())
}

func TestFilterDottedPath(t *testing.T) {
	rs := NewRecordSet([]model.Record{
		model.Interview{
			RecordMeta: model.RecordMeta{Created: day(2024, 1, 1)},
			Results:    []model.InterviewResult{{Score: 14}},
		},
		model.Interview{
			RecordMeta: model.RecordMeta{Created: day(2024, 2, 1)},
			Results:    []model.InterviewResult{{Score: 4}},
		},
	})

	high := rs.Filter(Predicates{"results.0.score__gte": 10})
	require.Equal(t, 1, high.Len())
	assert.Equal(t, day(2024, 1, 1), high.Records()[0].EffectiveTime())
}

func TestFilterUnresolvableTermExcludes(t *testing.T) {
	rs := NewRecordSet([]model.Record{interviewAt("GAD-7", day(2024, 1, 1))})

	assert.NotPanics(t, func() {
		assert.True(t, rs.Filter(Predicates{"no_such_field": "x"}).Empty())
		assert.True(t, rs.Filter(Predicates{"name__gt": "not-a-number"}).Empty())
		assert.True(t, rs.Filter(Predicates{"results.9.score": 1}).Empty())
	})
}

func TestChainingDoesNotMutateParent(t *testing.T) {
	rs := NewRecordSet([]model.Record{
		interviewAt("GAD-7", day(2024, 1, 1)),
		interviewAt("PHQ-9", day(2024, 2, 1)),
	})

	narrowed := rs.Filter(Predicates{"name": "GAD-7"})
	assert.Equal(t, 1, narrowed.Len())
	assert.Equal(t, 2, rs.Len(), "parent set is unchanged")

	// Two chains built from the same parent are independent.
	other := rs.Filter(Predicates{"name": "PHQ-9"})
	assert.Equal(t, 1, other.Len())
}

func TestMaterializationIsStable(t *testing.T) {
	rs := NewRecordSet([]model.Record{
		interviewAt("a", day(2024, 1, 1)),
		interviewAt("b", day(2024, 2, 1)),
	}).Filter(Predicates{"created__gte": "2024-01-01"})

	first := rs.Records()
	second := rs.Records()
	assert.Equal(t, first, second)
	assert.Equal(t, 2, len(first))
}

func TestFindByValueSet(t *testing.T) {
	hba1c := terminology.New("hba1c", map[model.CodingSystem][]string{
		model.SystemLOINC: {"4548-4"},
	})
	rs := NewRecordSet([]model.Record{
		labReport("6.1", day(2024, 1, 1), model.Coding{System: model.SystemLOINC, Code: "4548-4"}),
		labReport("140", day(2024, 2, 1), model.Coding{System: model.SystemLOINC, Code: "2345-7"}),
	})

	matched := rs.Find(hba1c)
	require.Equal(t, 1, matched.Len())
	assert.Equal(t, "6.1", matched.Records()[0].(model.LabReport).Value)
}

func TestWindowOperators(t *testing.T) {
	rs := NewRecordSet([]model.Record{
		labReport("1", day(2023, 1, 1)),
		labReport("2", day(2023, 7, 1)),
		labReport("3", day(2024, 1, 1)),
	})

	window := timeframe.New(day(2023, 6, 1), day(2024, 1, 1))
	assert.Equal(t, 1, rs.Within(window).Len(), "end of window is exclusive")
	assert.Equal(t, 2, rs.After(day(2023, 1, 1)).Len())
	assert.Equal(t, 1, rs.Before(day(2023, 7, 1)).Len())
}

func TestFirstAndLast(t *testing.T) {
	rs := NewRecordSet([]model.Record{
		interviewAt("middle", day(2023, 6, 1)),
		interviewAt("earliest", day(2023, 1, 1)),
		interviewAt("latest", day(2024, 1, 1)),
	})

	assert.Equal(t, "earliest", rs.First().(model.Interview).Name)
	assert.Equal(t, "latest", rs.Last().(model.Interview).Name)
}

func TestLastTieGoesToLaterInsertion(t *testing.T) {
	at := day(2024, 1, 1)
	rs := NewRecordSet([]model.Record{
		interviewAt("inserted-first", at),
		interviewAt("inserted-second", at),
	})
	assert.Equal(t, "inserted-second", rs.Last().(model.Interview).Name)
}

func TestEmptySetSentinels(t *testing.T) {
	rs := NewRecordSet(nil)

	assert.True(t, rs.Empty())
	assert.Nil(t, rs.First())
	assert.Nil(t, rs.Last())

	_, ok := rs.LastValue()
	assert.False(t, ok)
}

func TestLastValue(t *testing.T) {
	rs := NewRecordSet([]model.Record{
		labReport("7.2", day(2023, 1, 1)),
		labReport("8.4", day(2024, 1, 1)),
	})

	v, ok := rs.LastValue()
	require.True(t, ok)
	assert.InDelta(t, 8.4, v, 1e-9)
}

func TestLastValueNonNumeric(t *testing.T) {
	rs := NewRecordSet([]model.Record{labReport("pending", day(2024, 1, 1))})
	_, ok := rs.LastValue()
	assert.False(t, ok)
}

func TestNoteTimestampAnchoring(t *testing.T) {
	noted := day(2023, 12, 1)
	rs := NewRecordSet([]model.Record{
		model.Interview{RecordMeta: model.RecordMeta{Created: day(2024, 1, 15), NoteTimestamp: &noted}, Name: "anchored"},
		model.Interview{RecordMeta: model.RecordMeta{Created: day(2024, 1, 1)}, Name: "fallback"},
	})

	// The note timestamp, not the creation time, orders interviews.
	assert.Equal(t, "fallback", rs.Last().(model.Interview).Name)
}

func TestVitalSignUsesDateRecorded(t *testing.T) {
	v := model.VitalSign{
		RecordMeta:   model.RecordMeta{Created: day(2024, 2, 1)},
		Value:        "120/80",
		DateRecorded: day(2024, 1, 10),
	}
	assert.Equal(t, day(2024, 1, 10), v.EffectiveTime())
}
