package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/terminology"
)

func TestNewResultDefaultsToUnchanged(t *testing.T) {
	r := NewResult()
	assert.Equal(t, StatusUnchanged, r.Status)
	assert.Nil(t, r.DueIn)
	assert.Empty(t, r.Narratives)
}

func TestStatusLastWriterWins(t *testing.T) {
	r := NewResult()
	r.SetStatus(StatusDue)
	r.SetStatus(StatusSatisfied)
	assert.Equal(t, StatusSatisfied, r.Status)
}

func TestNarrativesKeepAppendOrder(t *testing.T) {
	r := NewResult()
	r.AddNarrative("first")
	r.AddNarrative("second")
	assert.Equal(t, "first\nsecond", r.Narrative())
}

func TestDuplicateRecommendationKeysPreserved(t *testing.T) {
	vs := terminology.New("anxiety", map[model.CodingSystem][]string{
		model.SystemICD10: {"F41.9"},
	})
	r := NewResult()
	r.AddRecommendation(Diagnose("RECOMMEND_ANXIETY_DIAGNOSIS", 1, "Anxiety disorder, unspecified", vs))
	r.AddRecommendation(Diagnose("RECOMMEND_ANXIETY_DIAGNOSIS", 2, "Anxiety disorder, unspecified", vs))

	require.Len(t, r.Recommendations, 2)
	assert.Equal(t, r.Recommendations[0].Key, r.Recommendations[1].Key)
}

func TestViolatesContract(t *testing.T) {
	r := NewResult()
	r.SetStatus(StatusDue)
	assert.True(t, r.ViolatesContract(), "DUE with nothing to show")

	r.AddNarrative("needs an A1c")
	assert.False(t, r.ViolatesContract())

	satisfied := NewResult()
	satisfied.SetStatus(StatusSatisfied)
	assert.False(t, satisfied.ViolatesContract(), "only DUE is constrained")
}

func TestBannerAlertCarriesPlacementAndIntent(t *testing.T) {
	rec := BannerAlert("no_active_coverage", 1, "No active coverage on file.", []string{"chart"}, "warning")

	assert.Equal(t, RecBannerAlert, rec.Type)
	assert.Equal(t, []string{"chart"}, rec.Context["placement"])
	assert.Equal(t, "warning", rec.Context["intent"])
}

func TestDescriptorSubscribesTo(t *testing.T) {
	d := Descriptor{Subscriptions: []model.ChangeType{model.ChangeInterview, model.ChangeCondition}}
	assert.True(t, d.SubscribesTo(model.ChangeInterview))
	assert.False(t, d.SubscribesTo(model.ChangeLabReport))
}
