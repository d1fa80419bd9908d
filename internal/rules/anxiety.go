package rules

import (
	"context"

	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/protocol"
	"github.com/medlogiq/protocol-engine/internal/snapshot"
)

// GAD-7 scores of 10 and above indicate at least moderate anxiety.
const gad7ModerateThreshold = 10.0

// AnxietyDiagnosis recommends documenting an anxiety diagnosis when the
// patient's most recent GAD-7 screen is moderate or worse and no anxiety
// condition is on the problem list.
func AnxietyDiagnosis() protocol.Protocol {
	return protocol.Protocol{
		Descriptor: protocol.Descriptor{
			Key:           "anxiety_diagnosis",
			Title:         "Anxiety Diagnosis",
			Version:       "1.2.0",
			Description:   "Suggests an anxiety diagnosis after a moderate or severe GAD-7 screen.",
			Identifiers:   []string{"gad7"},
			Types:         []string{"behavioral_health"},
			Subscriptions: []model.ChangeType{model.ChangeInterview, model.ChangeCondition},
		},
		Compute: computeAnxietyDiagnosis,
	}
}

func computeAnxietyDiagnosis(_ context.Context, e *protocol.Evaluation) error {
	screen := lastGAD7(e.Patient)
	if screen == nil {
		e.Result.SetStatus(protocol.StatusNotApplicable)
		return nil
	}

	if screen.Results[0].Score < gad7ModerateThreshold {
		e.Result.SetStatus(protocol.StatusSatisfied)
		return nil
	}

	diagnosed := !e.Patient.Conditions().
		Find(anxietyUnspecified).
		Filter(snapshot.Predicates{"clinical_status": "active"}).
		Empty()
	if diagnosed {
		e.Result.SetStatus(protocol.StatusSatisfied)
		return nil
	}

	e.Result.SetStatus(protocol.StatusDue)
	e.Result.AddNarrative("Most recent GAD-7 score indicates moderate or severe anxiety without a documented diagnosis.")
	e.Result.AddRecommendation(protocol.Diagnose(
		"RECOMMEND_ANXIETY_DIAGNOSIS", 1, "Anxiety disorder, unspecified", anxietyUnspecified))
	return nil
}

// lastGAD7 memoizes the most recent active GAD-7 interview carrying a score
// for the lifetime of the snapshot.
func lastGAD7(patient *snapshot.Snapshot) *model.Interview {
	cached := patient.Memoize("rules:anxiety:last_gad7", func() any {
		record := patient.Interviews().
			Find(gad7Questionnaire).
			Filter(snapshot.Predicates{"status": "active"}).
			Last()
		if record == nil {
			return (*model.Interview)(nil)
		}
		interview, ok := record.(model.Interview)
		if !ok || len(interview.Results) == 0 {
			return (*model.Interview)(nil)
		}
		return &interview
	})
	return cached.(*model.Interview)
}
