package rules

import (
	"context"

	"github.com/medlogiq/protocol-engine/internal/adapter"
	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/protocol"
	"github.com/medlogiq/protocol-engine/internal/snapshot"
)

const (
	// A1c at or above 8% counts as uncontrolled and warrants prompt
	// re-testing and follow-up.
	a1cUncontrolled = 8.0
	// Controlled diabetics are re-tested every 180 days.
	a1cRetestDays = 180
)

// DiabetesA1CMonitoring keeps hemoglobin A1c testing current for diabetic
// patients, and keeps them enrolled in the configured disease-management
// group.
func DiabetesA1CMonitoring() protocol.Protocol {
	return protocol.Protocol{
		Descriptor: protocol.Descriptor{
			Key:         "diabetes_a1c_monitoring",
			Title:       "Diabetes A1c Monitoring",
			Version:     "2.0.1",
			Description: "Orders a hemoglobin A1c when a diabetic patient's last result is stale or uncontrolled.",
			Identifiers: []string{"hba1c"},
			Types:       []string{"chronic_care"},
			Subscriptions: []model.ChangeType{
				model.ChangeCondition, model.ChangeLabReport, model.ChangePatient,
			},
		},
		Compute: computeA1CMonitoring,
	}
}

func computeA1CMonitoring(_ context.Context, e *protocol.Evaluation) error {
	diabetic := !e.Patient.Conditions().
		Find(diabetes).
		Filter(snapshot.Predicates{"clinical_status": "active"}).
		Empty()
	if !diabetic {
		e.Result.SetStatus(protocol.StatusNotRelevant)
		return nil
	}

	if group, ok := e.Settings.Group("diabetes_management"); ok {
		membership, err := adapter.EnsurePatientInGroup(e.Patient.Demographics().Key, group)
		if err != nil {
			return err
		}
		e.Updates.Append(membership)
	}

	limited := !e.Patient.Conditions().
		Find(reducedLifeExpectancy).
		Filter(snapshot.Predicates{"clinical_status": "active"}).
		Empty()
	if limited {
		e.Result.SetStatus(protocol.StatusNotApplicable)
		e.Result.AddNarrative("A1c monitoring paused for reduced life expectancy.")
		return nil
	}

	reports := e.Patient.LabReports().Find(hba1c)
	last := reports.Last()
	if last == nil {
		e.Result.SetStatus(protocol.StatusDue)
		e.Result.AddNarrative("No hemoglobin A1c on record.")
		e.Result.AddRecommendation(protocol.Lab("a1c_test", 1, "Order Hemoglobin A1c", hba1c))
		return nil
	}

	stale := reports.After(e.Now.AddDate(0, 0, -a1cRetestDays)).Empty()
	value, hasValue := reports.LastValue()
	uncontrolled := hasValue && value >= a1cUncontrolled

	switch {
	case uncontrolled:
		e.Result.SetStatus(protocol.StatusDue)
		e.Result.AddNarrative("Most recent hemoglobin A1c is above goal.")
		e.Result.AddRecommendation(protocol.Lab("a1c_test", 1, "Order Hemoglobin A1c", hba1c))
	case stale:
		e.Result.SetStatus(protocol.StatusDue)
		e.Result.AddNarrative("Hemoglobin A1c is more than six months old.")
		e.Result.AddRecommendation(protocol.Lab("a1c_test", 1, "Order Hemoglobin A1c", hba1c))
	default:
		e.Result.SetStatus(protocol.StatusSatisfied)
	}
	return nil
}
