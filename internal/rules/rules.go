// Package rules carries the clinical protocols shipped with the engine.
// Each rule is a registration descriptor plus a compute callable; everything
// it needs at evaluation time arrives through the evaluation context.
package rules

import (
	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/protocol"
	"github.com/medlogiq/protocol-engine/internal/terminology"
)

// Shared value sets. Code lists are data; rules only ever test membership.
var (
	gad7Questionnaire = terminology.New("gad7", map[model.CodingSystem][]string{
		model.SystemLOINC:    {"69737-5"},
		model.SystemInternal: {"GAD-7"},
	})

	anxietyUnspecified = terminology.New("anxiety_unspecified", map[model.CodingSystem][]string{
		model.SystemICD10: {"F41.9"},
	})

	diabetes = terminology.New("diabetes", map[model.CodingSystem][]string{
		model.SystemICD10: {
			"E10.9", "E11.9", "E11.65", "E11.22", "E11.40", "E11.51", "E13.9",
		},
	})

	hba1c = terminology.New("hba1c", map[model.CodingSystem][]string{
		model.SystemLOINC: {"4548-4", "17856-6"},
	})

	reducedLifeExpectancy = terminology.New("reduced_life_expectancy", map[model.CodingSystem][]string{
		model.SystemICD10: {"Z51.5", "Z66", "C25.9", "C78.00", "G30.9"},
	})

	intakeQuestionnaire = terminology.New("intake", map[model.CodingSystem][]string{
		model.SystemInternal: {"INTAKE"},
	})
)

// All returns every shipped protocol.
func All() []protocol.Protocol {
	return []protocol.Protocol{
		AnxietyDiagnosis(),
		DiabetesA1CMonitoring(),
		IntakeTask(),
		ActiveCoverageCheck(),
		AppointmentNoShow(),
		HCCAnnualAssessment(),
	}
}

// RegisterAll registers every shipped protocol on the registry.
func RegisterAll(r *protocol.Registry) {
	for _, p := range All() {
		r.Register(p)
	}
}
