package rules

import (
	"context"
	"fmt"

	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/protocol"
)

// ActiveCoverageCheck raises a chart banner when the patient carries no
// active coverage.
func ActiveCoverageCheck() protocol.Protocol {
	return protocol.Protocol{
		Descriptor: protocol.Descriptor{
			Key:           "active_coverage_check",
			Title:         "Active Coverage Check",
			Version:       "1.1.0",
			Description:   "Flags patients without active coverage on the chart.",
			Types:         []string{"billing"},
			Subscriptions: []model.ChangeType{model.ChangeCoverage, model.ChangePatient},
		},
		Compute: computeActiveCoverage,
	}
}

func computeActiveCoverage(_ context.Context, e *protocol.Evaluation) error {
	if len(e.Patient.Demographics().ActiveCoverages(e.Now)) > 0 {
		e.Result.SetStatus(protocol.StatusSatisfied)
		return nil
	}

	e.Result.SetStatus(protocol.StatusDue)
	narrative := fmt.Sprintf("%s does not have active coverage on file.",
		e.Patient.Demographics().FullName())
	e.Result.AddNarrative(narrative)
	e.Result.AddRecommendation(protocol.BannerAlert(
		"no_active_coverage", 1, narrative, []string{"chart"}, "warning"))
	return nil
}
