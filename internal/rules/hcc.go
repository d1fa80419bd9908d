package rules

import (
	"context"
	"fmt"

	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/protocol"
	"github.com/medlogiq/protocol-engine/internal/snapshot"
	"github.com/medlogiq/protocol-engine/internal/terminology"
)

// hccIndex carries the risk-adjusting conditions this rule tracks. The
// full CMS model ships as value-set content; this subset covers the common
// chronic categories.
var hccIndex = terminology.NewHCCIndex([]terminology.HCCEntry{
	{Code: "E11.9", Label: "Type 2 diabetes mellitus without complications", RAF: 0.105},
	{Code: "E11.22", Label: "Type 2 diabetes mellitus with diabetic chronic kidney disease", RAF: 0.302},
	{Code: "I50.9", Label: "Heart failure, unspecified", RAF: 0.331},
	{Code: "J44.9", Label: "Chronic obstructive pulmonary disease, unspecified", RAF: 0.335},
	{Code: "N18.4", Label: "Chronic kidney disease, stage 4 (severe)", RAF: 0.289},
	{Code: "F32.9", Label: "Major depressive disorder, single episode, unspecified", RAF: 0.309},
})

// HCCAnnualAssessment recommends re-documenting active risk-adjusting
// conditions that have not been assessed in the current window.
func HCCAnnualAssessment() protocol.Protocol {
	return protocol.Protocol{
		Descriptor: protocol.Descriptor{
			Key:           "hcc_annual_assessment",
			Title:         "HCC Annual Assessment",
			Version:       "1.0.0",
			Description:   "Keeps hierarchical condition category diagnoses current for risk adjustment.",
			Types:         []string{"risk_adjustment"},
			Priority:      10,
			Subscriptions: []model.ChangeType{model.ChangeCondition, model.ChangeBillingLineItem},
		},
		Compute: computeHCCAssessment,
	}
}

func computeHCCAssessment(_ context.Context, e *protocol.Evaluation) error {
	active := e.Patient.Conditions().
		Find(hccIndex.ValueSet()).
		Filter(snapshot.Predicates{"clinical_status": "active"})
	if active.Empty() {
		e.Result.SetStatus(protocol.StatusNotRelevant)
		return nil
	}

	billedThisWindow := e.Patient.BillingLineItems().Within(e.Timeframe)

	rank := 1
	for _, record := range active.Records() {
		entry, coding, ok := hccEntryFor(record)
		if !ok {
			continue
		}
		if billedWithCode(billedThisWindow, coding) {
			continue
		}
		conditionSet := terminology.New(coding.Code, map[model.CodingSystem][]string{
			model.SystemICD10: {coding.Code},
		})
		e.Result.AddRecommendation(protocol.Diagnose(
			fmt.Sprintf("RECOMMEND_HCC_%s", coding.Code), rank, entry.Label, conditionSet))
		e.Result.AddNarrative(fmt.Sprintf(
			"%s (%s, RAF %.3f) has not been assessed this period.",
			entry.Label, coding.Code, entry.RAF))
		rank++
	}

	if rank == 1 {
		e.Result.SetStatus(protocol.StatusSatisfied)
		return nil
	}
	e.Result.SetStatus(protocol.StatusDue)
	return nil
}

func hccEntryFor(record model.Record) (terminology.HCCEntry, model.Coding, bool) {
	for _, coding := range record.Meta().Codings {
		if entry, ok := hccIndex.LookupCoding(coding); ok {
			return entry, coding, true
		}
	}
	return terminology.HCCEntry{}, model.Coding{}, false
}

func billedWithCode(billed *snapshot.RecordSet, coding model.Coding) bool {
	for _, record := range billed.Records() {
		for _, c := range record.Meta().Codings {
			if c.System == model.SystemICD10 && c.Code == coding.Code {
				return true
			}
		}
	}
	return false
}
