package model

import (
	"encoding/json"
	"fmt"
)

// ChangeType names the category of upstream entity a change event refers to.
type ChangeType string

const (
	ChangePatient          ChangeType = "PATIENT"
	ChangeCondition        ChangeType = "CONDITION"
	ChangeMedication       ChangeType = "MEDICATION"
	ChangePrescription     ChangeType = "PRESCRIPTION"
	ChangeInterview        ChangeType = "INTERVIEW"
	ChangeInstruction      ChangeType = "INSTRUCTION"
	ChangeLabOrder         ChangeType = "LAB_ORDER"
	ChangeLabReport        ChangeType = "LAB_REPORT"
	ChangeImagingReport    ChangeType = "IMAGING_REPORT"
	ChangeReferralReport   ChangeType = "REFERRAL_REPORT"
	ChangeAppointment      ChangeType = "APPOINTMENT"
	ChangeEncounter        ChangeType = "ENCOUNTER"
	ChangeTask             ChangeType = "TASK"
	ChangeMessage          ChangeType = "MESSAGE"
	ChangeBillingLineItem  ChangeType = "BILLING_LINE_ITEM"
	ChangeCoverage         ChangeType = "COVERAGE"
	ChangeConsent          ChangeType = "CONSENT"
	ChangeAllergy          ChangeType = "ALLERGY_INTOLERANCE"
	ChangeImmunization     ChangeType = "IMMUNIZATION"
	ChangeVitalSign        ChangeType = "VITAL_SIGN"
	ChangeExternalEvent    ChangeType = "EXTERNAL_EVENT"
	ChangeProtocolOverride ChangeType = "PROTOCOL_OVERRIDE"
)

// ChangeSource distinguishes live host events from bulk ingest replays.
type ChangeSource string

const (
	SourceLive     ChangeSource = "live"
	SourceBackfill ChangeSource = "backfill"
)

// FieldChange carries the old and new value of one changed attribute. On
// the wire it is a two-element [old, new] array keyed by field name.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// MarshalJSON renders the [old, new] wire pair.
func (fc FieldChange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{fc.Old, fc.New})
}

// UnmarshalJSON decodes the [old, new] wire pair. The expanded
// {"old":…,"new":…} object form is accepted too.
func (fc *FieldChange) UnmarshalJSON(data []byte) error {
	var pair []any
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("field change must be an [old, new] pair, got %d elements", len(pair))
		}
		fc.Old, fc.New = pair[0], pair[1]
		return nil
	}
	var obj struct {
		Old any `json:"old"`
		New any `json:"new"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("field change must be an [old, new] pair or object: %w", err)
	}
	fc.Old, fc.New = obj.Old, obj.New
	return nil
}

// ChangeEvent describes a single upstream mutation driving one dispatch.
// Fields may be nil for instance-level signals such as a patient resync.
type ChangeEvent struct {
	PatientID  string                 `json:"patient_id"`
	ChangeType ChangeType             `json:"change_type"`
	ModelName  string                 `json:"model_name"`
	CanvasID   string                 `json:"canvas_id"`
	ExternalID string                 `json:"external_id,omitempty"`
	Created    bool                   `json:"created"`
	Fields     map[string]FieldChange `json:"fields,omitempty"`
	Source     ChangeSource           `json:"source"`
}

// WasChanged reports whether the named field appears in the change set.
// Safe to call when Fields is nil.
func (e ChangeEvent) WasChanged(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// ChangedTo reports whether the named field changed to the given value.
func (e ChangeEvent) ChangedTo(field string, value any) bool {
	fc, ok := e.Fields[field]
	return ok && fc.New == value
}

// ChangedFrom reports whether the named field changed away from the given value.
func (e ChangeEvent) ChangedFrom(field string, value any) bool {
	fc, ok := e.Fields[field]
	return ok && fc.Old == value
}

// IsBackfill reports whether the event originated from a bulk ingest pass.
func (e ChangeEvent) IsBackfill() bool {
	return e.Source == SourceBackfill
}
