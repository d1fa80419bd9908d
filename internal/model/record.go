package model

import (
	"time"

	"github.com/google/uuid"
)

// Category names one homogeneous collection of patient data.
type Category string

const (
	CategoryCondition       Category = "conditions"
	CategoryMedication      Category = "medications"
	CategoryPrescription    Category = "prescriptions"
	CategoryInterview       Category = "interviews"
	CategoryInstruction     Category = "instructions"
	CategoryLabOrder        Category = "lab_orders"
	CategoryLabReport       Category = "lab_reports"
	CategoryImagingReport   Category = "imaging_reports"
	CategoryReferralReport  Category = "referral_reports"
	CategoryAppointment     Category = "appointments"
	CategoryEncounter       Category = "encounters"
	CategoryTask            Category = "tasks"
	CategoryMessage         Category = "messages"
	CategoryBillingLineItem Category = "billing_line_items"
	CategoryCoverage        Category = "coverages"
	CategoryConsent         Category = "consents"
	CategoryAllergy         Category = "allergy_intolerances"
	CategoryImmunization    Category = "immunizations"
	CategoryVitalSign       Category = "vital_signs"
)

// RecordMeta contains the fields every patient record carries.
type RecordMeta struct {
	ID            uuid.UUID  `json:"id"`
	ExternalID    string     `json:"external_id,omitempty"`
	Codings       []Coding   `json:"codings,omitempty"`
	Created       time.Time  `json:"created"`
	NoteTimestamp *time.Time `json:"note_timestamp,omitempty"`
}

// Record is implemented by every typed record variant. EffectiveTime returns
// the category's canonical timestamp: Created for most categories,
// DateRecorded for vital signs, NoteTimestamp (falling back to Created) for
// interviews and appointments.
type Record interface {
	Meta() RecordMeta
	Category() Category
	EffectiveTime() time.Time
}

func (m RecordMeta) Meta() RecordMeta { return m }

// EffectiveTime is the default canonical timestamp; categories with a
// different anchor override it.
func (m RecordMeta) EffectiveTime() time.Time { return m.Created }

// noteAnchored returns NoteTimestamp when present, otherwise Created.
func (m RecordMeta) noteAnchored() time.Time {
	if m.NoteTimestamp != nil {
		return *m.NoteTimestamp
	}
	return m.Created
}

// Period is a closed-open effective interval; a nil End means still open.
type Period struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Active reports whether the period covers the given instant.
func (p Period) Active(at time.Time) bool {
	if at.Before(p.Start) {
		return false
	}
	return p.End == nil || at.Before(*p.End)
}

type Condition struct {
	RecordMeta
	ClinicalStatus string `json:"clinical_status"`
}

func (Condition) Category() Category { return CategoryCondition }

type Medication struct {
	RecordMeta
	Status  string   `json:"status"`
	Periods []Period `json:"periods,omitempty"`
}

func (Medication) Category() Category { return CategoryMedication }

type Prescription struct {
	RecordMeta
	Status   string `json:"status"`
	Quantity string `json:"quantity,omitempty"`
	Refills  int    `json:"refills,omitempty"`
}

func (Prescription) Category() Category { return CategoryPrescription }

type InterviewResponse struct {
	QuestionCode Coding `json:"question_code"`
	Value        string `json:"value"`
}

type InterviewQuestion struct {
	Code Coding `json:"code"`
	Text string `json:"text,omitempty"`
}

type InterviewResult struct {
	Score     float64 `json:"score"`
	Code      string  `json:"code,omitempty"`
	Narrative string  `json:"narrative,omitempty"`
}

type Interview struct {
	RecordMeta
	Name      string              `json:"name,omitempty"`
	Status    string              `json:"status,omitempty"`
	Responses []InterviewResponse `json:"responses,omitempty"`
	Questions []InterviewQuestion `json:"questions,omitempty"`
	Results   []InterviewResult   `json:"results,omitempty"`
}

func (Interview) Category() Category { return CategoryInterview }

func (i Interview) EffectiveTime() time.Time { return i.noteAnchored() }

type Instruction struct {
	RecordMeta
	Narrative string `json:"narrative,omitempty"`
}

func (Instruction) Category() Category { return CategoryInstruction }

type LabOrder struct {
	RecordMeta
	Status string `json:"status,omitempty"`
}

func (LabOrder) Category() Category { return CategoryLabOrder }

type LabReport struct {
	RecordMeta
	Value string `json:"value,omitempty"`
}

func (LabReport) Category() Category { return CategoryLabReport }

type ImagingReport struct {
	RecordMeta
	Status string `json:"status,omitempty"`
}

func (ImagingReport) Category() Category { return CategoryImagingReport }

type ReferralReport struct {
	RecordMeta
	Specialty string `json:"specialty,omitempty"`
}

func (ReferralReport) Category() Category { return CategoryReferralReport }

// AppointmentStateChange records one transition in an appointment's lifecycle.
type AppointmentStateChange struct {
	State string    `json:"state"`
	At    time.Time `json:"at"`
}

type Appointment struct {
	RecordMeta
	State        string                   `json:"state"`
	StateHistory []AppointmentStateChange `json:"state_history,omitempty"`
	StartTime    time.Time                `json:"start_time"`
	NoteType     string                   `json:"note_type,omitempty"`
}

func (Appointment) Category() Category { return CategoryAppointment }

func (a Appointment) EffectiveTime() time.Time { return a.noteAnchored() }

type Encounter struct {
	RecordMeta
	Status string  `json:"status,omitempty"`
	Period *Period `json:"period,omitempty"`
}

func (Encounter) Category() Category { return CategoryEncounter }

// TaskStatus values mirror the host's task lifecycle.
type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "OPEN"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusClosed    TaskStatus = "CLOSED"
)

type Task struct {
	RecordMeta
	Status TaskStatus `json:"status"`
	Title  string     `json:"title"`
	Labels []string   `json:"labels,omitempty"`
	Due    *time.Time `json:"due,omitempty"`
}

func (Task) Category() Category { return CategoryTask }

type Message struct {
	RecordMeta
	Content string `json:"content,omitempty"`
}

func (Message) Category() Category { return CategoryMessage }

type BillingLineItem struct {
	RecordMeta
	Units  int     `json:"units,omitempty"`
	Charge float64 `json:"charge,omitempty"`
}

func (BillingLineItem) Category() Category { return CategoryBillingLineItem }

type Coverage struct {
	RecordMeta
	TransactorName string  `json:"transactor_name"`
	TransactorType string  `json:"transactor_type,omitempty"`
	IsActive       bool    `json:"is_active"`
	ClassCode      string  `json:"class_code,omitempty"`
	GroupCode      string  `json:"group_code,omitempty"`
	Effective      *Period `json:"effective,omitempty"`
}

func (Coverage) Category() Category { return CategoryCoverage }

type Consent struct {
	RecordMeta
	State string `json:"state,omitempty"`
}

func (Consent) Category() Category { return CategoryConsent }

type AllergyIntolerance struct {
	RecordMeta
	Status string `json:"status,omitempty"`
}

func (AllergyIntolerance) Category() Category { return CategoryAllergy }

type Immunization struct {
	RecordMeta
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}

func (Immunization) Category() Category { return CategoryImmunization }

type VitalSign struct {
	RecordMeta
	Value        string    `json:"value"`
	DateRecorded time.Time `json:"date_recorded"`
	LoincNum     string    `json:"loinc_num,omitempty"`
	Sign         string    `json:"sign,omitempty"`
}

func (VitalSign) Category() Category { return CategoryVitalSign }

func (v VitalSign) EffectiveTime() time.Time { return v.DateRecorded }
