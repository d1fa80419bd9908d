package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/pkg/errors"
)

// Document is the host's patient-document wire shape: demographics plus one
// array per record category.
type Document struct {
	Demographics     model.Demographics         `json:"demographics"`
	Conditions       []model.Condition          `json:"conditions,omitempty"`
	Medications      []model.Medication         `json:"medications,omitempty"`
	Prescriptions    []model.Prescription       `json:"prescriptions,omitempty"`
	Interviews       []model.Interview          `json:"interviews,omitempty"`
	Instructions     []model.Instruction        `json:"instructions,omitempty"`
	LabOrders        []model.LabOrder           `json:"lab_orders,omitempty"`
	LabReports       []model.LabReport          `json:"lab_reports,omitempty"`
	ImagingReports   []model.ImagingReport      `json:"imaging_reports,omitempty"`
	ReferralReports  []model.ReferralReport     `json:"referral_reports,omitempty"`
	Appointments     []model.Appointment        `json:"appointments,omitempty"`
	Encounters       []model.Encounter          `json:"encounters,omitempty"`
	Tasks            []model.Task               `json:"tasks,omitempty"`
	Messages         []model.Message            `json:"messages,omitempty"`
	BillingLineItems []model.BillingLineItem    `json:"billing_line_items,omitempty"`
	Coverages        []model.Coverage           `json:"coverages,omitempty"`
	Consents         []model.Consent            `json:"consents,omitempty"`
	Allergies        []model.AllergyIntolerance `json:"allergy_intolerances,omitempty"`
	Immunizations    []model.Immunization       `json:"immunizations,omitempty"`
	VitalSigns       []model.VitalSign          `json:"vital_signs,omitempty"`
}

// Build materializes the document into an immutable snapshot.
func (d Document) Build() *Snapshot {
	sets := make(map[model.Category][]model.Record)
	adopt := func(cat model.Category, n int, at func(int) model.Record) {
		if n == 0 {
			return
		}
		records := make([]model.Record, n)
		for i := 0; i < n; i++ {
			records[i] = at(i)
		}
		sets[cat] = records
	}
	adopt(model.CategoryCondition, len(d.Conditions), func(i int) model.Record { return d.Conditions[i] })
	adopt(model.CategoryMedication, len(d.Medications), func(i int) model.Record { return d.Medications[i] })
	adopt(model.CategoryPrescription, len(d.Prescriptions), func(i int) model.Record { return d.Prescriptions[i] })
	adopt(model.CategoryInterview, len(d.Interviews), func(i int) model.Record { return d.Interviews[i] })
	adopt(model.CategoryInstruction, len(d.Instructions), func(i int) model.Record { return d.Instructions[i] })
	adopt(model.CategoryLabOrder, len(d.LabOrders), func(i int) model.Record { return d.LabOrders[i] })
	adopt(model.CategoryLabReport, len(d.LabReports), func(i int) model.Record { return d.LabReports[i] })
	adopt(model.CategoryImagingReport, len(d.ImagingReports), func(i int) model.Record { return d.ImagingReports[i] })
	adopt(model.CategoryReferralReport, len(d.ReferralReports), func(i int) model.Record { return d.ReferralReports[i] })
	adopt(model.CategoryAppointment, len(d.Appointments), func(i int) model.Record { return d.Appointments[i] })
	adopt(model.CategoryEncounter, len(d.Encounters), func(i int) model.Record { return d.Encounters[i] })
	adopt(model.CategoryTask, len(d.Tasks), func(i int) model.Record { return d.Tasks[i] })
	adopt(model.CategoryMessage, len(d.Messages), func(i int) model.Record { return d.Messages[i] })
	adopt(model.CategoryBillingLineItem, len(d.BillingLineItems), func(i int) model.Record { return d.BillingLineItems[i] })
	adopt(model.CategoryCoverage, len(d.Coverages), func(i int) model.Record { return d.Coverages[i] })
	adopt(model.CategoryConsent, len(d.Consents), func(i int) model.Record { return d.Consents[i] })
	adopt(model.CategoryAllergy, len(d.Allergies), func(i int) model.Record { return d.Allergies[i] })
	adopt(model.CategoryImmunization, len(d.Immunizations), func(i int) model.Record { return d.Immunizations[i] })
	adopt(model.CategoryVitalSign, len(d.VitalSigns), func(i int) model.Record { return d.VitalSigns[i] })
	return New(d.Demographics, sets)
}

// FileLoader reads patient documents from a directory of <patient-id>.json
// files. It is the narrow persistence adapter the engine needs when the host
// hands over documents on disk rather than in memory.
type FileLoader struct {
	Dir string
}

func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{Dir: dir}
}

// Load reads and builds the snapshot for one patient.
func (l *FileLoader) Load(_ context.Context, patientID string) (*Snapshot, error) {
	path := filepath.Join(l.Dir, patientID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("patient %s", patientID), err)
		}
		return nil, fmt.Errorf("read patient document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode patient document %s: %w", patientID, err)
	}
	return doc.Build(), nil
}
