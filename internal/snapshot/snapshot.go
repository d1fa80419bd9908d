package snapshot

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/medlogiq/protocol-engine/internal/model"
)

// Snapshot is the frozen per-evaluation view of one patient. It is built
// once per dispatch, shared read-only by every protocol the dispatch runs,
// and discarded afterwards. It performs no I/O.
type Snapshot struct {
	demographics model.Demographics
	sets         map[model.Category][]model.Record
	memo         *gocache.Cache
}

// New composes a snapshot from demographics and per-category record slices.
// The slices are adopted, not copied; callers must not mutate them after.
func New(demographics model.Demographics, sets map[model.Category][]model.Record) *Snapshot {
	if sets == nil {
		sets = make(map[model.Category][]model.Record)
	}
	return &Snapshot{
		demographics: demographics,
		sets:         sets,
		memo:         gocache.New(gocache.NoExpiration, 0),
	}
}

// Demographics returns the patient's non-record data.
func (s *Snapshot) Demographics() model.Demographics { return s.demographics }

// Set returns a fresh record set over one category.
func (s *Snapshot) Set(category model.Category) *RecordSet {
	return NewRecordSet(s.sets[category])
}

func (s *Snapshot) Conditions() *RecordSet       { return s.Set(model.CategoryCondition) }
func (s *Snapshot) Medications() *RecordSet      { return s.Set(model.CategoryMedication) }
func (s *Snapshot) Prescriptions() *RecordSet    { return s.Set(model.CategoryPrescription) }
func (s *Snapshot) Interviews() *RecordSet       { return s.Set(model.CategoryInterview) }
func (s *Snapshot) Instructions() *RecordSet     { return s.Set(model.CategoryInstruction) }
func (s *Snapshot) LabOrders() *RecordSet        { return s.Set(model.CategoryLabOrder) }
func (s *Snapshot) LabReports() *RecordSet       { return s.Set(model.CategoryLabReport) }
func (s *Snapshot) ImagingReports() *RecordSet   { return s.Set(model.CategoryImagingReport) }
func (s *Snapshot) ReferralReports() *RecordSet  { return s.Set(model.CategoryReferralReport) }
func (s *Snapshot) Appointments() *RecordSet     { return s.Set(model.CategoryAppointment) }
func (s *Snapshot) Encounters() *RecordSet       { return s.Set(model.CategoryEncounter) }
func (s *Snapshot) Tasks() *RecordSet            { return s.Set(model.CategoryTask) }
func (s *Snapshot) Messages() *RecordSet         { return s.Set(model.CategoryMessage) }
func (s *Snapshot) BillingLineItems() *RecordSet { return s.Set(model.CategoryBillingLineItem) }
func (s *Snapshot) Coverages() *RecordSet        { return s.Set(model.CategoryCoverage) }
func (s *Snapshot) Consents() *RecordSet         { return s.Set(model.CategoryConsent) }
func (s *Snapshot) Allergies() *RecordSet        { return s.Set(model.CategoryAllergy) }
func (s *Snapshot) Immunizations() *RecordSet    { return s.Set(model.CategoryImmunization) }
func (s *Snapshot) VitalSigns() *RecordSet       { return s.Set(model.CategoryVitalSign) }

// Memoize caches a derived value for the lifetime of this snapshot. The key
// must identify the derivation; the first caller computes, later callers
// read. The cache dies with the snapshot, so nothing leaks across events.
func (s *Snapshot) Memoize(key string, compute func() any) any {
	if v, ok := s.memo.Get(key); ok {
		return v
	}
	v := compute()
	s.memo.Set(key, v, gocache.NoExpiration)
	return v
}
