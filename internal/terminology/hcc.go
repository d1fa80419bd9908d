package terminology

import "github.com/medlogiq/protocol-engine/internal/model"

// HCCEntry maps an ICD-10 code to its risk-adjustment category.
type HCCEntry struct {
	Code  string
	Label string
	RAF   float64
}

// HCCIndex answers label and risk-adjustment-factor lookups for ICD-10 codes
// in the hierarchical condition category domain.
type HCCIndex struct {
	byCode map[string]HCCEntry
}

func NewHCCIndex(entries []HCCEntry) *HCCIndex {
	idx := &HCCIndex{byCode: make(map[string]HCCEntry, len(entries))}
	for _, e := range entries {
		idx.byCode[e.Code] = e
	}
	return idx
}

// Lookup returns the entry for an ICD-10 code.
func (i *HCCIndex) Lookup(code string) (HCCEntry, bool) {
	e, ok := i.byCode[code]
	return e, ok
}

// LookupCoding returns the entry for a coding when it is an ICD-10 code in
// the index.
func (i *HCCIndex) LookupCoding(c model.Coding) (HCCEntry, bool) {
	if c.System != model.SystemICD10 {
		return HCCEntry{}, false
	}
	return i.Lookup(c.Code)
}

// ValueSet renders the whole index as an ICD-10 value set for record-set
// find operations.
func (i *HCCIndex) ValueSet() ValueSet {
	codes := make([]string, 0, len(i.byCode))
	for code := range i.byCode {
		codes = append(codes, code)
	}
	return New("hcc", map[model.CodingSystem][]string{model.SystemICD10: codes})
}
