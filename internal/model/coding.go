package model

// CodingSystem identifies the terminology a code is drawn from.
type CodingSystem string

const (
	SystemICD10    CodingSystem = "ICD-10"
	SystemSNOMED   CodingSystem = "SNOMED-CT"
	SystemCPT      CodingSystem = "CPT"
	SystemLOINC    CodingSystem = "LOINC"
	SystemRxNorm   CodingSystem = "RxNorm"
	SystemFDB      CodingSystem = "FDB"
	SystemCVX      CodingSystem = "CVX"
	SystemInternal CodingSystem = "INTERNAL"
	SystemNDC      CodingSystem = "NDC"
)

// Coding is a single code drawn from a coding system. Equality is
// (System, Code); Display is carried for rendering only.
type Coding struct {
	System  CodingSystem `json:"system"`
	Code    string       `json:"code"`
	Display string       `json:"display,omitempty"`
}

func (c Coding) Equal(other Coding) bool {
	return c.System == other.System && c.Code == other.Code
}

// KnownSystems lists every coding system the engine accepts, in a stable order.
func KnownSystems() []CodingSystem {
	return []CodingSystem{
		SystemICD10, SystemSNOMED, SystemCPT, SystemLOINC, SystemRxNorm,
		SystemFDB, SystemCVX, SystemInternal, SystemNDC,
	}
}
