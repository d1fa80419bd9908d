package protocol

import "strings"

// Status is the outcome a protocol asserts for the patient it evaluated.
type Status string

const (
	StatusDue           Status = "DUE"
	StatusSatisfied     Status = "SATISFIED"
	StatusNotApplicable Status = "NOT_APPLICABLE"
	StatusNotRelevant   Status = "NOT_RELEVANT"
	StatusUnchanged     Status = "UNCHANGED"
)

// Result is the append-only accumulator a protocol fills during one
// evaluation. Status is last-writer-wins; narratives and recommendations
// keep append order, and duplicate recommendation keys are preserved (the
// host deduplicates downstream).
type Result struct {
	Status          Status           `json:"status"`
	DueIn           *int             `json:"due_in,omitempty"`
	Narratives      []string         `json:"narratives,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// NewResult starts an empty result. UNCHANGED means the protocol asserted
// nothing; rules overwrite it where they have something to say.
func NewResult() *Result {
	return &Result{Status: StatusUnchanged}
}

func (r *Result) SetStatus(s Status) {
	r.Status = s
}

func (r *Result) SetDueIn(days int) {
	r.DueIn = &days
}

func (r *Result) AddNarrative(text string) {
	r.Narratives = append(r.Narratives, text)
}

func (r *Result) AddRecommendation(rec Recommendation) {
	r.Recommendations = append(r.Recommendations, rec)
}

// Narrative renders the accumulated narratives joined by newlines.
func (r *Result) Narrative() string {
	return strings.Join(r.Narratives, "\n")
}

// ViolatesContract reports whether a DUE result carries neither a
// recommendation nor a narrative. The dispatcher logs this and emits the
// result anyway.
func (r *Result) ViolatesContract() bool {
	return r.Status == StatusDue && len(r.Recommendations) == 0 && len(r.Narratives) == 0
}
