package dispatch

import (
	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/outbox"
	"github.com/medlogiq/protocol-engine/internal/protocol"
)

// UpdateOutcome records the commit result of one update.
type UpdateOutcome struct {
	Kind  outbox.Kind `json:"kind"`
	Err   error       `json:"-"`
	Error string      `json:"error,omitempty"`
}

// Entry is the per-protocol slice of a dispatch report.
type Entry struct {
	ProtocolKey    string           `json:"protocol_key"`
	Result         *protocol.Result `json:"result,omitempty"`
	UpdateOutcomes []UpdateOutcome  `json:"update_outcomes,omitempty"`
	Err            error            `json:"-"`
	Error          string           `json:"error,omitempty"`
}

// Report is the outcome of one dispatch pass.
type Report struct {
	PatientID  string           `json:"patient_id"`
	ChangeType model.ChangeType `json:"change_type"`
	Entries    []Entry          `json:"entries"`
}

// Failed reports whether any protocol or update commit failed.
func (r Report) Failed() bool {
	for _, e := range r.Entries {
		if e.Err != nil {
			return true
		}
		for _, o := range e.UpdateOutcomes {
			if o.Err != nil {
				return true
			}
		}
	}
	return false
}
