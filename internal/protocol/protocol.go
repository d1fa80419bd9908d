// Package protocol defines the contract between the evaluation engine and
// independently authored clinical rules: the registration descriptor, the
// evaluation context handed to each rule, and the result accumulator.
package protocol

import (
	"context"
	"time"

	"github.com/medlogiq/protocol-engine/internal/config"
	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/outbox"
	"github.com/medlogiq/protocol-engine/internal/snapshot"
	"github.com/medlogiq/protocol-engine/internal/timeframe"
)

// Descriptor is the constructor-supplied value object carrying a rule's
// metadata and subscriptions. Versions are opaque strings; the registry
// keeps the highest version when a key is registered twice.
type Descriptor struct {
	Key         string
	Title       string
	Version     string
	Description string
	Identifiers []string
	Types       []string

	// Priority orders dispatch within one event; lower runs first, ties
	// fall back to title.
	Priority int

	Subscriptions []model.ChangeType

	// NotificationOnly protocols are skipped when the change source is a
	// bulk backfill; they only react to live events.
	NotificationOnly bool
}

// SubscribesTo reports whether the descriptor subscribes to the change type.
func (d Descriptor) SubscribesTo(t model.ChangeType) bool {
	for _, s := range d.Subscriptions {
		if s == t {
			return true
		}
	}
	return false
}

// TaskSearcher finds an existing open task by title so rules can keep task
// creation idempotent across replays.
type TaskSearcher interface {
	FindOpenTask(ctx context.Context, patientKey, title string) (bool, error)
}

// Evaluation is the per-invocation context a rule computes against. The
// snapshot is shared read-only across the dispatch; Result and Updates are
// private to this rule.
type Evaluation struct {
	Patient   *snapshot.Snapshot
	Event     model.ChangeEvent
	Now       time.Time
	Timeframe timeframe.Timeframe
	Settings  config.Settings

	Result  *Result
	Updates *outbox.Outbox

	// Tasks is nil when the host offers no task search; rules must treat
	// that as "no existing task".
	Tasks TaskSearcher
}

// HasOpenTask consults the task searcher, treating an absent searcher or a
// search failure as no existing task. Rules that must be strictly
// idempotent call the searcher directly and handle the error.
func (e *Evaluation) HasOpenTask(ctx context.Context, title string) bool {
	if e.Tasks == nil {
		return false
	}
	found, err := e.Tasks.FindOpenTask(ctx, e.Patient.Demographics().Key, title)
	return err == nil && found
}

// ComputeFunc is a rule's evaluation body. Errors are recorded per-protocol
// by the dispatcher and never abort sibling protocols.
type ComputeFunc func(ctx context.Context, e *Evaluation) error

// Protocol binds a descriptor to its compute callable.
type Protocol struct {
	Descriptor
	Compute ComputeFunc
}
