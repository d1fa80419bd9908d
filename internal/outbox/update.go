// Package outbox collects the outbound side effects a protocol requests
// during one evaluation and hands them to the dispatcher at commit time.
package outbox

import (
	"time"

	"github.com/medlogiq/protocol-engine/internal/model"
)

// Kind tags an update variant.
type Kind string

const (
	KindTaskCreate   Kind = "task_create"
	KindGroupAdd     Kind = "ensure_patient_in_group"
	KindGroupRemove  Kind = "ensure_patient_not_in_group"
	KindFHIRWrite    Kind = "fhir_write"
	KindNotification Kind = "notification"
)

// Update is one outbound side effect. Updates carry no ordering contract
// among themselves but are emitted in append order.
type Update interface {
	Kind() Kind
}

// TaskCreate asks the host to create a task for the patient. Exactly one of
// AssigneeIdentifier or TeamIdentifier may be set.
type TaskCreate struct {
	PatientKey         string
	CreatedByKey       string
	Status             model.TaskStatus
	Title              string
	AssigneeIdentifier string
	TeamIdentifier     string
	Due                time.Time
	Created            time.Time
	Tag                string
	Labels             []string
}

func (TaskCreate) Kind() Kind { return KindTaskCreate }

// IntegrationPayload renders the host's task-create wire shape.
func (t TaskCreate) IntegrationPayload(source string) map[string]any {
	payload := map[string]any{
		"creator": t.CreatedByKey,
		"title":   t.Title,
		"due":     t.Due.UTC().Format(time.RFC3339),
		"created": t.Created.UTC().Format(time.RFC3339),
		"status":  string(t.Status),
	}
	if t.AssigneeIdentifier != "" {
		payload["assignee"] = t.AssigneeIdentifier
	}
	if t.TeamIdentifier != "" {
		payload["team"] = t.TeamIdentifier
	}
	if t.Tag != "" {
		payload["tag"] = t.Tag
	}
	if len(t.Labels) > 0 {
		payload["labels"] = t.Labels
	}
	return map[string]any{
		"integration_type":   "Task",
		"integration_source": source,
		"patient_identifier": map[string]any{
			"identifier_type": "key",
			"identifier":      map[string]any{"key": t.PatientKey},
		},
		"integration_payload": payload,
	}
}

// GroupMembership ensures the patient is in (or out of) a host group.
type GroupMembership struct {
	PatientKey string
	GroupUUID  string
	Remove     bool
}

func (g GroupMembership) Kind() Kind {
	if g.Remove {
		return KindGroupRemove
	}
	return KindGroupAdd
}

// IntegrationPayload renders the host's group-membership wire shape.
func (g GroupMembership) IntegrationPayload() map[string]any {
	operation := "add"
	if g.Remove {
		operation = "remove"
	}
	return map[string]any{
		"integration_type": "Group",
		"operation":        operation,
		"patient_key":      g.PatientKey,
		"group_uuid":       g.GroupUUID,
	}
}

// FHIRWrite requests a FHIR create or update through the host gateway.
type FHIRWrite struct {
	Method   string // "create" or "update"
	Resource string // FHIR resource type, e.g. "Task", "Communication"
	ID       string // required for update
	Payload  map[string]any
}

func (FHIRWrite) Kind() Kind { return KindFHIRWrite }

// Notification posts an arbitrary JSON body to a configured URL.
type Notification struct {
	URL     string
	Payload map[string]any
	Headers map[string]string
}

func (Notification) Kind() Kind { return KindNotification }
