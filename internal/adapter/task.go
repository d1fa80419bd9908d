package adapter

import (
	"context"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/outbox"
	"github.com/medlogiq/protocol-engine/pkg/errors"
)

// TaskParams are the inputs to the task payload builder. Exactly one of
// AssigneeIdentifier or TeamIdentifier may be set.
type TaskParams struct {
	PatientKey         string           `validate:"required"`
	CreatedByKey       string           `validate:"required"`
	Status             model.TaskStatus `validate:"required,oneof=OPEN COMPLETED CLOSED"`
	Title              string           `validate:"required"`
	AssigneeIdentifier string
	TeamIdentifier     string
	Due                time.Time `validate:"required"`
	Created            time.Time `validate:"required"`
	Tag                string
	Labels             []string
}

var taskValidate = validator.New()

// BuildTaskCreate validates the parameters and constructs a TaskCreate
// update for the outbox.
func BuildTaskCreate(p TaskParams) (outbox.TaskCreate, error) {
	if err := taskValidate.Struct(p); err != nil {
		return outbox.TaskCreate{}, errors.ContractViolation("invalid task parameters: " + err.Error())
	}
	if p.AssigneeIdentifier != "" && p.TeamIdentifier != "" {
		return outbox.TaskCreate{}, errors.ContractViolation("task may carry an assignee or a team, not both")
	}
	return outbox.TaskCreate{
		PatientKey:         p.PatientKey,
		CreatedByKey:       p.CreatedByKey,
		Status:             p.Status,
		Title:              p.Title,
		AssigneeIdentifier: p.AssigneeIdentifier,
		TeamIdentifier:     p.TeamIdentifier,
		Due:                p.Due,
		Created:            p.Created,
		Tag:                p.Tag,
		Labels:             p.Labels,
	}, nil
}

// TaskFinder answers "is there already an open task with this title for
// this patient" through the FHIR gateway, so rules can keep task creation
// idempotent across replays.
type TaskFinder struct {
	fhir Client
}

func NewTaskFinder(fhir Client) *TaskFinder {
	return &TaskFinder{fhir: fhir}
}

func (f *TaskFinder) FindOpenTask(ctx context.Context, patientKey, title string) (bool, error) {
	query := url.Values{
		"patient":     {"Patient/" + patientKey},
		"status":      {"requested"},
		"description": {title},
	}
	resp, err := f.fhir.Search(ctx, "Task", query)
	if err != nil {
		return false, err
	}

	var bundle struct {
		Total int `json:"total"`
		Entry []struct {
			Resource struct {
				ID string `json:"id"`
			} `json:"resource"`
		} `json:"entry"`
	}
	if err := resp.JSON(&bundle); err != nil {
		return false, errors.Adapter("failed to decode task search bundle", err)
	}
	return bundle.Total > 0 || len(bundle.Entry) > 0, nil
}
