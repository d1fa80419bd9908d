package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/medlogiq/protocol-engine/internal/adapter"
	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/protocol"
	"github.com/medlogiq/protocol-engine/internal/snapshot"
)

// Appointments within this window trigger the intake check.
const intakeWindowHours = 72

// IntakeTask opens a task for the care team when a patient has an upcoming
// appointment but no completed intake questionnaire. Task creation is
// idempotent: an existing open task with the same title suppresses a new one.
func IntakeTask() protocol.Protocol {
	return protocol.Protocol{
		Descriptor: protocol.Descriptor{
			Key:              "intake_task",
			Title:            "Intake Before Appointment",
			Version:          "1.0.3",
			Description:      "Ensures intake paperwork is complete before an upcoming appointment.",
			Types:            []string{"operations"},
			Subscriptions:    []model.ChangeType{model.ChangeAppointment, model.ChangeInterview},
			NotificationOnly: true,
		},
		Compute: computeIntakeTask,
	}
}

func computeIntakeTask(ctx context.Context, e *protocol.Evaluation) error {
	upcoming := e.Patient.Appointments().Filter(snapshot.Predicates{
		"start_time__gte": e.Now,
		"start_time__lt":  e.Now.Add(intakeWindowHours * time.Hour),
		"state":           "booked",
	})
	if upcoming.Empty() {
		e.Result.SetStatus(protocol.StatusNotApplicable)
		e.Result.AddNarrative(fmt.Sprintf(
			"Patient has no upcoming appointments within %d hours.", intakeWindowHours))
		return nil
	}

	completed := !e.Patient.Interviews().
		Find(intakeQuestionnaire).
		Filter(snapshot.Predicates{"status": "completed"}).
		Empty()
	if completed {
		e.Result.SetStatus(protocol.StatusSatisfied)
		return nil
	}

	e.Result.SetStatus(protocol.StatusDue)
	e.Result.AddNarrative("Intake questionnaire not completed before upcoming appointment.")

	title := fmt.Sprintf("Collect intake for %s", e.Patient.Demographics().FullName())
	if e.HasOpenTask(ctx, title) {
		return nil
	}

	params := adapter.TaskParams{
		PatientKey:   e.Patient.Demographics().Key,
		CreatedByKey: "protocol-engine",
		Status:       model.TaskStatusOpen,
		Title:        title,
		Due:          firstStartTime(upcoming),
		Created:      e.Now,
		Tag:          "intake",
		Labels:       []string{"Front Desk"},
	}
	if team, ok := e.Settings.Team("front_desk"); ok {
		params.TeamIdentifier = team
	}
	task, err := adapter.BuildTaskCreate(params)
	if err != nil {
		return err
	}
	e.Updates.Append(task)
	return nil
}

func firstStartTime(appointments *snapshot.RecordSet) time.Time {
	if first := appointments.First(); first != nil {
		if appt, ok := first.(model.Appointment); ok {
			return appt.StartTime
		}
	}
	return time.Time{}
}
