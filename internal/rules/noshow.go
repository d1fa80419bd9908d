package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/medlogiq/protocol-engine/internal/adapter"
	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/outbox"
	"github.com/medlogiq/protocol-engine/internal/protocol"
)

// No-show state as the host's appointment lifecycle reports it.
const appointmentStateNoShow = "NSW"

// Reschedule tasks default to two business days out.
const rescheduleDueDays = 2

// AppointmentNoShow reacts to an appointment transitioning to no-show:
// it opens a reschedule task for the scheduling team, flags the chart, and
// notifies the configured webhook.
func AppointmentNoShow() protocol.Protocol {
	return protocol.Protocol{
		Descriptor: protocol.Descriptor{
			Key:              "appointment_no_show",
			Title:            "Appointment No-Show",
			Version:          "1.4.0",
			Description:      "Queues rescheduling work when an appointment is marked no-show.",
			Types:            []string{"scheduling"},
			Subscriptions:    []model.ChangeType{model.ChangeAppointment},
			NotificationOnly: true,
		},
		Compute: computeNoShow,
	}
}

func computeNoShow(ctx context.Context, e *protocol.Evaluation) error {
	if !e.Event.ChangedTo("state", appointmentStateNoShow) {
		e.Result.SetStatus(protocol.StatusNotApplicable)
		return nil
	}

	patient := e.Patient.Demographics()
	e.Result.SetStatus(protocol.StatusDue)
	narrative := fmt.Sprintf("%s missed an appointment and needs rescheduling.", patient.FullName())
	e.Result.AddNarrative(narrative)
	e.Result.AddRecommendation(protocol.BannerAlert(
		"appointment_no_show", 1, narrative,
		[]string{"chart", "appointment_card"}, "warning"))

	title := fmt.Sprintf("Reschedule %s", patient.FullName())
	if !e.HasOpenTask(ctx, title) {
		params := adapter.TaskParams{
			PatientKey:   patient.Key,
			CreatedByKey: "protocol-engine",
			Status:       model.TaskStatusOpen,
			Title:        title,
			Due:          e.Now.AddDate(0, 0, rescheduleDueDays),
			Created:      e.Now,
			Tag:          "no-show",
		}
		if team, ok := e.Settings.Team("scheduling"); ok {
			params.TeamIdentifier = team
		}
		task, err := adapter.BuildTaskCreate(params)
		if err != nil {
			return err
		}
		e.Updates.Append(task)
	}

	if e.Settings.WebhookURL != "" {
		e.Updates.Append(outbox.Notification{
			URL: e.Settings.WebhookURL,
			Payload: map[string]any{
				"event":       "appointment_no_show",
				"patient_key": patient.Key,
				"canvas_id":   e.Event.CanvasID,
				"occurred_at": e.Now.UTC().Format(time.RFC3339),
			},
			Headers: e.Settings.WebhookHeaders,
		})
	}
	return nil
}
