// Package dispatch routes change events to subscribed protocols, runs them
// against a shared patient snapshot, and commits the side effects they
// collected.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/medlogiq/protocol-engine/internal/adapter"
	"github.com/medlogiq/protocol-engine/internal/config"
	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/outbox"
	"github.com/medlogiq/protocol-engine/internal/protocol"
	"github.com/medlogiq/protocol-engine/internal/snapshot"
	"github.com/medlogiq/protocol-engine/internal/timeframe"
	"github.com/medlogiq/protocol-engine/pkg/errors"
	"github.com/medlogiq/protocol-engine/pkg/logger"
	"github.com/medlogiq/protocol-engine/pkg/metrics"
)

// SnapshotLoader materializes the patient snapshot once per dispatch.
type SnapshotLoader interface {
	Load(ctx context.Context, patientID string) (*snapshot.Snapshot, error)
}

// NotificationSender delivers integration and webhook payloads.
type NotificationSender interface {
	Send(ctx context.Context, url string, payload any, headers map[string]string) (*adapter.Response, error)
}

// Dispatcher accepts (patient id, change event) pairs and runs one
// synchronous evaluation pass. A single dispatch runs its protocols
// sequentially; parallelism lives at the host level across events.
type Dispatcher struct {
	registry *protocol.Registry
	loader   SnapshotLoader
	fhir     adapter.Client
	notifier NotificationSender
	tasks    protocol.TaskSearcher
	settings config.Settings
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Dispatcher)

// WithClock overrides the dispatcher's time source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTaskSearcher wires the existing-open-task lookup rules use for
// idempotent task creation.
func WithTaskSearcher(t protocol.TaskSearcher) Option {
	return func(d *Dispatcher) { d.tasks = t }
}

func New(
	registry *protocol.Registry,
	loader SnapshotLoader,
	fhir adapter.Client,
	notifier NotificationSender,
	settings config.Settings,
	log *logger.Logger,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		loader:   loader,
		fhir:     fhir,
		notifier: notifier,
		settings: settings,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs one evaluation pass for the event. One protocol's failure
// never suppresses its siblings; update commits attempt every update and
// surface per-update outcomes without rolling back earlier successes.
func (d *Dispatcher) Dispatch(ctx context.Context, patientID string, event model.ChangeEvent) (Report, error) {
	if d.metrics != nil {
		timer := prometheus.NewTimer(d.metrics.DispatchLatency)
		defer timer.ObserveDuration()
	}

	report := Report{PatientID: patientID, ChangeType: event.ChangeType}

	selected := d.registry.Match(event.ChangeType)
	if event.IsBackfill() {
		selected = dropNotificationOnly(selected)
	}
	if len(selected) == 0 {
		d.log.Debug("no protocols subscribed", "change_type", string(event.ChangeType))
		return report, nil
	}

	snap, err := d.loader.Load(ctx, patientID)
	if err != nil {
		return report, fmt.Errorf("load snapshot for %s: %w", patientID, err)
	}

	now := d.now()
	window := timeframe.LastYear(now)
	if d.settings.TimeframeDays > 0 {
		window = timeframe.LastDays(now, d.settings.TimeframeDays)
	}

	for _, p := range selected {
		entry := d.evaluate(ctx, p, snap, event, now, window)
		report.Entries = append(report.Entries, entry)
	}
	return report, nil
}

func dropNotificationOnly(protocols []protocol.Protocol) []protocol.Protocol {
	var out []protocol.Protocol
	for _, p := range protocols {
		if !p.NotificationOnly {
			out = append(out, p)
		}
	}
	return out
}

func (d *Dispatcher) evaluate(
	ctx context.Context,
	p protocol.Protocol,
	snap *snapshot.Snapshot,
	event model.ChangeEvent,
	now time.Time,
	window timeframe.Timeframe,
) Entry {
	entry := Entry{ProtocolKey: p.Key}

	eval := &protocol.Evaluation{
		Patient:   snap,
		Event:     event,
		Now:       now,
		Timeframe: window,
		Settings:  d.settings,
		Result:    protocol.NewResult(),
		Updates:   outbox.New(),
		Tasks:     d.tasks,
	}

	err := d.compute(ctx, p, eval)
	if err != nil {
		entry.Err = errors.Protocol(p.Key, err)
		entry.Error = entry.Err.Error()
		d.log.Error(err, "protocol raised", "protocol", p.Key, "patient", eval.Patient.Demographics().Key)
		if d.metrics != nil {
			d.metrics.ProtocolFailures.WithLabelValues(p.Key).Inc()
		}
		return entry
	}

	entry.Result = eval.Result
	if eval.Result.ViolatesContract() {
		violation := errors.ContractViolation(fmt.Sprintf(
			"protocol %s returned DUE with no recommendation or narrative", p.Key))
		d.log.Warn(violation.Error(), "protocol", p.Key)
	}
	if d.metrics != nil {
		d.metrics.ProtocolsEvaluated.WithLabelValues(string(eval.Result.Status)).Inc()
	}

	entry.UpdateOutcomes = d.commit(ctx, eval.Updates.Drain())
	return entry
}

// compute invokes the rule body, converting a panic into an error so a
// broken rule cannot take down the dispatch.
func (d *Dispatcher) compute(ctx context.Context, p protocol.Protocol, eval *protocol.Evaluation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Compute(ctx, eval)
}

// commit emits the drained updates in append order. A failed update does
// not stop the ones after it.
func (d *Dispatcher) commit(ctx context.Context, updates []outbox.Update) []UpdateOutcome {
	outcomes := make([]UpdateOutcome, 0, len(updates))
	for _, u := range updates {
		outcome := UpdateOutcome{Kind: u.Kind()}
		if err := d.emit(ctx, u); err != nil {
			outcome.Err = err
			outcome.Error = err.Error()
			d.log.Error(err, "update emission failed", "kind", string(u.Kind()))
			if d.metrics != nil {
				d.metrics.UpdatesFailed.WithLabelValues(string(u.Kind())).Inc()
			}
		} else if d.metrics != nil {
			d.metrics.UpdatesEmitted.WithLabelValues(string(u.Kind())).Inc()
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (d *Dispatcher) emit(ctx context.Context, u outbox.Update) error {
	switch update := u.(type) {
	case outbox.TaskCreate:
		return d.sendIntegration(ctx, update.IntegrationPayload(d.settings.InstanceName))
	case outbox.GroupMembership:
		return d.sendIntegration(ctx, update.IntegrationPayload())
	case outbox.FHIRWrite:
		return d.writeFHIR(ctx, update)
	case outbox.Notification:
		if d.notifier == nil {
			return errors.Adapter("no notifier configured", nil)
		}
		_, err := d.notifier.Send(ctx, update.URL, update.Payload, update.Headers)
		return err
	default:
		return errors.ContractViolation(fmt.Sprintf("unknown update kind %q", u.Kind()))
	}
}

func (d *Dispatcher) sendIntegration(ctx context.Context, payload map[string]any) error {
	if d.notifier == nil {
		return errors.Adapter("no notifier configured", nil)
	}
	if d.settings.WebhookURL == "" {
		return errors.Config("no webhook_url configured for integration payloads", nil)
	}
	_, err := d.notifier.Send(ctx, d.settings.WebhookURL, payload, d.settings.WebhookHeaders)
	return err
}

func (d *Dispatcher) writeFHIR(ctx context.Context, w outbox.FHIRWrite) error {
	if d.fhir == nil {
		return errors.Adapter("no fhir client configured", nil)
	}
	switch w.Method {
	case "create":
		_, err := d.fhir.Create(ctx, w.Resource, w.Payload)
		return err
	case "update":
		_, err := d.fhir.Update(ctx, w.Resource, w.ID, w.Payload)
		return err
	default:
		return errors.ContractViolation(fmt.Sprintf("unsupported fhir write method %q", w.Method))
	}
}
