package adapter

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/pkg/errors"
)

func validTaskParams() TaskParams {
	return TaskParams{
		PatientKey:   "pat-1",
		CreatedByKey: "protocol-engine",
		Status:       model.TaskStatusOpen,
		Title:        "Collect intake for Ada Nguyen",
		Due:          time.Date(2024, 6, 17, 9, 0, 0, 0, time.UTC),
		Created:      time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestBuildTaskCreate(t *testing.T) {
	p := validTaskParams()
	p.TeamIdentifier = "team-1"

	task, err := BuildTaskCreate(p)
	require.NoError(t, err)
	assert.Equal(t, "Collect intake for Ada Nguyen", task.Title)
	assert.Equal(t, "team-1", task.TeamIdentifier)
}

func TestBuildTaskCreateRejectsAssigneeAndTeam(t *testing.T) {
	p := validTaskParams()
	p.AssigneeIdentifier = "staff-1"
	p.TeamIdentifier = "team-1"

	_, err := BuildTaskCreate(p)
	require.Error(t, err)
	code, ok := errors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrContractViolation, code)
}

func TestBuildTaskCreateRejectsMissingFields(t *testing.T) {
	p := validTaskParams()
	p.Title = ""
	_, err := BuildTaskCreate(p)
	assert.Error(t, err)

	p = validTaskParams()
	p.Status = model.TaskStatus("PENDING")
	_, err = BuildTaskCreate(p)
	assert.Error(t, err)
}

// fakeFHIR returns canned responses keyed by resource type.
type fakeFHIR struct {
	searchBody []byte
	lastQuery  url.Values
}

func (f *fakeFHIR) Read(context.Context, string, string) (*Response, error) {
	return &Response{StatusCode: 200}, nil
}

func (f *fakeFHIR) Search(_ context.Context, _ string, query url.Values) (*Response, error) {
	f.lastQuery = query
	return &Response{StatusCode: 200, Body: f.searchBody}, nil
}

func (f *fakeFHIR) Create(context.Context, string, any) (*Response, error) {
	return &Response{StatusCode: 201}, nil
}

func (f *fakeFHIR) Update(context.Context, string, string, any) (*Response, error) {
	return &Response{StatusCode: 200}, nil
}

func TestFindOpenTask(t *testing.T) {
	fhir := &fakeFHIR{searchBody: []byte(`{"resourceType":"Bundle","total":1,"entry":[{"resource":{"id":"t-1"}}]}`)}
	finder := NewTaskFinder(fhir)

	found, err := finder.FindOpenTask(context.Background(), "pat-1", "Reschedule Ada Nguyen")
	require.NoError(t, err)
	assert.True(t, found)

	assert.Equal(t, "Patient/pat-1", fhir.lastQuery.Get("patient"))
	assert.Equal(t, "requested", fhir.lastQuery.Get("status"))
	assert.Equal(t, "Reschedule Ada Nguyen", fhir.lastQuery.Get("description"))
}

func TestFindOpenTaskEmptyBundle(t *testing.T) {
	fhir := &fakeFHIR{searchBody: []byte(`{"resourceType":"Bundle","total":0}`)}
	found, err := NewTaskFinder(fhir).FindOpenTask(context.Background(), "pat-1", "anything")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGroupMembershipValidation(t *testing.T) {
	const groupUUID = "7d444840-9dc0-11d1-b245-5ffdce74fad2"

	add, err := EnsurePatientInGroup("pat-1", groupUUID)
	require.NoError(t, err)
	assert.False(t, add.Remove)

	remove, err := EnsurePatientNotInGroup("pat-1", groupUUID)
	require.NoError(t, err)
	assert.True(t, remove.Remove)

	_, err = EnsurePatientInGroup("", groupUUID)
	assert.Error(t, err)

	_, err = EnsurePatientInGroup("pat-1", "not-a-uuid")
	assert.Error(t, err)
}
