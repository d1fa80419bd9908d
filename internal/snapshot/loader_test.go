package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/pkg/errors"
)

const patientDoc = `{
  "demographics": {
    "key": "pat-1",
    "first_name": "Ada",
    "last_name": "Nguyen",
    "birth_date": "1961-03-02T00:00:00Z",
    "sex": "F",
    "coverages": [
      {"transactor_name": "Acme Health", "is_active": true, "created": "2023-01-01T00:00:00Z"}
    ]
  },
  "conditions": [
    {"created": "2022-04-01T00:00:00Z", "clinical_status": "active",
     "codings": [{"system": "ICD-10", "code": "E11.9", "display": "Type 2 diabetes"}]}
  ],
  "lab_reports": [
    {"created": "2024-02-01T00:00:00Z", "value": "8.2",
     "codings": [{"system": "LOINC", "code": "4548-4"}]}
  ],
  "interviews": [
    {"created": "2024-01-15T00:00:00Z", "note_timestamp": "2024-01-10T00:00:00Z",
     "name": "GAD-7", "status": "AC", "results": [{"score": 12}]}
  ]
}`

func TestFileLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pat-1.json"), []byte(patientDoc), 0o644))

	loader := NewFileLoader(dir)
	snap, err := loader.Load(context.Background(), "pat-1")
	require.NoError(t, err)

	assert.Equal(t, "Ada Nguyen", snap.Demographics().FullName())
	assert.Equal(t, 1, snap.Conditions().Len())
	assert.Equal(t, 1, snap.LabReports().Len())
	assert.Equal(t, 0, snap.Medications().Len())

	value, ok := snap.LabReports().LastValue()
	require.True(t, ok)
	assert.InDelta(t, 8.2, value, 1e-9)

	// Interviews anchor to note_timestamp.
	interview := snap.Interviews().Last()
	require.NotNil(t, interview)
	assert.Equal(t, "2024-01-10", interview.EffectiveTime().Format("2006-01-02"))
}

func TestFileLoaderMissingPatient(t *testing.T) {
	loader := NewFileLoader(t.TempDir())
	_, err := loader.Load(context.Background(), "absent")
	require.Error(t, err)

	code, ok := errors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrNotFound, code)
}

func TestFileLoaderMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))

	_, err := NewFileLoader(dir).Load(context.Background(), "bad")
	assert.Error(t, err)
}

func TestSnapshotMemoize(t *testing.T) {
	snap := New(model.Demographics{Key: "pat-1"}, nil)

	calls := 0
	compute := func() any {
		calls++
		return 42
	}

	assert.Equal(t, 42, snap.Memoize("answer", compute))
	assert.Equal(t, 42, snap.Memoize("answer", compute))
	assert.Equal(t, 1, calls, "second read hits the cache")
}
