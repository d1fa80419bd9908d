package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlogiq/protocol-engine/pkg/errors"
)

const configYAML = `client_id: id-1
client_secret: secret-1
instance_name: Demo
webhook_url: https://hooks.example.com/engine
team_identifiers:
  front_desk: 7d444840-9dc0-11d1-b245-5ffdce74fad2
group_identifiers:
  diabetes_management: 16fd2706-8baf-433b-82eb-8c7fada847da
timeframe_days: 180
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	s, err := Load(writeConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "id-1", s.ClientID)
	assert.Equal(t, 180, s.TimeframeDays)
	// Untouched defaults survive the file merge.
	assert.Equal(t, 10*time.Second, s.AdapterTimeout)
	assert.Equal(t, 3, s.RetryAttempts)

	team, ok := s.Team("front_desk")
	require.True(t, ok)
	assert.Equal(t, "7d444840-9dc0-11d1-b245-5ffdce74fad2", team)

	_, ok = s.Group("unknown")
	assert.False(t, ok)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("ENGINE_INSTANCE_NAME", "Staging")
	t.Setenv("ENGINE_TIMEFRAME_DAYS", "90")

	s, err := Load(writeConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "Staging", s.InstanceName)
	assert.Equal(t, 90, s.TimeframeDays)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	code, ok := errors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrConfig, code)
}

func TestDefaultTimeframeIsCalendarYear(t *testing.T) {
	s := Defaults()
	// Zero days means the dispatcher falls back to a rolling calendar year.
	assert.Zero(t, s.TimeframeDays)
	s.ClientID = "id"
	s.ClientSecret = "secret"
	s.InstanceName = "demo"
	assert.NoError(t, s.Validate())
}

func TestValidateRejectsMissingCredentials(t *testing.T) {
	s := Defaults()
	s.InstanceName = "demo"
	err := s.Validate()
	require.Error(t, err)
	code, ok := errors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrConfig, code)
}

func TestValidateRejectsBadWebhookURL(t *testing.T) {
	s := Defaults()
	s.ClientID = "id"
	s.ClientSecret = "secret"
	s.InstanceName = "demo"
	s.WebhookURL = "not a url"
	assert.Error(t, s.Validate())
}

func TestEndpointHelpers(t *testing.T) {
	s := Settings{InstanceName: "Demo"}
	assert.Equal(t, "https://demo.canvasmedical.com", s.FHIRBaseURL())
	assert.Equal(t, "https://demo.canvasmedical.com/auth/token/", s.TokenURL())
}
