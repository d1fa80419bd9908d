// Package config loads and validates the engine's startup settings.
package config

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/medlogiq/protocol-engine/pkg/errors"
)

// Settings is the read-only process-wide configuration initialized at
// startup. Rules receive it through their evaluation context; webhook URLs
// and team identifiers live here rather than in rule files.
type Settings struct {
	ClientID     string `mapstructure:"client_id" envconfig:"CLIENT_ID" validate:"required"`
	ClientSecret string `mapstructure:"client_secret" envconfig:"CLIENT_SECRET" validate:"required"`
	InstanceName string `mapstructure:"instance_name" envconfig:"INSTANCE_NAME" validate:"required"`

	WebhookURL     string            `mapstructure:"webhook_url" envconfig:"WEBHOOK_URL" validate:"omitempty,url"`
	WebhookHeaders map[string]string `mapstructure:"webhook_headers" envconfig:"WEBHOOK_HEADERS"`

	// TeamIdentifiers maps a team's configuration name to the host UUID a
	// TaskCreate update references.
	TeamIdentifiers map[string]string `mapstructure:"team_identifiers" envconfig:"TEAM_IDENTIFIERS"`

	// GroupIdentifiers maps a patient group's configuration name to its
	// host UUID for membership updates.
	GroupIdentifiers map[string]string `mapstructure:"group_identifiers" envconfig:"GROUP_IDENTIFIERS"`

	// TimeframeDays overrides the evaluation window length. Zero means the
	// default rolling calendar year ending at evaluation time.
	TimeframeDays  int           `mapstructure:"timeframe_days" envconfig:"TIMEFRAME_DAYS" validate:"gte=0"`
	AdapterTimeout time.Duration `mapstructure:"adapter_timeout" envconfig:"ADAPTER_TIMEOUT" validate:"gt=0"`
	RetryAttempts  int           `mapstructure:"retry_attempts" envconfig:"RETRY_ATTEMPTS" validate:"gte=0"`

	LogLevel string `mapstructure:"log_level" envconfig:"LOG_LEVEL"`
	LogJSON  bool   `mapstructure:"log_json" envconfig:"LOG_JSON"`

	MetricsAddr        string `mapstructure:"metrics_addr" envconfig:"METRICS_ADDR"`
	PatientDocumentDir string `mapstructure:"patient_document_dir" envconfig:"PATIENT_DOCUMENT_DIR"`
}

// Defaults returns settings with engine tuning pre-filled; credentials stay
// empty and fail validation until provided.
func Defaults() Settings {
	return Settings{
		AdapterTimeout: 10 * time.Second,
		RetryAttempts:  3,
		LogLevel:       "info",
	}
}

// Load reads the optional yaml config file, applies ENGINE_* environment
// overrides, and validates. A malformed or incomplete configuration is
// fatal at startup.
func Load(path string) (Settings, error) {
	s := Defaults()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Missing default config is fine; an explicit path must exist.
		if path != "" || !stderrors.As(err, &notFound) {
			return Settings{}, errors.Config("failed to read config file", err)
		}
	} else if err := v.Unmarshal(&s); err != nil {
		return Settings{}, errors.Config("failed to unmarshal config", err)
	}

	if err := envconfig.Process("engine", &s); err != nil {
		return Settings{}, errors.Config("failed to read environment", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings against their struct tags.
func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return errors.Config("invalid settings", err)
	}
	return nil
}

// FHIRBaseURL is the host's FHIR gateway root for this instance.
func (s Settings) FHIRBaseURL() string {
	return fmt.Sprintf("https://%s.canvasmedical.com", strings.ToLower(s.InstanceName))
}

// TokenURL is the OAuth2 client-credentials token endpoint.
func (s Settings) TokenURL() string {
	return s.FHIRBaseURL() + "/auth/token/"
}

// Team resolves a configured team identifier by name.
func (s Settings) Team(name string) (string, bool) {
	id, ok := s.TeamIdentifiers[name]
	return id, ok
}

// Group resolves a configured patient-group identifier by name.
func (s Settings) Group(name string) (string, bool) {
	id, ok := s.GroupIdentifiers[name]
	return id, ok
}
