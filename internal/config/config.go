// Package config loads and validates the process-wide qualsync
// configuration from QUALTRICS_* environment variables. The configuration
// is read once at startup and passed down explicitly; no component below
// this package consults the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/civiclab/qualsync/internal/fault"
)

// Naming strategies for petition filenames.
const (
	StrategyToken = "token"
	StrategySlug  = "slug"
)

// minEncryptionKeyLen is the minimum length of the filename encryption key.
// Shorter keys make the HMAC-derived tokens guessable.
const minEncryptionKeyLen = 16

// Columns maps the configured CSV column names onto row fields.
type Columns struct {
	Title        string
	Body         string
	ResponseID   string
	Published    string
	RecordedDate string

	// PublishedValue is the cell value that marks a row as published.
	PublishedValue string
}

// Config holds every setting for one sync run. Immutable after Load.
type Config struct {
	BaseURL  string
	APIToken string
	SurveyID string

	Columns Columns

	// NamingStrategy selects the filename resolver: StrategyToken (default)
	// or StrategySlug.
	NamingStrategy string

	// EncryptionKey keys the HMAC used by the token naming strategy.
	EncryptionKey string

	// PetitionsDir is the output directory holding one markdown document
	// per published response.
	PetitionsDir string

	// EventLogPath is the JSONL sync event log. Empty disables it.
	EventLogPath string

	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Load reads the QUALTRICS_* environment variables via viper, applies
// defaults, and validates the result. Every validation failure is a
// fault.ConfigError naming the offending variable.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("QUALTRICS")
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	for _, key := range []string{
		"base_url", "api_token", "survey_id",
		"title_column", "body_column", "response_id_column",
		"published_column", "published_value", "recorded_date_column",
		"url_encryption_key", "naming_strategy",
		"petitions_dir", "event_log",
		"poll_interval_seconds", "poll_timeout_seconds",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding QUALTRICS_%s: %w", strings.ToUpper(key), err)
		}
	}

	v.SetDefault("response_id_column", "ResponseId")
	v.SetDefault("published_column", "Finished")
	v.SetDefault("published_value", "1")
	v.SetDefault("recorded_date_column", "RecordedDate")
	v.SetDefault("naming_strategy", StrategyToken)
	v.SetDefault("petitions_dir", "_petitions")
	v.SetDefault("event_log", ".qualsync_events.jsonl")
	v.SetDefault("poll_interval_seconds", 2.0)
	v.SetDefault("poll_timeout_seconds", 180.0)

	cfg := &Config{
		BaseURL:  strings.TrimRight(strings.TrimSpace(v.GetString("base_url")), "/"),
		APIToken: strings.TrimSpace(v.GetString("api_token")),
		SurveyID: strings.TrimSpace(v.GetString("survey_id")),
		Columns: Columns{
			Title:          strings.TrimSpace(v.GetString("title_column")),
			Body:           strings.TrimSpace(v.GetString("body_column")),
			ResponseID:     strings.TrimSpace(v.GetString("response_id_column")),
			Published:      strings.TrimSpace(v.GetString("published_column")),
			RecordedDate:   strings.TrimSpace(v.GetString("recorded_date_column")),
			PublishedValue: strings.TrimSpace(v.GetString("published_value")),
		},
		NamingStrategy: strings.TrimSpace(v.GetString("naming_strategy")),
		EncryptionKey:  v.GetString("url_encryption_key"),
		PetitionsDir:   strings.TrimSpace(v.GetString("petitions_dir")),
		EventLogPath:   strings.TrimSpace(v.GetString("event_log")),
		PollInterval:   secondsDuration(v.GetFloat64("poll_interval_seconds")),
		PollTimeout:    secondsDuration(v.GetFloat64("poll_timeout_seconds")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func secondsDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (c *Config) validate() error {
	required := []struct {
		value   string
		envName string
	}{
		{c.BaseURL, "QUALTRICS_BASE_URL"},
		{c.APIToken, "QUALTRICS_API_TOKEN"},
		{c.SurveyID, "QUALTRICS_SURVEY_ID"},
		{c.Columns.Title, "QUALTRICS_TITLE_COLUMN"},
		{c.Columns.Body, "QUALTRICS_BODY_COLUMN"},
		{c.Columns.ResponseID, "QUALTRICS_RESPONSE_ID_COLUMN"},
		{c.PetitionsDir, "QUALTRICS_PETITIONS_DIR"},
	}
	for _, r := range required {
		if r.value == "" {
			return &fault.ConfigError{Msg: "missing required environment variable: " + r.envName}
		}
	}

	if c.Columns.Title == c.Columns.Body {
		return &fault.ConfigError{
			Msg: "QUALTRICS_TITLE_COLUMN and QUALTRICS_BODY_COLUMN must be different columns",
		}
	}

	switch c.NamingStrategy {
	case StrategyToken:
		if c.EncryptionKey == "" {
			return &fault.ConfigError{Msg: "missing required environment variable: QUALTRICS_URL_ENCRYPTION_KEY"}
		}
		if len(c.EncryptionKey) < minEncryptionKeyLen {
			return &fault.ConfigError{
				Msg: fmt.Sprintf("QUALTRICS_URL_ENCRYPTION_KEY must be at least %d characters", minEncryptionKeyLen),
			}
		}
	case StrategySlug:
		// Title-derived names need no key.
	default:
		return &fault.ConfigError{
			Msg: fmt.Sprintf("QUALTRICS_NAMING_STRATEGY must be %q or %q, got %q",
				StrategyToken, StrategySlug, c.NamingStrategy),
		}
	}

	if c.PollInterval <= 0 {
		return &fault.ConfigError{Msg: "QUALTRICS_POLL_INTERVAL_SECONDS must be positive"}
	}
	if c.PollTimeout <= 0 {
		return &fault.ConfigError{Msg: "QUALTRICS_POLL_TIMEOUT_SECONDS must be positive"}
	}

	return nil
}
