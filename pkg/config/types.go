// Package config provides configuration loading and validation for ExtractTime.
package config

import (
	"time"

	"github.com/VictorBaumgartner/ExtractTime/pkg/source"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Sources are CSV paths or glob patterns.
	Sources []string `yaml:"sources"`

	Columns    source.Columns   `yaml:"columns"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Output     OutputConfig     `yaml:"output"`

	// Workers bounds how many rows are extracted at once.
	Workers int `yaml:"workers"`

	Logging  LoggingConfig   `yaml:"logging"`
	Store    *StoreConfig    `yaml:"store,omitempty"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// ExtractionConfig tunes the extractor.
type ExtractionConfig struct {
	// EmitStartRecordWhenRangePresent keeps the start-only record next to
	// each range record.
	EmitStartRecordWhenRangePresent bool `yaml:"emit_start_record_when_range_present"`

	// ResolveMonthNames lets day-month-year dates carry a month name
	// ("20-avril-2025"). Off by default.
	ResolveMonthNames bool `yaml:"resolve_month_names,omitempty"`

	// Months adds month names to the built-in French and English table.
	Months map[string]int `yaml:"months,omitempty"`
}

// OutputConfig selects the report format.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`

	// File, when set, receives a copy of every log line.
	File string `yaml:"file,omitempty"`
}

// StoreConfig points at the database records are saved to.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnRecords fires only when records were extracted (default).
	WebhookTriggerOnRecords WebhookTrigger = "on_records"
	// WebhookTriggerAlways fires after every run.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// ShouldFire reports whether a webhook with this trigger fires for a run
// that produced hasRecords.
func (t WebhookTrigger) ShouldFire(hasRecords bool) bool {
	switch t {
	case WebhookTriggerAlways:
		return true
	case WebhookTriggerNever:
		return false
	default:
		return hasRecords
	}
}

// WebhookConfig defines a webhook endpoint for sending reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_records" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
