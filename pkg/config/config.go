package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/VictorBaumgartner/ExtractTime/pkg/catalog"
	"github.com/VictorBaumgartner/ExtractTime/pkg/output"
	"github.com/VictorBaumgartner/ExtractTime/pkg/store"
)

var (
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	logFormats = []string{"text", "json"}
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and fills in defaults.
func Validate(cfg *Config) error {
	if len(cfg.Sources) == 0 {
		return errors.New("sources: at least one source is required")
	}

	if cfg.Columns.Text == "" && cfg.Columns.TextIndex < 0 {
		return fmt.Errorf("columns: text_index must be >= 0, got %d", cfg.Columns.TextIndex)
	}

	if err := validateMonths(cfg.Extraction.Months); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}
	if !slices.Contains(output.Formats, cfg.Output.Format) {
		return fmt.Errorf("output: invalid format %q (must be one of %s)", cfg.Output.Format, strings.Join(output.Formats, ", "))
	}

	if cfg.Workers < 1 {
		return fmt.Errorf("workers: must be >= 1, got %d", cfg.Workers)
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	if cfg.Store != nil {
		if err := validateStore(cfg.Store); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

// Catalog returns the default pattern catalog extended with the configured
// month names.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	if len(c.Extraction.Months) == 0 {
		return catalog.Default(), nil
	}
	return catalog.Default().WithMonths(c.Extraction.Months)
}

func validateMonths(months map[string]int) error {
	for name, n := range months {
		if strings.TrimSpace(name) == "" {
			return errors.New("months: empty month name")
		}
		if n < 1 || n > 12 {
			return fmt.Errorf("months: %q maps to %d, must be 1-12", name, n)
		}
	}
	return nil
}

func validateLogging(lc *LoggingConfig) error {
	lc.Level = strings.ToLower(strings.TrimSpace(lc.Level))
	if lc.Level == "" {
		lc.Level = DefaultLogLevel
	}
	if !slices.Contains(logLevels, lc.Level) {
		return fmt.Errorf("invalid level %q (must be debug, info, warn, or error)", lc.Level)
	}

	lc.Format = strings.ToLower(strings.TrimSpace(lc.Format))
	if lc.Format == "" {
		lc.Format = DefaultLogFormat
	}
	if !slices.Contains(logFormats, lc.Format) {
		return fmt.Errorf("invalid format %q (must be text or json)", lc.Format)
	}
	return nil
}

func validateStore(sc *StoreConfig) error {
	switch sc.Driver {
	case store.DriverSQLite, store.DriverPostgres:
	case "":
		return errors.New("driver is required")
	default:
		return fmt.Errorf("invalid driver %q (must be sqlite or postgres)", sc.Driver)
	}

	sc.DSN = expandEnvVar(sc.DSN)
	if sc.DSN == "" {
		return errors.New("dsn is required")
	}

	if sc.Table == "" {
		sc.Table = DefaultStoreTable
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case WebhookTriggerOnRecords, WebhookTriggerAlways, WebhookTriggerNever:
	case "":
		wh.Trigger = WebhookTriggerOnRecords
	default:
		return fmt.Errorf("invalid trigger %q (must be on_records, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands a value that is entirely ${VAR} or $VAR.
func expandEnvVar(s string) string {
	switch {
	case strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}"):
		return os.Getenv(s[2 : len(s)-1])
	case strings.HasPrefix(s, "$") && len(s) > 1:
		return os.Getenv(s[1:])
	default:
		return s
	}
}
