package config

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/VictorBaumgartner/ExtractTime/pkg/source"
)

// Default values for configuration.
const (
	DefaultTextIndex       = 1
	DefaultPublishedColumn = "date_publication"
	DefaultIDColumn        = "id"
	DefaultOutputFormat    = "text"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultStoreTable      = "schedule"
	DefaultWebhookTimeout  = 10 * time.Second
)

// Environment variable names.
const (
	EnvSources  = "EXTRACTTIME_SOURCES"
	EnvLogLevel = "EXTRACTTIME_LOG_LEVEL"
	EnvStoreDSN = "EXTRACTTIME_STORE_DSN"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Sources: []string{},
		Columns: source.Columns{
			ID:        DefaultIDColumn,
			TextIndex: DefaultTextIndex,
			Published: DefaultPublishedColumn,
		},
		Extraction: ExtractionConfig{
			EmitStartRecordWhenRangePresent: true,
		},
		Output:  OutputConfig{Format: DefaultOutputFormat},
		Workers: runtime.NumCPU(),
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	// Comma-separated list of paths or globs.
	if v := os.Getenv(EnvSources); v != "" {
		var sources []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sources = append(sources, s)
			}
		}
		c.Sources = sources
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(EnvStoreDSN); v != "" && c.Store != nil {
		c.Store.DSN = v
	}
}
