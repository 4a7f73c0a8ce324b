// Package config resolves run settings from defaults, an optional YAML file
// and ANACHRON_* environment variables. CLI flags are applied last by the
// caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"anachron/internal/civil"
	"anachron/internal/lineage"
	"anachron/internal/metadata"
	"anachron/internal/report"
	"anachron/internal/source"
)

// Config holds every setting that is not a required CLI argument.
type Config struct {
	Columns        metadata.Columns `yaml:"columns"`
	MetadataFormat string           `yaml:"metadata_format"` // "" = by extension
	FallbackDate   string           `yaml:"fallback_designation_date"`

	Output          string `yaml:"output"`
	Format          string `yaml:"format"`
	WithDesignation bool   `yaml:"with_designation_date"`

	MetricsFile string `yaml:"metrics_file"`

	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	S3 source.S3Config `yaml:"s3"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Columns:      metadata.DefaultColumns(),
		FallbackDate: lineage.DefaultFallback.String(),
		Output:       report.DefaultName,
		Format:       report.FormatTSV,
		LogLevel:     "info",
	}
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	defer func() { _ = f.Close() }()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays ANACHRON_* variables onto c.
func (c *Config) ApplyEnv() {
	c.Columns.Accession = getEnv("ANACHRON_COL_ACCESSION", c.Columns.Accession)
	c.Columns.Collected = getEnv("ANACHRON_COL_COLLECTION_DATE", c.Columns.Collected)
	c.Columns.Lineage = getEnv("ANACHRON_COL_LINEAGE", c.Columns.Lineage)
	c.MetadataFormat = getEnv("ANACHRON_METADATA_FORMAT", c.MetadataFormat)
	c.FallbackDate = getEnv("ANACHRON_FALLBACK_DATE", c.FallbackDate)
	c.Output = getEnv("ANACHRON_OUTPUT", c.Output)
	c.Format = getEnv("ANACHRON_FORMAT", c.Format)
	c.MetricsFile = getEnv("ANACHRON_METRICS_FILE", c.MetricsFile)
	c.LogFile = getEnv("ANACHRON_LOG_FILE", c.LogFile)
	c.LogLevel = getEnv("ANACHRON_LOG_LEVEL", c.LogLevel)
	c.S3.Region = getEnv("ANACHRON_S3_REGION", c.S3.Region)
	c.S3.Endpoint = getEnv("ANACHRON_S3_ENDPOINT", c.S3.Endpoint)
	if v := os.Getenv("ANACHRON_S3_PATH_STYLE"); v != "" {
		c.S3.PathStyle = strings.EqualFold(v, "true")
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Columns.Accession == "" || c.Columns.Collected == "" || c.Columns.Lineage == "" {
		errs = append(errs, errors.New("column names must not be empty"))
	}
	if _, err := c.Fallback(); err != nil {
		errs = append(errs, fmt.Errorf("fallback designation date %q is not YYYY-MM-DD", c.FallbackDate))
	}
	switch c.MetadataFormat {
	case metadata.FormatAuto, metadata.FormatTSV, metadata.FormatCSV, metadata.FormatArrow:
	default:
		errs = append(errs, fmt.Errorf("invalid metadata format %q", c.MetadataFormat))
	}
	if !validFormat(c.Format) {
		errs = append(errs, fmt.Errorf("invalid report format %q (want one of %s)", c.Format, strings.Join(report.Formats(), ", ")))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output must not be empty"))
	}
	if _, ok := parseLogLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// Fallback parses FallbackDate.
func (c Config) Fallback() (civil.Date, error) {
	return civil.ParseISO(c.FallbackDate)
}

// Level returns the parsed log level, INFO if unparseable.
func (c Config) Level() slog.Level {
	l, _ := parseLogLevel(c.LogLevel)
	return l
}

func validFormat(f string) bool {
	for _, known := range report.Formats() {
		if f == known {
			return true
		}
	}
	return false
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO", "":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
