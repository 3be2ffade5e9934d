package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/handiism/gist-downloader/internal/http"
	ioutils "github.com/handiism/gist-downloader/internal/io"
	"github.com/handiism/gist-downloader/internal/logging"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "GISTDL_"

// Duration is a time.Duration written as "3s" in JSON and YAML files.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	OutputDir   string `json:"output_dir" yaml:"output_dir"`
	Concurrency int    `json:"concurrency" yaml:"concurrency"`
	Limit       int    `json:"limit" yaml:"limit"` // negative means no limit

	// API settings
	BaseURL       string   `json:"base_url" yaml:"base_url"`
	UserAgent     string   `json:"user_agent" yaml:"user_agent"`
	HTTPTimeout   Duration `json:"http_timeout" yaml:"http_timeout"`
	ThrottleDelay Duration `json:"throttle_delay" yaml:"throttle_delay"`

	// Observability
	MonitorInterval Duration `json:"monitor_interval" yaml:"monitor_interval"`
	LogLevel        string   `json:"log_level" yaml:"log_level"`   // debug, info, warn, error
	LogFormat       string   `json:"log_format" yaml:"log_format"` // console, json
	LogOutput       string   `json:"log_output" yaml:"log_output"`
	MetricsAddr     string   `json:"metrics_addr" yaml:"metrics_addr"` // empty disables the endpoint
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		OutputDir:   "gists",
		Concurrency: 4,
		Limit:       10,

		BaseURL:       "https://api.github.com",
		UserAgent:     "gist-downloader",
		HTTPTimeout:   Duration{60 * time.Second},
		ThrottleDelay: Duration{3 * time.Second},

		MonitorInterval: Duration{250 * time.Millisecond},
		LogLevel:        "info",
		LogFormat:       "console",
		LogOutput:       "stderr",
	}
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "gist-dl.json"
	}
	return filepath.Join(dir, "gist-downloader", "settings.json")
}

// Load reads settings from a JSON or YAML file, chosen by extension.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON or YAML file, chosen by extension.
func (s *Settings) Save(path string) error {
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return ioutils.WriteFile(path, data)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadEnv overlays GISTDL_* environment variables onto s.
//
// Each existing file in envFiles is loaded first with godotenv; variables
// already set in the process environment win over the file.
func (s *Settings) LoadEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	if v := os.Getenv(EnvPrefix + "OUTPUT"); v != "" {
		s.OutputDir = v
	}
	if v := os.Getenv(EnvPrefix + "CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sCONCURRENCY: %w", EnvPrefix, err)
		}
		s.Concurrency = n
	}
	if v := os.Getenv(EnvPrefix + "LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sLIMIT: %w", EnvPrefix, err)
		}
		s.Limit = n
	}
	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		s.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "USER_AGENT"); v != "" {
		s.UserAgent = v
	}
	for key, dst := range map[string]*Duration{
		"HTTP_TIMEOUT":     &s.HTTPTimeout,
		"THROTTLE_DELAY":   &s.ThrottleDelay,
		"MONITOR_INTERVAL": &s.MonitorInterval,
	} {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("parse %s%s: %w", EnvPrefix, key, err)
			}
		}
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		s.LogFormat = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_OUTPUT"); v != "" {
		s.LogOutput = v
	}
	if v := os.Getenv(EnvPrefix + "METRICS_ADDR"); v != "" {
		s.MetricsAddr = v
	}

	return nil
}

// Validate checks that the settings can drive a run.
func (s *Settings) Validate() error {
	if s.OutputDir == "" {
		return errors.New("config: output_dir is required")
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("config: concurrency must be at least 1, got %d", s.Concurrency)
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: invalid base_url %q", s.BaseURL)
	}
	if s.HTTPTimeout.Duration < 0 || s.ThrottleDelay.Duration < 0 || s.MonitorInterval.Duration < 0 {
		return errors.New("config: durations must not be negative")
	}
	switch s.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("config: log_format must be console or json, got %q", s.LogFormat)
	}
	return nil
}

// ToHTTPOptions converts settings to client options.
func (s *Settings) ToHTTPOptions() http.Options {
	return http.Options{
		UserAgent: s.UserAgent,
		Timeout:   s.HTTPTimeout.Duration,
	}
}

// ToLoggingConfig converts settings to a logging configuration.
func (s *Settings) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:      s.LogLevel,
		Format:     s.LogFormat,
		OutputPath: s.LogOutput,
	}
}
