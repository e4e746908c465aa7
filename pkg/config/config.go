// Package config provides configuration handling for the systat daemon.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/irctrakz/systatd/pkg/directive"
	"github.com/irctrakz/systatd/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Config represents the complete daemon configuration.
type Config struct {
	// Server contains the HTTP listener configuration.
	Server ServerConfig `json:"server" yaml:"server"`

	// Logging contains the logging configuration.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Reporter configures the periodic interface counter log.
	Reporter ReporterConfig `json:"reporter" yaml:"reporter"`

	// HTTP holds main-level directives inherited by every location.
	HTTP []string `json:"http" yaml:"http"`

	// Locations lists the served locations and their directives.
	Locations []Location `json:"locations" yaml:"locations"`
}

// ServerConfig contains configuration for the HTTP listener.
type ServerConfig struct {
	// Listen is the TCP address to listen on.
	Listen string `json:"listen" yaml:"listen"`

	// MaxConns caps concurrently served connections (0 = unlimited).
	MaxConns int `json:"maxConns" yaml:"maxConns"`

	ReadTimeoutSec     int `json:"readTimeoutSec" yaml:"readTimeoutSec"`
	WriteTimeoutSec    int `json:"writeTimeoutSec" yaml:"writeTimeoutSec"`
	ShutdownTimeoutSec int `json:"shutdownTimeoutSec" yaml:"shutdownTimeoutSec"`

	// MetricsPath serves Prometheus metrics; empty disables it.
	MetricsPath string `json:"metricsPath" yaml:"metricsPath"`
}

// LoggingConfig contains configuration for logging.
type LoggingConfig struct {
	// Level is the logging level (debug, info, warn, error).
	Level string `json:"level" yaml:"level"`

	// Format is the log line format (text, json).
	Format string `json:"format" yaml:"format"`

	// File is the log file path.
	File string `json:"file" yaml:"file"`

	// MaxSize is the maximum size of the log file in megabytes.
	MaxSize int `json:"maxSize" yaml:"maxSize"`

	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `json:"maxBackups" yaml:"maxBackups"`

	// MaxAge is the maximum number of days to retain old log files.
	MaxAge int `json:"maxAge" yaml:"maxAge"`
}

// ReporterConfig controls the periodic counter reporter.
type ReporterConfig struct {
	// Interval is a Go duration string; empty disables the reporter.
	Interval string `json:"interval" yaml:"interval"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format"`
}

// Location is one served path and its directives.
type Location struct {
	Path       string   `json:"path" yaml:"path"`
	Directives []string `json:"directives" yaml:"directives"`
}

// DefaultConfig returns the default configuration: a plain "OK" at /status.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:             ":8080",
			MaxConns:           256,
			ReadTimeoutSec:     5,
			WriteTimeoutSec:    5,
			ShutdownTimeoutSec: 10,
			MetricsPath:        "/metrics",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			File:       "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		},
		Reporter: ReporterConfig{
			Format: "text",
		},
		Locations: []Location{
			{Path: "/status", Directives: []string{"systat"}},
		},
	}
}

// LoadFromFile loads configuration from a file.
func LoadFromFile(path string, config *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", path)
	}

	return nil
}

// LoadFromEnv loads configuration overrides from environment variables.
func LoadFromEnv(config *Config) {
	if val := os.Getenv("SYSTAT_LISTEN"); val != "" {
		config.Server.Listen = val
	}
	if val := os.Getenv("SYSTAT_MAX_CONNS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.Server.MaxConns = n
		}
	}
	if val, ok := os.LookupEnv("SYSTAT_METRICS_PATH"); ok {
		config.Server.MetricsPath = strings.TrimSpace(val)
	}

	if val := os.Getenv("SYSTAT_LOG_LEVEL"); val != "" {
		config.Logging.Level = val
	}
	if truthy(os.Getenv("DEBUG")) {
		config.Logging.Level = "debug"
	}
	if val := os.Getenv("SYSTAT_LOG_FORMAT"); val != "" {
		config.Logging.Format = val
	}
	if val := os.Getenv("SYSTAT_LOG_FILE"); val != "" {
		config.Logging.File = val
	}

	if val := os.Getenv("SYSTAT_REPORT_INTERVAL"); val != "" {
		config.Reporter.Interval = strings.TrimSpace(val)
	}
	if val := os.Getenv("SYSTAT_REPORT_FORMAT"); val != "" {
		config.Reporter.Format = strings.ToLower(strings.TrimSpace(val))
	}
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Validate checks the server, logging and reporter settings. Directives
// are checked by Compile.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Server.Listen, err)
	}
	if c.Server.MaxConns < 0 {
		return fmt.Errorf("invalid maxConns: %d", c.Server.MaxConns)
	}
	if c.Server.MetricsPath != "" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return fmt.Errorf("invalid metrics path: %s", c.Server.MetricsPath)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}

	if _, err := c.Reporter.ParseInterval(); err != nil {
		return err
	}
	switch c.Reporter.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid reporter format: %s", c.Reporter.Format)
	}
	return nil
}

// Compile parses the directives of every location and merges the
// main-level settings into them.
func (c *Config) Compile() ([]*directive.LocationConf, error) {
	if len(c.Locations) == 0 {
		return nil, fmt.Errorf("no locations configured")
	}
	main, err := directive.ParseMain(c.HTTP)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(c.Locations))
	out := make([]*directive.LocationConf, 0, len(c.Locations))
	for _, loc := range c.Locations {
		if seen[loc.Path] {
			return nil, fmt.Errorf("duplicate location %q", loc.Path)
		}
		seen[loc.Path] = true
		if c.Server.MetricsPath != "" && loc.Path == c.Server.MetricsPath {
			return nil, fmt.Errorf("location %q collides with the metrics path", loc.Path)
		}
		lc, err := directive.ParseLocation(loc.Path, loc.Directives, main)
		if err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, nil
}

// ParseInterval returns the reporter interval; zero means disabled.
func (r ReporterConfig) ParseInterval() (time.Duration, error) {
	if r.Interval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid reporter interval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid reporter interval: %s", r.Interval)
	}
	return d, nil
}

// ApplyLogging applies the logging configuration.
func (c *Config) ApplyLogging() error {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return err
	}
	logging.SetLevel(level)

	if err := logging.SetFormat(c.Logging.Format); err != nil {
		return err
	}

	if c.Logging.File != "" {
		err := logging.EnableFileLogging(
			filepath.Dir(c.Logging.File),
			filepath.Base(c.Logging.File),
			c.Logging.MaxSize,
			c.Logging.MaxBackups,
			c.Logging.MaxAge,
		)
		if err != nil {
			return fmt.Errorf("failed to enable file logging: %w", err)
		}
	}

	return nil
}

// SaveToFile saves the configuration to a file.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
