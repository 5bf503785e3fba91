// Package config provides configuration management for the chart service.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"InspectorCharts/pkg/formatting"
	"InspectorCharts/pkg/graphing"
)

// Config holds all options shared by the commands.
type Config struct {
	// Backend settings
	BackendURL string
	AgentID    string
	Timeout    time.Duration

	// Polling settings
	Interval time.Duration
	Window   time.Duration
	Duration time.Duration

	// Chart settings
	Chart      string
	Timezone   string
	DateLayout string
	TimeLayout string

	// Output settings
	OutputDir    string
	OutputFormat string
	OutputName   string

	// Server settings
	Port int

	// ConfigFile is an optional file read before environment variables.
	ConfigFile string
}

// Default configuration values.
const (
	DefaultBackendURL = "http://localhost:8080"
	DefaultTimeout    = 10 * time.Second
	DefaultInterval   = 5 * time.Second
	DefaultWindow     = 5 * time.Minute
	DefaultChart      = "mapped-memory"
	DefaultOutputDir  = "."
	DefaultFormat     = "parquet"
	DefaultPort       = 9090
)

// New creates a Config with default values.
func New() *Config {
	return &Config{
		BackendURL:   DefaultBackendURL,
		Timeout:      DefaultTimeout,
		Interval:     DefaultInterval,
		Window:       DefaultWindow,
		Chart:        DefaultChart,
		DateLayout:   graphing.DefaultDateLayout,
		TimeLayout:   graphing.DefaultTimeLayout,
		OutputDir:    DefaultOutputDir,
		OutputFormat: DefaultFormat,
		Port:         DefaultPort,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Interval < time.Second {
		return fmt.Errorf("interval must be at least 1s, got %v", c.Interval)
	}

	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %v", c.Window)
	}

	if c.Duration < 0 {
		return fmt.Errorf("duration cannot be negative, got %v", c.Duration)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	if u, err := url.Parse(c.BackendURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid backend url: %q", c.BackendURL)
	}

	if _, ok := graphing.Lookup(c.Chart); !ok {
		return fmt.Errorf("invalid chart: %s (valid: %v)", c.Chart, graphing.Keys())
	}

	if _, ok := formatting.Get(c.OutputFormat); !ok {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.OutputFormat, formatting.List())
	}

	if _, err := c.LabelFormat(); err != nil {
		return err
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.OutputDir != "" {
		if info, err := os.Stat(c.OutputDir); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("cannot access output directory: %w", err)
			}
		} else if !info.IsDir() {
			return fmt.Errorf("output path is not a directory: %s", c.OutputDir)
		}
	}

	return nil
}

// ApplyDefaults fills in any missing values with defaults.
func (c *Config) ApplyDefaults() {
	d := New()
	if c.BackendURL == "" {
		c.BackendURL = d.BackendURL
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.Interval == 0 {
		c.Interval = d.Interval
	}
	if c.Window == 0 {
		c.Window = d.Window
	}
	if c.Chart == "" {
		c.Chart = d.Chart
	}
	if c.DateLayout == "" {
		c.DateLayout = d.DateLayout
	}
	if c.TimeLayout == "" {
		c.TimeLayout = d.TimeLayout
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.OutputFormat == "" {
		c.OutputFormat = d.OutputFormat
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
}

// Spec returns the configured chart spec.
func (c *Config) Spec() graphing.ChartSpec {
	spec, ok := graphing.Lookup(c.Chart)
	if !ok {
		return graphing.MappedMemory
	}
	return spec
}

// LabelFormat builds the x-axis label format from the timezone and layouts.
func (c *Config) LabelFormat() (graphing.LabelFormat, error) {
	return graphing.NewLabelFormat(c.Timezone, c.DateLayout, c.TimeLayout)
}

// GenerateOutputPath creates an auto-generated archive path.
func (c *Config) GenerateOutputPath(prefix string) string {
	if c.OutputName != "" {
		return filepath.Join(c.OutputDir, c.OutputName)
	}
	timestamp := time.Now().Format("20060102-150405")
	ext := formatting.GetExtension(c.OutputFormat)
	return filepath.Join(c.OutputDir, fmt.Sprintf("%s-%s%s", prefix, timestamp, ext))
}
