package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AddBackendFlags adds backend connection flags to a command.
func (c *Config) AddBackendFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&c.BackendURL, "backend-url", c.BackendURL, "APM backend base URL")
	flags.StringVar(&c.AgentID, "agent", c.AgentID, "Agent ID to chart")
	flags.DurationVar(&c.Timeout, "timeout", c.Timeout, "Backend request timeout")
}

// AddPollingFlags adds polling flags to a command.
func (c *Config) AddPollingFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.DurationVar(&c.Interval, "interval", c.Interval, "Polling interval")
	flags.DurationVar(&c.Window, "window", c.Window, "Time range fetched on every poll")
	flags.DurationVar(&c.Duration, "duration", c.Duration, "Stop after this long (0 runs until interrupted)")
}

// AddChartFlags adds chart selection and label flags to a command.
func (c *Config) AddChartFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&c.Chart, "chart", c.Chart, "Chart to render (mapped-memory, mapped-count, direct-memory, direct-count)")
	flags.StringVar(&c.Timezone, "timezone", c.Timezone, "IANA timezone for axis labels (local if empty)")
	flags.StringVar(&c.DateLayout, "date-layout", c.DateLayout, "Go time layout of the label date part")
	flags.StringVar(&c.TimeLayout, "time-layout", c.TimeLayout, "Go time layout of the label time part")
}

// AddOutputFlags adds common output flags to a command.
func (c *Config) AddOutputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&c.OutputDir, "output-dir", "o", c.OutputDir, "Output directory")
	flags.StringVarP(&c.OutputFormat, "format", "f", c.OutputFormat, "Archive format (parquet, jsonl, csv, tsv)")
	flags.StringVar(&c.OutputName, "output", c.OutputName, "Output filename (auto-generated if empty)")
}

// AddServerFlags adds HTTP server flags to a command.
func (c *Config) AddServerFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&c.Port, "port", "p", c.Port, "HTTP server port")
}

// AddConfigFlag adds the persistent --config flag to the root command.
func (c *Config) AddConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&c.ConfigFile, ConfigFileFlag, c.ConfigFile, "Config file (yaml, toml or json)")
}

// Load overlays the config file and INSPECTOR_* environment variables on
// every flag of cmd that was not set on the command line, then applies
// defaults and validates.
func (c *Config) Load(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if c.ConfigFile != "" {
		v.SetConfigFile(c.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var setErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if setErr != nil || f.Changed || f.Name == ConfigFileFlag || !v.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, v.GetString(f.Name)); err != nil {
			setErr = fmt.Errorf("invalid value for %s: %w", f.Name, err)
		}
	})
	if setErr != nil {
		return setErr
	}

	c.ApplyDefaults()
	return c.Validate()
}
