package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	Path         string
	OutputFormat string
	LogLevel     string
	LogFormat    string
	Substance    string
	TimeStep     int
	Segment      int
	Series       bool
	History      bool
	ShowVersion  bool
	ShowHelp     bool
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Define flags with environment variable fallback
	fs.StringVar(&cfg.OutputFormat, "format",
		getEnv("WAQINFO_FORMAT", "text"),
		"Output format: text, json, yaml (env: WAQINFO_FORMAT)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("WAQINFO_LOG_LEVEL", "warn"),
		"Log level: debug, info, warn, error (env: WAQINFO_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("WAQINFO_LOG_FORMAT", "text"),
		"Log format: json, text (env: WAQINFO_LOG_FORMAT)")

	fs.StringVar(&cfg.Substance, "substance", "", "Substance to print values for")
	fs.IntVar(&cfg.TimeStep, "timestep", -1, "Timestep index to print, -1 for none")
	fs.IntVar(&cfg.Segment, "segment", -1, "Segment index, -1 for all segments")
	fs.BoolVar(&cfg.Series, "series", false, "Print the time series of -substance at -segment")
	fs.BoolVar(&cfg.History, "history", getEnvBool("WAQINFO_HISTORY", false),
		"Decode a whole history file (env: WAQINFO_HISTORY)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	fs.Usage = func() {
		printDetailedHelp(fs, stderr)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			cfg.ShowHelp = true
			return cfg, nil
		}
		return nil, err
	}
	if cfg.ShowHelp {
		fs.Usage()
	}
	if fs.NArg() > 0 {
		cfg.Path = fs.Arg(0)
	}
	return cfg, nil
}

type mode string

const (
	modeDiscover mode = "discover"
	modeMetadata mode = "metadata"
	modeTimeStep mode = "timestep"
	modeSeries   mode = "series"
	modeHistory  mode = "history"
)

func (c *CLIConfig) mode() mode {
	if info, err := os.Stat(c.Path); err == nil && info.IsDir() {
		return modeDiscover
	}
	switch {
	case c.History:
		return modeHistory
	case c.Series:
		return modeSeries
	case c.TimeStep >= 0:
		return modeTimeStep
	default:
		return modeMetadata
	}
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.Path == "" {
		return fmt.Errorf("missing output file or directory argument")
	}

	validOutputs := []string{"text", "json", "yaml"}
	if !contains(validOutputs, cfg.OutputFormat) {
		return fmt.Errorf("invalid output format: %s", cfg.OutputFormat)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	switch cfg.mode() {
	case modeTimeStep:
		if cfg.Substance == "" {
			return fmt.Errorf("-timestep needs -substance")
		}
	case modeSeries:
		if cfg.Substance == "" || cfg.Segment < 0 {
			return fmt.Errorf("-series needs -substance and -segment")
		}
	}
	return nil
}

func printDetailedHelp(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - Delwaq output inspector

Usage: %s [options] <file|directory>

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # Show substances, segments and times
  %s model.map

  # Oxygen in every segment at timestep 10, as JSON
  %s -format json -substance OXY -timestep 10 model_map.nc

  # Temperature time series of segment 42
  %s -substance TEMP -segment 42 -series model.map

  # All observation points of a history file as YAML
  %s -history -format yaml model.his

  # List output files of a run
  %s /work/run01

Version: %s
Build: %s
`, appName, appName, appName, appName, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
