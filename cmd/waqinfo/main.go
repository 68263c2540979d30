// Package main implements waqinfo, a command that prints the structure and
// values of Delwaq output files.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "waqinfo"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("waqinfo failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if cfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	}
	if cfg.ShowHelp {
		return nil
	}
	if err := validateFlags(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat, stderr)
	slog.SetDefault(logger)
	logger.Debug("inspecting output", "path", cfg.Path, "mode", cfg.mode())

	report, err := buildReport(cfg, logger)
	if err != nil {
		return err
	}
	return render(stdout, cfg.OutputFormat, report)
}
