// Package logging builds the charmbracelet/log logger shared by habitd components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type Config struct {
	Level string
	// File switches output to a JSON log file. Empty writes text to Output.
	File   string
	Output io.Writer
}

// New returns the configured logger and a closer for the log file, if any.
func New(cfg Config) (*log.Logger, func() error, error) {
	if cfg.File == "" {
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		logger := log.NewWithOptions(out, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Level:           ParseLevel(cfg.Level),
			Prefix:          "habitd",
		})
		return logger, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           ParseLevel(cfg.Level),
	})
	logger.SetFormatter(log.JSONFormatter)
	logger = logger.With("pid", os.Getpid())
	return logger, f.Close, nil
}

// Discard returns a logger that writes nowhere.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
