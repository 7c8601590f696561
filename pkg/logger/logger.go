// Package logger builds zerolog loggers used throughout the DCP toolkit.
package logger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// DCPPathKey is the context key for the DCP directory currently being processed.
	DCPPathKey ContextKey = "dcp_path"
	// CPLIDKey is the context key for the composition playlist id currently being processed.
	CPLIDKey ContextKey = "cpl_id"
	// ReelIndexKey is the context key for the reel index currently being processed.
	ReelIndexKey ContextKey = "reel_index"
)

// Config holds logger configuration.
type Config struct {
	Level      string
	Format     string // "json" or "console"
	Output     string // "stdout", "stderr", or file path
	TimeFormat string
}

// New creates a new logger at the given level, JSON to stderr.
func New(level string) zerolog.Logger {
	return NewWithConfig(Config{
		Level:      level,
		Format:     "json",
		Output:     "stderr",
		TimeFormat: time.RFC3339,
	})
}

// NewWithConfig creates a new logger with custom configuration.
func NewWithConfig(cfg Config) zerolog.Logger {
	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	} else {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	var output *os.File
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	default:
		output = os.Stderr
	}

	var log zerolog.Logger
	if cfg.Format == "console" || (strings.ToLower(os.Getenv("GO_ENV")) != "production" && cfg.Format != "json") {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "2006-01-02 15:04:05",
			FormatLevel: func(i interface{}) string {
				return strings.ToUpper(fmt.Sprintf("| %-5s |", i))
			},
			FormatMessage: func(i interface{}) string {
				return fmt.Sprintf("%-50s", i)
			},
			FormatFieldName: func(i interface{}) string {
				return fmt.Sprintf("%s:", i)
			},
		}
		log = zerolog.New(consoleWriter).With().Timestamp().Logger()
	} else {
		log = zerolog.New(output).With().Timestamp().Logger()
	}

	logLevel, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	return log.With().Str("component", "dcp").Logger()
}

// WithDCPPath returns a logger annotated with the DCP directory being processed.
func WithDCPPath(log zerolog.Logger, path string) zerolog.Logger {
	return log.With().Str(string(DCPPathKey), path).Logger()
}

// WithCPLID returns a logger annotated with a composition playlist id.
func WithCPLID(log zerolog.Logger, cplID string) zerolog.Logger {
	return log.With().Str(string(CPLIDKey), cplID).Logger()
}

// WithContext pulls known annotation keys out of ctx onto the logger.
func WithContext(log zerolog.Logger, ctx context.Context) zerolog.Logger {
	out := log
	if v := ctx.Value(DCPPathKey); v != nil {
		out = out.With().Str(string(DCPPathKey), v.(string)).Logger()
	}
	if v := ctx.Value(CPLIDKey); v != nil {
		out = out.With().Str(string(CPLIDKey), v.(string)).Logger()
	}
	return out
}
