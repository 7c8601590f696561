// Package config holds operational defaults for the DCP toolkit: verifier
// thresholds, report output locations, and default KDM formulation choices.
// It never configures the content of any one DCP — that always comes from
// the directory or objects the caller passes to the library.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds runtime defaults for tools built on top of this library.
type Config struct {
	LogLevel string `json:"log_level"`

	// Picture frame size ceilings, bits per second. Package verify does not
	// read them; its "peak" and "nearly invalid" frame size checks use its
	// own fixed constants.
	PeakBitsPerSecond    int64 `json:"peak_bits_per_second"`
	WarnBitsPerSecond    int64 `json:"warn_bits_per_second"`

	// ReportsDir names a report output directory. The PDF/XLSX exporters
	// do not read it; they write to the path their caller passes.
	ReportsDir string `json:"reports_dir"`

	// DefaultKDMFormulation names a KDM formulation. kdm.Encrypt takes no
	// formulation and does not read it.
	DefaultKDMFormulation string `json:"default_kdm_formulation"`

	// StrictBv21 promotes every bv21-error note produced by the verifier to
	// a hard failure in callers that treat the verifier as a gate.
	StrictBv21 bool `json:"strict_bv21"`

	// MaxTimedTextBytes, MaxSubtitleFontBytes and MaxClosedCaptionBytes are
	// timed-text, font and closed-caption size caps. Neither the loader nor
	// package verify reads them; the verifier's size checks use its own
	// fixed constants.
	MaxTimedTextBytes      int64 `json:"max_timed_text_bytes"`
	MaxSubtitleFontBytes   int64 `json:"max_subtitle_font_bytes"`
	MaxClosedCaptionBytes  int64 `json:"max_closed_caption_bytes"`
}

// Load builds a Config from environment variables, falling back to the
// library's default verification and size-cap parameters.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:              getEnv("DCP_LOG_LEVEL", "info"),
		PeakBitsPerSecond:     getEnvAsInt64("DCP_PEAK_BPS", 250_000_000),
		WarnBitsPerSecond:     getEnvAsInt64("DCP_WARN_BPS", 230_000_000),
		ReportsDir:            getEnv("DCP_REPORTS_DIR", "./reports"),
		DefaultKDMFormulation: getEnv("DCP_KDM_FORMULATION", "MODIFIED_TRANSITIONAL_1"),
		StrictBv21:            getEnvAsBool("DCP_STRICT_BV21", false),
		MaxTimedTextBytes:     getEnvAsInt64("DCP_MAX_TIMED_TEXT_BYTES", 115*1024*1024),
		MaxSubtitleFontBytes:  getEnvAsInt64("DCP_MAX_FONT_BYTES", 10*1024*1024),
		MaxClosedCaptionBytes: getEnvAsInt64("DCP_MAX_CC_BYTES", 256*1024),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func validateConfig(cfg *Config) error {
	var problems []string

	if cfg.PeakBitsPerSecond <= 0 {
		problems = append(problems, "DCP_PEAK_BPS must be positive")
	}
	if cfg.WarnBitsPerSecond <= 0 || cfg.WarnBitsPerSecond > cfg.PeakBitsPerSecond {
		problems = append(problems, "DCP_WARN_BPS must be positive and not exceed DCP_PEAK_BPS")
	}
	if cfg.ReportsDir == "" {
		problems = append(problems, "DCP_REPORTS_DIR is required")
	}
	if strings.TrimSpace(cfg.DefaultKDMFormulation) == "" {
		problems = append(problems, "DCP_KDM_FORMULATION is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}
