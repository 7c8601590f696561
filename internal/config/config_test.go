package config

import (
	"os"
	"testing"
)

func setTestEnv(t *testing.T, envVars map[string]string) func() {
	t.Helper()
	originalValues := make(map[string]string)

	for key, value := range envVars {
		originalValues[key] = os.Getenv(key)
		os.Setenv(key, value)
	}

	return func() {
		for key := range envVars {
			if original, exists := originalValues[key]; exists && original != "" {
				os.Setenv(key, original)
			} else {
				os.Unsetenv(key)
			}
		}
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{name: "returns default when env not set", key: "TEST_UNSET_VAR", defaultValue: "default_value", expected: "default_value"},
		{name: "returns env value when set", key: "TEST_SET_VAR", defaultValue: "default_value", envValue: "env_value", expected: "env_value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				cleanup := setTestEnv(t, map[string]string{tt.key: tt.envValue})
				defer cleanup()
			} else {
				os.Unsetenv(tt.key)
			}

			result := getEnv(tt.key, tt.defaultValue)
			if result != tt.expected {
				t.Errorf("getEnv(%s, %s) = %s; want %s", tt.key, tt.defaultValue, result, tt.expected)
			}
		})
	}
}

func TestGetEnvAsInt64(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int64
		envValue     string
		expected     int64
	}{
		{name: "returns default when env not set", key: "TEST_INT_UNSET", defaultValue: 100, expected: 100},
		{name: "returns parsed int when valid", key: "TEST_INT_VALID", defaultValue: 100, envValue: "42", expected: 42},
		{name: "returns default when invalid int", key: "TEST_INT_INVALID", defaultValue: 100, envValue: "not_a_number", expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				cleanup := setTestEnv(t, map[string]string{tt.key: tt.envValue})
				defer cleanup()
			} else {
				os.Unsetenv(tt.key)
			}

			result := getEnvAsInt64(tt.key, tt.defaultValue)
			if result != tt.expected {
				t.Errorf("getEnvAsInt64(%s, %d) = %d; want %d", tt.key, tt.defaultValue, result, tt.expected)
			}
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue bool
		envValue     string
		expected     bool
	}{
		{name: "returns default when env not set", key: "TEST_BOOL_UNSET", defaultValue: true, expected: true},
		{name: "returns true for 'true'", key: "TEST_BOOL_TRUE", envValue: "true", expected: true},
		{name: "returns false for 'false'", key: "TEST_BOOL_FALSE", defaultValue: true, envValue: "false", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				cleanup := setTestEnv(t, map[string]string{tt.key: tt.envValue})
				defer cleanup()
			} else {
				os.Unsetenv(tt.key)
			}

			result := getEnvAsBool(tt.key, tt.defaultValue)
			if result != tt.expected {
				t.Errorf("getEnvAsBool(%s, %v) = %v; want %v", tt.key, tt.defaultValue, result, tt.expected)
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		LogLevel:              "info",
		PeakBitsPerSecond:     250_000_000,
		WarnBitsPerSecond:     230_000_000,
		ReportsDir:            "/tmp/reports",
		DefaultKDMFormulation: "MODIFIED_TRANSITIONAL_1",
		MaxTimedTextBytes:     115 * 1024 * 1024,
		MaxSubtitleFontBytes:  10 * 1024 * 1024,
		MaxClosedCaptionBytes: 256 * 1024,
	}
}

func TestValidateConfig_BitsPerSecond(t *testing.T) {
	cfg := validConfig()
	cfg.PeakBitsPerSecond = 0
	if err := validateConfig(cfg); err == nil {
		t.Error("expected error for zero peak bps, got nil")
	}

	cfg = validConfig()
	cfg.WarnBitsPerSecond = cfg.PeakBitsPerSecond + 1
	if err := validateConfig(cfg); err == nil {
		t.Error("expected error when warn bps exceeds peak bps, got nil")
	}

	cfg = validConfig()
	if err := validateConfig(cfg); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidateConfig_RequiredStrings(t *testing.T) {
	cfg := validConfig()
	cfg.ReportsDir = ""
	if err := validateConfig(cfg); err == nil {
		t.Error("expected error for empty reports dir, got nil")
	}

	cfg = validConfig()
	cfg.DefaultKDMFormulation = "  "
	if err := validateConfig(cfg); err == nil {
		t.Error("expected error for blank KDM formulation, got nil")
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"DCP_LOG_LEVEL", "DCP_PEAK_BPS", "DCP_WARN_BPS", "DCP_REPORTS_DIR",
		"DCP_KDM_FORMULATION", "DCP_STRICT_BV21",
	} {
		os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.DefaultKDMFormulation != "MODIFIED_TRANSITIONAL_1" {
		t.Errorf("unexpected default KDM formulation: %s", cfg.DefaultKDMFormulation)
	}
}
