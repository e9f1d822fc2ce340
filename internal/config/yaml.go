// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file specified by path. If path
// is empty, it searches default locations ("snipper.yaml"). If no file is
// found, built-in defaults are used. Environment variable overrides are
// applied after loading; validation happens last so every source is covered.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{
			"snipper.yaml",
			"snipper.yml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides maps SNIPPER_* environment variables onto the config.
// Only values that parse cleanly are applied.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("SNIPPER_FREQUENCY_HZ"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Radio.FrequencyHz = iVal
		}
	}
	if val, ok := os.LookupEnv("SNIPPER_SAMPLE_RATE_HZ"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Radio.SampleRateHz = iVal
		}
	}
	if val, ok := os.LookupEnv("SNIPPER_DEVICE_INDEX"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Radio.DeviceIndex = iVal
		}
	}
	if val, ok := os.LookupEnv("SNIPPER_OUT_DIR"); ok {
		cfg.Capture.OutDir = val
	}
	if val, ok := os.LookupEnv("SNIPPER_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := os.LookupEnv("SNIPPER_VERBOSE"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Verbose = bVal
		}
	}
}
