package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gravestench/mve/pkg/logging"
)

// Config holds the decoder CLI configuration
type Config struct {
	Input     string
	OutputDir string
	LogLevel  string
	RGBA      bool
	MaxFrames int
}

// LoadOptions holds command-line override options
type LoadOptions struct {
	Input     string
	OutputDir string
	LogLevel  string
	RGBA      bool
	MaxFrames int
}

// LoadWithOverrides loads configuration from the environment, letting
// non-empty options win.
func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	config := &Config{}

	config.Input = getOverrideOrEnv(opts.Input, "MVE_INPUT", "")
	config.OutputDir = getOverrideOrEnv(opts.OutputDir, "MVE_OUTPUT_DIR", ".")
	config.LogLevel = getOverrideOrEnv(opts.LogLevel, "MVE_LOG_LEVEL", "info")
	config.RGBA = opts.RGBA || getBoolWithDefault("MVE_RGBA", false)

	config.MaxFrames = getIntWithDefault("MVE_MAX_FRAMES", 0)
	if opts.MaxFrames > 0 {
		config.MaxFrames = opts.MaxFrames
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("input file is required")
	}

	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}

	if c.MaxFrames < 0 {
		return fmt.Errorf("max frames must not be negative, got %d", c.MaxFrames)
	}

	if !logging.KnownLevel(c.LogLevel) {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	return nil
}

func getOverrideOrEnv(override, key, defaultValue string) string {
	if override != "" {
		return override
	}

	return getEnvWithDefault(key, defaultValue)
}

func getEnvWithDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}

	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := getEnvWithDefault(key, ""); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}

	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if value := getEnvWithDefault(key, ""); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}

	return defaultValue
}
