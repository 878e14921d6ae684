package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-checkup/checkup/pkg/shared/files"
)

const (
	defaultJobs      = 4
	defaultCacheSize = 64
	maxJobs          = 64
	maxTimeout       = 1 * time.Hour
)

// ValidateConfig checks if the global configurations have valid values
// and fills in defaults for everything left unset.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateLogLevel(cfg.Logger.Level); err != nil {
		return fmt.Errorf("YAML global config: logger directive is invalid: %w", err)
	}
	if err := ValidateCheckupConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: checkup directive is invalid: %w", err)
	}
	if err := ValidateCheckerConfig(&cfg.Checker); err != nil {
		return fmt.Errorf("YAML global config: checker directive is invalid: %w", err)
	}
	if err := ValidateToolsConfig(&cfg.Tools); err != nil {
		return fmt.Errorf("YAML global config: tools directive is invalid: %w", err)
	}
	return nil
}

// ValidateCheckupConfig checks the application-wide settings.
func ValidateCheckupConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("checkup configuration is nil")
	}
	updateMode(cfg)
	return nil
}

// ValidateCheckerConfig checks if the checker configurations have valid values.
func ValidateCheckerConfig(checkerConfig *Checker) error {
	if checkerConfig == nil {
		return fmt.Errorf("checker configuration is nil")
	}

	checkerConfig.Jobs = SetThen(checkerConfig.Jobs, defaultJobs)
	if checkerConfig.Jobs < 1 || checkerConfig.Jobs > maxJobs {
		return fmt.Errorf("jobs must be between 1 and %d: %d", maxJobs, checkerConfig.Jobs)
	}

	checkerConfig.CacheSize = SetThen(checkerConfig.CacheSize, defaultCacheSize)
	if checkerConfig.CacheSize < 1 {
		return fmt.Errorf("cache_size must be a positive integer: %d", checkerConfig.CacheSize)
	}

	if checkerConfig.Timeout != "" {
		d, err := time.ParseDuration(checkerConfig.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", checkerConfig.Timeout, err)
		}
		if err := validateDuration(d, "timeout", maxTimeout); err != nil {
			return err
		}
		checkerConfig.TimeoutDuration = d
	}

	return nil
}

// ValidateToolsConfig checks if the tools configurations have valid values.
func ValidateToolsConfig(toolsConfig *Tools) error {
	if toolsConfig == nil {
		return fmt.Errorf("tools configuration is nil")
	}

	if toolsConfig.GoBinary != "" {
		expanded, err := files.ExpandPath(toolsConfig.GoBinary)
		if err != nil {
			return fmt.Errorf("failed to expand go_binary path %q: %w", toolsConfig.GoBinary, err)
		}
		toolsConfig.GoBinary = expanded
	}

	for i, dir := range toolsConfig.SearchPaths {
		expanded, err := files.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("failed to expand search path %q: %w", dir, err)
		}
		toolsConfig.SearchPaths[i] = expanded
	}

	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// updateMode updates the Mode field in the Checkup configuration based on environment variables.
func updateMode(cfg *Config) {
	if os.Getenv("CHECKUP_MODE") == "CI" || os.Getenv("CI") == "true" {
		cfg.Checkup.Mode = "CI"
		return
	}

	if envVarValue := os.Getenv("CHECKUP_MODE"); envVarValue != "" {
		cfg.Checkup.Mode = envVarValue
		return
	}

	if cfg.Checkup.Mode == "" {
		cfg.Checkup.Mode = "user"
	}
}

// KnownLogLevels lists the accepted logger level names.
var KnownLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// ValidateLogLevel checks that a configured log level is one of the known names.
func ValidateLogLevel(level string) error {
	if level == "" {
		return nil
	}
	for _, known := range KnownLogLevels {
		if strings.EqualFold(level, known) {
			return nil
		}
	}
	return fmt.Errorf("unknown log level %q, expected one of: %s", level, strings.Join(KnownLogLevels, ", "))
}
