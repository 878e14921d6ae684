package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// DefaultConfigFile is the config file name looked up in the working
// directory when no explicit path is given.
const DefaultConfigFile = "checkup.yml"

type Config struct {
	Logger  Logger  `yaml:"logger"`
	Checkup Checkup `yaml:"checkup"`
	Checker Checker `yaml:"checker"`
	Tools   Tools   `yaml:"tools"`
}

type Logger struct {
	Level string `yaml:"level"`
}

// Checkup holds application-wide settings that are not tied to a single
// check category.
type Checkup struct {
	Mode       string `yaml:"mode"`
	HomeFolder string `yaml:"home_folder"`
}

// Checker configures which checks run and how their output is handled.
type Checker struct {
	Jobs            int      `yaml:"jobs"`
	Timeout         string   `yaml:"timeout"`
	StrictUnmatched bool     `yaml:"strict_unmatched"`
	CharColumns     bool     `yaml:"char_columns"`
	CacheSize       int      `yaml:"cache_size"`
	Build           Build    `yaml:"build"`
	Vet             Category `yaml:"vet"`
	Lint            Lint     `yaml:"lint"`

	// TimeoutDuration is the parsed form of Timeout, populated by ValidateConfig.
	TimeoutDuration time.Duration `yaml:"-"`
}

// Category holds the settings shared by every check category.
type Category struct {
	Enabled *bool    `yaml:"enabled"`
	Flags   []string `yaml:"flags"`
}

// Build extends Category with compiler-only settings.
type Build struct {
	Category `yaml:",inline"`
	Tags     string `yaml:"tags"`
}

// Lint extends Category with the configurable lint tool name.
type Lint struct {
	Category `yaml:",inline"`
	Tool     string `yaml:"tool"`
}

// Tools configures how external binaries are located.
type Tools struct {
	GoBinary    string   `yaml:"go_binary"`
	SearchPaths []string `yaml:"search_paths"`
}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the YAML configuration from the given path. An empty
// path falls back to DefaultConfigFile, and a missing default file is
// not an error: the zero configuration is returned instead.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigFile
	}

	if err := LoadYAML(configPath, &config); err != nil {
		if !explicit && os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}

	return config, nil
}

// IsCI reports whether the application runs in CI mode.
func IsCI(cfg *Config) bool {
	return cfg != nil && cfg.Checkup.Mode == "CI"
}

// LintTool returns the configured lint tool binary name.
func LintTool(cfg *Config) string {
	if cfg != nil && cfg.Checker.Lint.Tool != "" {
		return cfg.Checker.Lint.Tool
	}
	return "golint"
}

// GetCheckupHome resolves the checkup home folder. The CHECKUP_HOME
// environment variable wins, then the configured home_folder, then
// ~/.checkup.
func GetCheckupHome(cfg *Config) string {
	if envHome := os.Getenv("CHECKUP_HOME"); envHome != "" {
		return envHome
	}
	if cfg != nil && cfg.Checkup.HomeFolder != "" {
		return cfg.Checkup.HomeFolder
	}
	home, err := os.UserHomeDir()
	if err != nil {
		panic("unable to get home folder")
	}
	return filepath.Join(home, ".checkup")
}

// GetCheckupArtifactsHome returns the folder CI artifacts are written to.
func GetCheckupArtifactsHome(cfg *Config) string {
	return filepath.Join(GetCheckupHome(cfg), "artifacts")
}
