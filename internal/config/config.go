package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is the config schema version written by Save.
const SchemaVersion = "1.0.0"

// SupportedVersions is the constraint a loaded config's version must meet.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// Config holds all gofstring configuration.
type Config struct {
	Version string `yaml:"version" validate:"required"`

	// Statement generation
	Generator GeneratorConfig `yaml:"generator"`

	// Batch processing of files
	Apply ApplyConfig `yaml:"apply"`

	// File watcher
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GeneratorConfig configures the generated statement.
type GeneratorConfig struct {
	// Formatting function, e.g. fmt.Sprintf.
	Call string `yaml:"call" validate:"required"`
	// Package that must be imported for Call.
	ImportPath string `yaml:"import_path" validate:"required"`
	// Verb for references whose type cannot be resolved.
	DefaultVerb string `yaml:"default_verb" validate:"required,oneof=%v %s"`
}

// ApplyConfig configures `fstr apply`.
type ApplyConfig struct {
	Concurrency int      `yaml:"concurrency" validate:"min=1,max=64"`
	Ignore      []string `yaml:"ignore"`
}

// WatchConfig configures `fstr watch`.
type WatchConfig struct {
	Debounce   string   `yaml:"debounce" validate:"required"`
	Extensions []string `yaml:"extensions" validate:"min=1,dive,startswith=."`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: SchemaVersion,
		Generator: GeneratorConfig{
			Call:        "fmt.Sprintf",
			ImportPath:  "fmt",
			DefaultVerb: "%v",
		},
		Apply: ApplyConfig{
			Concurrency: 8,
			Ignore: []string{
				".git",
				".fstring",
				"vendor",
				"node_modules",
				"testdata",
			},
		},
		Watch: WatchConfig{
			Debounce:   "300ms",
			Extensions: []string{".go"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
		// Defaults if config file doesn't exist
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindWorkspaceRoot walks up from dir looking for .fstring or go.mod.
// If neither is found, dir itself is returned.
func FindWorkspaceRoot(dir string) string {
	start := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".fstring")); err == nil {
			return dir
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// LoadWorkspace loads <ws>/.env (if present) into the environment and then
// <ws>/.fstring/config.yaml.
func LoadWorkspace(ws string) (*Config, error) {
	envPath := filepath.Join(ws, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}
	return Load(Path(ws))
}

// Path returns the config file location for a workspace.
func Path(ws string) string {
	return filepath.Join(ws, ".fstring", "config.yaml")
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FSTRING_DEBUG"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = on
		}
	}
	if v := os.Getenv("FSTRING_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FSTRING_DEFAULT_VERB"); v != "" {
		c.Generator.DefaultVerb = v
	}
	if v := os.Getenv("FSTRING_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Apply.Concurrency = n
		}
	}
}

var validate = validator.New()

// Validate checks struct constraints and the schema version.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	v, err := semver.NewVersion(c.Version)
	if err != nil {
		return fmt.Errorf("invalid config version %q: %w", c.Version, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("invalid version constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("config version %s is not supported (want %s)", v, SupportedVersions)
	}

	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("invalid watch.debounce %q: %w", c.Watch.Debounce, err)
	}
	return nil
}

// GetDebounce returns the watcher debounce window.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}
