// internal/config/config.go
//
// This package handles configuration and the .regen directory structure.
// Every project that uses regen gets a .regen/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// RegenDir is the name of the directory we create in each project
	RegenDir = ".regen"

	// LogLevelEnv overrides logging.level when set.
	LogLevelEnv = "REGEN_LOG_LEVEL"

	defaultExtension = ".cfg"
	defaultDebounce  = 250 * time.Millisecond
	defaultLogLevel  = "info"
)

const defaultProjectConfigYAML = `# regen project configuration
version: 1

# Generator configs are discovered by file extension anywhere in the project tree.
generators:
  extension: .cfg

# The watch dashboard batches file events for this long before regenerating.
watch:
  debounce: 250ms

# debug, info, warn or error. REGEN_LOG_LEVEL overrides this value.
logging:
  level: info
`

// GeneratorsConfig controls how generator configs are discovered.
type GeneratorsConfig struct {
	Extension string `yaml:"extension"`
}

// WatchConfig controls the watch dashboard.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig controls the diagnostic log.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ProjectConfig models .regen/config.yaml.
type ProjectConfig struct {
	Version    int              `yaml:"version"`
	Generators GeneratorsConfig `yaml:"generators"`
	Watch      WatchConfig      `yaml:"watch"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// Config holds the runtime configuration for regen.
type Config struct {
	// ProjectDir is the project tree root. ABSOLUTE descriptors resolve against it.
	ProjectDir string

	// RegenProjectDir is ProjectDir/.regen
	RegenProjectDir string

	Project ProjectConfig
}

// InitRegenDir creates the .regen directory structure in the given project directory.
//
// Structure created:
// .regen/
// ├── config.yaml
// ├── layers/   <- declarative layer plugins
// └── logs/     <- diagnostic log and generation history
func InitRegenDir(projectDir string) error {
	regenDir := filepath.Join(projectDir, RegenDir)
	dirs := []string{
		filepath.Join(regenDir, "layers"),
		filepath.Join(regenDir, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(regenDir, "config.yaml"))
}

// NewConfig creates a new Config instance populated with project settings.
func NewConfig(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	cfg := &Config{
		ProjectDir:      abs,
		RegenProjectDir: filepath.Join(abs, RegenDir),
		Project:         defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if level := strings.TrimSpace(os.Getenv(LogLevelEnv)); level != "" {
		if _, err := parseLevel(level); err != nil {
			return nil, fmt.Errorf("config: %s: %w", LogLevelEnv, err)
		}
		cfg.Project.Logging.Level = strings.ToLower(level)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.RegenProjectDir, "logs")
}

// LayersDir returns the directory holding declarative layer plugins
func (c *Config) LayersDir() string {
	return filepath.Join(c.RegenProjectDir, "layers")
}

// HistoryPath returns the generation history log path
func (c *Config) HistoryPath() string {
	return filepath.Join(c.LogsDir(), "history.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.RegenProjectDir, "config.yaml")
}

// GeneratorExtension returns the file extension of generator configs.
func (c *Config) GeneratorExtension() string {
	return c.Project.Generators.Extension
}

// WatchDebounce returns the watcher debounce window.
func (c *Config) WatchDebounce() time.Duration {
	return c.Project.Watch.Debounce
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Project.Logging.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:    1,
		Generators: GeneratorsConfig{Extension: defaultExtension},
		Watch:      WatchConfig{Debounce: defaultDebounce},
		Logging:    LoggingConfig{Level: defaultLogLevel},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Generators.Extension) == "" {
		pc.Generators.Extension = defaultExtension
	}
	if pc.Watch.Debounce == 0 {
		pc.Watch.Debounce = defaultDebounce
	}
	if strings.TrimSpace(pc.Logging.Level) == "" {
		pc.Logging.Level = defaultLogLevel
	}
}

func (pc *ProjectConfig) normalize() {
	ext := strings.TrimSpace(pc.Generators.Extension)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	pc.Generators.Extension = strings.ToLower(ext)
	pc.Logging.Level = strings.ToLower(strings.TrimSpace(pc.Logging.Level))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Generators.Extension == "." || strings.ContainsAny(pc.Generators.Extension, `/\`) {
		return fmt.Errorf("generators.extension %q is not a file extension", pc.Generators.Extension)
	}
	if pc.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if _, err := parseLevel(pc.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown level %q", value)
	}
	return level, nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
