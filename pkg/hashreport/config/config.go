package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// WorkersConfig bounds the adaptive worker pool.
// Zero values mean "derive from detected system resources".
type WorkersConfig struct {
	Initial int `mapstructure:"initial"`
	Min     int `mapstructure:"min"`
	Max     int `mapstructure:"max"`
}

// MemoryConfig configures the resource monitor.
type MemoryConfig struct {
	// Ceiling is the process memory budget (size string, e.g. "512MiB").
	Ceiling string `mapstructure:"ceiling"`

	// Threshold is the fraction of the ceiling at which worker reduction
	// begins.
	Threshold float64 `mapstructure:"threshold"`

	// Interval is how often memory usage is sampled.
	Interval time.Duration `mapstructure:"interval"`
}

// Config represents the application configuration.
// It is constructed once at startup and passed explicitly to every
// component; there is no global configuration state.
type Config struct {
	Algorithm     string        `mapstructure:"algorithm"`
	Format        string        `mapstructure:"format"`
	ChunkSize     int           `mapstructure:"chunk_size"`
	MmapThreshold string        `mapstructure:"mmap_threshold"`
	ExcludePaths  []string      `mapstructure:"exclude_paths"`
	Workers       WorkersConfig `mapstructure:"workers"`
	Memory        MemoryConfig  `mapstructure:"memory"`
	Logging       LoggingConfig `mapstructure:"logging"`
}

// ErrInvalidThreshold indicates a memory threshold outside (0, 1].
var ErrInvalidThreshold = errors.New("memory threshold must be in (0, 1]")

// ErrInvalidWorkerBounds indicates min/max worker values that cannot form
// a valid range.
var ErrInvalidWorkerBounds = errors.New("invalid worker bounds")

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/hashreport/config.yaml
//   - $HOME/.config/hashreport/config.yaml
//
// Environment variables are prefixed with HASHREPORT_
// (e.g. HASHREPORT_ALGORITHM).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "hashreport"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "hashreport"))

	v.SetEnvPrefix("HASHREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SetDefaults registers default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("algorithm", DefaultAlgorithm)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("mmap_threshold", DefaultMmapThreshold)
	v.SetDefault("exclude_paths", DefaultExcludePaths)

	v.SetDefault("workers.initial", 0)
	v.SetDefault("workers.min", DefaultMinWorkers)
	v.SetDefault("workers.max", 0)

	v.SetDefault("memory.ceiling", DefaultMemoryCeiling)
	v.SetDefault("memory.threshold", DefaultMemoryThreshold)
	v.SetDefault("memory.interval", DefaultSampleInterval)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // empty means use DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"scanner": "info",
		"pool":    "info",
		"monitor": "warn",
		"report":  "info",
	})
}

// Validate checks configuration values that cannot be corrected silently.
func (c *Config) Validate() error {
	if c.Memory.Threshold <= 0 || c.Memory.Threshold > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, c.Memory.Threshold)
	}

	if c.Workers.Min < 0 || c.Workers.Max < 0 {
		return fmt.Errorf("%w: min=%d max=%d", ErrInvalidWorkerBounds, c.Workers.Min, c.Workers.Max)
	}
	if c.Workers.Max > 0 && c.Workers.Min > c.Workers.Max {
		return fmt.Errorf("%w: min=%d exceeds max=%d", ErrInvalidWorkerBounds, c.Workers.Min, c.Workers.Max)
	}

	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}

	return nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "hashreport"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "hashreport"), nil
}

// StateDir returns $XDG_STATE_HOME/hashreport/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "hashreport")
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
