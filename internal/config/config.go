package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/harrison/rr/internal/display"
	"github.com/harrison/rr/internal/executor"
	"github.com/harrison/rr/internal/logger"
	"github.com/harrison/rr/internal/matcher"
	"github.com/harrison/rr/internal/walker"
)

// Config represents rr configuration options
type Config struct {
	// ConcurrencyMultiplier scales the worker count: workers = NumCPU × multiplier
	ConcurrencyMultiplier int `yaml:"concurrency_multiplier"`

	// QueueCapacity is the capacity of bounded pipeline channels
	QueueCapacity int `yaml:"queue_capacity"`

	// UnboundedQueues replaces bounded channels with unbounded ones
	UnboundedQueues bool `yaml:"unbounded_queues"`

	// Walker selects the traversal strategy (queue, recursive)
	Walker string `yaml:"walker"`

	// Distribution selects how files reach workers (round-robin, shared)
	Distribution string `yaml:"distribution"`

	// Prefetch opens files during traversal
	Prefetch bool `yaml:"prefetch"`

	// PrefetchLimit caps prefetched handles in flight
	PrefetchLimit int `yaml:"prefetch_limit"`

	// SkipHidden skips dot-files and dot-directories
	SkipHidden bool `yaml:"skip_hidden"`

	// ExcludeDirs lists directory names that are never listed
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// MaxLineBytes is the longest line a worker scans before giving up on a file
	MaxLineBytes int `yaml:"max_line_bytes"`

	// Color controls colorized output (auto, always, never)
	Color string `yaml:"color"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogFile, when set, receives a copy of all diagnostics
	LogFile string `yaml:"log_file"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		ConcurrencyMultiplier: 1,
		QueueCapacity:         executor.DefaultQueueCapacity,
		UnboundedQueues:       false,
		Walker:                walker.StrategyQueue,
		Distribution:          executor.DistributionRoundRobin,
		Prefetch:              false,
		PrefetchLimit:         walker.DefaultPrefetchLimit,
		SkipHidden:            false,
		ExcludeDirs:           []string{},
		MaxLineBytes:          matcher.DefaultMaxLineBytes,
		Color:                 display.ColorAuto,
		LogLevel:              "info",
		LogFile:               "",
	}
}

// yamlConfig mirrors Config with pointer fields so that keys present in the
// file can be told apart from absent ones.
type yamlConfig struct {
	ConcurrencyMultiplier *int     `yaml:"concurrency_multiplier"`
	QueueCapacity         *int     `yaml:"queue_capacity"`
	UnboundedQueues       *bool    `yaml:"unbounded_queues"`
	Walker                *string  `yaml:"walker"`
	Distribution          *string  `yaml:"distribution"`
	Prefetch              *bool    `yaml:"prefetch"`
	PrefetchLimit         *int     `yaml:"prefetch_limit"`
	SkipHidden            *bool    `yaml:"skip_hidden"`
	ExcludeDirs           []string `yaml:"exclude_dirs"`
	MaxLineBytes          *int     `yaml:"max_line_bytes"`
	Color                 *string  `yaml:"color"`
	LogLevel              *string  `yaml:"log_level"`
	LogFile               *string  `yaml:"log_file"`
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply keys present in the file (merging with defaults)
	setInt(&cfg.ConcurrencyMultiplier, y.ConcurrencyMultiplier)
	setInt(&cfg.QueueCapacity, y.QueueCapacity)
	setBool(&cfg.UnboundedQueues, y.UnboundedQueues)
	setString(&cfg.Walker, y.Walker)
	setString(&cfg.Distribution, y.Distribution)
	setBool(&cfg.Prefetch, y.Prefetch)
	setInt(&cfg.PrefetchLimit, y.PrefetchLimit)
	setBool(&cfg.SkipHidden, y.SkipHidden)
	if y.ExcludeDirs != nil {
		cfg.ExcludeDirs = y.ExcludeDirs
	}
	setInt(&cfg.MaxLineBytes, y.MaxLineBytes)
	setString(&cfg.Color, y.Color)
	setString(&cfg.LogLevel, y.LogLevel)
	setString(&cfg.LogFile, y.LogFile)

	return cfg, nil
}

// Flags holds CLI flag values. A nil field means the flag was not given.
type Flags struct {
	ConcurrencyMultiplier *int
	QueueCapacity         *int
	UnboundedQueues       *bool
	Walker                *string
	Distribution          *string
	Prefetch              *bool
	SkipHidden            *bool
	Color                 *string
	LogLevel              *string
	LogFile               *string
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(f Flags) {
	setInt(&c.ConcurrencyMultiplier, f.ConcurrencyMultiplier)
	setInt(&c.QueueCapacity, f.QueueCapacity)
	setBool(&c.UnboundedQueues, f.UnboundedQueues)
	setString(&c.Walker, f.Walker)
	setString(&c.Distribution, f.Distribution)
	setBool(&c.Prefetch, f.Prefetch)
	setBool(&c.SkipHidden, f.SkipHidden)
	setString(&c.Color, f.Color)
	setString(&c.LogLevel, f.LogLevel)
	setString(&c.LogFile, f.LogFile)
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.ConcurrencyMultiplier < 1 {
		return fmt.Errorf("concurrency_multiplier must be >= 1, got %d", c.ConcurrencyMultiplier)
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("queue_capacity must be >= 1, got %d", c.QueueCapacity)
	}
	if c.PrefetchLimit < 1 {
		return fmt.Errorf("prefetch_limit must be >= 1, got %d", c.PrefetchLimit)
	}
	if c.MaxLineBytes < 1 {
		return fmt.Errorf("max_line_bytes must be >= 1, got %d", c.MaxLineBytes)
	}

	switch c.Walker {
	case walker.StrategyQueue, walker.StrategyRecursive:
	default:
		return fmt.Errorf("invalid walker %q, must be one of: queue, recursive", c.Walker)
	}

	switch c.Distribution {
	case executor.DistributionRoundRobin, executor.DistributionShared:
	default:
		return fmt.Errorf("invalid distribution %q, must be one of: round-robin, shared", c.Distribution)
	}

	if !display.ValidColorMode(c.Color) {
		return fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color)
	}

	if !logger.ValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	for _, dir := range c.ExcludeDirs {
		if dir == "" {
			return fmt.Errorf("exclude_dirs cannot contain an empty name")
		}
	}

	return nil
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
