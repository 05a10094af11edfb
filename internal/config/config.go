package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/syou6162/diffchunk/internal/engine"
	"github.com/syou6162/diffchunk/internal/logger"
	"github.com/syou6162/diffchunk/internal/patch"
)

// EnvPrefix prefixes environment overrides, e.g. DIFFCHUNK_DIFF_CONTEXT_LINES
const EnvPrefix = "DIFFCHUNK"

type Config struct {
	Diff  DiffConfig  `mapstructure:"diff" json:"diff"`
	Patch PatchConfig `mapstructure:"patch" json:"patch"`
	Log   LogConfig   `mapstructure:"log" json:"log"`
}

type DiffConfig struct {
	ContextLines     int  `mapstructure:"context_lines" json:"context_lines"`
	ExtraContext     int  `mapstructure:"extra_context" json:"extra_context"`
	IgnoreWhitespace bool `mapstructure:"ignore_whitespace" json:"ignore_whitespace"`
	// Workers bounds parallel diffing; 0 means one per CPU
	Workers int `mapstructure:"workers" json:"workers"`
}

type PatchConfig struct {
	GitPrefixes   bool `mapstructure:"git_prefixes" json:"git_prefixes"`
	CompactCounts bool `mapstructure:"compact_counts" json:"compact_counts"`
}

type LogConfig struct {
	// Level is error, info or debug
	Level   string `mapstructure:"level" json:"level"`
	Verbose bool   `mapstructure:"verbose" json:"verbose"`
}

func Defaults() Config {
	return Config{
		Diff: DiffConfig{
			ContextLines: 3,
			ExtraContext: 1,
		},
		Patch: PatchConfig{GitPrefixes: true},
		Log:   LogConfig{Level: "error"},
	}
}

// DefaultPath is $HOME/.diffchunk/config.yaml
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".diffchunk", "config.yaml")
}

// Load reads configPath, or the default path when it is empty. A missing
// default file yields the defaults; a missing explicit file is an error.
// Environment variables override both.
func Load(configPath string) (Config, error) {
	cfg := Defaults()

	v := viper.New()
	setDefaults(v, cfg)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := configPath
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) || configPath != "" {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so that environment overrides reach
// Unmarshal even without a config file
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("diff.context_lines", cfg.Diff.ContextLines)
	v.SetDefault("diff.extra_context", cfg.Diff.ExtraContext)
	v.SetDefault("diff.ignore_whitespace", cfg.Diff.IgnoreWhitespace)
	v.SetDefault("diff.workers", cfg.Diff.Workers)
	v.SetDefault("patch.git_prefixes", cfg.Patch.GitPrefixes)
	v.SetDefault("patch.compact_counts", cfg.Patch.CompactCounts)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.verbose", cfg.Log.Verbose)
}

// Validate rejects values the engine cannot use
func (c Config) Validate() error {
	if c.Diff.ContextLines < 0 {
		return fmt.Errorf("diff.context_lines must not be negative: %d", c.Diff.ContextLines)
	}
	if c.Diff.ExtraContext < 0 {
		return fmt.Errorf("diff.extra_context must not be negative: %d", c.Diff.ExtraContext)
	}
	if c.Diff.Workers < 0 {
		return fmt.Errorf("diff.workers must not be negative: %d", c.Diff.Workers)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "error", "info", "debug":
	default:
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	return nil
}

func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		ContextLines:     c.Diff.ContextLines,
		ExtraContext:     c.Diff.ExtraContext,
		IgnoreWhitespace: c.Diff.IgnoreWhitespace,
		Workers:          c.Diff.Workers,
	}
}

func (c Config) FormatOptions() patch.FormatOptions {
	return patch.FormatOptions{
		GitPrefixes:   c.Patch.GitPrefixes,
		CompactCounts: c.Patch.CompactCounts,
	}
}

// Logger builds a logger at the configured level. Verbose and the
// DIFFCHUNK_VERBOSE variable both force debug output.
func (c Config) Logger() *logger.Logger {
	level := logger.ParseLevel(c.Log.Level)
	if c.Log.Verbose || os.Getenv(logger.VerboseEnv) != "" {
		level = logger.DebugLevel
	}
	return logger.New(level)
}
