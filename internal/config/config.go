// Package config handles configuration loading and validation for schemascan.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile is the default configuration file name (without extension).
	DefaultConfigFile = ".schemascan"
	// DefaultConfigType is the default configuration file type.
	DefaultConfigType = "yaml"
	// EnvPrefix prefixes environment variable overrides, e.g. SCHEMASCAN_OUTPUT_FORMAT.
	EnvPrefix = "SCHEMASCAN"
)

// Config holds all configuration for schemascan.
type Config struct {
	// Paths lists the files and directories to scan.
	Paths []string `mapstructure:"paths" yaml:"paths"`
	// Exclude lists gitignore-style globs to skip, on top of .gitignore files.
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	// Analysis tunes extraction and classification.
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	// Output controls how results are reported and stored.
	Output OutputConfig `mapstructure:"output" yaml:"output"`
	// Log controls diagnostic logging.
	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// AnalysisConfig holds extraction settings.
type AnalysisConfig struct {
	// ModelResolver names the table of this/self receivers: "placeholder" or "class".
	ModelResolver string `mapstructure:"model_resolver" yaml:"model_resolver"`
	// ModelPlaceholder is the table name used by the placeholder resolver.
	ModelPlaceholder string `mapstructure:"model_placeholder" yaml:"model_placeholder"`
	// MaxChainDepth bounds the receiver-chain walk.
	MaxChainDepth int `mapstructure:"max_chain_depth" yaml:"max_chain_depth"`
	// KnownViews are view names defined outside the scanned files.
	KnownViews []string `mapstructure:"known_views" yaml:"known_views,omitempty"`
	// UsageFile is a JSON file of observed usage operations.
	UsageFile string `mapstructure:"usage_file" yaml:"usage_file,omitempty"`
	// MaxFileSize is the largest file, in bytes, whose content is read.
	MaxFileSize int64 `mapstructure:"max_file_size" yaml:"max_file_size"`
}

// OutputConfig holds reporting settings.
type OutputConfig struct {
	// Format is "table" or "json".
	Format string `mapstructure:"format" yaml:"format"`
	// Store is the directory of the node store. Empty disables storing.
	Store string `mapstructure:"store" yaml:"store,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level" yaml:"level"`
	// Format is "text" or "json".
	Format string `mapstructure:"format" yaml:"format"`
}

// Load loads configuration from file, environment variables, and defaults.
// An empty configFile searches the current directory for .schemascan.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigFile)
		v.SetConfigType(DefaultConfigType)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("at least one path must be configured")
	}
	for i, p := range c.Paths {
		if p == "" {
			return fmt.Errorf("path %d is empty", i)
		}
	}

	switch c.Analysis.ModelResolver {
	case "", "placeholder", "class":
	default:
		return fmt.Errorf("model_resolver must be 'placeholder' or 'class', got %q", c.Analysis.ModelResolver)
	}
	if c.Analysis.MaxChainDepth < 1 {
		return fmt.Errorf("max_chain_depth must be positive, got %d", c.Analysis.MaxChainDepth)
	}
	if c.Analysis.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must not be negative, got %d", c.Analysis.MaxFileSize)
	}

	if c.Output.Format != "table" && c.Output.Format != "json" {
		return fmt.Errorf("output format must be 'table' or 'json', got %q", c.Output.Format)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log format must be 'text' or 'json', got %q", c.Log.Format)
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("paths", []string{"."})
	v.SetDefault("exclude", []string{
		"**/dist/**",
		"**/build/**",
		"**/*.min.js",
	})

	v.SetDefault("analysis.model_resolver", "placeholder")
	v.SetDefault("analysis.model_placeholder", "model")
	v.SetDefault("analysis.max_chain_depth", 64)
	v.SetDefault("analysis.known_views", []string{})
	v.SetDefault("analysis.usage_file", "")
	v.SetDefault("analysis.max_file_size", 2<<20)

	v.SetDefault("output.format", "table")
	v.SetDefault("output.store", "")

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
}
