// Package config loads the slidezone application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/VantageDataChat/slidezone"
)

// Config is the application configuration.
type Config struct {
	VideoZone slidezone.ZoneConfig `yaml:"video_zone" json:"video_zone"`
	Preview   PreviewConfig        `yaml:"preview" json:"preview"`
	Paths     PathsConfig          `yaml:"paths" json:"paths"`
	Analysis  AnalysisConfig       `yaml:"analysis" json:"analysis"`
	Log       LogConfig            `yaml:"log" json:"log"`
}

// PreviewConfig controls preview generation.
type PreviewConfig struct {
	Enabled   bool     `yaml:"enabled" json:"enabled"`
	MaxWidth  int      `yaml:"max_width" json:"max_width"`
	MaxHeight int      `yaml:"max_height" json:"max_height"`
	Labels    bool     `yaml:"labels" json:"labels"`
	FontDirs  []string `yaml:"font_dirs" json:"font_dirs"`
}

// PathsConfig holds storage locations.
type PathsConfig struct {
	// Previews is the directory preview PNGs are written to.
	Previews string `yaml:"previews" json:"previews"`
	// PreviewURLPrefix is prepended to a preview's file name to form the
	// reference reported for it.
	PreviewURLPrefix string `yaml:"preview_url_prefix" json:"preview_url_prefix"`
}

// AnalysisConfig bounds the work done per document.
type AnalysisConfig struct {
	// Concurrency is the number of slides processed at once; 0 means GOMAXPROCS.
	Concurrency int `yaml:"concurrency" json:"concurrency"`
	// Timeout is the wall-clock budget per document; 0 disables it. Files
	// give it as a duration string ("30s"); JSON also takes nanoseconds.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		VideoZone: slidezone.DefaultZoneConfig(),
		Preview: PreviewConfig{
			Enabled:   true,
			MaxWidth:  1280,
			MaxHeight: 720,
		},
		Paths: PathsConfig{
			Previews:         "storage/previews",
			PreviewURLPrefix: "storage/previews/",
		},
		Analysis: AnalysisConfig{
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the default configuration overlaid with the file at path
// (skipped when path is empty) and then with SLIDEZONE_* environment
// variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}
	if err := loadEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and returns an error describing all
// problems found, or nil. The video zone is not checked here: any zone
// resolves, so callers report VideoZone.Validate() as a warning instead.
func (c *Config) Validate() error {
	var errs []string

	if c.Preview.Enabled {
		if c.Preview.MaxWidth <= 0 {
			errs = append(errs, "preview.max_width must be positive")
		}
		if c.Preview.MaxHeight <= 0 {
			errs = append(errs, "preview.max_height must be positive")
		}
		if c.Paths.Previews == "" {
			errs = append(errs, "paths.previews is required when previews are enabled")
		}
	}
	if c.Analysis.Concurrency < 0 {
		errs = append(errs, "analysis.concurrency must not be negative")
	}
	if c.Analysis.Timeout < 0 {
		errs = append(errs, "analysis.timeout must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, "log.level: "+err.Error())
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format: unknown format %q", c.Log.Format))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
	}
	return level, nil
}

// PreviewOptions converts the preview settings into renderer options.
func (c *Config) PreviewOptions() *slidezone.PreviewOptions {
	opts := slidezone.DefaultPreviewOptions()
	opts.MaxWidth = c.Preview.MaxWidth
	opts.MaxHeight = c.Preview.MaxHeight
	opts.Labels = c.Preview.Labels
	opts.FontDirs = c.Preview.FontDirs
	return opts
}
