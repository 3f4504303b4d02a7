// Package config holds glance's settings.
//
// Settings are resolved in order: built-in defaults, then the config file
// (TOML or YAML), then GLANCE_* environment variables. The result is
// validated before it is handed to the engine.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dshills/glance/internal/config/loader"
	"github.com/dshills/glance/internal/config/watcher"
	"github.com/dshills/glance/internal/logging"
	"github.com/dshills/glance/internal/renderer/core"
	"github.com/dshills/glance/internal/renderer/highlight"
	"github.com/dshills/glance/internal/renderer/raster"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "GLANCE_"

// Config is the complete configuration.
type Config struct {
	Minimap Minimap `toml:"minimap" yaml:"minimap"`
	Theme   string  `toml:"theme" yaml:"theme"`
	Logging Logging `toml:"logging" yaml:"logging"`
}

// Minimap configures rendering.
type Minimap struct {
	// PixelsPerLine is the raster height of one document line, 1 to 4.
	PixelsPerLine int `toml:"pixels_per_line" yaml:"pixels_per_line"`

	// Width is the raster width in pixels.
	Width int `toml:"width" yaml:"width"`

	// Clean selects the approximate weighting tables.
	Clean bool `toml:"clean" yaml:"clean"`

	// MinSeverity is the lowest diagnostic severity drawn wide.
	MinSeverity string `toml:"min_severity" yaml:"min_severity"`

	// Engine selects the rasterizer: "current" or "legacy".
	Engine string `toml:"engine" yaml:"engine"`

	// HideOriginalScrollBar reports that the host hides its own scrollbar.
	HideOriginalScrollBar bool `toml:"hide_original_scrollbar" yaml:"hide_original_scrollbar"`

	// MarkupMinGap is the pixel gap used to widen severe diagnostics.
	MarkupMinGap int `toml:"markup_min_gap" yaml:"markup_min_gap"`

	// SlackLines is how many lines of spare raster height to allocate.
	SlackLines int `toml:"slack_lines" yaml:"slack_lines"`
}

// Logging configures the logger.
type Logging struct {
	Level      string `toml:"level" yaml:"level"`
	Timestamps bool   `toml:"timestamps" yaml:"timestamps"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Minimap: Minimap{
			PixelsPerLine: 2,
			Width:         110,
			Clean:         true,
			MinSeverity:   "warning",
			Engine:        raster.EngineCurrent,
			MarkupMinGap:  15,
			SlackLines:    100,
		},
		Theme: "dark",
		Logging: Logging{
			Level: "info",
		},
	}
}

// Severity returns the parsed minimum severity. Invalid names give
// SeverityWarning; Validate reports them.
func (m Minimap) Severity() core.Severity {
	s, err := core.ParseSeverity(m.MinSeverity)
	if err != nil {
		return core.SeverityWarning
	}
	return s
}

// Slack returns the spare raster height in pixels.
func (m Minimap) Slack() int {
	return m.SlackLines * m.PixelsPerLine
}

// Validate checks every setting and joins all failures.
func (c Config) Validate() error {
	var errs []error
	m := c.Minimap
	if m.PixelsPerLine < 1 || m.PixelsPerLine > 4 {
		errs = append(errs, &ValidationError{Field: "minimap.pixels_per_line", Message: "must be between 1 and 4", Value: m.PixelsPerLine})
	}
	if m.Width < 1 {
		errs = append(errs, &ValidationError{Field: "minimap.width", Message: "must be positive", Value: m.Width})
	}
	if _, err := core.ParseSeverity(m.MinSeverity); err != nil {
		errs = append(errs, &ValidationError{Field: "minimap.min_severity", Message: "unknown severity", Value: m.MinSeverity})
	}
	if _, err := raster.New(m.Engine); err != nil {
		errs = append(errs, &ValidationError{Field: "minimap.engine", Message: "must be current or legacy", Value: m.Engine})
	}
	if m.MarkupMinGap < 0 {
		errs = append(errs, &ValidationError{Field: "minimap.markup_min_gap", Message: "must not be negative", Value: m.MarkupMinGap})
	}
	if m.SlackLines < 0 {
		errs = append(errs, &ValidationError{Field: "minimap.slack_lines", Message: "must not be negative", Value: m.SlackLines})
	}
	if _, err := highlight.LookupTheme(c.Theme); err != nil {
		errs = append(errs, &ValidationError{Field: "theme", Message: "unknown theme", Value: c.Theme})
	}
	if !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, &ValidationError{Field: "logging.level", Message: "unknown level", Value: c.Logging.Level})
	}
	return errors.Join(errs...)
}

// DefaultPath returns the user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "glance", "config.toml")
}

// Load resolves the configuration from defaults, the file at path and the
// process environment. An empty path skips the file. A missing file is an
// error wrapping ErrFileNotFound.
func Load(path string) (Config, error) {
	return load(loader.OSFS{}, path, loader.NewEnvLoader(EnvPrefix).Load())
}

func load(fsys loader.FileSystem, path string, env map[string]string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loader.LoadFile(fsys, path, &cfg); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv applies overrides keyed as returned by loader.EnvLoader.
// Unknown keys are ignored.
func (c *Config) ApplyEnv(env map[string]string) error {
	var errs []error
	setInt := func(key string, dst *int) {
		if v, ok := env[key]; ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, &ValidationError{Field: EnvPrefix + strings.ToUpper(key), Message: "not an integer", Value: v})
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := env[key]; ok {
			b, err := loader.ParseBool(v)
			if err != nil {
				errs = append(errs, &ValidationError{Field: EnvPrefix + strings.ToUpper(key), Message: "not a boolean", Value: v})
				return
			}
			*dst = b
		}
	}
	setString := func(key string, dst *string) {
		if v, ok := env[key]; ok {
			*dst = strings.TrimSpace(v)
		}
	}

	setInt("pixels_per_line", &c.Minimap.PixelsPerLine)
	setInt("width", &c.Minimap.Width)
	setBool("clean", &c.Minimap.Clean)
	setString("engine", &c.Minimap.Engine)
	setString("min_severity", &c.Minimap.MinSeverity)
	setBool("hide_scrollbar", &c.Minimap.HideOriginalScrollBar)
	setInt("markup_min_gap", &c.Minimap.MarkupMinGap)
	setInt("slack_lines", &c.Minimap.SlackLines)
	setString("theme", &c.Theme)
	setString("log_level", &c.Logging.Level)
	return errors.Join(errs...)
}

// Watch reloads the file at path whenever it changes and passes the result
// to fn. Invalid or unreadable configs are passed as errors; the caller
// keeps its previous config. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, fn func(Config, error), opts ...watcher.Option) error {
	w, err := watcher.New(path, opts...)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			return
		}
		fn(Load(ev.Path))
	})
	return w.Run(ctx)
}
