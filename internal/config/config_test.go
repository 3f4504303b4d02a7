package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/glance/internal/config/watcher"
	"github.com/dshills/glance/internal/logging"
	"github.com/dshills/glance/internal/renderer/core"
)

type mapFS map[string]string

func (m mapFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(s), nil
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Minimap.PixelsPerLine)
	assert.Equal(t, 110, cfg.Minimap.Width)
	assert.Equal(t, 200, cfg.Minimap.Slack())
	assert.Equal(t, core.SeverityWarning, cfg.Minimap.Severity())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"ppl too small", func(c *Config) { c.Minimap.PixelsPerLine = 0 }, "minimap.pixels_per_line"},
		{"ppl too large", func(c *Config) { c.Minimap.PixelsPerLine = 5 }, "minimap.pixels_per_line"},
		{"width", func(c *Config) { c.Minimap.Width = 0 }, "minimap.width"},
		{"severity", func(c *Config) { c.Minimap.MinSeverity = "fatal" }, "minimap.min_severity"},
		{"engine", func(c *Config) { c.Minimap.Engine = "turbo" }, "minimap.engine"},
		{"gap", func(c *Config) { c.Minimap.MarkupMinGap = -1 }, "minimap.markup_min_gap"},
		{"slack", func(c *Config) { c.Minimap.SlackLines = -1 }, "minimap.slack_lines"},
		{"theme", func(c *Config) { c.Theme = "no-such-theme" }, "theme"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Minimap.Width = -1
	cfg.Minimap.PixelsPerLine = 9
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minimap.width")
	assert.Contains(t, err.Error(), "minimap.pixels_per_line")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(map[string]string{
		"pixels_per_line": "3",
		"width":           " 80 ",
		"clean":           "off",
		"engine":          "legacy",
		"theme":           "monokai",
		"log_level":       "debug",
		"min_severity":    "error",
		"hide_scrollbar":  "yes",
		"unrelated":       "x",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Minimap.PixelsPerLine)
	assert.Equal(t, 80, cfg.Minimap.Width)
	assert.False(t, cfg.Minimap.Clean)
	assert.Equal(t, "legacy", cfg.Minimap.Engine)
	assert.Equal(t, "monokai", cfg.Theme)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, core.SeverityError, cfg.Minimap.Severity())
	assert.True(t, cfg.Minimap.HideOriginalScrollBar)
}

func TestApplyEnvBadValues(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(map[string]string{"width": "wide", "clean": "maybe"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "GLANCE_WIDTH")
	assert.Contains(t, err.Error(), "GLANCE_CLEAN")
	assert.Equal(t, 110, cfg.Minimap.Width)
}

func TestLoadLayers(t *testing.T) {
	fsys := mapFS{
		"/etc/glance.toml": "theme = \"dracula\"\n[minimap]\nwidth = 64\nengine = \"legacy\"\n",
		"/etc/glance.yaml": "minimap:\n  pixels_per_line: 1\n",
	}

	cfg, err := load(fsys, "/etc/glance.toml", map[string]string{"width": "90"})
	require.NoError(t, err)
	assert.Equal(t, "dracula", cfg.Theme)
	assert.Equal(t, "legacy", cfg.Minimap.Engine)
	assert.Equal(t, 90, cfg.Minimap.Width, "environment overrides the file")
	assert.Equal(t, 2, cfg.Minimap.PixelsPerLine, "unset keys keep defaults")

	cfg, err = load(fsys, "/etc/glance.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Minimap.PixelsPerLine)
	assert.True(t, cfg.Minimap.Clean)
}

func TestLoadErrors(t *testing.T) {
	fsys := mapFS{
		"/bad.toml":     "[minimap]\npixels_per_line = 7\n",
		"/unknown.toml": "[minimap]\nwidht = 7\n",
	}

	_, err := load(fsys, "/missing.toml", nil)
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = load(fsys, "/bad.toml", nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = load(fsys, "/unknown.toml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "widht")

	cfg, err := load(fsys, "", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("theme: light\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Theme)
}

func TestWatchDeliversReloadedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"dark\"\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg Config, err error) {
			if err == nil {
				got <- cfg
			}
		}, watcher.WithDebounce(20*time.Millisecond), watcher.WithLogger(logging.Discard()))
	}()

	// The watch is registered asynchronously; keep rewriting until seen.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-got:
			assert.Equal(t, "light", cfg.Theme)
			cancel()
			require.NoError(t, <-done)
			return
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("theme = \"light\"\n"), 0o644))
		case <-deadline:
			t.Fatal("no reload delivered")
		}
	}
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath()
	if p != "" {
		assert.Equal(t, "config.toml", filepath.Base(p))
	}
}
