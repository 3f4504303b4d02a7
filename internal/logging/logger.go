// Package logging provides structured logging for glance on top of
// charmbracelet/log.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Field names used across packages.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldPath      = "path"
	FieldView      = "view"
	FieldHeight    = "height"
	FieldWidth     = "width"
	FieldScale     = "scale"
	FieldEngine    = "engine"
	FieldDuration  = "duration"
)

// Config configures a logger.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string

	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer

	// Prefix is prepended to every message.
	Prefix string

	// Timestamps enables the time column.
	Timestamps bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Output: os.Stderr,
		Prefix: "glance",
	}
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *log.Logger
)

// New creates a logger at level writing to stderr.
func New(level string) *log.Logger {
	cfg := DefaultConfig()
	cfg.Level = level
	return NewWithConfig(cfg)
}

// NewWithConfig creates a logger from cfg.
func NewWithConfig(cfg Config) *log.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	logger := log.NewWithOptions(cfg.Output, log.Options{
		Prefix:          cfg.Prefix,
		ReportTimestamp: cfg.Timestamps,
		Level:           ParseLevel(cfg.Level),
	})
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLevel parses a level name. Unknown names map to info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ValidLevel reports whether s names a level ParseLevel understands.
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// Default returns the package-level logger.
func Default() *log.Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New("info")
	}
	return defaultLogger
}

// SetDefault replaces the package-level logger.
func SetDefault(logger *log.Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// SetLevel changes the level of the package-level logger.
func SetLevel(level string) {
	Default().SetLevel(ParseLevel(level))
}

// WithComponent returns a child logger tagged with the component name.
// A nil logger yields a child of Default.
func WithComponent(logger *log.Logger, component string) *log.Logger {
	if logger == nil {
		logger = Default()
	}
	return logger.With(FieldComponent, component)
}
