package loader

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvLoader collects prefixed environment variables.
type EnvLoader struct {
	prefix  string
	environ func() []string
}

// NewEnvLoader creates a loader over the process environment.
// The prefix should include the trailing underscore (e.g., "GLANCE_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: prefix, environ: os.Environ}
}

// NewEnvLoaderFrom creates a loader over a fixed KEY=VALUE list.
func NewEnvLoaderFrom(prefix string, environ []string) *EnvLoader {
	return &EnvLoader{prefix: prefix, environ: func() []string { return environ }}
}

// Load returns the prefixed variables keyed by their lower-case name
// without the prefix: GLANCE_PIXELS_PER_LINE becomes "pixels_per_line".
// Empty values are kept.
func (l *EnvLoader) Load() map[string]string {
	out := make(map[string]string)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, l.prefix))
		if key != "" {
			out[key] = value
		}
	}
	return out
}

// ParseBool accepts the strconv spellings plus yes/no and on/off.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return b, nil
}
