package loader

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `toml:"name" yaml:"name"`
	Inner struct {
		Count int `toml:"count" yaml:"count"`
	} `toml:"inner" yaml:"inner"`
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.toml", FormatTOML, false},
		{"a.TOML", FormatTOML, false},
		{"dir/a.yaml", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"a.json", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeTOML(t *testing.T) {
	var s sample
	require.NoError(t, Decode(FormatTOML, "x", []byte("name = \"a\"\n[inner]\ncount = 3\n"), &s))
	assert.Equal(t, "a", s.Name)
	assert.Equal(t, 3, s.Inner.Count)

	err := Decode(FormatTOML, "x.toml", []byte("name = \"a\"\nbogus = 1\n"), &s)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "x.toml", pe.Path)
	assert.Contains(t, pe.Message, "bogus")
	assert.Equal(t, 2, pe.Line)

	err = Decode(FormatTOML, "x.toml", []byte("name = \n"), &s)
	require.ErrorAs(t, err, &pe)
	assert.Positive(t, pe.Line)
}

func TestDecodeYAML(t *testing.T) {
	var s sample
	require.NoError(t, Decode(FormatYAML, "x", []byte("name: b\ninner:\n  count: 4\n"), &s))
	assert.Equal(t, "b", s.Name)
	assert.Equal(t, 4, s.Inner.Count)

	require.NoError(t, Decode(FormatYAML, "x", nil, &s), "empty documents are allowed")

	var pe *ParseError
	assert.ErrorAs(t, Decode(FormatYAML, "x", []byte("bogus: 1\n"), &s), &pe)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"f\"\n"), 0o644))

	var s sample
	require.NoError(t, LoadFile(OSFS{}, path, &s))
	assert.Equal(t, "f", s.Name)

	err := LoadFile(OSFS{}, filepath.Join(dir, "missing.toml"), &s)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestEnvLoader(t *testing.T) {
	l := NewEnvLoaderFrom("GLANCE_", []string{
		"GLANCE_PIXELS_PER_LINE=3",
		"GLANCE_THEME=",
		"GLANCE_=x",
		"OTHER=1",
		"malformed",
	})
	assert.Equal(t, map[string]string{"pixels_per_line": "3", "theme": ""}, l.Load())
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "1", "yes", "ON", " t "} {
		b, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.True(t, b, s)
	}
	for _, s := range []string{"false", "0", "no", "off"} {
		b, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.False(t, b, s)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}
