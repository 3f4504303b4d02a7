package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/glance/internal/config"
	"github.com/dshills/glance/internal/renderer/document"
)

const goSource = "package main\n\nfunc main() {}\n"

func testInfo() BuildInfo {
	return BuildInfo{Version: "test-version", Commit: "test-commit", Date: "test-date"}
}

// execute runs the root command with a throwaway config file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "glance.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[logging]\nlevel = \"error\"\n"), 0o644))

	cmd := NewRootCommand(testInfo())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", cfgPath))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand(testInfo())
	assert.Equal(t, "glance", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	for _, name := range []string{"render", "preview", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRenderCommandFlags(t *testing.T) {
	cmd := NewRootCommand(testInfo())
	render, _, err := cmd.Find([]string{"render"})
	require.NoError(t, err)
	for _, name := range []string{"output", "ppl", "width", "clean", "engine", "scale", "theme", "fold", "jobs"} {
		assert.NotNil(t, render.Flags().Lookup(name), name)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "test-version")
	assert.Contains(t, out, "test-commit")
}

func TestRenderWritesPNG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(src, []byte(goSource), 0o644))
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "render", "-o", outDir, "--width", "30", src)
	require.NoError(t, err)

	want := filepath.Join(outDir, "main.go.minimap.png")
	assert.Equal(t, want, strings.TrimSpace(out))

	img, err := imaging.Open(want)
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, (4+1)*2, img.Bounds().Dy())
}

func TestRenderScaleAndEngine(t *testing.T) {
	dir := t.TempDir()
	files := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.py")}
	require.NoError(t, os.WriteFile(files[0], []byte("one\ntwo\n"), 0o644))
	require.NoError(t, os.WriteFile(files[1], []byte("import os\n"), 0o644))

	args := append([]string{"render", "--width", "20", "--ppl", "1", "--scale", "2", "--engine", "legacy", "-j", "2"}, files...)
	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(out), 2)

	img, err := imaging.Open(files[0] + outputSuffix)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, (3+1)*1*2, img.Bounds().Dy())
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "x.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	_, err := execute(t, "render", "--ppl", "9", src)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = execute(t, "render", "--fold", "nope", src)
	assert.ErrorIs(t, err, ErrInvalidFold)

	_, err = execute(t, "render", "--scale", "0", src)
	assert.Error(t, err)

	_, err = execute(t, "render", filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = execute(t, "render")
	assert.Error(t, err)
}

func TestRenderWithFold(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "long.txt")
	require.NoError(t, os.WriteFile(src, []byte(strings.Repeat("line\n", 10)), 0o644))

	_, err := execute(t, "render", "--width", "20", "--fold", "4:29:{...}", src)
	require.NoError(t, err)

	img, err := imaging.Open(src + outputSuffix)
	require.NoError(t, err)
	assert.Less(t, img.Bounds().Dy(), (11+1)*2)
}

func TestParseFold(t *testing.T) {
	tests := []struct {
		in      string
		want    document.FoldRegion
		wantErr bool
	}{
		{"5:15", document.FoldRegion{Start: 5, End: 15, Collapsed: true, Placeholder: "..."}, false},
		{"5:15:{a:b}", document.FoldRegion{Start: 5, End: 15, Collapsed: true, Placeholder: "{a:b}"}, false},
		{"5:5:", document.FoldRegion{Start: 5, End: 5, Collapsed: true}, false},
		{"5", document.FoldRegion{}, true},
		{"a:5", document.FoldRegion{}, true},
		{"5:b", document.FoldRegion{}, true},
		{"9:5", document.FoldRegion{}, true},
		{"-1:5", document.FoldRegion{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFold(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFold)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("src", "a.go.minimap.png"), outputPath(filepath.Join("src", "a.go"), ""))
	assert.Equal(t, filepath.Join("out", "a.go.minimap.png"), outputPath(filepath.Join("src", "a.go"), "out"))
}
