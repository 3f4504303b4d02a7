package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/glance/internal/config"
	"github.com/dshills/glance/internal/logging"
	"github.com/dshills/glance/internal/minimap"
	"github.com/dshills/glance/internal/renderer/backend"
	"github.com/dshills/glance/internal/renderer/document"
	"github.com/dshills/glance/internal/renderer/highlight"
)

// ErrNothingRendered is returned when a pass produced no image.
var ErrNothingRendered = errors.New("nothing rendered")

// outputSuffix is appended to the input file name.
const outputSuffix = ".minimap.png"

type renderFlags struct {
	outDir string
	ppl    int
	width  int
	clean  bool
	engine string
	scale  float64
	theme  string
	folds  []string
	jobs   int
}

func newRenderCommand(opts *rootOptions) *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Write minimap PNGs",
		Long:  renderLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.outDir, "output", "o", "", "directory for PNG files (default: next to each input)")
	f.IntVar(&flags.ppl, "ppl", 0, "pixel rows per line, 1 to 4")
	f.IntVar(&flags.width, "width", 0, "minimap width in pixels")
	f.BoolVar(&flags.clean, "clean", true, "use flat density weights instead of glyph shapes")
	f.StringVar(&flags.engine, "engine", "", "rasterizer: current or legacy")
	f.Float64Var(&flags.scale, "scale", 1, "device scale factor applied to the output")
	f.StringVar(&flags.theme, "theme", "", "color theme (built-in or chroma style name)")
	f.StringArrayVar(&flags.folds, "fold", nil, "collapse offsets START:END[:PLACEHOLDER] (repeatable)")
	f.IntVarP(&flags.jobs, "jobs", "j", runtime.NumCPU(), "files rendered concurrently")

	return cmd
}

const renderLongDescription = `Render the minimap of each FILE and write it as FILE.minimap.png.

The language is detected from the file name and content and used for
syntax colors. Folds given with --fold are drawn collapsed, showing their
placeholder text.

Examples:
  glance render main.go
  glance render -o out/ --ppl 1 --width 80 *.go
  glance render --engine legacy --scale 2 big.txt
  glance render --fold 120:980:{...} parser.go`

// applyRenderFlags overrides cfg with the flags the user set.
func applyRenderFlags(cmd *cobra.Command, flags *renderFlags, cfg config.Config) (config.Config, error) {
	f := cmd.Flags()
	if f.Changed("ppl") {
		cfg.Minimap.PixelsPerLine = flags.ppl
	}
	if f.Changed("width") {
		cfg.Minimap.Width = flags.width
	}
	if f.Changed("clean") {
		cfg.Minimap.Clean = flags.clean
	}
	if f.Changed("engine") {
		cfg.Minimap.Engine = flags.engine
	}
	if f.Changed("theme") {
		cfg.Theme = flags.theme
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runRender(cmd *cobra.Command, args []string, opts *rootOptions, flags *renderFlags) error {
	logger := logging.Default()

	cfg, err := applyRenderFlags(cmd, flags, opts.cfg)
	if err != nil {
		return err
	}
	if flags.scale <= 0 {
		return fmt.Errorf("--scale must be positive, got %v", flags.scale)
	}
	folds, err := parseFolds(flags.folds)
	if err != nil {
		return err
	}
	theme, err := highlight.LookupTheme(cfg.Theme)
	if err != nil {
		return err
	}
	if flags.outDir != "" {
		if err := os.MkdirAll(flags.outDir, 0o755); err != nil {
			return err
		}
	}

	reg, err := minimap.NewRegistry(cfg.Minimap, minimap.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = reg.CloseAll(context.Background()) }()

	r := &renderer{
		reg:    reg,
		theme:  theme,
		folds:  folds,
		scale:  flags.scale,
		outDir: flags.outDir,
	}

	var mu sync.Mutex
	out := cmd.OutOrStdout()

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(flags.jobs, 1))
	for _, path := range args {
		g.Go(func() error {
			written, err := r.render(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			mu.Lock()
			defer mu.Unlock()
			_, err = fmt.Fprintln(out, written)
			return err
		})
	}
	return g.Wait()
}

// renderer writes one PNG per input file.
type renderer struct {
	reg    *minimap.Registry
	theme  *highlight.Theme
	folds  []document.FoldRegion
	scale  float64
	outDir string
}

func (r *renderer) render(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	lang := highlight.DetectLanguage(filepath.Base(path), content)

	foldModel := document.NewFoldModel()
	for _, f := range r.folds {
		foldModel.Add(f)
	}

	id, engine, err := r.reg.Open(minimap.View{
		Document: document.NewBuffer(string(content)),
		Style:    highlight.NewTokenizer(lang, r.theme),
		Folds:    foldModel,
		Theme:    r.theme,
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = r.reg.Close(id) }()

	engine.SetScale(r.scale)
	engine.RequestRebuild()
	if err := engine.Wait(ctx); err != nil {
		return "", err
	}

	img := engine.CurrentImage()
	if img == nil {
		return "", ErrNothingRendered
	}
	img = imaging.Crop(img, image.Rect(0, 0, img.Bounds().Dx(), max(engine.Height(), 1)))

	dst := outputPath(path, r.outDir)
	if err := backend.WritePNG(dst, img, r.theme.Background, r.scale); err != nil {
		return "", err
	}
	logging.Default().Debug("wrote minimap",
		logging.FieldPath, dst,
		"language", lang,
		logging.FieldHeight, engine.Height())
	return dst, nil
}

// outputPath returns where the PNG for path goes.
func outputPath(path, outDir string) string {
	name := filepath.Base(path) + outputSuffix
	if outDir == "" {
		return filepath.Join(filepath.Dir(path), name)
	}
	return filepath.Join(outDir, name)
}
