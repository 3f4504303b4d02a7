// Package cli provides the Cobra command structure for glance.
package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/glance/internal/config"
	"github.com/dshills/glance/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// rootOptions is shared by every subcommand.
type rootOptions struct {
	debug      bool
	configPath string
	cfg        config.Config
}

// NewRootCommand creates the root glance command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	opts := &rootOptions{cfg: config.Default()}

	rootCmd := &cobra.Command{
		Use:   "glance",
		Short: "Render minimaps of source files",
		Long: `glance draws a compressed overview of a text file: one or a few pixel
rows per line, colored by syntax, the way an editor's minimap does.

Minimaps can be written as PNG files or browsed in the terminal.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (TOML or YAML)")

	rootCmd.AddCommand(newRenderCommand(opts))
	rootCmd.AddCommand(newPreviewCommand(opts))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

// load resolves the configuration and sets up logging.
func (o *rootOptions) load(cmd *cobra.Command) error {
	path := o.configPath
	if path == "" {
		if p := config.DefaultPath(); p != "" {
			if _, err := os.Stat(p); err == nil {
				path = p
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	o.cfg = cfg

	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.Timestamps = cfg.Logging.Timestamps
	lc.Output = cmd.ErrOrStderr()
	logging.SetDefault(logging.NewWithConfig(lc))
	if o.debug {
		logging.SetLevel("debug")
	}
	logging.Default().Debug("config loaded", logging.FieldPath, path)
	return nil
}
