// Package cli provides the command-line interface for PaletteVision.
package cli

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/palettevision/internal/colour"
	"github.com/jmylchreest/palettevision/internal/config"
	"github.com/jmylchreest/palettevision/internal/version"
)

// app holds the state shared by all commands, resolved from the persistent
// flags before any command runs.
type app struct {
	configPath string
	verbose    bool
	quiet      bool

	cfg    *config.Config
	logger hclog.Logger
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "palettevision",
		Short: "Extract dominant colours from images",
		Long: `PaletteVision finds the dominant colours of an image by clustering its pixels
with k-means or mean shift, and reports them as hex, rgb, rgba or hsl values
together with the share of the image each colour covers.

Use "extract" on the command line or "serve" to run the HTTP API.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/palettevision/config.yaml)")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newExtractCmd(a))
	rootCmd.AddCommand(newServeCmd(a))

	return rootCmd
}

// setup loads the configuration and creates the logger.
func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	switch {
	case a.quiet:
		a.logger = hclog.New(&hclog.LoggerOptions{
			Name:   "palettevision",
			Output: io.Discard,
			Level:  hclog.Off,
		})
	case a.verbose:
		a.logger = hclog.New(&hclog.LoggerOptions{
			Name:   "palettevision",
			Output: stderr,
			Level:  hclog.Debug,
		})
	default:
		a.logger = hclog.New(&hclog.LoggerOptions{
			Name:   "palettevision",
			Output: stderr,
			Level:  hclog.Info,
		})
	}

	a.logger.Debug("configuration loaded", "path", a.configPath, "max_dimension", cfg.Engine.MaxDimension)
	return nil
}

// newExtractor creates an extractor from the loaded configuration.
func (a *app) newExtractor() *colour.Extractor {
	return colour.NewExtractor(
		colour.WithEngineConfig(a.cfg.EngineConfig()),
		colour.WithLogger(a.logger.Named("extractor")),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
