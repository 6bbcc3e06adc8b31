package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/jmylchreest/palettevision/internal/batch"
	"github.com/jmylchreest/palettevision/internal/colour"
	"github.com/jmylchreest/palettevision/internal/image"
	"github.com/jmylchreest/palettevision/internal/report"
	"github.com/jmylchreest/palettevision/internal/util/imagecache"
)

// extractFlags holds the extract command flags.
type extractFlags struct {
	algorithm    string
	k            int
	topN         int
	format       string
	outputFormat string
	noPercentage bool
	preview      bool
	concurrency  int
	cache        bool
}

func newExtractCmd(a *app) *cobra.Command {
	f := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract <image|directory|url>...",
		Short: "Extract the dominant colours of one or more images",
		Long: `Extract the dominant colours of images using k-means or mean shift clustering.

Images larger than the configured maximum dimension (800 pixels by default)
are downscaled before clustering. Exactly --top colours are reported, most
dominant first; when the image has fewer distinct clusters the most dominant
colour is repeated.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # The two most dominant colours as hex
  palettevision extract wallpaper.jpg

  # Five colours using mean shift, rendered as hsl
  palettevision extract -a meanshift -n 5 -f hsl wallpaper.jpg

  # Every image in a directory as a Markdown report
  palettevision extract -o markdown ~/Pictures/wallpapers

  # JSON identical to the HTTP API response
  palettevision extract -o json https://example.com/image.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd, f, args)
		},
	}

	cmd.Flags().StringVarP(&f.algorithm, "algorithm", "a", string(colour.AlgorithmKMeans), fmt.Sprintf("clustering algorithm %v", colour.ValidAlgorithms()))
	cmd.Flags().IntVarP(&f.k, "k", "k", colour.DefaultK, "number of clusters for kmeans")
	cmd.Flags().IntVarP(&f.topN, "top", "n", colour.DefaultTopN, "number of colours to report")
	cmd.Flags().StringVarP(&f.format, "format", "f", string(colour.FormatHex), fmt.Sprintf("colour format %v", colour.ValidFormats()))
	cmd.Flags().StringVarP(&f.outputFormat, "output-format", "o", string(report.OutputText), fmt.Sprintf("report format %v", report.ValidOutputFormats()))
	cmd.Flags().BoolVar(&f.noPercentage, "no-percentage", false, "omit the share of each colour")
	cmd.Flags().BoolVar(&f.preview, "preview", false, "show colour swatches in text output (default: on for terminals)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "images processed in parallel (default: from config)")
	cmd.Flags().BoolVar(&f.cache, "cache", false, "cache downloaded images on disk (default: from config)")

	return cmd
}

// options merges the configured defaults with the flags that were set.
func (f *extractFlags) options(flags *pflag.FlagSet, defaults colour.Options) colour.Options {
	opts := defaults
	if flags.Changed("algorithm") {
		opts.Algorithm = colour.Algorithm(f.algorithm)
	}
	if flags.Changed("k") {
		opts.K = f.k
	}
	if flags.Changed("top") {
		opts.TopN = f.topN
	}
	if flags.Changed("format") {
		opts.Format = colour.Format(f.format)
	}
	if flags.Changed("no-percentage") {
		opts.IncludePercentage = !f.noPercentage
	}
	return opts
}

func (a *app) runExtract(cmd *cobra.Command, f *extractFlags, args []string) error {
	opts, err := f.options(cmd.Flags(), a.cfg.Extract).Normalize()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	preview := f.preview
	if !cmd.Flags().Changed("preview") {
		preview = isTerminal(out)
	}
	writer, err := report.NewWriter(report.OutputFormat(f.outputFormat), out, report.WithPreview(preview))
	if err != nil {
		return err
	}

	sources, err := image.ExpandSources(args)
	if err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	concurrency := a.cfg.Batch.Concurrency
	if f.concurrency > 0 {
		concurrency = f.concurrency
	}

	loaderOpts := []image.LoaderOption{image.WithMaxPixels(a.cfg.Server.MaxPixels)}
	useCache := a.cfg.Cache.Enabled
	if cmd.Flags().Changed("cache") {
		useCache = f.cache
	}
	if useCache {
		cache := imagecache.New(a.cfg.Cache.Dir)
		a.logger.Debug("caching downloaded images", "dir", cache.Dir())
		loaderOpts = append(loaderOpts, image.WithCache(cache))
	}

	a.logger.Debug("extracting", "images", len(sources), "algorithm", opts.Algorithm, "top_n", opts.TopN)
	processor := batch.NewProcessor(
		image.NewLoader(a.cfg.Server.MaxUploadBytes, loaderOpts...),
		a.newExtractor(),
		batch.WithConcurrency(concurrency),
		batch.WithLogger(a.logger.Named("batch")),
	)
	entries, err := processor.Process(cmd.Context(), sources, opts)
	if err != nil {
		return err
	}

	if len(entries) == 1 && entries[0].Err != nil {
		return entries[0].Err
	}
	if err := writer.Write(entries); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	var failed []error
	for _, e := range entries {
		if e.Err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", e.Source, e.Err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d images failed: %w", len(failed), len(entries), errors.Join(failed...))
	}
	return nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
