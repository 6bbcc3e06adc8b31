// Package batch extracts dominant colours from many images concurrently.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/palettevision/internal/colour"
	"github.com/jmylchreest/palettevision/internal/image"
	"github.com/jmylchreest/palettevision/internal/report"
)

// Processor loads and extracts a list of images with bounded concurrency.
// A failing image is recorded in its entry and does not stop the others.
type Processor struct {
	loader      *image.Loader
	extractor   *colour.Extractor
	concurrency int
	logger      hclog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithConcurrency sets the maximum number of images processed at once.
// Non-positive values are ignored.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the logger for batch progress.
func WithLogger(logger hclog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor creates a Processor. Concurrency defaults to the number of CPUs.
func NewProcessor(loader *image.Loader, extractor *colour.Extractor, opts ...Option) *Processor {
	p := &Processor{
		loader:      loader,
		extractor:   extractor,
		concurrency: runtime.NumCPU(),
		logger:      hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process extracts every source and returns one entry per source in input
// order. The error is non-nil only when ctx is cancelled; per-image failures
// are reported through Entry.Err.
func (p *Processor) Process(ctx context.Context, sources []string, opts colour.Options) ([]report.Entry, error) {
	p.logger.Debug("starting batch", "images", len(sources), "concurrency", p.concurrency)
	start := time.Now()

	entries := make([]report.Entry, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				entries[i] = report.Entry{Source: source, Err: err}
				return err
			}

			result, err := p.extract(ctx, source, opts)
			entries[i] = report.Entry{Source: source, Result: result, Err: err}
			if err != nil {
				p.logger.Warn("extraction failed", "source", source, "error", err)
				return nil
			}
			p.logger.Debug("extraction completed", "source", source, "index", i+1, "total", len(sources))
			return nil
		})
	}

	err := g.Wait()

	p.logger.Debug("batch complete", "images", len(sources), "elapsed", time.Since(start))
	return entries, err
}

func (p *Processor) extract(ctx context.Context, source string, opts colour.Options) (*colour.Result, error) {
	img, err := p.loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	result, err := p.extractor.ExtractImage(ctx, img, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to extract colours: %w", err)
	}
	return result, nil
}
