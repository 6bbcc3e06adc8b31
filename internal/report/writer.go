// Package report renders extraction results for the command line.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/palettevision/internal/colour"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

const (
	// OutputText renders an aligned table per image.
	OutputText OutputFormat = "text"

	// OutputJSON renders the same JSON document the HTTP API returns.
	OutputJSON OutputFormat = "json"

	// OutputMarkdown renders a Markdown document with a share pie chart.
	OutputMarkdown OutputFormat = "markdown"
)

// ValidOutputFormats returns the supported output formats.
func ValidOutputFormats() []OutputFormat {
	return []OutputFormat{OutputText, OutputJSON, OutputMarkdown}
}

// Entry is the extraction outcome for one image.
type Entry struct {
	// Source is the path or URL the image was loaded from.
	Source string
	// Result is nil when Err is set.
	Result *colour.Result
	Err    error
}

// Writer defines the interface for report output.
type Writer interface {
	// Write renders all entries to the configured destination.
	Write(entries []Entry) error
}

// Option configures a Writer.
type Option func(*options)

type options struct {
	preview bool
}

// WithPreview enables ANSI colour swatches in text output.
func WithPreview(enabled bool) Option {
	return func(o *options) {
		o.preview = enabled
	}
}

// NewWriter creates the Writer for the given format.
func NewWriter(format OutputFormat, output io.Writer, opts ...Option) (Writer, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	switch OutputFormat(strings.ToLower(string(format))) {
	case OutputText, "":
		return NewTextWriter(output, o.preview), nil
	case OutputJSON:
		return NewJSONWriter(output), nil
	case OutputMarkdown, "md":
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: %v)", format, ValidOutputFormats())
	}
}

// distinct returns the records of a result with padding repeats removed.
func distinct(records []colour.ColourRecord) []colour.ColourRecord {
	seen := make(map[string]bool, len(records))
	out := make([]colour.ColourRecord, 0, len(records))
	for _, r := range records {
		if seen[r.Value] {
			continue
		}
		seen[r.Value] = true
		out = append(out, r)
	}
	return out
}

// formatPercentage renders a percentage for display, or "-" when absent.
func formatPercentage(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *p)
}
