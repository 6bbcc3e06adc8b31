package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TextWriter renders each result as a header line and an aligned table.
type TextWriter struct {
	output  io.Writer
	preview bool
}

// NewTextWriter creates a TextWriter. When preview is set every row is
// prefixed with an ANSI swatch of its colour.
func NewTextWriter(output io.Writer, preview bool) *TextWriter {
	return &TextWriter{output: output, preview: preview}
}

// Write renders all entries separated by blank lines.
func (w *TextWriter) Write(entries []Entry) error {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		if e.Err != nil {
			fmt.Fprintf(&b, "%s: error: %v\n", e.Source, e.Err)
			continue
		}
		w.writeResult(&b, e)
	}
	_, err := io.WriteString(w.output, b.String())
	return err
}

func (w *TextWriter) writeResult(b *strings.Builder, e Entry) {
	r := e.Result
	fmt.Fprintf(b, "%s (%s, %s, %d samples, %d clusters)\n", e.Source, r.Algorithm, r.Format, r.Samples, r.Clusters)

	table := NewTable([]string{"#", "Colour", "Share"})
	for i, c := range r.Colours {
		table.AddRow([]string{strconv.Itoa(i + 1), c.Value, formatPercentage(c.Percentage)})
	}

	for i, line := range table.Lines() {
		if w.preview {
			if i < 2 {
				b.WriteString(strings.Repeat(" ", swatchWidth+2))
			} else {
				b.WriteString(Swatch(r.Colours[i-2].RGB, swatchWidth) + "  ")
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}
