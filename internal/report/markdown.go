package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jmylchreest/palettevision/internal/colour"
)

// MarkdownWriter renders results as a Markdown document with one section per
// image: a colour table and a mermaid pie chart of the cluster shares.
type MarkdownWriter struct {
	output io.Writer
	title  cases.Caser
	upper  cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		output: output,
		title:  cases.Title(language.English),
		upper:  cases.Upper(language.English),
	}
}

// Write renders the entries.
func (w *MarkdownWriter) Write(entries []Entry) error {
	md := markdown.NewMarkdown(w.output)
	md.H1("Dominant Colours")
	md.PlainText("")

	for _, e := range entries {
		md.H2(e.Source)
		md.PlainText("")
		if e.Err != nil {
			md.Cautionf("Extraction failed: %v", e.Err)
			md.PlainText("")
			continue
		}
		w.writeResult(md, e.Result)
	}

	return md.Build()
}

func (w *MarkdownWriter) writeResult(md *markdown.Markdown, r *colour.Result) {
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Algorithm", w.title.String(string(r.Algorithm))},
			{"Format", w.upper.String(string(r.Format))},
			{"Samples", strconv.Itoa(r.Samples)},
			{"Clusters", strconv.Itoa(r.Clusters)},
		},
	})
	md.PlainText("")

	rows := make([][]string, len(r.Colours))
	for i, c := range r.Colours {
		rows[i] = []string{strconv.Itoa(i + 1), "`" + c.Value + "`", c.RGB.Hex(), formatPercentage(c.Percentage)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Colour", "Hex", "Share"},
		Rows:   rows,
	})
	md.PlainText("")

	if !r.Converged {
		md.Warning("Clustering stopped at its iteration cap; colours are a best effort.")
		md.PlainText("")
	}

	w.writePieChart(md, r)
}

// writePieChart writes a mermaid pie chart of the distinct colours' sample
// counts.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, r *colour.Result) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Colour Share"),
		piechart.WithShowData(true),
	)
	for _, c := range distinct(r.Colours) {
		chart.LabelAndIntValue(c.RGB.Hex(), uint64(c.Count)) // #nosec G115 -- counts are non-negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}
