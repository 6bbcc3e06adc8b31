package report

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/palettevision/internal/colour"
)

// JSONWriter renders results as indented JSON. A single successful entry is
// written as the bare result object, matching the HTTP API; several entries
// are written as an array annotated with their source.
type JSONWriter struct {
	output io.Writer
}

// NewJSONWriter creates a JSONWriter.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{output: output}
}

type jsonEntry struct {
	Source string `json:"source"`
	*colour.Result
	Error string `json:"error,omitempty"`
}

// Write renders the entries.
func (w *JSONWriter) Write(entries []Entry) error {
	enc := json.NewEncoder(w.output)
	enc.SetIndent("", "  ")

	if len(entries) == 1 && entries[0].Err == nil {
		return enc.Encode(entries[0].Result)
	}

	out := make([]jsonEntry, len(entries))
	for i, e := range entries {
		out[i] = jsonEntry{Source: e.Source, Result: e.Result}
		if e.Err != nil {
			out[i].Error = e.Err.Error()
		}
	}
	return enc.Encode(out)
}
