// internal/report/registry.go
package report

import (
	"fmt"
	"io"
	"sort"

	"anachron/internal/sample"
)

// Report formats.
const (
	FormatTSV   = "tsv"
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// Payload is what every writer renders.
type Payload struct {
	Columns         []string // input columns, in input order
	Records         []sample.Annotated
	WithDesignation bool // add a designation_date column before infection_duration
}

// WriterFunc renders p to w.
type WriterFunc func(w io.Writer, p Payload) error

// Writer registry (format → handler). Register in init() blocks.
var writers = map[string]WriterFunc{}

// Register adds or replaces (last wins) the writer for format.
func Register(format string, fn WriterFunc) { writers[format] = fn }

// Write dispatches to the registered writer.
func Write(format string, w io.Writer, p Payload) error {
	fn, ok := writers[format]
	if !ok {
		return fmt.Errorf("unknown report format %q (no writer registered)", format)
	}
	return fn(w, p)
}

// Formats lists the registered formats, sorted.
func Formats() []string {
	out := make([]string, 0, len(writers))
	for f := range writers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Header is the report's column list.
func Header(p Payload) []string {
	h := make([]string, 0, len(p.Columns)+2)
	h = append(h, p.Columns...)
	if p.WithDesignation {
		h = append(h, sample.ColDesignation)
	}
	return append(h, sample.ColDuration)
}
