// internal/report/delimited.go
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"anachron/internal/sample"
)

func init() {
	Register(FormatTSV, func(w io.Writer, p Payload) error { return writeDelimited(w, '\t', p) })
	Register(FormatCSV, func(w io.Writer, p Payload) error { return writeDelimited(w, ',', p) })
}

// writeDelimited always writes the header, so an empty selection is still a
// valid table.
func writeDelimited(w io.Writer, comma rune, p Payload) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(Header(p)); err != nil {
		return err
	}
	row := make([]string, 0, len(p.Columns)+2)
	for _, r := range p.Records {
		row = row[:0]
		row = append(row, r.Values...)
		for len(row) < len(p.Columns) {
			row = append(row, "")
		}
		if p.WithDesignation {
			row = append(row, r.Designated.String())
		}
		row = append(row, durationCell(r))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func durationCell(r sample.Annotated) string {
	if !r.Duration.Valid {
		return ""
	}
	return strconv.Itoa(r.Duration.Int)
}
