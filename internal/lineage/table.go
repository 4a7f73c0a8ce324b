// internal/lineage/table.go
package lineage

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"anachron/internal/civil"
	"anachron/internal/sample"
	"anachron/internal/tabular"
)

// Column names expected in the designation-dates file.
const (
	ColLineage = "lineage"
	ColDate    = "designation_date"
)

// DefaultFallback is assigned to rows whose designation date does not parse.
var DefaultFallback = civil.New(2021, 2, 18)

var ErrMissingColumn = errors.New("missing required column")

// Row is one lineage and the date it was designated.
type Row struct {
	Lineage  string
	Date     civil.Date
	Fallback bool // Date is the fallback, not the file's value
}

// Table is the designation-dates file as loaded, in file order.
type Table struct {
	Rows      []Row
	Fallbacks int
	Blank     int // rows skipped for an empty lineage
}

// Options controls Load.
type Options struct {
	Name     string     // used in error messages
	Comma    rune       // 0 = sniff
	Fallback civil.Date // zero value = DefaultFallback
}

// Load reads a delimited designation-dates table. Rows with an unparseable
// date receive the fallback date; rows with no lineage are skipped.
func Load(r io.Reader, opt Options) (*Table, error) {
	if opt.Name == "" {
		opt.Name = "lineage dates"
	}
	fallback := opt.Fallback
	if fallback.Equal(civil.Date{}) {
		fallback = DefaultFallback
	}

	cr := tabular.NewReader(r, opt.Comma)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", opt.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opt.Name, err)
	}
	li := tabular.Column(header, ColLineage)
	di := tabular.Column(header, ColDate)
	if li < 0 || di < 0 {
		return nil, fmt.Errorf("%s: %w: need %q and %q, have %s",
			opt.Name, ErrMissingColumn, ColLineage, ColDate, strings.Join(header, ","))
	}

	t := &Table{}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, tabular.LineError(opt.Name, line, err)
		}
		name := field(rec, li)
		if sample.IsNull(name) {
			t.Blank++
			continue
		}
		row := Row{Lineage: name}
		if d, err := civil.ParseISO(field(rec, di)); err == nil {
			row.Date = d
		} else {
			row.Date = fallback
			row.Fallback = true
			t.Fallbacks++
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
