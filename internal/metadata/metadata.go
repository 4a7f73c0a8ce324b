// internal/metadata/metadata.go
package metadata

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"anachron/internal/civil"
	"anachron/internal/sample"
	"anachron/internal/source"
	"anachron/internal/tabular"
)

// Supported metadata formats.
const (
	FormatAuto  = ""
	FormatTSV   = "tsv"
	FormatCSV   = "csv"
	FormatArrow = "arrow"
)

var ErrMissingColumn = errors.New("missing required column")

// Columns names the three metadata columns the join reads.
type Columns struct {
	Accession string `yaml:"accession"`
	Collected string `yaml:"collection_date"`
	Lineage   string `yaml:"lineage"`
}

// DefaultColumns are the NCBI virus metadata names.
func DefaultColumns() Columns {
	return Columns{
		Accession: sample.ColAccession,
		Collected: sample.ColCollected,
		Lineage:   sample.ColLineage,
	}
}

// Options controls Read.
type Options struct {
	Name    string // used in error messages
	Format  string // FormatAuto picks by extension of Name
	Columns Columns
}

// DetectFormat maps a location's extension to a format. Unknown extensions
// are read as delimited text with a sniffed delimiter.
func DetectFormat(loc string) string {
	switch source.Ext(loc) {
	case ".arrow", ".feather", ".ipc", ".arrows":
		return FormatArrow
	case ".csv":
		return FormatCSV
	case ".tsv", ".tab", ".txt":
		return FormatTSV
	}
	return FormatAuto
}

// Read loads the whole metadata table from f.
func Read(f source.File, opt Options) (*sample.Table, error) {
	if opt.Columns == (Columns{}) {
		opt.Columns = DefaultColumns()
	}
	format := opt.Format
	if format == FormatAuto {
		format = DetectFormat(opt.Name)
	}
	switch format {
	case FormatArrow:
		return readArrow(f, opt)
	case FormatCSV:
		return readDelimited(f, ',', opt)
	case FormatTSV:
		return readDelimited(f, '\t', opt)
	case FormatAuto:
		return readDelimited(f, 0, opt)
	default:
		return nil, fmt.Errorf("unknown metadata format %q", format)
	}
}

// builder turns raw rows into Records once the header is known.
type builder struct {
	table         *sample.Table
	acc, col, lin int
}

func newBuilder(name string, header []string, cols Columns) (*builder, error) {
	b := &builder{
		table: &sample.Table{Columns: header},
		acc:   tabular.Column(header, cols.Accession),
		col:   tabular.Column(header, cols.Collected),
		lin:   tabular.Column(header, cols.Lineage),
	}
	var missing []string
	if b.acc < 0 {
		missing = append(missing, cols.Accession)
	}
	if b.col < 0 {
		missing = append(missing, cols.Collected)
	}
	if b.lin < 0 {
		missing = append(missing, cols.Lineage)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: %q", name, ErrMissingColumn, strings.Join(missing, `", "`))
	}
	return b, nil
}

// add takes ownership of vals. Null markers become "" and the collection
// date cell is rewritten in canonical form, or "" when it does not parse.
func (b *builder) add(vals []string) {
	for i, v := range vals {
		if sample.IsNull(v) {
			vals[i] = ""
		}
	}
	collected := civil.ParseLoose(vals[b.col])
	vals[b.col] = collected.String()
	b.table.Records = append(b.table.Records, sample.Record{
		Values:    vals,
		Accession: strings.TrimSpace(vals[b.acc]),
		Lineage:   strings.TrimSpace(vals[b.lin]),
		Collected: collected,
	})
}

func readDelimited(r io.Reader, comma rune, opt Options) (*sample.Table, error) {
	cr := tabular.NewReader(r, comma)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", opt.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opt.Name, err)
	}
	b, err := newBuilder(opt.Name, header, opt.Columns)
	if err != nil {
		return nil, err
	}
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
		if len(rec) > len(header) {
			return nil, tabular.LineError(opt.Name, line,
				fmt.Errorf("expected %d fields, saw %d", len(header), len(rec)))
		}
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		vals := make([]string, len(header))
		copy(vals, rec)
		b.add(vals)
	}
	return b.table, nil
}
