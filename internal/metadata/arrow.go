// internal/metadata/arrow.go
package metadata

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"anachron/internal/sample"
	"anachron/internal/source"
)

// readArrow reads an Arrow IPC file (random access), falling back to the
// IPC stream format. Every column is rendered to text with ValueStr, so
// Date32, timestamp, dictionary and string-view columns all work.
func readArrow(f source.File, opt Options) (*sample.Table, error) {
	mem := memory.NewGoAllocator()

	fr, err := ipc.NewFileReader(f, ipc.WithAllocator(mem))
	if err == nil {
		defer func() { _ = fr.Close() }()
		b, err := arrowBuilder(opt, fr.Schema())
		if err != nil {
			return nil, err
		}
		for i := 0; i < fr.NumRecords(); i++ {
			rec, err := fr.RecordAt(i)
			if err != nil {
				return nil, fmt.Errorf("%s: record batch %d: %w", opt.Name, i, err)
			}
			addBatch(b, rec)
			rec.Release()
		}
		return b.table, nil
	}

	if _, serr := f.Seek(0, io.SeekStart); serr != nil {
		return nil, fmt.Errorf("%s: %w", opt.Name, err)
	}
	sr, serr := ipc.NewReader(f, ipc.WithAllocator(mem))
	if serr != nil {
		return nil, fmt.Errorf("%s: not an Arrow IPC file or stream: %w", opt.Name, err)
	}
	defer sr.Release()
	b, err := arrowBuilder(opt, sr.Schema())
	if err != nil {
		return nil, err
	}
	for sr.Next() {
		addBatch(b, sr.Record())
	}
	if err := sr.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%s: %w", opt.Name, err)
	}
	return b.table, nil
}

func arrowBuilder(opt Options, schema *arrow.Schema) (*builder, error) {
	header := make([]string, schema.NumFields())
	for i, fld := range schema.Fields() {
		header[i] = fld.Name
	}
	return newBuilder(opt.Name, header, opt.Columns)
}

func addBatch(b *builder, rec arrow.Record) {
	ncol := int(rec.NumCols())
	cols := make([]arrow.Array, ncol)
	for j := range cols {
		cols[j] = rec.Column(j)
	}
	for i := 0; i < int(rec.NumRows()); i++ {
		vals := make([]string, ncol)
		for j, c := range cols {
			if c.IsNull(i) {
				continue
			}
			vals[j] = c.ValueStr(i)
		}
		b.add(vals)
	}
}
