package metadata

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFile struct{ *bytes.Reader }

func (memFile) Close() error { return nil }

func open(s string) memFile { return memFile{bytes.NewReader([]byte(s))} }

const metaTSV = "Accession\tIsolate Collection date\tVirus Pangolin Classification\tGeographic Location\n" +
	"OP1.1\t2021-03-20\tB.1.1.7\tUSA\n" +
	"NA\t2021-04-01\tB.1\tNA\n" +
	"OP3.1\tunknown\tXBB\tCanada\n" +
	"OP4.1\t2022-05\t\n"

func TestReadTSV(t *testing.T) {
	tb, err := Read(open(metaTSV), Options{Name: "meta.tsv"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Accession", "Isolate Collection date", "Virus Pangolin Classification", "Geographic Location"}, tb.Columns)
	require.Len(t, tb.Records, 4)

	r := tb.Records[0]
	assert.Equal(t, "OP1.1", r.Accession)
	assert.Equal(t, "B.1.1.7", r.Lineage)
	assert.Equal(t, "2021-03-20", r.Collected.String())

	// NA is null everywhere
	assert.False(t, tb.Records[1].HasAccession())
	assert.Equal(t, "", tb.Records[1].Values[3])

	// unparseable date is absent and blanked in the raw values
	assert.False(t, tb.Records[2].Collected.Valid)
	assert.Equal(t, "", tb.Records[2].Values[1])

	// short rows are padded, partial dates resolve to the first of the month
	assert.Equal(t, "", tb.Records[3].Lineage)
	assert.Equal(t, "2022-05-01", tb.Records[3].Values[1])
	assert.Len(t, tb.Records[3].Values, 4)
}

func TestReadCSVWithCustomColumns(t *testing.T) {
	in := "Virus name,Collection date,Pango lineage\nhCoV-19/x,2021-01-02,AY.4\n"
	tb, err := Read(open(in), Options{
		Name:    "gisaid.csv",
		Columns: Columns{Accession: "Virus name", Collected: "Collection date", Lineage: "Pango lineage"},
	})
	require.NoError(t, err)
	require.Len(t, tb.Records, 1)
	assert.Equal(t, "hCoV-19/x", tb.Records[0].Accession)
	assert.Equal(t, "AY.4", tb.Records[0].Lineage)
}

func TestReadErrors(t *testing.T) {
	_, err := Read(open("Accession\tlineage\nA\tB\n"), Options{Name: "m.tsv"})
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "Isolate Collection date")

	_, err = Read(open(""), Options{Name: "m.tsv"})
	require.Error(t, err)

	_, err = Read(open(strings.Replace(metaTSV, "USA", "USA\textra", 1)), Options{Name: "m.tsv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "m.tsv:2")

	_, err = Read(open(metaTSV), Options{Name: "m", Format: "parquet"})
	require.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatArrow, DetectFormat("validated-metadata.arrow"))
	assert.Equal(t, FormatArrow, DetectFormat("s3://b/k/meta.feather"))
	assert.Equal(t, FormatCSV, DetectFormat("m.csv"))
	assert.Equal(t, FormatTSV, DetectFormat("m.tsv"))
	assert.Equal(t, FormatAuto, DetectFormat("-"))
}

func arrowFixture(t *testing.T) []byte {
	t.Helper()
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "Accession", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "Isolate Collection date", Type: arrow.FixedWidthTypes.Date32, Nullable: true},
		{Name: "Virus Pangolin Classification", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).AppendValues([]string{"OP1.1", "", "OP3.1"}, []bool{true, false, true})
	db := b.Field(1).(*array.Date32Builder)
	db.Append(arrow.Date32FromTime(time.Date(2021, 3, 20, 0, 0, 0, 0, time.UTC)))
	db.Append(arrow.Date32FromTime(time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC)))
	db.AppendNull()
	b.Field(2).(*array.StringBuilder).AppendValues([]string{"XBB", "B.1", "AY.4"}, nil)

	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	w, err := ipc.NewFileWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestReadArrow(t *testing.T) {
	raw := arrowFixture(t)
	tb, err := Read(memFile{bytes.NewReader(raw)}, Options{Name: "validated-metadata.arrow"})
	require.NoError(t, err)

	require.Len(t, tb.Records, 3)
	assert.Equal(t, "OP1.1", tb.Records[0].Accession)
	assert.Equal(t, "2021-03-20", tb.Records[0].Collected.String())
	assert.Equal(t, "XBB", tb.Records[0].Lineage)

	assert.False(t, tb.Records[1].HasAccession())
	assert.False(t, tb.Records[2].Collected.Valid)
}

func TestReadArrowRejectsGarbage(t *testing.T) {
	_, err := Read(open("definitely not arrow"), Options{Name: "x.arrow"})
	require.Error(t, err)
}
