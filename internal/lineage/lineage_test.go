package lineage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anachron/internal/civil"
)

const datesCSV = `lineage,designation_date
B.1.1.7,2020-12-15
XBB,not-a-date
AY.4,
,2021-06-01
B.1.1.7,2019-01-01
`

func load(t *testing.T, in string, opt Options) *Table {
	t.Helper()
	tb, err := Load(strings.NewReader(in), opt)
	require.NoError(t, err)
	return tb
}

func TestLoadAppliesFallback(t *testing.T) {
	tb := load(t, datesCSV, Options{})

	require.Len(t, tb.Rows, 4)
	assert.Equal(t, 2, tb.Fallbacks)
	assert.Equal(t, 1, tb.Blank)

	assert.Equal(t, "XBB", tb.Rows[1].Lineage)
	assert.True(t, tb.Rows[1].Fallback)
	assert.Equal(t, "2021-02-18", tb.Rows[1].Date.String())
	assert.Equal(t, "2021-02-18", tb.Rows[2].Date.String())
	assert.False(t, tb.Rows[0].Fallback)
}

func TestLoadCustomFallback(t *testing.T) {
	tb := load(t, datesCSV, Options{Fallback: civil.New(2020, 1, 1)})
	assert.Equal(t, "2020-01-01", tb.Rows[1].Date.String())
}

func TestLoadTSV(t *testing.T) {
	tb := load(t, "designation_date\tlineage\n2021-05-11\tB.1.617.2\n", Options{})
	require.Len(t, tb.Rows, 1)
	assert.Equal(t, "B.1.617.2", tb.Rows[0].Lineage)
	assert.Equal(t, "2021-05-11", tb.Rows[0].Date.String())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(strings.NewReader(""), Options{Name: "dates.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dates.csv")

	_, err = Load(strings.NewReader("name,date\nA,2020-01-01\n"), Options{})
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestIndexFirstMatchWins(t *testing.T) {
	idx := NewIndex(load(t, datesCSV, Options{}))

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 1, idx.Duplicates())

	got := idx.DesignationDateOf("B.1.1.7")
	require.True(t, got.Valid)
	assert.Equal(t, "2020-12-15", got.String())
}

func TestIndexAbsent(t *testing.T) {
	idx := NewIndex(load(t, datesCSV, Options{}))

	assert.False(t, idx.DesignationDateOf("").Valid)
	assert.False(t, idx.DesignationDateOf("Q.9").Valid)
	// exact match only
	assert.False(t, idx.DesignationDateOf("b.1.1.7").Valid)
	assert.False(t, idx.DesignationDateOf("B.1.1.7 ").Valid)
}

func TestIndexFallbackIsResolved(t *testing.T) {
	idx := NewIndex(load(t, datesCSV, Options{}))
	got := idx.DesignationDateOf("XBB")
	require.True(t, got.Valid)
	assert.Equal(t, 30, civil.New(2021, 3, 20).Sub(got.Date))
}
