// internal/tabular/tabular.go
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// NewReader returns a csv.Reader over r. A comma of 0 sniffs the delimiter
// from the first line: tab if the line has more tabs than commas, else comma.
func NewReader(r io.Reader, comma rune) *csv.Reader {
	br := bufio.NewReaderSize(r, 64<<10)
	if b, _ := br.Peek(len(bom)); bytes.Equal(b, bom) {
		_, _ = br.Discard(len(bom))
	}
	if comma == 0 {
		comma = sniff(br)
	}
	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func sniff(br *bufio.Reader) rune {
	// A header longer than the peek window is still sniffed on its prefix.
	b, _ := br.Peek(br.Size())
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	if bytes.Count(b, []byte{'\t'}) > bytes.Count(b, []byte{','}) {
		return '\t'
	}
	return ','
}

// Column returns the position of name in header, ignoring surrounding
// whitespace, or -1.
func Column(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// LineError decorates err with the source name and 1-based line.
func LineError(src string, line int, err error) error {
	return fmt.Errorf("%s:%d: %w", src, line, err)
}
