// internal/report/output.go
package report

import (
	"bufio"
	"context"
	"errors"
	"io"
	"syscall"

	"anachron/internal/source"
)

// DefaultName is the report file written when no output is given.
const DefaultName = "anachronistic_metadata_only_candidates.tsv"

// Emit renders p and delivers it to dest: "-" streams to stdout, anything
// else replaces dest atomically through st.
func Emit(ctx context.Context, st *source.Store, dest string, stdout io.Writer, format string, p Payload) error {
	if dest == "-" {
		bw := bufio.NewWriter(stdout)
		if err := Write(format, bw, p); err != nil && !IsBrokenPipe(err) {
			return err
		}
		if err := bw.Flush(); err != nil && !IsBrokenPipe(err) {
			return err
		}
		return nil
	}
	return st.WriteAtomic(ctx, dest, func(w io.Writer) error {
		return Write(format, w, p)
	})
}

// IsBrokenPipe reports whether an error is a broken pipe / closed pipe.
// Useful when downstream consumers (like `head`) close early.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}
