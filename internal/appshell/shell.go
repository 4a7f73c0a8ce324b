// Package appshell is the process boundary: signals in, exit code out.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// RunFunc is the testable body of a command.
type RunFunc func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

// Main runs run under a context cancelled by SIGINT or SIGTERM and exits
// with its code. A run that was interrupted but still reported success
// exits 130.
func Main(run RunFunc) {
	os.Exit(Exec(run, os.Args[1:], os.Stdout, os.Stderr))
}

// Exec is Main without the os.Exit.
func Exec(run RunFunc, argv []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, argv, stdout, stderr)
	if ctx.Err() != nil && code == 0 {
		code = 130
	}
	return code
}
