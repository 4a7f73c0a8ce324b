// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"anachron/internal/cli"
	"anachron/internal/config"
	"anachron/internal/report"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitUsage    = 2 // bad flags, config, inputs or pool size
	ExitRuntime  = 3 // failure after inputs were accepted, including output
	ExitCanceled = 130
)

// RunContext parses argv, runs one detection and returns the process exit
// code. Nothing is written to stdout except the report when the output is
// "-", help and version text.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)

	opts, ran, err := cli.Parse(argv, outw)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		_, _ = fmt.Fprintln(stderr, "run 'anachron --help' for usage")
		return ExitUsage
	}
	if !ran {
		return flushCode(outw, stderr, ExitOK)
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return ExitUsage
	}

	log, closeLog := config.SetupLogger(cfg.LogFile, cfg.Level(), opts.Quiet, stderr)
	defer func() { _ = closeLog() }()

	res, err := run(parent, log, opts, cfg, outw)
	if code := flushCode(outw, stderr, ExitOK); code != ExitOK {
		return code
	}
	if err != nil {
		code := exitCode(err)
		if code != ExitCanceled {
			_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return code
	}
	if !opts.Quiet {
		_, _ = fmt.Fprintf(stderr, "%d candidates (cutoff %d days) written to %s\n", res.Selected, opts.Cutoff, res.Dest)
	}
	return ExitOK
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// resolveConfig layers defaults, the config file, the environment and the
// explicitly set flags, in that order.
func resolveConfig(opts cli.Options) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigFile != "" {
		if err := cfg.LoadFile(opts.ConfigFile); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv()
	opts.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration:\n%w", err)
	}
	if opts.Metadata == "-" && opts.Dates == "-" {
		return cfg, errors.New("--metadata and --dates cannot both read stdin")
	}
	return cfg, nil
}

func flushCode(w *bufio.Writer, stderr io.Writer, ok int) int {
	if err := w.Flush(); report.IsBrokenPipe(err) {
		return ok
	} else if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return ExitRuntime
	}
	return ok
}
