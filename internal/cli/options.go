// Package cli declares the anachron command line and turns argv into
// Options. It never touches inputs; internal/app does the work.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"anachron/internal/config"
	"anachron/internal/version"
)

// UsageError marks a bad command line (exit 2).
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// Options holds every flag. Optional flags only override the config when
// the user set them explicitly; see Apply.
type Options struct {
	// Required
	Metadata string
	Dates    string
	Cutoff   int
	Cores    int

	// Output
	Output          string
	Format          string
	WithDesignation bool
	FallbackDate    string

	// Ambient
	ConfigFile  string
	MetricsFile string
	LogFile     string
	LogLevel    string
	Quiet       bool

	changed map[string]bool
}

// Changed reports whether the named flag appeared on the command line.
func (o Options) Changed(name string) bool { return o.changed[name] }

var required = []string{"metadata", "dates", "infection-cutoff", "cores"}

// NewCommand builds the root command. run receives the parsed Options.
func NewCommand(run func(cmd *cobra.Command, opt Options) error) *cobra.Command {
	var opt Options
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "anachron",
		Short: "Flag samples collected implausibly long after their lineage was designated",
		Long: `anachron joins sample metadata against lineage designation dates,
computes the infection duration (collection date minus designation date,
in days) for every sample, and reports the samples whose duration reaches
the cutoff, longest first.

Inputs and the report may be local paths, "-" (stdin/stdout) or
s3://bucket/key.`,
		Example: `  anachron -m metadata.tsv -d lineage_dates.csv -i 120 -c 8
  anachron -m metadata.arrow -d s3://refs/lineage_dates.csv -i 90 -c 4 -o - --format jsonl`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var missing []string
			for _, name := range required {
				if !cmd.Flags().Changed(name) {
					missing = append(missing, "--"+name)
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("missing required flag(s): %s", strings.Join(missing, ", "))
			}
			opt.changed = map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { opt.changed[f.Name] = true })
			return run(cmd, opt)
		},
	}
	cmd.SetVersionTemplate("anachron version {{.Version}}\n")

	f := cmd.Flags()
	f.SortFlags = false
	f.StringVarP(&opt.Metadata, "metadata", "m", "", "sample metadata (TSV, CSV or Arrow IPC) [*]")
	f.StringVarP(&opt.Dates, "dates", "d", "", "lineage designation dates (lineage,designation_date) [*]")
	f.IntVarP(&opt.Cutoff, "infection-cutoff", "i", 0, "minimum infection duration in days to report [*]")
	f.IntVarP(&opt.Cores, "cores", "c", 0, "worker pool size (>= 1) [*]")

	f.StringVarP(&opt.Output, "output", "o", def.Output, `report destination ("-" = stdout)`)
	f.StringVar(&opt.Format, "format", def.Format, "report format: tsv | csv | jsonl")
	f.BoolVar(&opt.WithDesignation, "with-designation-date", false, "add a designation_date column before infection_duration")
	f.StringVar(&opt.FallbackDate, "fallback-date", def.FallbackDate, "designation date used when a lineage's date is unparseable")

	f.StringVar(&opt.ConfigFile, "config", "", "YAML config file")
	f.StringVar(&opt.MetricsFile, "metrics-file", "", "write Prometheus text metrics here")
	f.StringVar(&opt.LogFile, "log-file", "", "also write JSON logs to this file")
	f.StringVar(&opt.LogLevel, "log-level", def.LogLevel, "debug | info | warn | error")
	f.BoolVarP(&opt.Quiet, "quiet", "q", false, "only log warnings and errors to stderr")
	return cmd
}

// Parse runs the command line through cobra. ran is false when cobra
// answered the invocation itself (--help, --version); out then holds the
// text to print. An empty argv prints help. Every returned error is a
// *UsageError.
func Parse(argv []string, out io.Writer) (opt Options, ran bool, err error) {
	if len(argv) == 0 {
		argv = []string{"--help"}
	}
	cmd := NewCommand(func(_ *cobra.Command, o Options) error {
		opt, ran = o, true
		return nil
	})
	cmd.SetArgs(argv)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return &UsageError{err} })
	if err := cmd.Execute(); err != nil {
		var ue *UsageError
		if errors.As(err, &ue) {
			return Options{}, false, ue
		}
		return Options{}, false, &UsageError{err}
	}
	return opt, ran, nil
}

// Apply overlays the explicitly set optional flags onto c.
func (o Options) Apply(c *config.Config) {
	if o.Changed("output") {
		c.Output = o.Output
	}
	if o.Changed("format") {
		c.Format = o.Format
	}
	if o.Changed("with-designation-date") {
		c.WithDesignation = o.WithDesignation
	}
	if o.Changed("fallback-date") {
		c.FallbackDate = o.FallbackDate
	}
	if o.Changed("metrics-file") {
		c.MetricsFile = o.MetricsFile
	}
	if o.Changed("log-file") {
		c.LogFile = o.LogFile
	}
	if o.Changed("log-level") {
		c.LogLevel = o.LogLevel
	}
}
