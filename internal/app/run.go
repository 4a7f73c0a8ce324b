package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"anachron/internal/cli"
	"anachron/internal/config"
	"anachron/internal/lineage"
	"anachron/internal/metadata"
	"anachron/internal/metrics"
	"anachron/internal/pipeline"
	"anachron/internal/report"
	"anachron/internal/sample"
	"anachron/internal/source"
)

// stageError tags an error with the exit code of the stage that failed.
type stageError struct {
	code int
	err  error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func inputErr(err error) error   { return &stageError{ExitUsage, err} }
func runtimeErr(err error) error { return &stageError{ExitRuntime, err} }

func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	var se *stageError
	if errors.As(err, &se) {
		return se.code
	}
	return ExitRuntime
}

// result is what the summary line reports.
type result struct {
	Selected int
	Dest     string
}

func run(ctx context.Context, log *slog.Logger, opts cli.Options, cfg config.Config, stdout io.Writer) (result, error) {
	runID := uuid.NewString()
	log = log.With("run_id", runID)
	rec := metrics.New(runID)
	start := time.Now()

	if err := pipeline.ValidateWorkers(opts.Cores); err != nil {
		return result{}, inputErr(err)
	}
	rec.Workers(opts.Cores)

	store := source.New(cfg.S3)

	t0 := time.Now()
	meta, err := loadMetadata(ctx, store, opts.Metadata, cfg)
	if err != nil {
		return result{}, inputErr(err)
	}
	rec.Loaded("metadata", len(meta.Records))
	log.Info("metadata loaded", "path", opts.Metadata, "records", len(meta.Records), "columns", len(meta.Columns))

	idx, err := loadIndex(ctx, store, opts.Dates, cfg, log, rec)
	if err != nil {
		return result{}, inputErr(err)
	}
	rec.Phase("load", time.Since(t0))

	annotated, st, err := pipeline.Annotate(ctx, pipeline.Config{Workers: opts.Cores}, meta.Records, idx)
	if err != nil {
		if errors.Is(err, pipeline.ErrPoolSize) || errors.Is(err, pipeline.ErrPoolTooLarge) {
			return result{}, inputErr(err)
		}
		return result{}, runtimeErr(fmt.Errorf("annotate: %w", err))
	}
	rec.Phase("lookup", st.Lookup)
	rec.Phase("compute", st.Compute)
	rec.Annotated(st.Records, st.WithDuration, st.Records-st.Designated, st.Failed)
	log.Debug("annotated", "records", st.Records, "designated", st.Designated,
		"with_duration", st.WithDuration, "failed", st.Failed,
		"lookup", st.Lookup, "compute", st.Compute)
	if st.Failed > 0 {
		log.Warn("records degraded to absent duration", "count", st.Failed)
	}

	t1 := time.Now()
	selected := report.Select(annotated, opts.Cutoff)
	rec.Selected(len(selected))

	payload := report.Payload{Columns: meta.Columns, Records: selected, WithDesignation: cfg.WithDesignation}
	if err := report.Emit(ctx, store, cfg.Output, stdout, cfg.Format, payload); err != nil {
		return result{}, runtimeErr(fmt.Errorf("write report %s: %w", cfg.Output, err))
	}
	rec.Phase("report", time.Since(t1))
	log.Info("report written", "path", cfg.Output, "format", cfg.Format, "candidates", len(selected), "elapsed", time.Since(start))

	if cfg.MetricsFile != "" {
		rec.Succeeded(time.Now())
		if err := rec.WriteFile(cfg.MetricsFile); err != nil {
			return result{}, runtimeErr(fmt.Errorf("write metrics: %w", err))
		}
	}

	dest := cfg.Output
	if dest == "-" {
		dest = "stdout"
	}
	return result{Selected: len(selected), Dest: dest}, nil
}

func loadMetadata(ctx context.Context, store *source.Store, loc string, cfg config.Config) (*sample.Table, error) {
	f, err := store.Open(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer func() { _ = f.Close() }()
	return metadata.Read(f, metadata.Options{Name: loc, Format: cfg.MetadataFormat, Columns: cfg.Columns})
}

func loadIndex(ctx context.Context, store *source.Store, loc string, cfg config.Config, log *slog.Logger, rec *metrics.Recorder) (*lineage.Index, error) {
	fallback, err := cfg.Fallback()
	if err != nil {
		return nil, err
	}
	f, err := store.Open(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("open lineage dates: %w", err)
	}
	defer func() { _ = f.Close() }()

	t, err := lineage.Load(f, lineage.Options{Name: loc, Fallback: fallback})
	if err != nil {
		return nil, err
	}
	idx := lineage.NewIndex(t)
	rec.Loaded("lineage", len(t.Rows))
	rec.Lineages(t.Fallbacks, idx.Duplicates())
	log.Info("lineage dates loaded", "path", loc, "lineages", idx.Len(),
		"fallback_dates", t.Fallbacks, "duplicates", idx.Duplicates(), "blank", t.Blank)
	if t.Fallbacks > 0 {
		log.Warn("unparseable designation dates replaced", "count", t.Fallbacks, "fallback", fallback.String())
	}
	return idx, nil
}
