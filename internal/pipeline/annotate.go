// internal/pipeline/annotate.go
package pipeline

import (
	"context"
	"time"

	"anachron/internal/civil"
	"anachron/internal/duration"
	"anachron/internal/sample"
)

// Config controls Annotate.
type Config struct {
	Workers int // pool size (>=1)
}

// Stats summarises one Annotate call.
type Stats struct {
	Records      int
	Designated   int // records whose lineage resolved
	WithDuration int // records with both dates
	Failed       int // per-record failures degraded to absent
	Lookup       time.Duration
	Compute      time.Duration
}

// Annotate attaches a designation date and an infection duration to every
// record, preserving order. It runs two parallel maps: lookup, then
// duration. The second starts only after the first has fully returned.
func Annotate(ctx context.Context, cfg Config, records []sample.Record, idx Resolver) ([]sample.Annotated, Stats, error) {
	if err := ValidateWorkers(cfg.Workers); err != nil {
		return nil, Stats{}, err
	}
	st := Stats{Records: len(records)}

	t0 := time.Now()
	designated, f1, err := Map(ctx, records, cfg.Workers, func(r sample.Record) (civil.NullDate, error) {
		return idx.DesignationDateOf(r.Lineage), nil
	})
	if err != nil {
		return nil, Stats{}, err
	}
	st.Lookup = time.Since(t0)

	// barrier: designated is complete and no longer written
	t1 := time.Now()
	durations, f2, err := MapIndex(ctx, len(records), cfg.Workers, func(i int) (civil.NullInt, error) {
		return duration.Days(records[i].Collected, designated[i]), nil
	})
	if err != nil {
		return nil, Stats{}, err
	}
	st.Compute = time.Since(t1)
	st.Failed = f1 + f2

	out := make([]sample.Annotated, len(records))
	for i := range records {
		out[i] = sample.Annotated{Record: records[i], Designated: designated[i], Duration: durations[i]}
		if designated[i].Valid {
			st.Designated++
		}
		if durations[i].Valid {
			st.WithDuration++
		}
	}
	return out, st, nil
}
