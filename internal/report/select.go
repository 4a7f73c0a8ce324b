// internal/report/select.go
package report

import (
	"cmp"
	"slices"

	"anachron/internal/sample"
)

// Select keeps records whose infection duration is known, at least cutoff
// days, and that carry an accession. The result is ordered by duration,
// longest first; equal durations keep their input order.
func Select(records []sample.Annotated, cutoff int) []sample.Annotated {
	out := make([]sample.Annotated, 0, len(records)/8)
	for _, r := range records {
		if !r.Duration.Valid || r.Duration.Int < cutoff || !r.HasAccession() {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b sample.Annotated) int {
		return cmp.Compare(b.Duration.Int, a.Duration.Int)
	})
	return out
}
