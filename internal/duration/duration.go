// internal/duration/duration.go
package duration

import "anachron/internal/civil"

// Days returns collected - designated in whole days, or absent when either
// date is absent. Negative values mean the lineage was designated after the
// sample was collected.
func Days(collected, designated civil.NullDate) civil.NullInt {
	if !collected.Valid || !designated.Valid {
		return civil.NullInt{}
	}
	return civil.Int(collected.Date.Sub(designated.Date))
}
