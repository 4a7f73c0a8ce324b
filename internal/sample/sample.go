// internal/sample/sample.go
package sample

import "anachron/internal/civil"

// Default metadata column names (NCBI virus metadata after upstream renaming).
const (
	ColAccession = "Accession"
	ColCollected = "Isolate Collection date"
	ColLineage   = "Virus Pangolin Classification"

	ColDuration    = "infection_duration"
	ColDesignation = "designation_date"
)

// Record is one metadata row as received from ingestion. Values holds every
// input column in table order; nulls are "".
type Record struct {
	Values []string

	Accession string // "" = null
	Lineage   string // "" = null
	Collected civil.NullDate
}

// HasAccession reports whether the record carries a usable identifier.
func (r Record) HasAccession() bool { return r.Accession != "" }

// Annotated is a Record plus the fields derived by the join.
type Annotated struct {
	Record
	Designated civil.NullDate
	Duration   civil.NullInt
}

// Table is the loaded metadata: its header and rows.
type Table struct {
	Columns []string
	Records []Record
}

// IsNull reports whether a raw cell is a null marker.
func IsNull(s string) bool {
	return s == "" || s == "NA"
}
