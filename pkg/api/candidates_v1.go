// pkg/api/candidates_v1.go
package api

// CandidateV1 is the stable JSONL schema for one anachronistic candidate.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type CandidateV1 struct {
	Accession         string            `json:"accession"`
	Lineage           string            `json:"lineage,omitempty"`
	CollectionDate    string            `json:"collection_date,omitempty"` // YYYY-MM-DD
	DesignationDate   string            `json:"designation_date,omitempty"`
	InfectionDuration *int              `json:"infection_duration"` // days; null when unknown
	Fields            map[string]string `json:"fields,omitempty"`   // every input column, nulls omitted
}
