// internal/report/jsonl.go
package report

import (
	"encoding/json"
	"io"

	"anachron/internal/sample"
	"anachron/pkg/api"
)

func init() {
	Register(FormatJSONL, writeJSONL)
}

func writeJSONL(w io.Writer, p Payload) error {
	enc := json.NewEncoder(w)
	for _, r := range p.Records {
		if err := enc.Encode(ToAPICandidate(p.Columns, r)); err != nil {
			return err
		}
	}
	return nil
}

// ToAPICandidate converts an annotated record to the v1 wire type.
func ToAPICandidate(columns []string, r sample.Annotated) api.CandidateV1 {
	c := api.CandidateV1{
		Accession:       r.Accession,
		Lineage:         r.Lineage,
		CollectionDate:  r.Collected.String(),
		DesignationDate: r.Designated.String(),
	}
	if r.Duration.Valid {
		d := r.Duration.Int
		c.InfectionDuration = &d
	}
	for i, col := range columns {
		if i >= len(r.Values) || r.Values[i] == "" {
			continue
		}
		if c.Fields == nil {
			c.Fields = make(map[string]string, len(columns))
		}
		c.Fields[col] = r.Values[i]
	}
	return c
}
