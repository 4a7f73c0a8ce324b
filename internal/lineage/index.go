// internal/lineage/index.go
package lineage

import "anachron/internal/civil"

// Index maps a lineage label to its designation date. It is built once and
// never written again, so any number of goroutines may read it.
type Index struct {
	dates      map[string]civil.Date
	duplicates int
}

// NewIndex builds the lookup from t. When a lineage appears more than once the
// first row in table order wins.
func NewIndex(t *Table) *Index {
	idx := &Index{dates: make(map[string]civil.Date, len(t.Rows))}
	for _, r := range t.Rows {
		if _, seen := idx.dates[r.Lineage]; seen {
			idx.duplicates++
			continue
		}
		idx.dates[r.Lineage] = r.Date
	}
	return idx
}

// DesignationDateOf returns the designation date of lineage by exact match.
// An empty label or an unknown lineage is absent.
func (x *Index) DesignationDateOf(lineage string) civil.NullDate {
	if lineage == "" {
		return civil.NullDate{}
	}
	d, ok := x.dates[lineage]
	if !ok {
		return civil.NullDate{}
	}
	return civil.Of(d)
}

// Len is the number of distinct lineages.
func (x *Index) Len() int { return len(x.dates) }

// Duplicates is the number of rows ignored because their lineage was
// already indexed.
func (x *Index) Duplicates() int { return x.duplicates }
