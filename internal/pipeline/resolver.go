// internal/pipeline/resolver.go
package pipeline

import "anachron/internal/civil"

// Resolver is the minimal capability the pipeline needs from the lineage
// table. Implementations must be safe for concurrent reads.
type Resolver interface {
	DesignationDateOf(lineage string) civil.NullDate
}
