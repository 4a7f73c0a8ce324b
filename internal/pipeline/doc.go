// Package pipeline joins metadata records against the lineage index on a
// bounded worker pool and computes infection durations.
//
// The only contract to implement is Resolver (DesignationDateOf).
// Results are reassembled by index, so output order never depends on
// worker scheduling.
package pipeline
