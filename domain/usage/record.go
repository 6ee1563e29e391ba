// Package usage provides the MQ throughput record and filter value types.
// Aggregation happens in the store; these types carry no behavior beyond
// their own invariants.
package usage

import "time"

// Record represents a single throughput observation (immutable value type).
// Rows are ingested out of band; this system only reads them.
type Record struct {
	Timestamp   time.Time
	Date        string // display form, e.g. "2026-08-31"
	Minute      string // display form, e.g. "14:05"
	SystemName  string
	MQFunction  string
	WorkTotal   float64
	TransPerSec float64
}

// Valid reports whether a persisted record satisfies the storage invariants:
// non-empty function and system names, non-negative throughput.
func (r Record) Valid() bool {
	return r.MQFunction != "" && r.SystemName != "" && r.TransPerSec >= 0
}

// Filter describes a query over records. MQFunction is required; the other
// fields narrow the result only when set. The time range applies only when
// both bounds are present, and both bounds are inclusive.
type Filter struct {
	MQFunction string
	SystemName string
	From       time.Time
	To         time.Time
}

// HasSystem returns true if the filter narrows to a single system.
func (f Filter) HasSystem() bool {
	return f.SystemName != ""
}

// HasRange returns true if both time bounds are set.
func (f Filter) HasRange() bool {
	return !f.From.IsZero() && !f.To.IsZero()
}

// Point is one aggregated sample: total throughput across systems
// at an exact timestamp.
type Point struct {
	Timestamp   time.Time
	TransPerSec float64
}
