// Package tracking computes working time from task activity timelines.
//
// Every function here is pure: it reads an already loaded snapshot of tasks
// and returns values without touching storage. Callers validate snapshots at
// the boundary with Validate, after which the computations assume
// well-formed input.
//
// A "started" activity opens an interval and the next matching "completed"
// activity closes it. A repeated "started" before any "completed" moves the
// open start forward; the earlier start is dropped.
package tracking
