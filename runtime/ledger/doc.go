// Package ledger implements the append-only evidence log that records every
// planner, solver, judge and tool step of a run for post-hoc audit.
package ledger
