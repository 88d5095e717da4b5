// Package model contains the in-memory representation of plans, subtasks,
// artifacts and verdicts used by the conclave engine.
//
// A plan is the dependency graph produced for one goal: an ordered sequence
// of subtasks whose dependsOn edges must stay acyclic. Plans are single-use –
// created once by the planner, read-only afterwards. Artifacts record what a
// subtask produced, verdicts record what the judge decided about a candidate.
package model
