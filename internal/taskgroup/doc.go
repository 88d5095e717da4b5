// Package taskgroup implements a structured fan-out/fan-in construct: launch
// N branches, wait for all of them, surface the first error. It backs the
// solver's concurrent proposal sampling and keeps per-branch results in the
// slots the branches own, so no additional synchronisation is needed on the
// result side.
package taskgroup
