// Package executor drives a single subtask through its bounded retry
// machine: sample proposals, elect one by vote, submit it to the judge, and
// either accept, retry or exhaust. It is the glue layer between the
// scheduling runtime and the solver/judge services.
package executor
