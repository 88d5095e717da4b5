// Package processor hosts the workers that drive subtask executions. Every
// worker consumes items from the shared execution queue, runs the bounded
// retry machine and reports the terminal execution on the owning run's
// completion queue so the round barrier can advance.
package processor
