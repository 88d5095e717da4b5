package execution

// State represents the current state of a subtask execution as it moves
// through the bounded retry machine.
type State string

const (
	// StatePending – created, not yet handed to the processor
	StatePending State = "pending"
	// StateScheduled – published to the execution queue
	StateScheduled State = "scheduled"
	// StateAttempting – a solver+judge attempt is in flight
	StateAttempting State = "attempting"
	// StateRetrying – the last attempt failed verification and attempts remain
	StateRetrying State = "retrying"
	// StatePassed – terminal, a candidate passed verification
	StatePassed State = "passed"
	// StateExhausted – terminal, retries spent; artifact is degraded, not fatal
	StateExhausted State = "exhausted"
)

// IsTerminal reports whether no further attempts will be made.
func (s State) IsTerminal() bool {
	return s == StatePassed || s == StateExhausted
}
