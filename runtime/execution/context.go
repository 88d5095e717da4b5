package execution

import (
	"context"
	"reflect"
)

// ExecutionKey is the context key under which the processor injects the
// current execution before the executor runs, so that downstream
// collaborators (tooling suites, tracing) can correlate their work with the
// subtask attempt.
var ExecutionKey = KeyOf[*Execution]()

// WithExecution returns a context carrying the execution.
func WithExecution(ctx context.Context, anExecution *Execution) context.Context {
	return context.WithValue(ctx, ExecutionKey, anExecution)
}

// ContextValue returns the value of the provided type from the context
func ContextValue[T any](ctx context.Context) T {
	key := KeyOf[T]()
	if value := ctx.Value(key); value != nil {
		return value.(T)
	}
	var t T
	return t
}

// KeyOf returns the reflect.Type of the provided type
func KeyOf[T any]() reflect.Type {
	var a T
	return reflect.TypeOf(a)
}
