// Package retry provides a small reusable retry policy – max attempts, a
// backoff function and a retryable-error predicate – so that every backend
// call site shares the same bounded-retry semantics.
package retry
