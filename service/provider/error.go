package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a typed backend failure carrying the HTTP status so that retry
// predicates can distinguish rate-limit conditions from hard failures.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsRateLimit reports whether the error looks like a transient rate-limit
// condition worth backing off and retrying. It recognises the typed provider
// error (429 and the anthropic 529 overload status) and, as a fallback,
// rate-limit phrasing in plain error text.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.StatusCode == http.StatusTooManyRequests || pErr.StatusCode == 529
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "rate limit") ||
		strings.Contains(text, "rate_limit") ||
		strings.Contains(text, "too many requests") ||
		strings.Contains(text, "overloaded")
}
