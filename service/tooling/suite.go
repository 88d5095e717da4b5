// Package tooling hosts the external test-suite collaborators the judge
// consults. A suite returns named pass/fail results for a candidate
// artifact; the judge's accept decision is the logical AND of those results
// and nothing else.
package tooling

import (
	"context"

	"github.com/viant/conclave/model"
)

// Suite evaluates a candidate artifact and returns named test results. An
// error means the suite itself could not run – the judge degrades it into a
// single failed result rather than aborting the run.
type Suite interface {
	// Name identifies the suite (schema, exec, ...)
	Name() string

	Evaluate(ctx context.Context, subtask *model.Subtask, artifact *model.Artifact) ([]model.TestResult, error)
}

// Stub is a scripted suite for tests: it always returns the configured
// results.
type Stub struct {
	Results []model.TestResult
	Err     error
}

// Name implements Suite.
func (s *Stub) Name() string { return "stub" }

// Evaluate implements Suite.
func (s *Stub) Evaluate(context.Context, *model.Subtask, *model.Artifact) ([]model.TestResult, error) {
	return s.Results, s.Err
}

// AllPass returns a stub suite that reports a single passing result.
func AllPass() *Stub {
	return &Stub{Results: []model.TestResult{{Name: "stub", Passed: true}}}
}

// AllFail returns a stub suite that reports a single failing result.
func AllFail(detail string) *Stub {
	return &Stub{Results: []model.TestResult{{Name: "stub", Passed: false, Detail: detail}}}
}
