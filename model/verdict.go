package model

// TestResult is one named pass/fail outcome from the tooling test-suite.
type TestResult struct {
	Name   string `json:"name" yaml:"name"`
	Passed bool   `json:"passed" yaml:"passed"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Verdict is the judge's answer for one candidate artifact. Passed is always
// the logical AND of the tooling test results – the critique is advisory and
// never feeds the decision.
type Verdict struct {
	Passed      bool         `json:"passed" yaml:"passed"`
	Critique    string       `json:"critique,omitempty" yaml:"critique,omitempty"`
	TestResults []TestResult `json:"testResults,omitempty" yaml:"testResults,omitempty"`
}

// NewVerdict builds a verdict whose Passed flag is computed solely from the
// supplied test results. An empty result list passes vacuously.
func NewVerdict(critique string, results []TestResult) Verdict {
	return Verdict{
		Passed:      AllPassed(results),
		Critique:    critique,
		TestResults: results,
	}
}

// AllPassed reports the logical AND over the named test results.
func AllPassed(results []TestResult) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// Failures lists the names of failed tests, used to annotate retries.
func (v *Verdict) Failures() []string {
	var failed []string
	for _, result := range v.TestResults {
		if !result.Passed {
			failed = append(failed, result.Name)
		}
	}
	return failed
}
