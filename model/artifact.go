package model

import (
	"github.com/viant/conclave/model/evidence"
)

// Artifact is the result of executing one subtask. It is owned exclusively by
// the subtask that produced it and written exactly once into the run's
// artifact table.
type Artifact struct {
	SubtaskID string `json:"subtaskId" yaml:"subtaskId"`

	// Text is the accepted candidate's payload
	Text string `json:"text" yaml:"text"`

	// Citations backing the text, shared by every proposal of the batch
	Citations []string `json:"citations,omitempty" yaml:"citations,omitempty"`

	// Evidence is the bundle the candidate was generated against
	Evidence *evidence.Bundle `json:"evidence,omitempty" yaml:"evidence,omitempty"`

	// Failed marks an artifact whose retries were exhausted – degraded, not fatal
	Failed bool `json:"failed,omitempty" yaml:"failed,omitempty"`

	// Critique carries the last judge note when retries were exhausted
	Critique string `json:"critique,omitempty" yaml:"critique,omitempty"`

	// Attempts counts solver+judge rounds spent on this artifact
	Attempts int `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// HasCitations reports whether the artifact carries at least one non-empty
// citation beyond the internal-knowledge marker.
func (a *Artifact) HasCitations() bool {
	if a == nil {
		return false
	}
	for _, citation := range a.Citations {
		if citation != "" && citation != evidence.InternalKnowledge {
			return true
		}
	}
	return false
}
