package tooling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conclave/model"
	"github.com/viant/conclave/model/evidence"
)

func resultByName(results []model.TestResult, name string) (model.TestResult, bool) {
	for _, result := range results {
		if result.Name == name {
			return result, true
		}
	}
	return model.TestResult{}, false
}

func TestSchema_Evaluate(t *testing.T) {
	suite := NewSchema(DefaultSchemaConfig())
	testCases := []struct {
		description string
		subtask     *model.Subtask
		artifact    *model.Artifact
		check       string
		passed      bool
	}{
		{
			description: "empty artifact fails text-present",
			subtask:     &model.Subtask{ID: "s1", Kind: model.KindReason},
			artifact:    &model.Artifact{Text: "   "},
			check:       "text-present",
			passed:      false,
		},
		{
			description: "short artifact fails minimum length",
			subtask:     &model.Subtask{ID: "s1", Kind: model.KindReason},
			artifact:    &model.Artifact{Text: "too short"},
			check:       "text-minimum-length",
			passed:      false,
		},
		{
			description: "template marker fails",
			subtask:     &model.Subtask{ID: "s1", Kind: model.KindReason},
			artifact:    &model.Artifact{Text: "the answer is ${placeholder} which was never expanded"},
			check:       "no-template-markers",
			passed:      false,
		},
		{
			description: "research artifact without citations fails",
			subtask:     &model.Subtask{ID: "s1", Kind: model.KindResearch},
			artifact:    &model.Artifact{Text: "a sufficiently long research answer with no sources at all"},
			check:       "citations-present",
			passed:      false,
		},
		{
			description: "research artifact with citations passes",
			subtask:     &model.Subtask{ID: "s1", Kind: model.KindResearch},
			artifact: &model.Artifact{
				Text:      "a sufficiently long research answer grounded in sources",
				Citations: []string{"https://example.org/report"},
			},
			check:  "citations-present",
			passed: true,
		},
		{
			description: "malformed citation url fails",
			subtask:     &model.Subtask{ID: "s1", Kind: model.KindResearch},
			artifact: &model.Artifact{
				Text:      "a sufficiently long research answer grounded in sources",
				Citations: []string{"not a url"},
			},
			check:  "citation-urls-well-formed",
			passed: false,
		},
		{
			description: "internal knowledge marker is exempt from url check",
			subtask:     &model.Subtask{ID: "s1", Kind: model.KindReason},
			artifact: &model.Artifact{
				Text:      "a reasoning answer derived without any external retrieval",
				Citations: []string{evidence.InternalKnowledge},
			},
			check:  "citation-urls-well-formed",
			passed: true,
		},
		{
			description: "coding artifact with broken diff fence fails",
			subtask:     &model.Subtask{ID: "s1", Kind: model.KindCoding},
			artifact:    &model.Artifact{Text: "patch below\n```diff\nnot a diff at all\n```"},
			check:       "diff-blocks-parse",
			passed:      false,
		},
		{
			description: "coding artifact without fences passes vacuously",
			subtask:     &model.Subtask{ID: "s1", Kind: model.KindCoding},
			artifact:    &model.Artifact{Text: "just prose describing the change, long enough to pass"},
			check:       "diff-blocks-parse",
			passed:      true,
		},
	}

	for _, testCase := range testCases {
		results, err := suite.Evaluate(context.Background(), testCase.subtask, testCase.artifact)
		require.NoError(t, err, testCase.description)
		result, ok := resultByName(results, testCase.check)
		require.True(t, ok, testCase.description)
		assert.Equal(t, testCase.passed, result.Passed, testCase.description)
	}
}

func TestSchema_NilArtifact(t *testing.T) {
	suite := NewSchema(SchemaConfig{})
	_, err := suite.Evaluate(context.Background(), &model.Subtask{ID: "s1"}, nil)
	assert.Error(t, err)
}
