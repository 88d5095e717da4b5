package solver

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conclave/model"
	"github.com/viant/conclave/model/evidence"
	"github.com/viant/conclave/runtime/run"
	"github.com/viant/conclave/service/provider"
)

type stubRetriever struct {
	bundle *evidence.Bundle
	calls  int
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string, _ model.Kind, _ string) (*evidence.Bundle, error) {
	s.calls++
	if s.bundle != nil {
		return s.bundle, nil
	}
	return evidence.NewInternalBundle(), nil
}

func testPlan(subtasks ...*model.Subtask) *model.Plan {
	return &model.Plan{Subtasks: subtasks}
}

func TestVote(t *testing.T) {
	testCases := []struct {
		description string
		proposals   []Proposal
		expectIndex int
	}{
		{
			description: "first wins when lengths are comparable",
			proposals: []Proposal{
				{Index: 0, Text: strings.Repeat("a", 100)},
				{Index: 1, Text: strings.Repeat("b", 110)},
			},
			expectIndex: 0,
		},
		{
			description: "a proposal more than 20% longer wins",
			proposals: []Proposal{
				{Index: 0, Text: strings.Repeat("a", 100)},
				{Index: 1, Text: strings.Repeat("b", 130)},
			},
			expectIndex: 1,
		},
		{
			description: "first among equally long challengers wins",
			proposals: []Proposal{
				{Index: 0, Text: strings.Repeat("a", 100)},
				{Index: 1, Text: strings.Repeat("b", 150)},
				{Index: 2, Text: strings.Repeat("c", 150)},
			},
			expectIndex: 1,
		},
		{
			description: "single proposal wins trivially",
			proposals:   []Proposal{{Index: 0, Text: "only"}},
			expectIndex: 0,
		},
	}
	for _, testCase := range testCases {
		winner := Vote(testCase.proposals)
		assert.Equal(t, testCase.expectIndex, winner.Index, testCase.description)
	}
}

func TestVote_Empty(t *testing.T) {
	assert.Equal(t, Proposal{}, Vote(nil))
}

func TestPropose_ResearchUsesRetriever(t *testing.T) {
	bundle := &evidence.Bundle{
		Sources: []string{"https://www.noaa.gov/report"},
		Nodes:   []*evidence.Node{{ID: "c1", Claim: "sea levels rose 4mm last year"}},
	}
	retriever := &stubRetriever{bundle: bundle}
	client := provider.NewMock().WithFallback("a grounded answer")
	service := New(client, retriever, DefaultConfig())

	subtask := model.NewSubtask("s1", model.KindResearch, "sea level trend")
	session := run.NewSession("r1", "goal", testPlan(subtask))
	proposals, err := service.Propose(context.Background(), subtask, session, 3, "goal")
	require.NoError(t, err)
	require.Len(t, proposals, 3)
	assert.Equal(t, 1, retriever.calls)

	for i, proposal := range proposals {
		assert.Equal(t, i, proposal.Index)
		assert.Equal(t, bundle.Sources, proposal.Citations)
		assert.False(t, proposal.Degraded)
	}
	// Temperatures spread monotonically from the base.
	assert.InDelta(t, 0.4, proposals[0].Temperature, 1e-9)
	assert.InDelta(t, 0.55, proposals[1].Temperature, 1e-9)
	assert.InDelta(t, 0.7, proposals[2].Temperature, 1e-9)

	// The shared prompt carries the evidence claims and sources.
	calls := client.Calls()
	require.Len(t, calls, 3)
	assert.Contains(t, calls[0].Prompt, "sea levels rose 4mm")
	assert.Contains(t, calls[0].Prompt, "https://www.noaa.gov/report")
}

func TestPropose_ReasonReusesDependencyEvidence(t *testing.T) {
	research := model.NewSubtask("s1", model.KindResearch, "find facts")
	reason := model.NewSubtask("s2", model.KindReason, "reason over facts").WithDependsOn("s1")
	session := run.NewSession("r1", "goal", testPlan(research, reason))
	session.MarkDone(&model.Artifact{
		SubtaskID: "s1",
		Text:      "facts",
		Citations: []string{"https://www.who.int/data"},
	})

	retriever := &stubRetriever{}
	service := New(provider.NewMock(), retriever, DefaultConfig())
	proposals, err := service.Propose(context.Background(), reason, session, 2, "goal")
	require.NoError(t, err)
	require.Len(t, proposals, 2)
	assert.Zero(t, retriever.calls, "non-research kinds must not trigger retrieval")
	assert.Equal(t, []string{"https://www.who.int/data"}, proposals[0].Citations)
}

func TestPropose_NoDependencyEvidenceFallsBackToInternal(t *testing.T) {
	reason := model.NewSubtask("s1", model.KindMath, "compute")
	session := run.NewSession("r1", "goal", testPlan(reason))
	service := New(provider.NewMock(), &stubRetriever{}, DefaultConfig())

	proposals, err := service.Propose(context.Background(), reason, session, 1, "goal")
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, []string{evidence.InternalKnowledge}, proposals[0].Citations)
}

func TestPropose_DegradedFallback(t *testing.T) {
	client := provider.NewMock().FailFirst(10, &provider.Error{Provider: "mock", StatusCode: 500, Message: "boom"})
	service := New(client, &stubRetriever{}, DefaultConfig())

	subtask := model.NewSubtask("s1", model.KindGeneral, "do it")
	session := run.NewSession("r1", "goal", testPlan(subtask))
	proposals, err := service.Propose(context.Background(), subtask, session, 2, "goal")
	require.NoError(t, err, "the batch never fully fails")
	require.Len(t, proposals, 2)
	for _, proposal := range proposals {
		assert.True(t, proposal.Degraded)
		assert.NotEmpty(t, proposal.Text)
	}
}

func TestPropose_RateLimitRetriesOnce(t *testing.T) {
	client := provider.NewMock().
		WithFallback("recovered").
		FailFirst(1, &provider.Error{Provider: "mock", StatusCode: 429, Message: "rate limit"})
	config := Config{TemperatureBase: 0.4, TemperatureStep: 0.15}
	service := New(client, &stubRetriever{}, config)

	subtask := model.NewSubtask("s1", model.KindGeneral, "do it")
	session := run.NewSession("r1", "goal", testPlan(subtask))
	proposals, err := service.Propose(context.Background(), subtask, session, 1, "goal")
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.False(t, proposals[0].Degraded)
	assert.Equal(t, "recovered", proposals[0].Text)
	assert.Equal(t, 2, client.CallCount())
}
