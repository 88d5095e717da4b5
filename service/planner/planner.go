// Package planner decomposes a goal into a dependency-ordered plan of
// subtasks. Planning is a single generation call; any parse or validation
// failure falls back to a fixed three-step plan so a run can always start.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/viant/conclave/model"
	"github.com/viant/conclave/service/provider"
	"github.com/viant/conclave/tracing"
	"github.com/viant/structology/conv"
)

const planRole = "You are a planning assistant. Decompose the goal into the smallest useful set of subtasks. Respond with JSON only."

const planPromptTemplate = `Decompose this goal into 1-%d subtasks forming a dependency graph.

Goal: %s

Respond with exactly this JSON shape and nothing else:
{
  "subtasks": [
    {"id": "s1", "kind": "research", "prompt": "...", "dependsOn": []},
    {"id": "s2", "kind": "reason", "prompt": "...", "dependsOn": ["s1"]}
  ]
}

Allowed kinds: %s. Dependencies must reference earlier subtask ids and must not form cycles.`

// Service turns a goal into a validated plan.
type Service struct {
	client    provider.Client
	converter *conv.Converter
}

// New creates a planner backed by the given provider client.
func New(client provider.Client) *Service {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	return &Service{client: client, converter: conv.NewConverter(options)}
}

// Plan produces the plan for a goal. The second return value reports whether
// the fixed fallback plan was substituted – callers record it on the audit
// trail, it is not an error.
func (s *Service) Plan(ctx context.Context, goal string) (*model.Plan, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "planner.Plan", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if strings.TrimSpace(goal) == "" {
		err = fmt.Errorf("goal is empty")
		return nil, false, err
	}
	if s.client == nil {
		return FallbackPlan(goal), true, nil
	}

	kinds := make([]string, 0, len(model.Kinds()))
	for _, kind := range model.Kinds() {
		kinds = append(kinds, string(kind))
	}
	response, genErr := s.client.Generate(ctx, &provider.GenerateRequest{
		Role:   planRole,
		Prompt: fmt.Sprintf(planPromptTemplate, model.MaxSubtasks, goal, strings.Join(kinds, ", ")),
	})
	if genErr != nil {
		log.Printf("planner: generation failed, using fallback plan: %v", genErr)
		return FallbackPlan(goal), true, nil
	}

	plan, parseErr := s.parse(response.Text, goal)
	if parseErr != nil {
		log.Printf("planner: %v, using fallback plan", parseErr)
		return FallbackPlan(goal), true, nil
	}
	return plan, false, nil
}

// parse converts the model's JSON into a validated plan.
func (s *Service) parse(text, goal string) (*model.Plan, error) {
	payload := stripFences(text)
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("plan response is not valid JSON: %w", err)
	}
	plan := &model.Plan{}
	if err := s.converter.Convert(raw, plan); err != nil {
		return nil, fmt.Errorf("plan response has unexpected shape: %w", err)
	}
	plan.Goal = goal
	if issues := plan.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("plan failed validation: %v", issues[0])
	}
	return plan, nil
}

// stripFences removes a markdown code fence wrapping the JSON payload.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if end := strings.LastIndex(trimmed, "```"); end != -1 {
		trimmed = trimmed[:end]
	}
	return strings.TrimSpace(trimmed)
}

// FallbackPlan is the fixed research → reason → synthesis decomposition used
// when the model cannot produce a valid plan.
func FallbackPlan(goal string) *model.Plan {
	plan := model.NewPlan(goal)
	plan.NewSubtask("s1", model.KindResearch, fmt.Sprintf("Gather the key facts needed to address: %s", goal))
	plan.NewSubtask("s2", model.KindReason, fmt.Sprintf("Reason over the gathered facts to address: %s", goal)).
		WithDependsOn("s1")
	plan.NewSubtask("s3", model.KindSynthesis, fmt.Sprintf("Synthesise a final, complete answer to: %s", goal)).
		WithDependsOn("s2")
	return plan
}
