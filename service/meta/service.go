// Package meta loads declarative run scenarios: a goal plus optional config
// overrides and prompt parameters, described in YAML. Scenario files may live
// on any storage afs understands (file, s3, gs, embed ...); ${env.KEY}
// expressions are expanded before parsing.
package meta

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"

	"github.com/viant/conclave/internal/yml"
	"github.com/viant/conclave/model/state"
)

// Scenario is one declarative run description.
type Scenario struct {
	Name string
	Goal string

	// Config carries engine config overrides keyed by config field
	Config map[string]interface{}

	// Parameters are named values substituted into the goal text
	Parameters state.Parameters
}

// ExpandedGoal substitutes ${name} parameter placeholders into the goal.
func (s *Scenario) ExpandedGoal() string {
	goal := s.Goal
	for name, value := range s.Parameters.ToMap() {
		goal = strings.ReplaceAll(goal, "${"+name+"}", fmt.Sprintf("%v", value))
	}
	return goal
}

// Service loads scenarios relative to a base URL.
type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// New creates a scenario loader.
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	return &Service{fs: fs, baseURL: baseURL, options: options}
}

// Load reads, expands and parses the scenario at the given location. A
// relative location is resolved against the service base URL.
func (s *Service) Load(ctx context.Context, location string) (*Scenario, error) {
	URL := location
	if s.baseURL != "" && !strings.Contains(location, "://") && !strings.HasPrefix(location, "/") {
		URL = url.Join(s.baseURL, location)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario %s: %w", URL, err)
	}
	return Parse(data)
}

// Parse decodes scenario YAML. ${env.KEY} expressions are expanded first so
// secrets and host-specific values never need to live in the document.
func Parse(data []byte) (*Scenario, error) {
	expanded := expandEnvExpr(string(data))
	var document yaml.Node
	if err := yaml.Unmarshal([]byte(expanded), &document); err != nil {
		return nil, fmt.Errorf("invalid scenario yaml: %w", err)
	}
	if len(document.Content) == 0 {
		return nil, fmt.Errorf("scenario is empty")
	}
	root := (*yml.Node)(document.Content[0])

	scenario := &Scenario{Config: map[string]interface{}{}}
	err := root.Pairs(func(key string, node *yml.Node) error {
		switch strings.ToLower(key) {
		case "name":
			scenario.Name = node.Value
		case "goal":
			scenario.Goal = strings.TrimSpace(node.Value)
		case "config":
			if values, ok := node.Interface().(map[string]interface{}); ok {
				scenario.Config = values
			}
		case "parameters":
			return node.Items(func(_ int, item *yml.Node) error {
				parameter, err := parseParameter(item)
				if err != nil {
					return err
				}
				scenario.Parameters = append(scenario.Parameters, parameter)
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if scenario.Goal == "" {
		return nil, fmt.Errorf("scenario has no goal")
	}
	return scenario, nil
}

func parseParameter(node *yml.Node) (*state.Parameter, error) {
	parameter := &state.Parameter{}
	err := node.Pairs(func(key string, value *yml.Node) error {
		switch strings.ToLower(key) {
		case "name":
			parameter.Name = value.Value
		case "value":
			parameter.Value = value.Interface()
		case "datatype":
			parameter.DataType = value.Value
		case "default":
			parameter.Default = value.Interface()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if parameter.Name == "" {
		return nil, fmt.Errorf("scenario parameter has no name")
	}
	return parameter, nil
}
