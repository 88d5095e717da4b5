package retriever

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/viant/conclave/model"
	"github.com/viant/conclave/model/evidence"
	"github.com/viant/conclave/policy"
	"github.com/viant/conclave/progress"
	"github.com/viant/conclave/service/provider"
	"github.com/viant/conclave/tracing"
)

const fetchRole = "You are a research assistant. Answer with verifiable facts and attribute every claim to its source."

// Config customises the retriever.
type Config struct {
	// Mode forces or disables live search; ModeAuto applies the rule cascade
	Mode Mode `json:"mode" yaml:"mode"`

	Selection Selection `json:"selection" yaml:"selection"`
}

// DefaultConfig returns the standard retriever configuration.
func DefaultConfig() Config {
	return Config{Mode: ModeAuto, Selection: DefaultSelection()}
}

// Service curates external evidence for research subtasks. Retrieval results
// are cached by the literal query string for the lifetime of the run; the
// cache guarantees at most one live fetch per distinct query after a bundle
// has been stored, but two identical queries in flight at the same time may
// still fetch twice.
type Service struct {
	config Config
	client provider.Client

	mux   sync.RWMutex
	cache map[string]*evidence.Bundle
}

// New creates a retriever backed by the given provider client.
func New(client provider.Client, config Config) *Service {
	if config.Mode == "" {
		config.Mode = ModeAuto
	}
	if config.Selection.MaxSources == 0 {
		config.Selection = DefaultSelection()
	}
	return &Service{
		config: config,
		client: client,
		cache:  make(map[string]*evidence.Bundle),
	}
}

// Retrieve classifies the query, fetches and parses source records when live
// evidence is required and returns a structured evidence bundle. Retrieval
// failure is never fatal – the service degrades to a knowledge-based bundle.
func (s *Service) Retrieve(ctx context.Context, query string, kind model.Kind, goal string) (*evidence.Bundle, error) {
	ctx, span := tracing.StartSpan(ctx, "retriever.Retrieve", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	// Only research subtasks ever trigger search; other kinds reuse whatever
	// evidence their dependencies produced.
	if kind != model.KindResearch {
		return evidence.NewInternalBundle(), nil
	}

	s.mux.RLock()
	cached, ok := s.cache[query]
	s.mux.RUnlock()
	if ok {
		return cached, nil
	}

	searched, rule := Classify(s.config.Mode, query, goal)
	span.WithAttributes(map[string]string{"necessity.rule": rule, "searched": fmt.Sprintf("%v", searched)})

	var bundle *evidence.Bundle
	if !searched {
		bundle = evidence.NewInternalBundle()
	} else {
		bundle = s.fetch(ctx, query, goal)
		progress.UpdateCtx(ctx, progress.Delta{Fetches: 1})
	}

	s.mux.Lock()
	s.cache[query] = bundle
	s.mux.Unlock()
	return bundle, nil
}

// fetch issues one backend call requesting factual information with source
// attributions, then parses, filters and prioritises the returned records.
func (s *Service) fetch(ctx context.Context, query, goal string) *evidence.Bundle {
	prompt := fmt.Sprintf(`Research the following query and report factual findings with sources.

Query: %s
Overall goal: %s

After your findings, emit a structured section in exactly this format:

%s
- URL: <source url>
  Relevance: <0.0-1.0>
  Authority: <High|Medium|Low>
  Published: <date if known>
  KeyFacts: <fact one>; <fact two>
  Quality: <one-line content quality note>`, query, goal, blockHeader)

	response, err := s.client.Generate(ctx, &provider.GenerateRequest{
		Role:          fetchRole,
		Prompt:        prompt,
		RequireSearch: true,
	})
	if err != nil {
		log.Printf("retriever: live fetch failed for %q, degrading to internal knowledge: %v", query, err)
		return evidence.NewInternalBundle()
	}

	records := ParseSources(response.Text)
	records = s.filterByPolicy(ctx, records)
	records = Prioritize(records, s.config.Selection)
	if len(records) == 0 {
		return evidence.NewInternalBundle()
	}
	return buildBundle(query, records)
}

// filterByPolicy drops records whose domain the run policy blocks.
func (s *Service) filterByPolicy(ctx context.Context, records []*evidence.SourceRecord) []*evidence.SourceRecord {
	runPolicy := policy.FromContext(ctx)
	if runPolicy == nil {
		return records
	}
	kept := make([]*evidence.SourceRecord, 0, len(records))
	for _, record := range records {
		if runPolicy.IsDomainAllowed(record.Domain) {
			kept = append(kept, record)
		}
	}
	return kept
}

// buildBundle assembles the claim graph: one root node for the query, one
// node per key fact with a supports-edge back to the root, plus source
// metadata for downstream judging.
func buildBundle(query string, records []*evidence.SourceRecord) *evidence.Bundle {
	bundle := &evidence.Bundle{Metadata: evidence.NewMetadata(records, true)}
	root := &evidence.Node{ID: "q", Claim: query}
	bundle.Nodes = append(bundle.Nodes, root)
	factIndex := 0
	for _, record := range records {
		bundle.Sources = append(bundle.Sources, record.URL)
		for _, fact := range record.KeyFacts {
			factIndex++
			node := &evidence.Node{ID: fmt.Sprintf("c%d", factIndex), Claim: fact}
			bundle.Nodes = append(bundle.Nodes, node)
			bundle.Edges = append(bundle.Edges, &evidence.Edge{From: node.ID, To: root.ID, Relation: "supports"})
		}
	}
	return bundle
}
