package evidence

// InternalKnowledge is the marker source used when a bundle was produced
// without live search – the answer relies on the model's own knowledge.
const InternalKnowledge = "internal-knowledge"

type (
	// Node is a single claim in the claim graph.
	Node struct {
		ID    string `json:"id" yaml:"id"`
		Claim string `json:"claim" yaml:"claim"`
	}

	// Edge relates two claims.
	Edge struct {
		From     string `json:"from" yaml:"from"`
		To       string `json:"to" yaml:"to"`
		Relation string `json:"relation,omitempty" yaml:"relation,omitempty"`
	}

	// SourceMetadata summarises the curated sources for downstream judging.
	SourceMetadata struct {
		SourceCount      int     `json:"sourceCount" yaml:"sourceCount"`
		AverageRelevance float64 `json:"averageRelevance" yaml:"averageRelevance"`
		HighAuthority    int     `json:"highAuthority" yaml:"highAuthority"`
		MediumAuthority  int     `json:"mediumAuthority" yaml:"mediumAuthority"`
		LowAuthority     int     `json:"lowAuthority" yaml:"lowAuthority"`
		Searched         bool    `json:"searched" yaml:"searched"`
	}

	// Bundle is a claim graph backing one proposal. It is produced by the
	// retriever and consumed read-only by the solver and the judge.
	Bundle struct {
		Nodes    []*Node         `json:"nodes,omitempty" yaml:"nodes,omitempty"`
		Edges    []*Edge         `json:"edges,omitempty" yaml:"edges,omitempty"`
		Sources  []string        `json:"sources,omitempty" yaml:"sources,omitempty"`
		Metadata *SourceMetadata `json:"sourceMetadata,omitempty" yaml:"sourceMetadata,omitempty"`
	}
)

// NewInternalBundle returns a bundle carrying the internal-knowledge marker.
func NewInternalBundle() *Bundle {
	return &Bundle{
		Sources:  []string{InternalKnowledge},
		Metadata: &SourceMetadata{Searched: false},
	}
}

// IsInternal reports whether the bundle carries only the internal marker.
func (b *Bundle) IsInternal() bool {
	if b == nil {
		return true
	}
	return len(b.Sources) == 1 && b.Sources[0] == InternalKnowledge
}

// HasExternalSources reports whether at least one source is a real citation
// rather than the internal-knowledge marker.
func (b *Bundle) HasExternalSources() bool {
	if b == nil {
		return false
	}
	for _, source := range b.Sources {
		if source != "" && source != InternalKnowledge {
			return true
		}
	}
	return false
}

// Claims lists the claim texts across the graph's nodes in graph order.
func (b *Bundle) Claims() []string {
	if b == nil {
		return nil
	}
	var claims []string
	for _, node := range b.Nodes {
		if node.Claim != "" {
			claims = append(claims, node.Claim)
		}
	}
	return claims
}

// NewMetadata aggregates counts and averages over the supplied records.
func NewMetadata(records []*SourceRecord, searched bool) *SourceMetadata {
	meta := &SourceMetadata{SourceCount: len(records), Searched: searched}
	if len(records) == 0 {
		return meta
	}
	var total float64
	for _, record := range records {
		total += record.Relevance
		switch record.Authority {
		case AuthorityHigh:
			meta.HighAuthority++
		case AuthorityLow:
			meta.LowAuthority++
		default:
			meta.MediumAuthority++
		}
	}
	meta.AverageRelevance = total / float64(len(records))
	return meta
}
