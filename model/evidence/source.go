package evidence

// Authority grades how trustworthy a source domain is considered.
type Authority string

const (
	AuthorityHigh   Authority = "High"
	AuthorityMedium Authority = "Medium"
	AuthorityLow    Authority = "Low"
)

// SourceRecord is a parsed, scored representation of one external citation.
// Records are created per retrieval call and never persisted beyond the run.
type SourceRecord struct {
	URL         string    `json:"url" yaml:"url"`
	Domain      string    `json:"domain,omitempty" yaml:"domain,omitempty"`
	Relevance   float64   `json:"relevance" yaml:"relevance"`
	Authority   Authority `json:"authority,omitempty" yaml:"authority,omitempty"`
	PublishedAt string    `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`
	KeyFacts    []string  `json:"keyFacts,omitempty" yaml:"keyFacts,omitempty"`
	QualityNote string    `json:"qualityNote,omitempty" yaml:"qualityNote,omitempty"`
}

// ClampRelevance forces a relevance score into the [0,1] interval.
func ClampRelevance(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// KeyFactText joins the record's key facts for similarity comparison.
func (r *SourceRecord) KeyFactText() string {
	text := ""
	for i, fact := range r.KeyFacts {
		if i > 0 {
			text += " "
		}
		text += fact
	}
	return text
}
