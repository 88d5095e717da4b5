package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBundle_IsInternal(t *testing.T) {
	assert.True(t, NewInternalBundle().IsInternal())
	assert.True(t, (*Bundle)(nil).IsInternal())

	external := &Bundle{Sources: []string{"https://go.dev/doc"}}
	assert.False(t, external.IsInternal())
	assert.True(t, external.HasExternalSources())
	assert.False(t, NewInternalBundle().HasExternalSources())
}

func TestNewMetadata(t *testing.T) {
	records := []*SourceRecord{
		{URL: "https://nist.gov/report", Relevance: 0.9, Authority: AuthorityHigh},
		{URL: "https://example.org/post", Relevance: 0.5, Authority: AuthorityMedium},
		{URL: "https://blog.example.com/x", Relevance: 0.4, Authority: AuthorityLow},
	}
	meta := NewMetadata(records, true)
	assert.Equal(t, 3, meta.SourceCount)
	assert.InDelta(t, 0.6, meta.AverageRelevance, 0.001)
	assert.Equal(t, 1, meta.HighAuthority)
	assert.Equal(t, 1, meta.MediumAuthority)
	assert.Equal(t, 1, meta.LowAuthority)
	assert.True(t, meta.Searched)

	empty := NewMetadata(nil, false)
	assert.Equal(t, 0, empty.SourceCount)
	assert.Equal(t, 0.0, empty.AverageRelevance)
	assert.False(t, empty.Searched)
}

func TestClampRelevance(t *testing.T) {
	assert.Equal(t, 0.0, ClampRelevance(-0.3))
	assert.Equal(t, 1.0, ClampRelevance(4.2))
	assert.Equal(t, 0.75, ClampRelevance(0.75))
}
