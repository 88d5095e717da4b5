package retriever

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conclave/model/evidence"
)

func record(url, domain string, relevance float64, authority evidence.Authority, facts ...string) *evidence.SourceRecord {
	return &evidence.SourceRecord{URL: url, Domain: domain, Relevance: relevance, Authority: authority, KeyFacts: facts}
}

func TestPriority(t *testing.T) {
	high := record("https://a.gov/x", "a.gov", 0.8, evidence.AuthorityHigh)
	assert.InDelta(t, 11.0, Priority(high), 1e-9)

	medium := record("https://b.com/x", "b.com", 0.8, evidence.AuthorityMedium)
	assert.InDelta(t, 9.0, Priority(medium), 1e-9)

	longURL := record("https://b.com/"+strings.Repeat("p", 90), "b.com", 0.8, evidence.AuthorityMedium)
	assert.InDelta(t, 8.0, Priority(longURL), 1e-9)

	promo := record("https://b.com/x", "b.com", 0.8, evidence.AuthorityMedium)
	promo.QualityNote = "clearly sponsored content"
	assert.InDelta(t, 7.0, Priority(promo), 1e-9)
}

func TestPrioritize_DropsBelowThreshold(t *testing.T) {
	records := []*evidence.SourceRecord{
		record("https://a.com/1", "a.com", 0.9, evidence.AuthorityMedium),
		record("https://b.com/2", "b.com", 0.1, evidence.AuthorityHigh),
	}
	selected := Prioritize(records, DefaultSelection())
	require.Len(t, selected, 1)
	assert.Equal(t, "https://a.com/1", selected[0].URL)
}

func TestPrioritize_UnderCapKeepsAll(t *testing.T) {
	records := []*evidence.SourceRecord{
		record("https://a.com/1", "a.com", 0.5, evidence.AuthorityMedium),
		record("https://b.gov/2", "b.gov", 0.5, evidence.AuthorityHigh),
	}
	selected := Prioritize(records, DefaultSelection())
	require.Len(t, selected, 2)
	// authority bonus ranks the gov source first
	assert.Equal(t, "https://b.gov/2", selected[0].URL)
}

func TestPrioritize_ClustersSameDomain(t *testing.T) {
	// Seven records, five from one domain with identical facts – the cluster
	// contributes one representative and the per-domain cap bounds the fill.
	var records []*evidence.SourceRecord
	for i := 0; i < 5; i++ {
		records = append(records, record(
			fmt.Sprintf("https://dup.com/%d", i), "dup.com", 0.9-float64(i)*0.01,
			evidence.AuthorityMedium, "same fact set"))
	}
	records = append(records,
		record("https://one.gov/x", "one.gov", 0.8, evidence.AuthorityHigh, "independent fact"),
		record("https://two.org/y", "two.org", 0.7, evidence.AuthorityMedium, "another fact"),
	)

	selection := DefaultSelection()
	selected := Prioritize(records, selection)
	require.LessOrEqual(t, len(selected), selection.MaxSources)

	perDomain := map[string]int{}
	for _, rec := range selected {
		perDomain[rec.Domain]++
	}
	assert.LessOrEqual(t, perDomain["dup.com"], selection.PerDomainCap)
	assert.Equal(t, 1, perDomain["one.gov"])
	assert.Equal(t, 1, perDomain["two.org"])
}

func TestPrioritize_ClustersByFactOverlap(t *testing.T) {
	base := []string{"quantum computers reached 1000 qubits in trials"}
	var records []*evidence.SourceRecord
	for i := 0; i < 6; i++ {
		records = append(records, record(
			fmt.Sprintf("https://site%d.com/a", i), fmt.Sprintf("site%d.com", i), 0.9,
			evidence.AuthorityMedium, base...))
	}
	selected := Prioritize(records, DefaultSelection())
	// all six overlap into one cluster, then the fill tops up to the cap
	require.LessOrEqual(t, len(selected), DefaultSelection().MaxSources)
	require.NotEmpty(t, selected)
}
