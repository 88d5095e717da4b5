package retriever

import (
	"sort"
	"strings"

	"github.com/viant/conclave/internal/overlap"
	"github.com/viant/conclave/model/evidence"
)

// Selection knobs for prioritisation and diversification.
type Selection struct {
	// MinRelevance drops records scoring below the threshold
	MinRelevance float64 `json:"minRelevance" yaml:"minRelevance"`

	// MaxSources caps how many records survive selection
	MaxSources int `json:"maxSources" yaml:"maxSources"`

	// PerDomainCap limits how many records one domain may contribute
	PerDomainCap int `json:"perDomainCap" yaml:"perDomainCap"`

	// OverlapThreshold is the key-fact token-overlap ratio above which two
	// records are considered redundant
	OverlapThreshold float64 `json:"overlapThreshold" yaml:"overlapThreshold"`
}

// DefaultSelection returns the standard selection knobs.
func DefaultSelection() Selection {
	return Selection{
		MinRelevance:     0.3,
		MaxSources:       5,
		PerDomainCap:     2,
		OverlapThreshold: 0.3,
	}
}

// promotionalMarkers in a record's quality note penalise its priority.
var promotionalMarkers = []string{
	"sponsored", "promotional", "advertisement", "affiliate", "marketing", "sales pitch",
}

const longURLThreshold = 80

// Priority computes the composite ranking score of one record:
// relevance-weighted with an authority bonus, penalised for excessively long
// URLs and promotional quality markers.
func Priority(record *evidence.SourceRecord) float64 {
	score := record.Relevance * 10
	switch record.Authority {
	case evidence.AuthorityHigh:
		score += 3
	case evidence.AuthorityMedium:
		score += 1
	}
	if len(record.URL) > longURLThreshold {
		score -= 1
	}
	note := strings.ToLower(record.QualityNote)
	for _, marker := range promotionalMarkers {
		if strings.Contains(note, marker) {
			score -= 2
			break
		}
	}
	return score
}

// Prioritize filters, de-duplicates and caps the parsed records. Records
// below the relevance threshold are dropped outright. When more than
// MaxSources remain they are clustered by content similarity (same domain or
// sufficient key-fact token overlap), one best-priority representative is
// kept per cluster, and the remaining slots are filled by next-highest
// priority regardless of cluster, balanced to at most PerDomainCap records
// per domain.
func Prioritize(records []*evidence.SourceRecord, selection Selection) []*evidence.SourceRecord {
	kept := make([]*evidence.SourceRecord, 0, len(records))
	for _, record := range records {
		if record.Relevance >= selection.MinRelevance {
			kept = append(kept, record)
		}
	}
	sortByPriority(kept)
	if selection.MaxSources <= 0 || len(kept) <= selection.MaxSources {
		return kept
	}

	clusters := clusterRecords(kept, selection.OverlapThreshold)

	selected := make([]*evidence.SourceRecord, 0, selection.MaxSources)
	chosen := map[*evidence.SourceRecord]bool{}
	perDomain := map[string]int{}

	// One representative per cluster; clusters inherit the order of their
	// best-priority member because kept is already sorted.
	for _, cluster := range clusters {
		if len(selected) == selection.MaxSources {
			break
		}
		representative := cluster[0]
		selected = append(selected, representative)
		chosen[representative] = true
		perDomain[representative.Domain]++
	}

	// Fill remaining slots by priority regardless of cluster, respecting the
	// per-domain cap.
	for _, record := range kept {
		if len(selected) == selection.MaxSources {
			break
		}
		if chosen[record] {
			continue
		}
		if selection.PerDomainCap > 0 && perDomain[record.Domain] >= selection.PerDomainCap {
			continue
		}
		selected = append(selected, record)
		chosen[record] = true
		perDomain[record.Domain]++
	}

	sortByPriority(selected)
	return selected
}

func sortByPriority(records []*evidence.SourceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return Priority(records[i]) > Priority(records[j])
	})
}

// clusterRecords groups records that share a domain or whose key-fact text
// overlaps beyond the threshold. Input order (priority-descending) is
// preserved, so each cluster's first member is its best representative.
func clusterRecords(records []*evidence.SourceRecord, threshold float64) [][]*evidence.SourceRecord {
	var clusters [][]*evidence.SourceRecord
	for _, record := range records {
		placed := false
		for i, cluster := range clusters {
			if sameCluster(cluster[0], record, threshold) {
				clusters[i] = append(clusters[i], record)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []*evidence.SourceRecord{record})
		}
	}
	return clusters
}

func sameCluster(a, b *evidence.SourceRecord, threshold float64) bool {
	if a.Domain != "" && a.Domain == b.Domain {
		return true
	}
	factsA, factsB := a.KeyFactText(), b.KeyFactText()
	if factsA == "" || factsB == "" {
		return false
	}
	return overlap.Ratio(factsA, factsB) >= threshold
}
