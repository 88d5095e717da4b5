package retriever

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/viant/conclave/model/evidence"
	"github.com/viant/parsly"
	"github.com/viant/toolbox"
)

// blockHeader starts the structured source-evaluation section the fetch
// prompt explicitly asks the backend to emit.
const blockHeader = "SOURCE EVALUATION:"

// defaultRelevance is assigned when a parser branch yields no usable score.
const defaultRelevance = 0.5

// ParseSources extracts source records from a raw backend response by a
// cascade of three strategies, applied in order until one yields results:
// the structured source-evaluation block, the tagged citation format, and
// bare-URL extraction as a last resort. Every branch clamps relevance to
// [0,1] and derives the authority tier from the source domain.
func ParseSources(text string) []*evidence.SourceRecord {
	if records := parseEvaluationBlock(text); len(records) > 0 {
		return records
	}
	if records := parseTaggedCitations(text); len(records) > 0 {
		return records
	}
	return parseBareURLs(text)
}

// parseEvaluationBlock parses the structured section:
//
//	SOURCE EVALUATION:
//	- URL: https://example.gov/report
//	  Relevance: 0.9
//	  Authority: High
//	  Published: 2024-03-01
//	  KeyFacts: first fact; second fact
//	  Quality: concise primary report
func parseEvaluationBlock(text string) []*evidence.SourceRecord {
	idx := strings.Index(text, blockHeader)
	if idx == -1 {
		return nil
	}
	section := text[idx+len(blockHeader):]
	cursor := parsly.NewCursor("", []byte(section), 0)

	var records []*evidence.SourceRecord
	var current *evidence.SourceRecord
	for {
		matched := cursor.MatchAfterOptional(whitespaceToken, dashToken, fieldNameToken)
		switch matched.Code {
		case dashToken.Code:
			current = nil
			continue
		case fieldNameToken.Code:
		default:
			return finalizeRecords(records)
		}
		name := matched.Text(cursor)

		if matched = cursor.MatchOne(colonToken); matched.Code != colonToken.Code {
			return finalizeRecords(records)
		}
		matched = cursor.MatchAfterOptional(whitespaceToken, lineValueToken)
		value := ""
		if matched.Code == lineValueToken.Code {
			value = strings.TrimSpace(matched.Text(cursor))
		}

		if strings.EqualFold(name, "URL") {
			current = &evidence.SourceRecord{URL: value, Relevance: defaultRelevance}
			records = append(records, current)
			continue
		}
		if current == nil {
			continue
		}
		switch strings.ToLower(name) {
		case "relevance":
			current.Relevance = toolbox.AsFloat(value)
		case "authority":
			current.Authority = parseAuthority(value)
		case "published":
			current.PublishedAt = value
		case "keyfacts":
			current.KeyFacts = splitFacts(value)
		case "quality":
			current.QualityNote = value
		}
	}
}

var taggedCitationPattern = regexp.MustCompile(`(?s)<citation\s+url="([^"]+)"(?:\s+relevance="([^"]+)")?\s*>(.*?)</citation>`)

// parseTaggedCitations parses the platform-native tagged citation format
// <citation url="..." relevance="...">key facts</citation>.
func parseTaggedCitations(text string) []*evidence.SourceRecord {
	matches := taggedCitationPattern.FindAllStringSubmatch(text, -1)
	var records []*evidence.SourceRecord
	for _, match := range matches {
		record := &evidence.SourceRecord{URL: match[1], Relevance: defaultRelevance}
		if match[2] != "" {
			record.Relevance = toolbox.AsFloat(match[2])
		}
		if facts := strings.TrimSpace(match[3]); facts != "" {
			record.KeyFacts = splitFacts(facts)
		}
		records = append(records, record)
	}
	return finalizeRecords(records)
}

var bareURLPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// parseBareURLs extracts plain URLs as a last resort.
func parseBareURLs(text string) []*evidence.SourceRecord {
	matches := bareURLPattern.FindAllString(text, -1)
	seen := map[string]bool{}
	var records []*evidence.SourceRecord
	for _, raw := range matches {
		cleaned := strings.TrimRight(raw, ".,;:")
		if seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		records = append(records, &evidence.SourceRecord{URL: cleaned, Relevance: defaultRelevance})
	}
	return finalizeRecords(records)
}

// finalizeRecords drops records without a usable URL, fills in the domain,
// clamps relevance and derives the authority tier when unset.
func finalizeRecords(records []*evidence.SourceRecord) []*evidence.SourceRecord {
	result := make([]*evidence.SourceRecord, 0, len(records))
	for _, record := range records {
		domain := domainOf(record.URL)
		if domain == "" {
			continue
		}
		record.Domain = domain
		record.Relevance = evidence.ClampRelevance(record.Relevance)
		if record.Authority == "" {
			record.Authority = AuthorityOf(domain)
		}
		result = append(result, record)
	}
	return result
}

func parseAuthority(value string) evidence.Authority {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "high":
		return evidence.AuthorityHigh
	case "low":
		return evidence.AuthorityLow
	case "medium":
		return evidence.AuthorityMedium
	}
	// Unknown grades fall back to the domain heuristics.
	return ""
}

func splitFacts(value string) []string {
	parts := strings.Split(value, ";")
	var facts []string
	for _, part := range parts {
		if fact := strings.TrimSpace(part); fact != "" {
			facts = append(facts, fact)
		}
	}
	return facts
}

func domainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))
}
