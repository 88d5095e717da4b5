package retriever

import (
	"strings"
)

// Mode controls search-necessity classification.
type Mode string

const (
	// ModeAlways forces a live search for every research query
	ModeAlways Mode = "always"
	// ModeNever disables live search entirely
	ModeNever Mode = "never"
	// ModeAuto applies the necessity rule cascade
	ModeAuto Mode = "auto"
)

// Rule is one entry of the ordered necessity cascade. Rules are evaluated
// over the combined, lowercased query+goal text; the first match wins.
type Rule struct {
	Name string

	// Matches reports whether the rule applies to the text
	Matches func(text string) bool

	// Search is the verdict when the rule matches
	Search bool
}

// Keyword families feeding the necessity rules. Kept as data so individual
// rules stay independently testable and extensible.
var (
	timeSensitiveKeywords = []string{
		"latest", "current", "today", "recent", "news", "breaking",
		"price", "stock", "weather", "election", "release", "announcement",
		"2023", "2024", "2025", "2026",
	}
	recencyPhrases = []string{
		"as of now", "right now", "this year", "this month", "this week",
		"up to date", "up-to-date", "state of the art", "just released",
	}
	stableKnowledgeKeywords = []string{
		"derivative", "integral", "theorem", "proof", "equation",
		"algebra", "calculus", "geometry", "arithmetic", "polynomial",
		"prime number", "factorial", "logarithm", "matrix", "probability",
	}
	evolvingDomainKeywords = []string{
		"ai ", " ai", "artificial intelligence", "machine learning", "llm",
		"large language model", "framework", "library version", " api",
		"kubernetes", "cloud", "blockchain", "crypto", "quantum computing",
		"cybersecurity", "browser", "operating system",
	}
	conceptualPhrases = []string{
		"what is", "what are", "how does", "how do", "why does", "why is",
		"explain", "define", "describe", "difference between", "compare",
	}
)

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// necessityRules is the ordered cascade applied in auto mode. The final
// catch-all defaults to searching – ambiguity resolves towards evidence.
var necessityRules = []Rule{
	{
		Name:    "time-sensitive",
		Matches: func(text string) bool { return containsAny(text, timeSensitiveKeywords) },
		Search:  true,
	},
	{
		Name:    "recency-signal",
		Matches: func(text string) bool { return containsAny(text, recencyPhrases) },
		Search:  true,
	},
	{
		Name:    "stable-knowledge",
		Matches: func(text string) bool { return containsAny(text, stableKnowledgeKeywords) },
		Search:  false,
	},
	{
		Name:    "evolving-domain",
		Matches: func(text string) bool { return containsAny(text, evolvingDomainKeywords) },
		Search:  true,
	},
	{
		Name: "conceptual-question",
		Matches: func(text string) bool {
			return containsAny(text, conceptualPhrases) && !containsAny(text, evolvingDomainKeywords)
		},
		Search: false,
	},
	{
		Name:    "default",
		Matches: func(string) bool { return true },
		Search:  true,
	},
}

// Classify decides whether the query needs live evidence. It returns the
// verdict together with the name of the rule that produced it.
func Classify(mode Mode, query, goal string) (bool, string) {
	switch mode {
	case ModeAlways:
		return true, "mode-always"
	case ModeNever:
		return false, "mode-never"
	}
	text := strings.ToLower(query + " " + goal)
	for _, rule := range necessityRules {
		if rule.Matches(text) {
			return rule.Search, rule.Name
		}
	}
	// Unreachable – the cascade ends with a catch-all.
	return true, "default"
}
