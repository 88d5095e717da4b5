package judge

import (
	"strings"
)

// Rule is one entry of the ordered citation-necessity cascade. Rules are
// evaluated over the lowercased goal text; the first match wins.
type Rule struct {
	Name string

	// Matches reports whether the rule applies to the goal text
	Matches func(text string) bool

	// Required is the verdict when the rule matches
	Required bool
}

// Keyword families feeding the citation rules. Time-sensitive and factual
// goals need external backing; math, code and conceptual goals do not.
var (
	factualKeywords = []string{
		"latest", "current", "today", "recent", "news", "price", "stock",
		"statistic", "population", "election", "release date", "who is",
		"when did", "when was", "where is", "how many",
	}
	mathKeywords = []string{
		"derivative", "integral", "theorem", "proof", "equation", "solve",
		"calculate", "algebra", "calculus", "arithmetic", "polynomial",
	}
	codeKeywords = []string{
		"implement", "refactor", "write a function", "write code", "debug",
		"unit test", "code review", "fix the bug", "patch",
	}
	conceptualKeywords = []string{
		"explain", "describe", "compare", "difference between", "define",
		"summarize", "pros and cons",
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

// citationRules is the ordered cascade. The catch-all requires citations –
// ambiguous goals resolve towards external verification.
var citationRules = []Rule{
	{
		Name:     "factual",
		Matches:  func(text string) bool { return containsAny(text, factualKeywords) },
		Required: true,
	},
	{
		Name:     "math",
		Matches:  func(text string) bool { return containsAny(text, mathKeywords) },
		Required: false,
	},
	{
		Name:     "code",
		Matches:  func(text string) bool { return containsAny(text, codeKeywords) },
		Required: false,
	},
	{
		Name:     "conceptual",
		Matches:  func(text string) bool { return containsAny(text, conceptualKeywords) },
		Required: false,
	},
	{
		Name:     "default",
		Matches:  func(string) bool { return true },
		Required: true,
	},
}

// CitationsRequired decides whether the goal's question class needs external
// citations. It returns the verdict with the name of the deciding rule.
func CitationsRequired(goal string) (bool, string) {
	text := strings.ToLower(goal)
	for _, rule := range citationRules {
		if rule.Matches(text) {
			return rule.Required, rule.Name
		}
	}
	return true, "default"
}
