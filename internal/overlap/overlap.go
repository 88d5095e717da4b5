package overlap

import "strings"

// minTokenLen filters out articles and other short stop words without
// carrying a stop-word list around.
const minTokenLen = 3

// Tokens splits text into a set of lowercased word tokens. Tokens shorter
// than three characters are dropped.
func Tokens(text string) map[string]struct{} {
	result := make(map[string]struct{})
	var token strings.Builder
	flush := func() {
		if token.Len() >= minTokenLen {
			result[strings.ToLower(token.String())] = struct{}{}
		}
		token.Reset()
	}
	for _, r := range text {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			token.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return result
}

// Ratio returns the share of shared tokens between two texts, measured
// against the smaller token set. Two empty texts have a ratio of 0.
func Ratio(a, b string) float64 {
	tokensA := Tokens(a)
	tokensB := Tokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	smaller, larger := tokensA, tokensB
	if len(tokensB) < len(tokensA) {
		smaller, larger = tokensB, tokensA
	}
	shared := 0
	for token := range smaller {
		if _, ok := larger[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(smaller))
}
