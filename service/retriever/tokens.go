package retriever

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes for the source-evaluation block grammar.
const (
	whitespaceCode = iota
	dashCode
	colonCode
	fieldNameCode
	lineValueCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	dashToken       = parsly.NewToken(dashCode, "-", matcher.NewByte('-'))
	colonToken      = parsly.NewToken(colonCode, ":", matcher.NewByte(':'))
	fieldNameToken  = parsly.NewToken(fieldNameCode, "FieldName", &fieldNameMatcher{})
	lineValueToken  = parsly.NewToken(lineValueCode, "LineValue", &lineValueMatcher{})
)

// fieldNameMatcher matches a field label (letters only) followed by a colon,
// without consuming the colon.
type fieldNameMatcher struct{}

func (m *fieldNameMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	matched := 0
	for i := pos; i < size; i++ {
		c := input[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			matched++
			continue
		}
		if c == ':' && matched > 0 {
			return matched
		}
		return 0
	}
	return 0
}

// lineValueMatcher captures everything up to the end of the line.
type lineValueMatcher struct{}

func (m *lineValueMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	matched := 0
	for i := pos; i < size; i++ {
		if input[i] == '\n' || input[i] == '\r' {
			break
		}
		matched++
	}
	return matched
}
