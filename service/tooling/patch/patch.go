// Package patch validates unified diffs embedded in coding artifacts and
// generates attempt-over-attempt diffs for the retry audit trail.
package patch

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"
)

// Stats summarises the parsed diff blocks of one artifact.
type Stats struct {
	Blocks  int // fenced ```diff blocks found
	Files   int // file diffs across all blocks
	Added   int // added lines
	Removed int // removed lines
}

// ExtractBlocks returns the contents of every fenced ```diff block in the
// text, without the fences.
func ExtractBlocks(text string) []string {
	var blocks []string
	rest := text
	for {
		start := strings.Index(rest, "```diff")
		if start == -1 {
			return blocks
		}
		rest = rest[start+len("```diff"):]
		rest = strings.TrimPrefix(rest, "\n")
		end := strings.Index(rest, "```")
		if end == -1 {
			// unterminated fence – take the remainder
			blocks = append(blocks, rest)
			return blocks
		}
		blocks = append(blocks, rest[:end])
		rest = rest[end+3:]
	}
}

// Check parses every fenced diff block in the text. It returns aggregate
// stats on success and an error naming the first block that fails to parse
// as a unified diff.
func Check(text string) (Stats, error) {
	blocks := ExtractBlocks(text)
	stats := Stats{Blocks: len(blocks)}
	for i, block := range blocks {
		fileDiffs, err := diff.ParseMultiFileDiff([]byte(block))
		if err != nil {
			return stats, fmt.Errorf("diff block %d does not parse: %w", i+1, err)
		}
		if len(fileDiffs) == 0 {
			return stats, fmt.Errorf("diff block %d contains no file diffs", i+1)
		}
		stats.Files += len(fileDiffs)
		added, removed := countChanges(block)
		stats.Added += added
		stats.Removed += removed
	}
	return stats, nil
}

func countChanges(block string) (added, removed int) {
	for _, line := range strings.Split(block, "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			removed++
		}
	}
	return added, removed
}

// AttemptDiff produces a unified diff between two candidate texts, used to
// record what changed between consecutive solver attempts. Identical inputs
// yield an empty string.
func AttemptDiff(previous, current string, contextLines int) (string, error) {
	if previous == current {
		return "", nil
	}
	if contextLines <= 0 {
		contextLines = 3
	}
	unified := difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous),
		B:        difflib.SplitLines(current),
		FromFile: "attempt (previous)",
		ToFile:   "attempt (current)",
		Context:  contextLines,
	}
	return difflib.GetUnifiedDiffString(unified)
}
