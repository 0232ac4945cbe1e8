package datastore

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffResult represents the differences between two artifact revisions.
type DiffResult struct {
	DiffText   string // Line diff with "- " / "+ " prefixes
	HasChanges bool
	Added      int // Lines only in the new revision
	Removed    int // Lines only in the old revision
}

// CompareArtifacts diffs two revisions of an artifact line by line.
func CompareArtifacts(oldText, newText string) *DiffResult {
	oldText = normalizeLineEndings(oldText)
	newText = normalizeLineEndings(newText)

	if oldText == newText {
		return &DiffResult{}
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	res := &DiffResult{HasChanges: true}
	res.DiffText = generateSimplifiedDiff(diffs, res)
	return res
}

// normalizeLineEndings converts all line endings to \n for consistent comparison.
func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// generateSimplifiedDiff converts line diffs to "- "/"+ " output.
// Unchanged lines are omitted; descriptor documents are short enough that
// the changed lines identify the entry on their own.
func generateSimplifiedDiff(diffs []diffmatchpatch.Diff, res *DiffResult) string {
	var result strings.Builder

	for _, diff := range diffs {
		var prefix string
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		default:
			continue
		}

		for _, line := range strings.Split(strings.TrimSuffix(diff.Text, "\n"), "\n") {
			if line == "" {
				continue
			}
			if diff.Type == diffmatchpatch.DiffDelete {
				res.Removed++
			} else {
				res.Added++
			}
			result.WriteString(prefix)
			result.WriteString(line)
			result.WriteString("\n")
		}
	}

	return result.String()
}
