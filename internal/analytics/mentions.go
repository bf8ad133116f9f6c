package analytics

import (
	"regexp"
	"sort"
	"strings"

	"github.com/clio-cli/clio/internal/model"
	"github.com/clio-cli/clio/internal/reconstruct"
)

// ExtractedMentions holds issue IDs and file paths found in a
// conversation's text content (supplemented feature #5, adapted from
// ccrider's internal/core/metadata/extractor.go). This is an optional
// enrichment pass, not required by any §4 contract.
type ExtractedMentions struct {
	IssueIDs  []string
	FilePaths []string
}

var issueIDPattern = regexp.MustCompile(`\b([A-Z][A-Z0-9]{1,9}-\d{1,6})\b`)

// filePathPattern matches path-like tokens with a recognizable file
// extension, avoiding bare words that merely contain a slash or dot.
var filePathPattern = regexp.MustCompile(`\b([\w./-]+\.(?:go|py|js|ts|tsx|jsx|rs|java|rb|c|cc|cpp|h|hpp|md|json|yaml|yml|toml|sql))\b`)

// falsePositiveIssuePrefixes filters out common non-issue all-caps
// tokens that otherwise match the issue-ID shape (e.g. "UTF-8").
var falsePositiveIssuePrefixes = map[string]bool{
	"UTF-8": true, "ISO-8601": true, "RFC-4180": true,
}

// ExtractMentions scans every text block on the main thread for
// issue-ID-shaped and file-path-shaped tokens.
func ExtractMentions(conv *reconstruct.Conversation) *ExtractedMentions {
	issueSet := make(map[string]bool)
	pathSet := make(map[string]bool)

	for _, idx := range conv.MainThread() {
		e := conv.Entry(idx)
		for _, block := range contentBlocksOf(e) {
			if block.Kind != model.BlockText {
				continue
			}
			text := block.Text.Text
			for _, m := range issueIDPattern.FindAllString(text, -1) {
				if !falsePositiveIssuePrefixes[m] {
					issueSet[m] = true
				}
			}
			for _, m := range filePathPattern.FindAllString(text, -1) {
				pathSet[strings.TrimSuffix(m, ".")] = true
			}
		}
	}

	return &ExtractedMentions{
		IssueIDs:  sortedKeys(issueSet),
		FilePaths: sortedKeys(pathSet),
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
