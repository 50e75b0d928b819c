// Package citations extracts source references from generated answers.
package citations

import (
	"net/url"
	"regexp"
	"strings"

	"gemgate/internal/core"
)

var urlRegex = regexp.MustCompile(`https?://[^\s)\]}>"']+`)

// Extract finds every URL mentioned in an answer and returns one citation per
// distinct URL, in order of first appearance. Span is the byte offset of the
// first occurrence. Trailing sentence punctuation is stripped.
func Extract(answer string) []core.Citation {
	matches := urlRegex.FindAllStringIndex(answer, -1)
	citations := []core.Citation{}
	seen := map[string]bool{}

	for _, match := range matches {
		raw := answer[match[0]:match[1]]
		cleaned := strings.TrimRight(raw, ".,;:!?")
		if cleaned == "" || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		citations = append(citations, core.Citation{
			URL:  cleaned,
			Text: Publisher(cleaned),
			Span: match[0],
		})
	}

	return citations
}

// Publisher derives a display name from a URL: the registrable host with the
// www. prefix removed.
func Publisher(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return rawURL
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
