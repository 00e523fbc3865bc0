package search

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern = regexp.MustCompile(`<[^>]+>`)

	// RE2's \s is [\t\n\f\r ]. The extra ranges bring in \v, the
	// \x1c-\x1f separators, NEL and the Unicode Z category.
	spacePattern = regexp.MustCompile(`[\s\x0b\x1c-\x1f\p{Z}\x{85}]+`)
)

// CleanDescription turns an API snippet into plain text: entities are
// unescaped, tags removed, whitespace runs collapsed to one space and the
// ends trimmed.
func CleanDescription(s string) string {
	s = html.UnescapeString(s)
	s = tagPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
