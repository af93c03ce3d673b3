// CLAUDE:SUMMARY Deterministic free-text cleanup: CDATA, entities, tags, stray attributes, raw URLs, whitespace.
// Package sanitize turns feed and API free text into plain display text.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	cdataRe = regexp.MustCompile(`<!\[CDATA\[|\]\]>`)
	// attr="value" / attr='value' fragments left behind by broken markup.
	attrRe  = regexp.MustCompile(`(?i)(?:^|\s)[a-z][a-z0-9_:-]*\s*=\s*(?:"[^"]*"|'[^']*')`)
	urlRe   = regexp.MustCompile(`https?://\S+`)
	spaceRe = regexp.MustCompile(`\s+`)

	entities = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", `"`,
		"&#39;", "'",
	)

	strict = newStrictPolicy()
)

func newStrictPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}

// Text returns s with CDATA wrappers, markup, stray attributes and raw URLs
// removed and whitespace collapsed.
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = cdataRe.ReplaceAllString(s, "")
	// Escaped markup is decoded first so it is stripped like real markup.
	s = entities.Replace(s)
	// bluemonday re-escapes the text it keeps.
	s = html.UnescapeString(strict.Sanitize(s))
	s = attrRe.ReplaceAllString(s, " ")
	s = urlRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Link cleans a URL field: CDATA and entities are resolved and surrounding
// whitespace trimmed. Anything after embedded whitespace is discarded.
func Link(s string) string {
	s = cdataRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(entities.Replace(s))
	if i := strings.IndexFunc(s, func(r rune) bool { return r == ' ' || r == '\n' || r == '\t' || r == '\r' }); i >= 0 {
		s = s[:i]
	}
	return s
}
