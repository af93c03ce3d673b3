// CLAUDE:SUMMARY Pure bounded confidence score for a prompt source text, from source type, length and keyword evidence.
// Package score rates how likely a fetched document is to contain a tool's
// system prompt.
package score

import (
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/radar/radar/internal/model"
)

const (
	BaseOfficialDoc  = 28
	BaseOfficialRepo = 24
	BaseOther        = 16

	// LengthDivisor is the number of runes worth one length point.
	LengthDivisor = 500
	LengthCap     = 22

	KeywordWeight = 6
	KeywordCap    = 40

	CodingBonus = 10

	Max = 100
)

// keywords are matched case-insensitively; the tool focus term is added per call.
var keywords = []string{"system prompt", "instructions", "code", "coding", "cli", "assistant", "agent"}

var codingTerms = []string{"code", "coding", "cli", "agent"}

// Confidence returns a score in [0, Max]. It is a pure function of its inputs.
func Confidence(text string, src model.SourceType, focus string) int {
	lower := strings.ToLower(text)

	s := base(src)
	s += min(LengthCap, utf8.RuneCountInString(text)/LengthDivisor)
	s += min(KeywordCap, KeywordWeight*keywordHits(lower, focus))
	if hasAny(lower, codingTerms) {
		s += CodingBonus
	}
	return max(0, min(Max, s))
}

// CodingFocus reports whether the text mentions coding-oriented terms.
func CodingFocus(text string) bool {
	return hasAny(strings.ToLower(text), codingTerms)
}

func base(src model.SourceType) int {
	switch src {
	case model.SourceOfficialDoc:
		return BaseOfficialDoc
	case model.SourceOfficialRepo:
		return BaseOfficialRepo
	default:
		return BaseOther
	}
}

// keywordHits counts distinct keywords present in lower.
func keywordHits(lower, focus string) int {
	seen := make(map[string]struct{}, len(keywords)+1)
	hits := 0
	check := func(k string) {
		if k == "" {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		if strings.Contains(lower, k) {
			hits++
		}
	}
	check(strings.ToLower(strings.TrimSpace(focus)))
	for _, k := range keywords {
		check(k)
	}
	return hits
}

func hasAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
