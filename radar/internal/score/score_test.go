package score

import (
	"strings"
	"testing"

	"github.com/hazyhaar/radar/radar/internal/model"
)

func TestConfidence_Components(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		src   model.SourceType
		focus string
		want  int
	}{
		{"empty official doc", "", model.SourceOfficialDoc, "", 28},
		{"empty official repo", "", model.SourceOfficialRepo, "", 24},
		{"empty community", "", model.SourceCommunity, "", 16},
		{"unknown type is other", "", model.SourceType("blog"), "", 16},
		// "instructions" only: one hit, no coding bonus.
		{"one keyword", "Read the instructions.", model.SourceCommunity, "", 16 + 6},
		// "code" hit + coding bonus.
		{"coding bonus", "write code", model.SourceCommunity, "", 16 + 6 + 10},
		// focus term counts as one more keyword.
		{"focus", "kiro instructions", model.SourceCommunity, "Kiro", 16 + 12},
		// 1000 runes of filler: two length points.
		{"length", strings.Repeat("z", 1000), model.SourceCommunity, "", 16 + 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Confidence(tc.text, tc.src, tc.focus); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestConfidence_CaseInsensitiveDistinct(t *testing.T) {
	// WHAT: Repeated keywords count once, regardless of case.
	// WHY: Keyword stuffing should not inflate the score.
	once := Confidence("System Prompt", model.SourceCommunity, "")
	many := Confidence("SYSTEM PROMPT system prompt System Prompt", model.SourceCommunity, "")
	if once != many {
		t.Errorf("once=%d many=%d, want equal", once, many)
	}
}

func TestConfidence_Bounded(t *testing.T) {
	// WHAT: The score never exceeds Max nor drops below zero.
	// WHY: Confidence is a percentage-like value in persisted snapshots.
	all := "system prompt instructions code coding cli assistant agent claude "
	text := strings.Repeat(all, 2000)
	got := Confidence(text, model.SourceOfficialDoc, "claude")
	// 28 + 22 + 40 + 10
	if got != Max {
		t.Errorf("got %d, want %d", got, Max)
	}
	if Confidence("", "", "") < 0 {
		t.Error("negative score")
	}
}

func TestConfidence_Pure(t *testing.T) {
	text := "The assistant follows these instructions when writing code."
	a := Confidence(text, model.SourceOfficialRepo, "claude")
	b := Confidence(text, model.SourceOfficialRepo, "claude")
	if a != b {
		t.Errorf("not pure: %d vs %d", a, b)
	}
}

func TestCodingFocus(t *testing.T) {
	if !CodingFocus("An AGENT for the terminal") {
		t.Error("agent should signal coding focus")
	}
	if CodingFocus("A recipe for bread") {
		t.Error("no coding terms")
	}
}
