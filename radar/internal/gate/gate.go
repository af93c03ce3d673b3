// CLAUDE:SUMMARY Pre-write quality gates: minimum counts for news/registries, per-record skill validation, inclusive count band.
// Package gate decides whether a catalog snapshot may be committed.
//
// Gates are pure: they never touch the filesystem. A failing gate returns a
// sentinel error and the caller leaves the previous snapshot in place.
package gate

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/radar/horosafe"
	"github.com/hazyhaar/radar/radar/internal/model"
)

var (
	// ErrBelowMinimum is returned when a catalog has fewer records than required.
	ErrBelowMinimum = errors.New("gate: below minimum record count")
	// ErrOutsideBand is returned when a skills catalog size is outside [min, max].
	ErrOutsideBand = errors.New("gate: record count outside band")
)

// MinCount returns ErrBelowMinimum when n < minimum.
func MinCount(n, minimum int) error {
	if n < minimum {
		return fmt.Errorf("%w: have %d, need %d", ErrBelowMinimum, n, minimum)
	}
	return nil
}

const (
	DefaultMinRecords     = 20
	DefaultMaxRecords     = 30
	DefaultMinSentenceLen = 24
)

// DefaultBannedTerms are marketing words rejected in skill names.
var DefaultBannedTerms = []string{"revolutionary", "agentic", "game-changing", "ultimate", "magic", "10x"}

// SkillPolicy validates skill records and the size of the skills catalog.
type SkillPolicy struct {
	MinRecords     int      `yaml:"min_records"`
	MaxRecords     int      `yaml:"max_records"`
	MinSentenceLen int      `yaml:"min_sentence_len"`
	BannedTerms    []string `yaml:"banned_terms"`
	// Levels lists accepted verification levels. Empty means official and community-verified.
	Levels []model.VerificationLevel `yaml:"levels"`
}

// Defaults fills zero fields.
func (p *SkillPolicy) Defaults() {
	if p.MinRecords <= 0 {
		p.MinRecords = DefaultMinRecords
	}
	if p.MaxRecords <= 0 {
		p.MaxRecords = DefaultMaxRecords
	}
	if p.MinSentenceLen <= 0 {
		p.MinSentenceLen = DefaultMinSentenceLen
	}
	if p.BannedTerms == nil {
		p.BannedTerms = DefaultBannedTerms
	}
	if len(p.Levels) == 0 {
		p.Levels = []model.VerificationLevel{model.LevelOfficial, model.LevelCommunityVerified}
	}
}

// Rejection records a skill dropped by Filter.
type Rejection struct {
	Name   string
	Reason string
}

// Check returns nil if the record passes every per-record rule, or an error
// naming the first rule it breaks.
func (p SkillPolicy) Check(s model.Skill) error {
	fields := []struct{ name, value string }{
		{"name", s.Name},
		{"category", s.Category},
		{"whatItDoes", s.WhatItDoes},
		{"practicalUseCase", s.PracticalUseCase},
		{"sourceName", s.SourceName},
		{"sourceUrl", s.SourceURL},
		{"verificationLevel", string(s.VerificationLevel)},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("missing %s", f.name)
		}
	}
	if !p.levelAllowed(s.VerificationLevel) {
		return fmt.Errorf("verification level %q not allowed", s.VerificationLevel)
	}
	lowerName := strings.ToLower(s.Name)
	for _, term := range p.BannedTerms {
		if term != "" && strings.Contains(lowerName, strings.ToLower(term)) {
			return fmt.Errorf("name contains banned term %q", term)
		}
	}
	if !p.sentenceLike(s.WhatItDoes) {
		return errors.New("whatItDoes is not a sentence")
	}
	if !p.sentenceLike(s.PracticalUseCase) {
		return errors.New("practicalUseCase is not a sentence")
	}
	if !absoluteHTTP(s.SourceURL) {
		return fmt.Errorf("sourceUrl %q is not an absolute http(s) URL", s.SourceURL)
	}
	return nil
}

// Filter keeps records passing Check, in order, and reports the rest.
// Filtering an already-valid list returns it unchanged.
func (p SkillPolicy) Filter(records []model.Skill) ([]model.Skill, []Rejection) {
	kept := make([]model.Skill, 0, len(records))
	var rejected []Rejection
	for _, r := range records {
		if err := p.Check(r); err != nil {
			rejected = append(rejected, Rejection{Name: r.Name, Reason: err.Error()})
			continue
		}
		kept = append(kept, r)
	}
	return kept, rejected
}

// Band returns ErrOutsideBand unless MinRecords <= n <= MaxRecords.
func (p SkillPolicy) Band(n int) error {
	if n < p.MinRecords || n > p.MaxRecords {
		return fmt.Errorf("%w: have %d, want %d..%d", ErrOutsideBand, n, p.MinRecords, p.MaxRecords)
	}
	return nil
}

func (p SkillPolicy) levelAllowed(l model.VerificationLevel) bool {
	for _, ok := range p.Levels {
		if l == ok {
			return true
		}
	}
	return false
}

// sentenceLike: long enough and ends a sentence somewhere.
func (p SkillPolicy) sentenceLike(s string) bool {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < p.MinSentenceLen {
		return false
	}
	return strings.ContainsAny(s, ".!?")
}

func absoluteHTTP(raw string) bool {
	_, err := horosafe.ParseHTTPURL(raw)
	return err == nil
}
