// CLAUDE:SUMMARY Catalog record types shared by every radar pipeline stage and persisted as JSON.
// Package model defines the records radar persists: news items, repository
// records, skills, and prompt tool profiles.
package model

import "time"

// ContentItem is one news entry normalized from a feed.
type ContentItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      string    `json:"source"`
}

// Provenance tags a repository record as official or community.
type Provenance string

const (
	Official  Provenance = "official"
	Community Provenance = "community"
)

// Repository is one entry of a registry catalog.
type Repository struct {
	Name        string     `json:"name"`
	RepoURL     string     `json:"repoUrl"`
	Description string     `json:"description"`
	Stars       int        `json:"stars"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	VerifiedAt  time.Time  `json:"verifiedAt,omitzero"`
	Source      Provenance `json:"source"`
}

// VerificationLevel is the provenance tag of a skill record.
type VerificationLevel string

const (
	LevelOfficial          VerificationLevel = "official"
	LevelCommunityVerified VerificationLevel = "community-verified"
)

// Skill is one curated capability record.
type Skill struct {
	Name              string            `json:"name" yaml:"name"`
	Category          string            `json:"category" yaml:"category"`
	WhatItDoes        string            `json:"whatItDoes" yaml:"whatItDoes"`
	PracticalUseCase  string            `json:"practicalUseCase" yaml:"practicalUseCase"`
	SourceName        string            `json:"sourceName" yaml:"sourceName"`
	SourceURL         string            `json:"sourceUrl" yaml:"sourceUrl"`
	VerificationLevel VerificationLevel `json:"verificationLevel" yaml:"verificationLevel"`
}

// SourceType weighs a prompt source in confidence scoring.
type SourceType string

const (
	SourceOfficialDoc  SourceType = "official-doc"
	SourceOfficialRepo SourceType = "official-repo"
	SourceCommunity    SourceType = "community"
)

// ChangeStatus classifies an entity against the previous cycle.
type ChangeStatus string

const (
	StatusNew       ChangeStatus = "new"
	StatusUpdated   ChangeStatus = "updated"
	StatusUnchanged ChangeStatus = "unchanged"
	StatusUnknown   ChangeStatus = "unknown"
)

// Change records the status of a snapshot and the hash it was compared to.
type Change struct {
	Status       ChangeStatus `json:"status"`
	PreviousHash string       `json:"previousHash,omitempty"`
}

// Snapshot is one observation of a tool's prompt.
type Snapshot struct {
	SnapshotID    string    `json:"snapshotId"`
	DetectedAt    time.Time `json:"detectedAt"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	ContentHash   string    `json:"contentHash"`
	Confidence    int       `json:"confidence"`
	Excerpt       string    `json:"excerpt"`
	SourceSummary string    `json:"sourceSummary"`
	CodingFocus   bool      `json:"codingFocus"`
	Change        Change    `json:"change"`
}

// MonitoredSource reports how one prompt source fared this cycle.
type MonitoredSource struct {
	Label      string     `json:"label"`
	URL        string     `json:"url"`
	Type       SourceType `json:"type"`
	Status     string     `json:"status"` // "ok" | "unavailable"
	Reason     string     `json:"reason,omitempty"`
	Confidence int        `json:"confidence"`
}

// SourceStats aggregates MonitoredSource outcomes.
type SourceStats struct {
	Total          int `json:"total"`
	Reachable      int `json:"reachable"`
	Failed         int `json:"failed"`
	BestConfidence int `json:"bestConfidence"`
}

// Candidate is a repository or page related to a tool's prompt.
type Candidate struct {
	Title     string    `json:"title" yaml:"title"`
	URL       string    `json:"url" yaml:"url"`
	Stars     int       `json:"stars,omitempty" yaml:"stars"`
	UpdatedAt time.Time `json:"updatedAt,omitzero" yaml:"-"`
}

// PromptProfile is the persisted state of one monitored tool.
type PromptProfile struct {
	Tool             string            `json:"tool"`
	DisplayName      string            `json:"displayName"`
	Latest           Snapshot          `json:"latest"`
	Timeline         []Snapshot        `json:"timeline"`
	MonitoredSources []MonitoredSource `json:"monitoredSources"`
	SourceStats      SourceStats       `json:"sourceStats"`
	Candidates       []Candidate       `json:"candidates"`
}

// PromptCatalog is the prompts.json document.
type PromptCatalog struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Tools       []PromptProfile `json:"tools"`
}
