// CLAUDE:SUMMARY Re-exports catalog record types as the radar public API.
// Package radar refreshes the content catalogs (news, repository
// registries, skills and AI-tool prompt snapshots) in one cycle.
//
// Each catalog reads its previous JSON snapshot, builds the next one from
// external feeds and search APIs, passes it through a quality gate and
// atomically replaces the file. A failing catalog never blocks the others.
package radar

import (
	"github.com/hazyhaar/radar/radar/internal/journal"
	"github.com/hazyhaar/radar/radar/internal/model"
)

// Re-export record types for the public API.
type (
	ContentItem     = model.ContentItem
	Repository      = model.Repository
	Skill           = model.Skill
	Snapshot        = model.Snapshot
	MonitoredSource = model.MonitoredSource
	SourceStats     = model.SourceStats
	Candidate       = model.Candidate
	PromptProfile   = model.PromptProfile
	PromptCatalog   = model.PromptCatalog
	CatalogResult   = journal.CatalogResult
	FetchEntry      = journal.FetchEntry
)

// Status is a catalog's outcome in one cycle.
type Status string

const (
	StatusOK      Status = "ok"
	StatusAborted Status = "aborted"
	StatusFailed  Status = "failed"
)

// CatalogReport is one catalog's line in a cycle Report.
type CatalogReport struct {
	Catalog string `json:"catalog"`
	Status  Status `json:"status"`
	Items   int    `json:"items"`
	Reason  string `json:"reason,omitempty"`
}
