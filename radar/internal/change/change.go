// CLAUDE:SUMMARY Content fingerprinting, new/updated/unchanged classification, carry-forward on source exhaustion, capped timeline.
// Package change tracks prompt snapshots across cycles.
package change

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hazyhaar/radar/radar/internal/model"
)

// TimelineCap is the default number of snapshots kept per tool.
const TimelineCap = 8

// Fingerprint returns the hex SHA-256 of text with whitespace collapsed and trimmed.
func Fingerprint(text string) string {
	norm := strings.Join(strings.Fields(text), " ")
	h := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(h[:])
}

// Classify compares the current fingerprint to the previous one.
func Classify(previousHash, currentHash string) model.ChangeStatus {
	switch {
	case previousHash == "":
		return model.StatusNew
	case previousHash == currentHash:
		return model.StatusUnchanged
	default:
		return model.StatusUpdated
	}
}

// CarryForward rebuilds the latest snapshot when every source failed.
// The previous snapshot is kept verbatim apart from its change record and
// summary. A nil prev yields an empty snapshot with status unknown.
func CarryForward(prev *model.Snapshot, summary string) model.Snapshot {
	var s model.Snapshot
	if prev != nil {
		s = *prev
	}
	s.SourceSummary = summary
	if s.ContentHash != "" {
		s.Change = model.Change{Status: model.StatusUnchanged, PreviousHash: s.ContentHash}
	} else {
		s.Change = model.Change{Status: model.StatusUnknown}
	}
	return s
}

// AppendTimeline prepends snap, removes entries sharing its detectedAt and
// contentHash, and truncates to limit (TimelineCap when limit <= 0).
func AppendTimeline(timeline []model.Snapshot, snap model.Snapshot, limit int) []model.Snapshot {
	if limit <= 0 {
		limit = TimelineCap
	}
	out := make([]model.Snapshot, 0, min(len(timeline)+1, limit))
	seen := make(map[string]struct{}, len(timeline)+1)
	for _, s := range append([]model.Snapshot{snap}, timeline...) {
		k := timelineKey(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

func timelineKey(s model.Snapshot) string {
	return s.DetectedAt.UTC().Format(time.RFC3339Nano) + "|" + s.ContentHash
}
