// Package idgen provides pluggable ID generation for radar runs and snapshots.
//
// Components accept a Generator so tests can swap the time-sortable default
// for a deterministic sequence.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
// Time-sortable, which keeps journal rows and snapshot IDs in run order.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID
// (e.g. "run_", "snap_").
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Sequence returns a Generator that yields prefix1, prefix2, ... Safe for
// concurrent use. Intended for tests.
func Sequence(prefix string) Generator {
	var n atomic.Int64
	return func() string {
		return prefix + strconv.FormatInt(n.Add(1), 10)
	}
}

// Default is UUIDv7.
var Default Generator = UUIDv7()

// RunID produces a run identifier ("run_<uuidv7>").
func RunID() string {
	return "run_" + Default()
}

// SnapshotID produces a prompt snapshot identifier ("snap_<uuidv7>").
func SnapshotID() string {
	return "snap_" + Default()
}
