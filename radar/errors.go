// CLAUDE:SUMMARY Sentinel errors for radar catalogs: gate aborts, missing sources, recovered panics.
package radar

import (
	"errors"
	"fmt"

	"github.com/hazyhaar/radar/radar/internal/gate"
)

// ErrBelowMinimum aborts a news or registry write with too few records.
var ErrBelowMinimum = gate.ErrBelowMinimum

// ErrOutsideBand aborts a skills write whose size is outside the configured band.
var ErrOutsideBand = gate.ErrOutsideBand

// ErrNoSources is returned by a catalog configured without any source.
var ErrNoSources = errors.New("radar: catalog has no sources configured")

// PanicError wraps a panic recovered at a catalog boundary.
type PanicError struct {
	Catalog string
	Value   any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("radar: catalog %s panicked: %v", e.Catalog, e.Value)
}

// aborted reports whether err is a quality-gate refusal rather than a fault.
func aborted(err error) bool {
	return errors.Is(err, ErrBelowMinimum) || errors.Is(err, ErrOutsideBand)
}
