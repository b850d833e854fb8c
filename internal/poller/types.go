// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/mate3-sunspec/internal/sunspec"
)

// BlockReport is one walked block and, for blocks with field rules,
// its decoded measurements.
type BlockReport struct {
	Address      uint16               `json:"address"`
	DID          uint16               `json:"did"`
	Name         string               `json:"name"`
	Length       uint16               `json:"length"`
	Known        bool                 `json:"known"`
	Measurements sunspec.Measurements `json:"measurements,omitempty"`
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	DeviceID string
	At       time.Time
	Duration time.Duration

	// Common is nil when the cycle failed before the common block was read.
	Common *sunspec.CommonBlock

	// Blocks is in walk order; the terminator is the last entry on a clean walk.
	Blocks []BlockReport
	Err    error // non-nil means the poll cycle failed
}
