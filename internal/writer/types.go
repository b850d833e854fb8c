// internal/writer/types.go
package writer

import (
	"context"
	"time"

	"github.com/tamzrod/mate3-sunspec/internal/poller"
	"github.com/tamzrod/mate3-sunspec/internal/sunspec"
)

// Writer delivers poll results to one reporting sink.
type Writer interface {
	Write(ctx context.Context, res poller.PollResult) error
}

// Report is the wire form of one poll cycle.
type Report struct {
	DeviceID   string               `json:"device_id"`
	At         time.Time            `json:"at"`
	DurationMs int64                `json:"duration_ms"`
	OK         bool                 `json:"ok"`
	Error      string               `json:"error,omitempty"`
	Common     *sunspec.CommonBlock `json:"common,omitempty"`
	Blocks     []poller.BlockReport `json:"blocks,omitempty"`
}

// NewReport converts a poll result into its wire form.
func NewReport(res poller.PollResult) Report {
	r := Report{
		DeviceID:   res.DeviceID,
		At:         res.At.UTC(),
		DurationMs: res.Duration.Milliseconds(),
		OK:         res.Err == nil,
		Common:     res.Common,
		Blocks:     res.Blocks,
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	return r
}
