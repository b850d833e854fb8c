// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Run polls immediately, then on every tick, and emits each PollResult on out.
// With Once set it emits exactly one result and returns.
// One goroutine per device. No overlap. No retries.
func (p *Poller) Run(ctx context.Context, out chan<- PollResult) {
	if !p.emit(ctx, out) || p.cfg.Once {
		return
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.emit(ctx, out) {
				return
			}
		}
	}
}

func (p *Poller) emit(ctx context.Context, out chan<- PollResult) bool {
	res := p.PollOnce()
	select {
	case <-ctx.Done():
		return false
	case out <- res:
		return true
	}
}
