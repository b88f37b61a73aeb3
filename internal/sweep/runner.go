// Package sweep holds the periodic jobs that enforce time-bound commitments:
// closing elapsed bid windows and escalating missed SLA deadlines.
package sweep

import (
	"context"
	"log/slog"
	"time"
)

// Runner triggers a sweep function on a fixed interval until its context is
// cancelled. Sweeps are idempotent by construction (every transition is
// precondition-guarded), so an overlapping or retried run converges instead of
// double-applying.
type Runner struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

func NewRunner(name string, interval time.Duration, run func(ctx context.Context) error) *Runner {
	return &Runner{name: name, interval: interval, run: run}
}

// Start launches the loop in a goroutine and returns immediately.
func (r *Runner) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		slog.InfoContext(ctx, "sweep_runner_started", "sweep", r.name, "interval", r.interval)
		for {
			select {
			case <-ctx.Done():
				slog.InfoContext(ctx, "sweep_runner_stopped", "sweep", r.name)
				return
			case <-ticker.C:
				if err := r.run(ctx); err != nil {
					slog.ErrorContext(ctx, "sweep_run_failed", "sweep", r.name, "error", err)
				}
			}
		}
	}()
}
