// Package janitor periodically purges password reset tokens that can no
// longer be used.
package janitor

import (
	"context"
	"time"

	"github.com/dmitrijs2005/flourish/internal/logging"
)

// Purger deletes tokens that are used or expired at now.
type Purger interface {
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}

type Janitor struct {
	purger   Purger
	interval time.Duration
	logger   logging.Logger
	now      func() time.Time
}

func New(p Purger, interval time.Duration, l logging.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{purger: p, interval: interval, logger: l.With("module", "token_janitor"), now: time.Now}
}

// Sweep runs one purge and returns how many tokens were removed.
func (j *Janitor) Sweep(ctx context.Context) (int64, error) {
	n, err := j.purger.DeleteStale(ctx, j.now())
	if err != nil {
		j.logger.Warn(ctx, "token purge failed", "error", err)
		return 0, err
	}
	if n > 0 {
		j.logger.Info(ctx, "stale reset tokens purged", "count", n)
	}
	return n, nil
}

// Run sweeps every interval until ctx is done. Failed sweeps are retried on
// the next tick.
func (j *Janitor) Run(ctx context.Context) error {
	t := time.NewTicker(j.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			_, _ = j.Sweep(ctx)
		}
	}
}
