// Package jobs runs background maintenance for the server: periodic removal
// of expired session records. With Redis configured the schedule is driven
// by asynq so that only one replica runs each purge; otherwise an in-process
// ticker is used.
package jobs

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

// Purger deletes expired sessions and reports how many were removed.
type Purger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// Runner blocks until ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

func purge(ctx context.Context, p Purger, logger logging.Logger) error {
	n, err := p.PurgeExpiredSessions(ctx)
	if err != nil {
		logger.Error(ctx, "Session purge failed", "error", err.Error())
		return err
	}
	if n > 0 {
		logger.Info(ctx, "Expired sessions purged", "count", n)
	}
	return nil
}

// Ticker purges on a fixed interval inside this process.
type Ticker struct {
	interval time.Duration
	purger   Purger
	logger   logging.Logger
}

func NewTicker(interval time.Duration, p Purger, l logging.Logger) *Ticker {
	return &Ticker{interval: interval, purger: p, logger: l.With("module", "session_purge")}
}

func (t *Ticker) Run(ctx context.Context) error {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	t.logger.Info(ctx, "Starting session purge ticker", "interval", t.interval.String())

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tk.C:
			_ = purge(ctx, t.purger, t.logger)
		}
	}
}
