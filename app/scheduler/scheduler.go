// Package scheduler runs the daily background jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rentalsvc "carsharing/service/rental"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 10 * time.Minute

type Jobs struct {
	Cleaner  rentalsvc.Cleaner
	Reminder rentalsvc.Reminder
}

type Schedule struct {
	Sweep   string
	Overdue string
}

// New registers the sweep and the overdue reminder. Start/Stop the returned
// cron; a run still in progress is skipped rather than overlapped.
func New(ctx context.Context, jobs Jobs, s Schedule, log *slog.Logger) (*cron.Cron, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})),
	)

	if _, err := c.AddFunc(s.Sweep, func() {
		ctx, cancel := context.WithTimeout(ctx, jobTimeout)
		defer cancel()
		n, err := jobs.Cleaner.ReleaseExpired(ctx)
		if err != nil {
			log.Error("sweep failed", "err", err, "expired", n)
			return
		}
		log.Info("sweep done", "expired", n)
	}); err != nil {
		return nil, fmt.Errorf("sweep schedule %q: %w", s.Sweep, err)
	}

	if _, err := c.AddFunc(s.Overdue, func() {
		ctx, cancel := context.WithTimeout(ctx, jobTimeout)
		defer cancel()
		n, err := jobs.Reminder.RemindOverdue(ctx)
		if err != nil {
			log.Error("overdue reminder failed", "err", err)
			return
		}
		log.Info("overdue reminder sent", "overdue", n)
	}); err != nil {
		return nil, fmt.Errorf("overdue schedule %q: %w", s.Overdue, err)
	}

	return c, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ log *slog.Logger }

func (l cronLogger) Info(msg string, kv ...any) { l.log.Debug("cron: "+msg, kv...) }

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.log.Error("cron: "+msg, append(kv, "err", err)...)
}
