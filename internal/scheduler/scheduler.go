// Package scheduler runs housekeeping tasks on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

// Every runs task now and then once per interval until ctx is done. Errors are
// logged and the next tick proceeds as normal.
func Every(ctx context.Context, interval time.Duration, name string, task Task, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	run := func() {
		if err := task(ctx); err != nil && ctx.Err() == nil {
			log.Warn("scheduled task failed", zap.String("task", name), zap.Error(err))
		}
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
