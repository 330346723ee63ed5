// Package worker runs the background reconciliation loop that backfills
// time clock entries for approved shift requests missing one.
package worker

import (
	"context"
	"log"
	"time"
)

type Reconciler interface {
	ReconcileClockEntries(ctx context.Context, batchSize int) (int, error)
}

type Config struct {
	Interval  time.Duration
	BatchSize int
	Timeout   time.Duration
}

func Start(ctx context.Context, reconciler Reconciler, cfg Config) {
	if cfg.Interval <= 0 {
		return
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, timeout)
			count, err := reconciler.ReconcileClockEntries(runCtx, cfg.BatchSize)
			cancel()
			if err != nil {
				log.Printf("reconcile error: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("reconcile created %d clock entries", count)
			}
		}
	}
}
