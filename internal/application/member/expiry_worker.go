package member

import (
	"context"
	"log"
	"sync"
	"time"
)

type expiryRecordRepo interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type ExpiryWorkerConfig struct {
	SweepInterval time.Duration
}

// ExpiryWorker periodically moves overdue pending records to token_expired.
// Expired records stay resendable; the sweep only records that the delivered
// credential is no longer usable.
type ExpiryWorker struct {
	records expiryRecordRepo
	cfg     ExpiryWorkerConfig

	once sync.Once
}

func NewExpiryWorker(records expiryRecordRepo, cfg ExpiryWorkerConfig) *ExpiryWorker {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &ExpiryWorker{records: records, cfg: cfg}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	w.once.Do(func() {
		go w.sweepLoop(ctx)
	})
}

func (w *ExpiryWorker) sweepLoop(ctx context.Context) {
	for {
		if !sleepWithContext(ctx, w.cfg.SweepInterval) {
			return
		}
		if err := w.SweepOnce(ctx); err != nil {
			log.Printf("[expiry] sweep failed: %v", err)
		}
	}
}

// SweepOnce runs a single expiry pass.
func (w *ExpiryWorker) SweepOnce(ctx context.Context) error {
	count, err := w.records.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("[expiry] marked %d records token_expired", count)
	}
	return nil
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
