package services

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
)

const (
	TriggerScheduler = "scheduler"
	TriggerHTTP      = "http"

	schedulerLockKey = "payledger:reconciliation:scheduler"
)

// ReconcileScheduler runs reconciliation on a fixed interval.
type ReconcileScheduler struct {
	BaseService
	runner   portssvc.ReconciliationRunnerSvc
	locker   portssvc.RunLocker
	interval time.Duration
	limit    int
}

// NewReconcileScheduler creates a scheduler. locker may be nil, in which case
// every replica runs on every tick; overlapping runs are safe, only wasteful.
func NewReconcileScheduler(runner portssvc.ReconciliationRunnerSvc, locker portssvc.RunLocker, interval time.Duration, limit int, opts ...Option) *ReconcileScheduler {
	s := &ReconcileScheduler{runner: runner, locker: locker, interval: interval, limit: limit}
	applyOptions(&s.BaseService, opts)
	return s
}

// Start blocks, running a reconciliation every interval until ctx is done.
func (s *ReconcileScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	logger := s.GetLogger(ctx)
	logger.Info("Reconciliation scheduler started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Reconciliation scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one scheduled run. It reports whether a run was attempted.
func (s *ReconcileScheduler) Tick(ctx context.Context) bool {
	logger := s.GetLogger(ctx)
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, schedulerLockKey, s.interval)
		if err != nil {
			logger.Error("Failed to obtain reconciliation lock", slog.String("error", err.Error()))
			return false
		}
		if !ok {
			logger.Debug("Reconciliation lock held elsewhere, skipping tick")
			return false
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Failed to release reconciliation lock", slog.String("error", err.Error()))
			}
		}()
	}

	if _, err := s.runner.Run(ctx, portssvc.RunOptions{Limit: s.limit, TriggerSource: TriggerScheduler}); err != nil {
		logger.Error("Scheduled reconciliation failed", slog.String("error", err.Error()))
	}
	return true
}
