package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/practice-admin/internal/repository"
	"github.com/jwalitptl/practice-admin/pkg/logger"
	"github.com/jwalitptl/practice-admin/pkg/metrics"
)

// OutboxCleanupWorker removes processed outbox events past their retention.
type OutboxCleanupWorker struct {
	repo      repository.OutboxRepository
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retention, interval time.Duration, logger *logger.Logger, metrics *metrics.Metrics) *OutboxCleanupWorker {
	return &OutboxCleanupWorker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    logger.With("outbox_cleanup"),
		metrics:   metrics,
		now:       time.Now,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *OutboxCleanupWorker) runOnce(ctx context.Context) {
	n, err := w.repo.DeleteProcessedBefore(ctx, w.now().Add(-w.retention))
	w.metrics.DatabaseOperations.WithLabelValues("delete_processed_events", metrics.Status(err)).Inc()
	if err != nil {
		w.logger.Error(err, "Failed to clean up outbox")
		return
	}
	w.metrics.OutboxCleanedUp.Add(float64(n))
	if n > 0 {
		w.logger.Debug("Cleaned up outbox", "deleted", n)
	}
}
