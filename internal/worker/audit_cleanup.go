package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-data/internal/repository"
	"github.com/jwalitptl/clinic-data/pkg/logger"
)

// AuditCleanupWorker deletes audit entries older than the retention window
type AuditCleanupWorker struct {
	repo      repository.AuditRepository
	retention time.Duration
	interval  time.Duration
	log       *logger.Logger
	now       func() time.Time
}

func NewAuditCleanupWorker(repo repository.AuditRepository, retention, interval time.Duration, log *logger.Logger) *AuditCleanupWorker {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditCleanupWorker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start runs a cleanup immediately and then on every tick until ctx is done
func (w *AuditCleanupWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return fmt.Errorf("audit cleanup interval must be positive, got %s", w.interval)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil {
			// Keep going; the next tick retries.
			w.log.Error(err, "audit cleanup failed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce deletes everything older than now minus the retention
func (w *AuditCleanupWorker) RunOnce(ctx context.Context) (int64, error) {
	if w.retention <= 0 {
		return 0, fmt.Errorf("audit retention must be positive, got %s", w.retention)
	}
	cutoff := w.now().Add(-w.retention)

	rows, err := w.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}

	w.log.Info("audit logs cleaned up", "deleted", rows, "cutoff", cutoff)
	return rows, nil
}
