package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/audiobook-service/internal/core"
)

// SweepStats summarizes one reaper invocation.
type SweepStats struct {
	Expired int
	Retired int
	Failed  int
}

// Reaper deletes stored audio for expired jobs and retires their records.
// Jobs without an expiry, or with one in the future, are never touched.
type Reaper struct {
	jobs    core.JobStore
	storage core.ObjectStore
	log     *logger.Logger
}

// NewReaper creates a reaper over the given job store and audio storage.
func NewReaper(jobs core.JobStore, storage core.ObjectStore, log *logger.Logger) *Reaper {
	return &Reaper{
		jobs:    jobs,
		storage: storage,
		log:     log,
	}
}

// Sweep retires every non-deleted job whose expiry is before now,
// regardless of status. The stored object is deleted first (idempotently:
// a missing key is a success), then the record is soft-deleted and its
// download URL cleared. A per-job failure is recorded and the sweep
// continues with the remaining jobs.
func (r *Reaper) Sweep(ctx context.Context, now time.Time) (SweepStats, error) {
	stats := SweepStats{Expired: 0, Retired: 0, Failed: 0}

	expired, err := r.jobs.ListExpired(ctx, now)
	if err != nil {
		return stats, fmt.Errorf("failed to list expired jobs: %w", err)
	}

	stats.Expired = len(expired)

	for _, job := range expired {
		retireErr := r.retire(ctx, job, now)
		if retireErr != nil {
			stats.Failed++
			r.log.Error("Failed to retire expired job %s: %v", job.ID, retireErr)

			continue
		}

		stats.Retired++
	}

	if stats.Expired > 0 {
		r.log.Info(
			"Sweep finished: %d expired, %d retired, %d failed",
			stats.Expired, stats.Retired, stats.Failed,
		)
	}

	return stats, nil
}

func (r *Reaper) retire(ctx context.Context, job *core.Job, now time.Time) error {
	if job.FileKey != "" {
		err := r.storage.Delete(ctx, job.FileKey)
		if err != nil {
			return fmt.Errorf("failed to delete stored audio '%s': %w", job.FileKey, err)
		}
	}

	deletedAt := now
	job.DeletedAt = &deletedAt
	job.DownloadURL = ""

	err := r.jobs.Update(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to update job record: %w", err)
	}

	return nil
}
