// Package scheduler contains the periodic batch drivers of the pipeline:
// the pending-job drain and the expiry reaper.
package scheduler

import (
	"context"
	"fmt"

	"github.com/book-expert/logger"

	"github.com/book-expert/audiobook-service/internal/core"
	"github.com/book-expert/audiobook-service/internal/orchestrator"
)

// JobRunner drives one job to a terminal state. Satisfied by
// *orchestrator.Orchestrator.
type JobRunner interface {
	Run(ctx context.Context, jobID string) (orchestrator.Outcome, error)
}

// DrainStats summarizes one drain invocation.
type DrainStats struct {
	Processed int
	Succeeded int
	Failed    int
	Skipped   int
}

// Scheduler claims a bounded batch of pending jobs and runs each to
// completion or failure, one at a time. Sequential execution bounds the
// outbound call rate to vendor APIs from a single scheduler instance.
type Scheduler struct {
	jobs   core.JobStore
	runner JobRunner
	log    *logger.Logger
}

// New creates a scheduler.
func New(jobs core.JobStore, runner JobRunner, log *logger.Logger) *Scheduler {
	return &Scheduler{
		jobs:   jobs,
		runner: runner,
		log:    log,
	}
}

// DrainPending fetches up to limit pending jobs, oldest first, and runs
// them sequentially. One job finishes before the next starts. A failed run
// never aborts the drain; a lost claim counts as skipped, not failed.
func (s *Scheduler) DrainPending(ctx context.Context, limit int) (DrainStats, error) {
	stats := DrainStats{Processed: 0, Succeeded: 0, Failed: 0, Skipped: 0}

	pending, err := s.jobs.ListPending(ctx, limit)
	if err != nil {
		return stats, fmt.Errorf("failed to list pending jobs: %w", err)
	}

	for _, job := range pending {
		stats.Processed++

		outcome, runErr := s.runner.Run(ctx, job.ID)
		if runErr != nil {
			stats.Failed++
			s.log.Error("Job %s run failed: %v", job.ID, runErr)

			continue
		}

		switch outcome {
		case orchestrator.OutcomeCompleted:
			stats.Succeeded++
		case orchestrator.OutcomeFailed:
			stats.Failed++
		case orchestrator.OutcomeSkipped:
			stats.Skipped++
		}
	}

	if stats.Processed > 0 {
		s.log.Info(
			"Drain finished: %d processed, %d succeeded, %d failed, %d skipped",
			stats.Processed, stats.Succeeded, stats.Failed, stats.Skipped,
		)
	}

	return stats, nil
}
