// Package sweepers runs periodic maintenance over the task queue and
// import jobs.
package sweepers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// TaskRecoverer requeues tasks abandoned by a dead worker
type TaskRecoverer interface {
	RecoverOrphanedTasks(ctx context.Context) (recovered, failed int32, err error)
}

// StaleJobFailer fails import jobs stuck in PROCESSING
type StaleJobFailer interface {
	FailStaleJobs(ctx context.Context, olderThan time.Duration) (int64, error)
}

// TaskCleaner deletes finished tasks past their retention
type TaskCleaner interface {
	CleanupOldTasks(ctx context.Context, daysToKeep int) (int, error)
}

// TaskQueueSweeper periodically recovers orphaned tasks and fails import
// jobs left PROCESSING by a restart
type TaskQueueSweeper struct {
	tasks    TaskRecoverer
	jobs     StaleJobFailer
	logger   *zerolog.Logger
	interval time.Duration
	staleJob time.Duration
	stopChan chan struct{}

	cleaner       TaskCleaner
	retentionDays int
}

// NewTaskQueueSweeper creates a sweeper. Jobs still PROCESSING after
// staleJob are considered orphaned.
func NewTaskQueueSweeper(tasks TaskRecoverer, jobs StaleJobFailer, logger *zerolog.Logger, interval, staleJob time.Duration) *TaskQueueSweeper {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}
	return &TaskQueueSweeper{
		tasks:    tasks,
		jobs:     jobs,
		logger:   logger,
		interval: interval,
		staleJob: staleJob,
		stopChan: make(chan struct{}),
	}
}

// WithTaskRetention also deletes completed and failed tasks older than
// days on every sweep
func (s *TaskQueueSweeper) WithTaskRetention(cleaner TaskCleaner, days int) *TaskQueueSweeper {
	s.cleaner = cleaner
	s.retentionDays = days
	return s
}

// Start runs sweeps until ctx is cancelled or Stop is called
func (s *TaskQueueSweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("stale_job_after", s.staleJob).
		Msg("Starting task queue sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Task queue sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Task queue sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Sweep failed")
			}
		}
	}
}

// Stop signals the sweeper to stop
func (s *TaskQueueSweeper) Stop() {
	close(s.stopChan)
}

// Sweep runs one maintenance pass. Every step runs even if an earlier one fails.
func (s *TaskQueueSweeper) Sweep(ctx context.Context) error {
	var errs []error

	recovered, failed, err := s.tasks.RecoverOrphanedTasks(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to recover orphaned tasks: %w", err))
	} else if recovered > 0 || failed > 0 {
		s.logger.Info().
			Int32("recovered", recovered).
			Int32("failed", failed).
			Msg("Recovered orphaned tasks")
	}

	stale, err := s.jobs.FailStaleJobs(ctx, s.staleJob)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to fail stale import jobs: %w", err))
	} else if stale > 0 {
		s.logger.Warn().Int64("jobs", stale).Msg("Failed import jobs orphaned while processing")
	}

	if s.cleaner != nil && s.retentionDays > 0 {
		deleted, err := s.cleaner.CleanupOldTasks(ctx, s.retentionDays)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to clean up old tasks: %w", err))
		} else if deleted > 0 {
			s.logger.Info().Int("deleted", deleted).Msg("Cleaned up old tasks")
		}
	}

	return errors.Join(errs...)
}
