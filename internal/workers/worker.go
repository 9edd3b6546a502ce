// Package workers polls the task queue and runs registered task handlers.
package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kosarica/catalog-import/internal/taskqueue"
)

// ErrRetryLater marks a handler error as transient; the task is put back
// on the queue instead of failing for good
var ErrRetryLater = errors.New("retry later")

// Handler runs one task and returns a JSON-serializable result
type Handler func(ctx context.Context, payload []byte) (any, error)

// Queue is the part of the task queue a worker uses
type Queue interface {
	ClaimTasks(ctx context.Context, input taskqueue.ClaimTasksInput) taskqueue.ClaimTasksResult
	MarkProcessing(ctx context.Context, taskID string) error
	CompleteTask(ctx context.Context, taskID string, result any) error
	FailTask(ctx context.Context, taskID, errorMessage string, shouldRetry bool) error
}

type WorkerConfig struct {
	WorkerID   string
	TaskTypes  []string
	MaxTasks   int
	NumWorkers int
	PollDelay  time.Duration
}

// DefaultWorkerConfig polls for catalog imports every two seconds
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		WorkerID:   "catalog-import-worker",
		TaskTypes:  []string{taskqueue.TaskTypeCatalogImport},
		MaxTasks:   1,
		NumWorkers: 2,
		PollDelay:  2 * time.Second,
	}
}

type Worker struct {
	queue    Queue
	config   WorkerConfig
	handlers map[string]Handler
	logger   *zerolog.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(queue Queue, config WorkerConfig, logger *zerolog.Logger) *Worker {
	if config.NumWorkers <= 0 {
		config.NumWorkers = 1
	}
	if config.MaxTasks <= 0 {
		config.MaxTasks = 1
	}
	if config.PollDelay <= 0 {
		config.PollDelay = 2 * time.Second
	}
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}
	workerLogger := logger.With().Str("component", "worker").Logger()

	return &Worker{
		queue:    queue,
		config:   config,
		handlers: make(map[string]Handler),
		logger:   &workerLogger,
		stopChan: make(chan struct{}),
	}
}

func (w *Worker) RegisterHandler(taskType string, handler Handler) {
	w.handlers[taskType] = handler
}

// Start launches the polling goroutines and returns immediately
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info().
		Str("worker_id", w.config.WorkerID).
		Strs("task_types", w.config.TaskTypes).
		Int("goroutines", w.config.NumWorkers).
		Msg("Starting worker")

	for i := 0; i < w.config.NumWorkers; i++ {
		w.wg.Add(1)
		go func(n int) {
			defer w.wg.Done()
			w.workerLoop(ctx, n)
		}(i)
	}
}

// Stop signals the loops and waits for in-flight tasks
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.logger.Info().Str("worker_id", w.config.WorkerID).Msg("Worker stopping, waiting for in-flight tasks")
	w.wg.Wait()
	w.logger.Info().Str("worker_id", w.config.WorkerID).Msg("Worker stopped")
}

func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	workerID := fmt.Sprintf("%s-%d", w.config.WorkerID, workerNum)

	ticker := time.NewTicker(w.config.PollDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str("worker_id", workerID).Msg("Worker shutting down")
			return
		case <-w.stopChan:
			w.logger.Info().Str("worker_id", workerID).Msg("Worker received stop signal")
			return
		case <-ticker.C:
			w.processTasks(ctx, workerID)
		}
	}
}

// processTasks claims and runs one batch. It returns the number of tasks
// claimed.
func (w *Worker) processTasks(ctx context.Context, workerID string) int {
	claimResult := w.queue.ClaimTasks(ctx, taskqueue.ClaimTasksInput{
		WorkerID:  workerID,
		TaskTypes: w.config.TaskTypes,
		MaxTasks:  w.config.MaxTasks,
	})
	if claimResult.Err != nil {
		w.logger.Error().Err(claimResult.Err).Str("worker_id", workerID).Msg("Failed to claim tasks")
		return 0
	}

	for _, task := range claimResult.Tasks {
		w.processTask(ctx, workerID, task)
	}
	return len(claimResult.Tasks)
}

func (w *Worker) processTask(ctx context.Context, workerID string, task taskqueue.ClaimedTask) {
	logger := w.logger.With().
		Str("worker_id", workerID).
		Str("task_id", task.ID).
		Str("task_type", task.TaskType).
		Logger()

	handler, exists := w.handlers[task.TaskType]
	if !exists {
		logger.Warn().Msg("No handler for task type")
		w.fail(ctx, &logger, task.ID, "no handler registered", false)
		return
	}

	if err := w.queue.MarkProcessing(ctx, task.ID); err != nil {
		logger.Error().Err(err).Msg("Failed to mark task as processing")
		w.fail(ctx, &logger, task.ID, fmt.Sprintf("status update failed: %v", err), true)
		return
	}

	logger.Info().Msg("Worker processing task")
	start := time.Now()

	result, err := handler(ctx, task.Payload)
	if err != nil {
		retry := errors.Is(err, ErrRetryLater)
		logger.Error().Err(err).Bool("retry", retry).Msg("Task failed")
		w.fail(ctx, &logger, task.ID, err.Error(), retry)
		return
	}

	if err := w.queue.CompleteTask(context.WithoutCancel(ctx), task.ID, result); err != nil {
		logger.Error().Err(err).Msg("Failed to mark task as completed")
		return
	}

	logger.Info().Dur("duration", time.Since(start)).Msg("Worker completed task")
}

func (w *Worker) fail(ctx context.Context, logger *zerolog.Logger, taskID, message string, retry bool) {
	if err := w.queue.FailTask(context.WithoutCancel(ctx), taskID, message, retry); err != nil {
		logger.Error().Err(err).Msg("Failed to record task failure")
	}
}
