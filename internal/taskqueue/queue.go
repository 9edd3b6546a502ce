// Package taskqueue is a Postgres-backed work queue. Claiming uses
// FOR UPDATE SKIP LOCKED so several workers can poll the same table.
package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskQueue struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *TaskQueue {
	return &TaskQueue{pool: pool}
}

type ScheduleTaskInput struct {
	TaskType    string
	Payload     any
	Priority    int
	ScheduledAt *time.Time
	MaxRetries  int
}

type ScheduleTaskResult struct {
	ID  string
	Err error
}

func (q *TaskQueue) ScheduleTask(ctx context.Context, input ScheduleTaskInput) ScheduleTaskResult {
	payload, err := json.Marshal(input.Payload)
	if err != nil {
		return ScheduleTaskResult{Err: fmt.Errorf("failed to marshal task payload: %w", err)}
	}

	maxRetries := 3
	if input.MaxRetries > 0 {
		maxRetries = input.MaxRetries
	}

	scheduledAt := time.Now()
	if input.ScheduledAt != nil {
		scheduledAt = *input.ScheduledAt
	}

	var id string
	err = q.pool.QueryRow(ctx, `
		INSERT INTO task_queue (task_type, payload, priority, scheduled_for, max_retries)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, input.TaskType, payload, input.Priority, scheduledAt, maxRetries).Scan(&id)
	if err != nil {
		return ScheduleTaskResult{Err: fmt.Errorf("failed to schedule %s task: %w", input.TaskType, err)}
	}

	return ScheduleTaskResult{ID: id}
}

// ScheduleCatalogImport queues an import of a stored upload
func (q *TaskQueue) ScheduleCatalogImport(ctx context.Context, payload CatalogImportPayload) (string, error) {
	result := q.ScheduleTask(ctx, ScheduleTaskInput{
		TaskType: TaskTypeCatalogImport,
		Payload:  payload,
		// workers retry only while the supplier is busy or the upload is unreadable
		MaxRetries: 5,
	})
	return result.ID, result.Err
}

type ClaimTasksInput struct {
	WorkerID  string
	TaskTypes []string
	MaxTasks  int
}

type ClaimTasksResult struct {
	Tasks []ClaimedTask
	Err   error
}

func (q *TaskQueue) ClaimTasks(ctx context.Context, input ClaimTasksInput) ClaimTasksResult {
	rows, err := q.pool.Query(ctx, `
		SELECT id, task_type, payload FROM claim_tasks($1, $2, $3)
	`, input.WorkerID, input.TaskTypes, input.MaxTasks)
	if err != nil {
		return ClaimTasksResult{Err: err}
	}
	defer rows.Close()

	tasks := make([]ClaimedTask, 0)
	for rows.Next() {
		var task ClaimedTask
		if err := rows.Scan(&task.ID, &task.TaskType, &task.Payload); err != nil {
			return ClaimTasksResult{Err: err}
		}
		tasks = append(tasks, task)
	}

	return ClaimTasksResult{Tasks: tasks, Err: rows.Err()}
}

// MarkProcessing moves a claimed task to processing
func (q *TaskQueue) MarkProcessing(ctx context.Context, taskID string) error {
	_, err := q.pool.Exec(ctx, `
		UPDATE task_queue
		SET status = 'processing', updated_at = NOW()
		WHERE id = $1 AND status = 'claimed'
	`, taskID)
	return err
}

func (q *TaskQueue) CompleteTask(ctx context.Context, taskID string, result any) error {
	var resultJSON []byte
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return err
		}
		resultJSON = data
	}

	_, err := q.pool.Exec(ctx, `SELECT complete_task($1, $2::jsonb)`, taskID, resultJSON)
	return err
}

func (q *TaskQueue) FailTask(ctx context.Context, taskID, errorMessage string, shouldRetry bool) error {
	_, err := q.pool.Exec(ctx, `SELECT fail_task($1, $2, $3)`, taskID, errorMessage, shouldRetry)
	return err
}

func (q *TaskQueue) CleanupOldTasks(ctx context.Context, daysToKeep int) (int, error) {
	var count int
	err := q.pool.QueryRow(ctx, `SELECT cleanup_old_tasks($1)`, daysToKeep).Scan(&count)
	return count, err
}

// RecoverOrphanedTasks requeues tasks whose worker went away
func (q *TaskQueue) RecoverOrphanedTasks(ctx context.Context) (recovered, failed int32, err error) {
	err = q.pool.QueryRow(ctx, `SELECT recovered, failed FROM recover_orphaned_tasks()`).Scan(&recovered, &failed)
	return recovered, failed, err
}

func (q *TaskQueue) CancelTask(ctx context.Context, taskID string) error {
	_, err := q.pool.Exec(ctx, `
		UPDATE task_queue
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'claimed')
	`, taskID)
	return err
}

func (q *TaskQueue) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	var status string
	err := q.pool.QueryRow(ctx, `
		SELECT id, task_type, payload, priority, status,
		       scheduled_for, started_at, completed_at, failed_at,
		       worker_id, retry_count, max_retries, error_message,
		       created_at, updated_at
		FROM task_queue
		WHERE id = $1
	`, taskID).Scan(
		&task.ID, &task.TaskType, &task.Payload, &task.Priority, &status,
		&task.ScheduledFor, &task.StartedAt, &task.CompletedAt, &task.FailedAt,
		&task.WorkerID, &task.RetryCount, &task.MaxRetries, &task.ErrorMessage,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Status = TaskStatus(status)
	return &task, nil
}
