package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kosarica/catalog-import/internal/importer"
	"github.com/kosarica/catalog-import/internal/types"
)

const jobColumns = `id, supplier_id, filename, status, total_rows, success_count, failed_count,
	review_count, enriched_count, error_message, created_at, completed_at`

func scanJob(row pgx.Row) (*types.ImportJob, error) {
	var job types.ImportJob
	var status string
	err := row.Scan(&job.ID, &job.SupplierID, &job.Filename, &status, &job.TotalRows, &job.SuccessCount,
		&job.FailedCount, &job.ReviewCount, &job.EnrichedCount, &job.ErrorMessage, &job.CreatedAt, &job.CompletedAt)
	if err != nil {
		return nil, err
	}
	job.Status = types.ImportStatus(status)
	return &job, nil
}

// CreateJob inserts a new job row
func (s *CatalogStore) CreateJob(ctx context.Context, job types.ImportJob) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO import_jobs (id, supplier_id, filename, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, job.ID, job.SupplierID, job.Filename, string(job.Status), job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert import job: %w", err)
	}
	return nil
}

// TransitionJob is a compare-and-set on the job status
func (s *CatalogStore) TransitionJob(ctx context.Context, jobID string, from, to types.ImportStatus, errorMessage *string) error {
	if !types.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", importer.ErrInvalidTransition, from, to)
	}

	var completedAt *time.Time
	if to.IsTerminal() {
		now := time.Now().UTC()
		completedAt = &now
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE import_jobs
		SET status = $3, error_message = COALESCE($4, error_message), completed_at = $5, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, jobID, string(from), string(to), errorMessage, completedAt)
	if err != nil {
		return fmt.Errorf("failed to update import job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return s.transitionMiss(ctx, jobID, from, to)
}

// transitionMiss explains why a compare-and-set matched no row
func (s *CatalogStore) transitionMiss(ctx context.Context, jobID string, from, to types.ImportStatus) error {
	var current string
	err := s.pool.QueryRow(ctx, `SELECT status FROM import_jobs WHERE id = $1`, jobID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", importer.ErrJobNotFound, jobID)
	}
	if err != nil {
		return fmt.Errorf("failed to load import job %s: %w", jobID, err)
	}
	return fmt.Errorf("%w: job %s is %s, not %s (wanted %s)", importer.ErrInvalidTransition, jobID, current, from, to)
}

// CompleteJob stores counts and row results and marks the job COMPLETED in
// one transaction
func (s *CatalogStore) CompleteJob(ctx context.Context, job types.ImportJob, rows []types.RowResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE import_jobs
		SET status = $2, total_rows = $3, success_count = $4, failed_count = $5,
		    review_count = $6, enriched_count = $7, completed_at = $8, updated_at = NOW()
		WHERE id = $1 AND status = $9
	`, job.ID, string(types.ImportCompleted), job.TotalRows, job.SuccessCount, job.FailedCount,
		job.ReviewCount, job.EnrichedCount, job.CompletedAt, string(types.ImportProcessing))
	if err != nil {
		return fmt.Errorf("failed to complete import job %s: %w", job.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return s.transitionMiss(ctx, job.ID, types.ImportProcessing, types.ImportCompleted)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"import_row_results"},
		[]string{"job_id", "row_index", "sku", "status", "product_id", "match_method",
			"match_confidence", "needs_review", "issues", "errors", "enriched"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{
				job.ID, r.RowIndex, r.SKU, string(r.Status), r.ProductID, string(r.MatchMethod),
				r.MatchConfidence, r.NeedsReview, issueStrings(r.Issues), nonNil(r.Errors), r.Enriched,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to store row results for %s: %w", job.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit import job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob loads one job
func (s *CatalogStore) GetJob(ctx context.Context, jobID string) (*types.ImportJob, error) {
	job, err := scanJob(s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM import_jobs WHERE id = $1`, jobID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", importer.ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load import job %s: %w", jobID, err)
	}
	return job, nil
}

// ListJobs returns a supplier's most recent jobs, newest first
func (s *CatalogStore) ListJobs(ctx context.Context, supplierID string, limit int) ([]types.ImportJob, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM import_jobs
		WHERE supplier_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, supplierID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]types.ImportJob, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// ListRowResults returns a job's row results in row order
func (s *CatalogStore) ListRowResults(ctx context.Context, jobID string) ([]types.RowResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT row_index, sku, status, product_id, match_method, match_confidence,
		       needs_review, issues, errors, enriched
		FROM import_row_results
		WHERE job_id = $1
		ORDER BY row_index
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query row results: %w", err)
	}
	defer rows.Close()

	results := make([]types.RowResult, 0)
	for rows.Next() {
		var r types.RowResult
		var status, method string
		var issues []string
		if err := rows.Scan(&r.RowIndex, &r.SKU, &status, &r.ProductID, &method, &r.MatchConfidence,
			&r.NeedsReview, &issues, &r.Errors, &r.Enriched); err != nil {
			return nil, fmt.Errorf("failed to scan row result: %w", err)
		}
		r.Status = types.RowStatus(status)
		r.Success = r.Status != types.RowFailed
		r.MatchMethod = types.MatchMethod(method)
		r.Issues = make([]types.IssueTag, len(issues))
		for i, tag := range issues {
			r.Issues[i] = types.IssueTag(tag)
		}
		r.Errors = nonNil(r.Errors)
		results = append(results, r)
	}
	return results, rows.Err()
}

// TouchJob bumps updated_at on a PROCESSING job. Running imports call it
// periodically so FailStaleJobs only catches abandoned runs.
func (s *CatalogStore) TouchJob(ctx context.Context, jobID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE import_jobs SET updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, jobID, string(types.ImportProcessing))
	if err != nil {
		return fmt.Errorf("failed to touch import job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s is not processing", importer.ErrInvalidTransition, jobID)
	}
	return nil
}

// FailStaleJobs marks jobs left in PROCESSING without a heartbeat for longer
// than olderThan as FAILED. These are runs orphaned by a restart.
func (s *CatalogStore) FailStaleJobs(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE import_jobs
		SET status = $1, error_message = 'interrupted: import was abandoned while processing',
		    completed_at = NOW(), updated_at = NOW()
		WHERE status = $2 AND updated_at < $3
	`, string(types.ImportFailed), string(types.ImportProcessing), time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to fail stale import jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func issueStrings(tags []types.IssueTag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
