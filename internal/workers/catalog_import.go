package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kosarica/catalog-import/internal/importer"
	"github.com/kosarica/catalog-import/internal/storage"
	"github.com/kosarica/catalog-import/internal/taskqueue"
	"github.com/kosarica/catalog-import/internal/types"
)

// ImportRunner runs and rejects import jobs
type ImportRunner interface {
	Run(ctx context.Context, job *types.ImportJob, content []byte) (*types.ImportResult, error)
	Reject(ctx context.Context, job *types.ImportJob, message string) (*types.ImportResult, error)
}

// JobGetter loads import jobs
type JobGetter interface {
	GetJob(ctx context.Context, jobID string) (*types.ImportJob, error)
}

// CatalogImportResult is stored as the task result
type CatalogImportResult struct {
	ImportID string             `json:"importId"`
	Status   types.ImportStatus `json:"status"`
	Summary  string             `json:"summary"`
}

// NewCatalogImportHandler returns the handler for catalog_import tasks. At
// most one import per supplier runs at a time; a task for a busy supplier
// is put back on the queue.
func NewCatalogImportHandler(runner ImportRunner, jobs JobGetter, store storage.Storage, locks *importer.SupplierLocks, logger *zerolog.Logger) Handler {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	return func(ctx context.Context, payload []byte) (any, error) {
		var req taskqueue.CatalogImportPayload
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal catalog import payload: %w", err)
		}
		if req.ImportID == "" || req.SupplierID == "" {
			return nil, fmt.Errorf("catalog import payload is missing importId or supplierId")
		}

		unlock, ok := locks.TryLock(req.SupplierID)
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrRetryLater, importer.ErrImportInProgress)
		}
		defer unlock()

		job, err := jobs.GetJob(ctx, req.ImportID)
		if err != nil {
			return nil, fmt.Errorf("failed to load import %s: %w", req.ImportID, err)
		}
		if job.Status != types.ImportPending {
			logger.Warn().Str("import_id", job.ID).Str("status", string(job.Status)).Msg("Skipping import that is no longer pending")
			return CatalogImportResult{ImportID: job.ID, Status: job.Status, Summary: "skipped"}, nil
		}

		var result *types.ImportResult
		content, err := store.Get(ctx, req.StorageKey)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			result, err = runner.Reject(ctx, job, "uploaded file is no longer available")
		case err != nil:
			return nil, fmt.Errorf("%w: failed to read upload: %v", ErrRetryLater, err)
		default:
			result, err = runner.Run(ctx, job, content)
		}
		if err != nil {
			return nil, err
		}

		if err := store.Delete(context.WithoutCancel(ctx), req.StorageKey); err != nil {
			logger.Warn().Err(err).Str("key", req.StorageKey).Msg("Failed to delete processed upload")
		}

		summary := importer.Summarize(*result)
		logger.Info().Str("import_id", result.ImportID).Msg(summary)
		return CatalogImportResult{ImportID: result.ImportID, Status: result.Status, Summary: summary}, nil
	}
}
