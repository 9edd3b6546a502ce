// Package importer runs supplier catalog imports: it resolves every row to
// a canonical product, scores it, and upserts supplier-to-product links.
package importer

import (
	"context"
	"errors"

	"github.com/kosarica/catalog-import/internal/enrichment"
	"github.com/kosarica/catalog-import/internal/types"
)

var (
	// ErrUnauthorized is returned by an Authorizer when the supplier may not import
	ErrUnauthorized = errors.New("supplier is not authorized to import")

	// ErrImportInProgress is returned when the supplier already has a running import
	ErrImportInProgress = errors.New("an import is already running for this supplier")

	// ErrJobNotFound is returned when an import job does not exist
	ErrJobNotFound = errors.New("import job not found")

	// ErrInvalidTransition is returned when a job is not in the expected state
	ErrInvalidTransition = errors.New("invalid import status transition")

	// ErrNoRows is the job-fatal error for a file with a header but no data
	ErrNoRows = errors.New("catalog file contains no rows")
)

// JobStore persists import jobs and their per-row audit trail.
type JobStore interface {
	CreateJob(ctx context.Context, job types.ImportJob) error
	// TransitionJob moves a job from one status to another and fails with
	// ErrInvalidTransition when the job is not in the from status.
	TransitionJob(ctx context.Context, jobID string, from, to types.ImportStatus, errorMessage *string) error
	// TouchJob refreshes the liveness timestamp of a PROCESSING job
	TouchJob(ctx context.Context, jobID string) error
	// CompleteJob stores the final counts and row results and marks the job COMPLETED.
	CompleteJob(ctx context.Context, job types.ImportJob, rows []types.RowResult) error
}

// JobReader serves import jobs and results to callers.
type JobReader interface {
	GetJob(ctx context.Context, jobID string) (*types.ImportJob, error)
	ListRowResults(ctx context.Context, jobID string) ([]types.RowResult, error)
	ListJobs(ctx context.Context, supplierID string, limit int) ([]types.ImportJob, error)
}

// SupplierItemStore upserts supplier items keyed by (supplier, product).
type SupplierItemStore interface {
	// UpsertSupplierItem creates the link on first sight and refreshes the
	// commercial fields and last sync time otherwise. created reports which.
	UpsertSupplierItem(ctx context.Context, item types.SupplierItem) (created bool, err error)
}

// Authorizer decides whether a supplier may import a catalog.
type Authorizer interface {
	// AuthorizeImport returns an error wrapping ErrUnauthorized on rejection
	AuthorizeImport(ctx context.Context, supplierID string) error
}

// Enricher is the best-effort attribute enrichment step.
type Enricher interface {
	Enrich(ctx context.Context, product types.Product, gtin string) enrichment.Outcome
}
