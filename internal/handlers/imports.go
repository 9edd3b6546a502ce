package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kosarica/catalog-import/internal/importer"
	"github.com/kosarica/catalog-import/internal/storage"
	"github.com/kosarica/catalog-import/internal/taskqueue"
	"github.com/kosarica/catalog-import/internal/types"
)

// DefaultMaxUploadBytes caps catalog uploads
const DefaultMaxUploadBytes = 50 << 20

// ImportService creates and runs import jobs
type ImportService interface {
	Submit(ctx context.Context, supplierID, filename string) (*types.ImportJob, error)
	Import(ctx context.Context, supplierID, filename string, content []byte) (*types.ImportResult, error)
	Reject(ctx context.Context, job *types.ImportJob, message string) (*types.ImportResult, error)
}

// ImportScheduler queues a stored upload for a worker
type ImportScheduler interface {
	ScheduleCatalogImport(ctx context.Context, payload taskqueue.CatalogImportPayload) (string, error)
}

// ImportHandler serves the catalog import endpoints
type ImportHandler struct {
	imports   ImportService
	jobs      importer.JobReader
	scheduler ImportScheduler
	uploads   storage.Storage
	locks     *importer.SupplierLocks
	maxUpload int64
	logger    *zerolog.Logger
}

// ImportHandlerDeps are the collaborators of ImportHandler
type ImportHandlerDeps struct {
	Imports        ImportService
	Jobs           importer.JobReader
	Scheduler      ImportScheduler
	Uploads        storage.Storage
	Locks          *importer.SupplierLocks
	MaxUploadBytes int64
	Logger         *zerolog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(deps ImportHandlerDeps) *ImportHandler {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if deps.Locks == nil {
		deps.Locks = importer.NewSupplierLocks()
	}
	if deps.Logger == nil {
		nopLogger := zerolog.Nop()
		deps.Logger = &nopLogger
	}
	return &ImportHandler{
		imports:   deps.Imports,
		jobs:      deps.Jobs,
		scheduler: deps.Scheduler,
		uploads:   deps.Uploads,
		locks:     deps.Locks,
		maxUpload: deps.MaxUploadBytes,
		logger:    deps.Logger,
	}
}

// SubmitImportResponse is returned when an import is accepted for
// background processing
type SubmitImportResponse struct {
	ImportID string             `json:"importId" jsonschema:"required"`
	Status   types.ImportStatus `json:"status" jsonschema:"required"`
	PollURL  string             `json:"pollUrl" jsonschema:"required"`
}

// ListImportsRequest represents query parameters for listing imports
type ListImportsRequest struct {
	Limit int `form:"limit" json:"limit" binding:"omitempty,min=1,max=100" jsonschema:"minimum=1,maximum=100"`
}

// ListImportsResponse lists a supplier's recent imports
type ListImportsResponse struct {
	Imports []types.ImportJob `json:"imports" jsonschema:"required"`
}

// SubmitImport stores an uploaded catalog and queues it
// @Summary Submit a catalog import
// @Description Accepts a CSV or XLSX catalog upload and processes it in the background
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param supplierId path string true "Supplier ID"
// @Param file formData file true "Catalog file"
// @Success 202 {object} SubmitImportResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 409 {object} map[string]string "Import already running"
// @Failure 413 {object} map[string]string "Upload too large"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /suppliers/{supplierId}/imports [post]
func (h *ImportHandler) SubmitImport(c *gin.Context) {
	supplierID := c.Param("supplierId")
	if h.locks.Held(supplierID) {
		c.JSON(http.StatusConflict, gin.H{"error": importer.ErrImportInProgress.Error()})
		return
	}

	file, ok := h.readUpload(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	job, err := h.imports.Submit(ctx, supplierID, file.name)
	if err != nil {
		h.logger.Error().Err(err).Str("supplier_id", supplierID).Msg("Failed to create import job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create import job"})
		return
	}

	key := storage.UploadKey(supplierID, job.ID, file.name)
	err = h.uploads.Put(ctx, key, file.content, &storage.Metadata{
		OriginalName: file.name,
		ContentType:  file.contentType,
		SupplierID:   supplierID,
		ImportID:     job.ID,
	})
	if err == nil {
		_, err = h.scheduler.ScheduleCatalogImport(ctx, taskqueue.CatalogImportPayload{
			ImportID:   job.ID,
			SupplierID: supplierID,
			Filename:   file.name,
			StorageKey: key,
		})
	}
	if err != nil {
		h.logger.Error().Err(err).Str("import_id", job.ID).Msg("Failed to queue import")
		if _, rejectErr := h.imports.Reject(context.WithoutCancel(ctx), job, "failed to queue import"); rejectErr != nil {
			h.logger.Error().Err(rejectErr).Str("import_id", job.ID).Msg("Failed to reject unqueued import")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue import", "importId": job.ID})
		return
	}

	c.JSON(http.StatusAccepted, SubmitImportResponse{
		ImportID: job.ID,
		Status:   job.Status,
		PollURL:  fmt.Sprintf("/internal/imports/%s", job.ID),
	})
}

// ImportSync runs an import inline
// @Summary Run a catalog import synchronously
// @Description Parses, matches and persists the uploaded catalog and returns the full row-level result. A job that fails as a whole is returned with 422.
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param supplierId path string true "Supplier ID"
// @Param file formData file true "Catalog file"
// @Success 200 {object} types.ImportResult
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 409 {object} map[string]string "Import already running"
// @Failure 422 {object} types.ImportResult "Import failed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /suppliers/{supplierId}/imports/sync [post]
func (h *ImportHandler) ImportSync(c *gin.Context) {
	supplierID := c.Param("supplierId")

	file, ok := h.readUpload(c)
	if !ok {
		return
	}

	unlock, locked := h.locks.TryLock(supplierID)
	if !locked {
		c.JSON(http.StatusConflict, gin.H{"error": importer.ErrImportInProgress.Error()})
		return
	}
	defer unlock()

	result, err := h.imports.Import(c.Request.Context(), supplierID, file.name, file.content)
	if err != nil {
		h.logger.Error().Err(err).Str("supplier_id", supplierID).Msg("Import failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed: " + err.Error()})
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

// GetImport returns a job and its row results
// @Summary Get an import result
// @Tags imports
// @Produce json
// @Param importId path string true "Import ID"
// @Success 200 {object} types.ImportResult
// @Failure 404 {object} map[string]string "Not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /imports/{importId} [get]
func (h *ImportHandler) GetImport(c *gin.Context) {
	ctx := c.Request.Context()
	importID := c.Param("importId")

	job, err := h.jobs.GetJob(ctx, importID)
	if errors.Is(err, importer.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "import not found"})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("import_id", importID).Msg("Failed to load import")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load import"})
		return
	}

	rows, err := h.jobs.ListRowResults(ctx, importID)
	if err != nil {
		h.logger.Error().Err(err).Str("import_id", importID).Msg("Failed to load row results")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load row results"})
		return
	}

	c.JSON(http.StatusOK, importer.BuildResult(*job, rows))
}

// ListImports returns a supplier's recent imports
// @Summary List a supplier's imports
// @Tags imports
// @Produce json
// @Param supplierId path string true "Supplier ID"
// @Param limit query int false "Number of imports to return" default(20) minimum(1) maximum(100)
// @Success 200 {object} ListImportsResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /suppliers/{supplierId}/imports [get]
func (h *ImportHandler) ListImports(c *gin.Context) {
	var req ListImportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = 20
	}

	jobs, err := h.jobs.ListJobs(c.Request.Context(), c.Param("supplierId"), req.Limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list imports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list imports"})
		return
	}
	c.JSON(http.StatusOK, ListImportsResponse{Imports: jobs})
}

type upload struct {
	name        string
	contentType string
	content     []byte
}

// readUpload reads the multipart "file" field, writing the error response
// itself when it returns false
func (h *ImportHandler) readUpload(c *gin.Context) (upload, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return upload{}, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return upload{}, false
	}
	if header.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return upload{}, false
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return upload{}, false
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return upload{}, false
	}
	return upload{
		name:        path.Base(header.Filename),
		contentType: header.Header.Get("Content-Type"),
		content:     content,
	}, true
}
