package importer

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/kosarica/catalog-import/internal/matching"
	"github.com/kosarica/catalog-import/internal/parsers"
	"github.com/kosarica/catalog-import/internal/pkg/cuid2"
	"github.com/kosarica/catalog-import/internal/types"
)

const (
	// DefaultWorkers bounds concurrent row evaluation
	DefaultWorkers = 8

	// DefaultHeartbeat is how often a running job refreshes its liveness.
	// It must stay well below the sweeper's stale-job cutoff.
	DefaultHeartbeat = time.Minute
)

var tracer = otel.Tracer("github.com/kosarica/catalog-import/internal/importer")

// Config holds orchestrator tuning
type Config struct {
	Workers         int
	Matcher         matching.MatcherConfig
	ReviewThreshold float64
	Heartbeat       time.Duration
}

// DefaultConfig returns the default orchestrator configuration
func DefaultConfig() Config {
	return Config{
		Workers:         DefaultWorkers,
		Matcher:         matching.DefaultMatcherConfig(),
		ReviewThreshold: matching.DefaultReviewThreshold,
		Heartbeat:       DefaultHeartbeat,
	}
}

// Dependencies are the orchestrator's collaborators. Enricher and Logger
// are optional.
type Dependencies struct {
	Jobs       JobStore
	Products   matching.ProductLookup
	Items      SupplierItemStore
	Authorizer Authorizer
	Enricher   Enricher
	Logger     *zerolog.Logger
}

// Orchestrator drives an import job from PENDING to a terminal state.
// Rows are evaluated concurrently; all writes for a job go through a single
// writer in file order.
type Orchestrator struct {
	jobs       JobStore
	items      SupplierItemStore
	authorizer Authorizer
	enricher   Enricher
	matcher    *matching.Matcher
	scorer     *matching.Scorer
	workers    int
	heartbeat  time.Duration
	metrics    *MetricsRecorder
	logger     *zerolog.Logger
	now        func() time.Time
}

// New creates an orchestrator
func New(deps Dependencies, config Config) *Orchestrator {
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers
	}
	if config.Heartbeat <= 0 {
		config.Heartbeat = DefaultHeartbeat
	}
	logger := deps.Logger
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	return &Orchestrator{
		jobs:       deps.Jobs,
		items:      deps.Items,
		authorizer: deps.Authorizer,
		enricher:   deps.Enricher,
		matcher:    matching.NewMatcher(deps.Products, config.Matcher),
		scorer:     matching.NewScorer(config.ReviewThreshold),
		workers:    config.Workers,
		heartbeat:  config.Heartbeat,
		metrics:    NewMetricsRecorder(),
		logger:     logger,
		now:        time.Now,
	}
}

// Submit registers a new PENDING job for the supplier
func (o *Orchestrator) Submit(ctx context.Context, supplierID, filename string) (*types.ImportJob, error) {
	job := types.ImportJob{
		ID:         cuid2.GeneratePrefixedId("imp", cuid2.PrefixedIdOptions{}),
		SupplierID: supplierID,
		Filename:   filename,
		Status:     types.ImportPending,
		CreatedAt:  o.now().UTC(),
	}
	if err := o.jobs.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}
	return &job, nil
}

// Import submits and runs a job in one call
func (o *Orchestrator) Import(ctx context.Context, supplierID, filename string, content []byte) (*types.ImportResult, error) {
	job, err := o.Submit(ctx, supplierID, filename)
	if err != nil {
		return nil, err
	}
	return o.Run(ctx, job, content)
}

// Run processes a PENDING job to completion. Job-level failures (rejected
// authorization, unreadable or empty file, missing required columns) end
// the job FAILED and are reported in the returned result, not as an error.
// An error is returned only when the job state itself could not be
// recorded or ctx was cancelled mid-run.
func (o *Orchestrator) Run(ctx context.Context, job *types.ImportJob, content []byte) (*types.ImportResult, error) {
	ctx, span := tracer.Start(ctx, "import.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("import.id", job.ID),
		attribute.String("import.supplier_id", job.SupplierID),
		attribute.String("import.filename", job.Filename),
	)

	logger := o.logger.With().
		Str("import_id", job.ID).
		Str("supplier_id", job.SupplierID).
		Logger()

	if err := o.jobs.TransitionJob(ctx, job.ID, types.ImportPending, types.ImportProcessing, nil); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to start import %s: %w", job.ID, err)
	}
	job.Status = types.ImportProcessing

	start := o.now()
	o.metrics.JobStarted()
	finished := func() {
		o.metrics.JobFinished(job.Status, o.now().Sub(start))
	}
	defer finished()

	if err := o.authorizer.AuthorizeImport(ctx, job.SupplierID); err != nil {
		return o.fail(ctx, job, fmt.Sprintf("unauthorized: %v", err))
	}

	catalog, err := parsers.ParseCatalog(job.Filename, content)
	if err != nil {
		return o.fail(ctx, job, err.Error())
	}

	logger.Info().Strs("header", catalog.Header).Msg("Import started")

	rows, err := o.process(ctx, job, catalog.Rows())
	if err != nil {
		o.markInterrupted(ctx, job, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(rows) == 0 {
		return o.fail(ctx, job, ErrNoRows.Error())
	}

	tally(job, rows)
	job.Status = types.ImportCompleted
	completedAt := o.now().UTC()
	job.CompletedAt = &completedAt

	if err := o.jobs.CompleteJob(ctx, *job, rows); err != nil {
		job.Status = types.ImportProcessing
		o.markInterrupted(ctx, job, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to complete import %s: %w", job.ID, err)
	}

	span.SetAttributes(
		attribute.Int("import.total_rows", job.TotalRows),
		attribute.Int("import.failed_rows", job.FailedCount),
	)
	result := BuildResult(*job, rows)
	logger.Info().
		Int("total_rows", job.TotalRows).
		Int("success", job.SuccessCount).
		Int("review", job.ReviewCount).
		Int("failed", job.FailedCount).
		Int("enriched", job.EnrichedCount).
		Dur("duration", o.now().Sub(start)).
		Msg("Import completed")

	return &result, nil
}

// Reject ends a PENDING job FAILED without running it
func (o *Orchestrator) Reject(ctx context.Context, job *types.ImportJob, message string) (*types.ImportResult, error) {
	if err := o.jobs.TransitionJob(ctx, job.ID, types.ImportPending, types.ImportFailed, &message); err != nil {
		return nil, fmt.Errorf("failed to reject import %s: %w", job.ID, err)
	}
	job.Status = types.ImportFailed
	job.ErrorMessage = &message

	o.logger.Warn().
		Str("import_id", job.ID).
		Str("supplier_id", job.SupplierID).
		Str("error", message).
		Msg("Import rejected")

	result := BuildResult(*job, nil)
	return &result, nil
}

// fail ends the job FAILED with a single top-level message
func (o *Orchestrator) fail(ctx context.Context, job *types.ImportJob, message string) (*types.ImportResult, error) {
	if err := o.jobs.TransitionJob(ctx, job.ID, types.ImportProcessing, types.ImportFailed, &message); err != nil {
		return nil, fmt.Errorf("failed to record failure of import %s: %w", job.ID, err)
	}

	job.Status = types.ImportFailed
	job.ErrorMessage = &message
	completedAt := o.now().UTC()
	job.CompletedAt = &completedAt

	o.logger.Warn().
		Str("import_id", job.ID).
		Str("supplier_id", job.SupplierID).
		Str("error", message).
		Msg("Import failed")

	result := BuildResult(*job, nil)
	return &result, nil
}

// markInterrupted records an abandoned run as FAILED so it does not linger
// in PROCESSING
func (o *Orchestrator) markInterrupted(ctx context.Context, job *types.ImportJob, cause error) {
	message := fmt.Sprintf("interrupted: %v", cause)
	if err := o.jobs.TransitionJob(context.WithoutCancel(ctx), job.ID, types.ImportProcessing, types.ImportFailed, &message); err != nil {
		o.logger.Error().Err(err).Str("import_id", job.ID).Msg("Failed to mark interrupted import")
		return
	}
	job.Status = types.ImportFailed
	job.ErrorMessage = &message
}

// evaluation is the side-effect-free part of a row: validation, matching
// and scoring
type evaluation struct {
	row     types.CatalogRow
	gtin    types.IdentifierValidationResult
	match   *matching.MatchResult
	outcome types.MatchOutcome
	errors  []string
}

// process fans row evaluation out to a bounded pool and consumes the
// results in file order on the calling goroutine, which is the only writer
func (o *Orchestrator) process(ctx context.Context, job *types.ImportJob, rows iter.Seq[types.CatalogRow]) ([]types.RowResult, error) {
	supplierID := job.SupplierID
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	pending := make(chan chan evaluation, o.workers*2)
	go func() {
		defer close(pending)
		for row := range rows {
			slot := make(chan evaluation, 1)
			select {
			case pending <- slot:
			case <-gctx.Done():
				return
			}
			g.Go(func() error {
				slot <- o.evaluate(gctx, supplierID, row)
				return nil
			})
		}
	}()

	w := newWriter(o, job)
	for slot := range pending {
		w.write(ctx, <-slot)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return w.results, nil
}

func (o *Orchestrator) evaluate(ctx context.Context, supplierID string, row types.CatalogRow) evaluation {
	ev := evaluation{row: row}

	switch {
	case row.PriceRaw == "":
		ev.errors = append(ev.errors, "missing price")
	case row.Price == nil:
		ev.errors = append(ev.errors, fmt.Sprintf("invalid price %q", row.PriceRaw))
	case *row.Price < 0:
		ev.errors = append(ev.errors, fmt.Sprintf("negative price %q", row.PriceRaw))
	}

	var identifierError string
	if row.GTIN != "" {
		ev.gtin = matching.ValidateGTIN(row.GTIN)
		if !ev.gtin.Valid {
			identifierError = fmt.Sprintf("invalid GTIN %q: %s", row.GTIN, ev.gtin.Reason)
		}
	}

	match, err := o.matcher.Match(ctx, supplierID, row, ev.gtin)
	if err != nil {
		ev.match = &matching.MatchResult{Candidate: types.MatchCandidate{Method: types.MatchNone}}
		ev.outcome = o.scorer.Score(ev.match, row)
		ev.errors = append(ev.errors, fmt.Sprintf("product lookup failed: %v", err))
		return ev
	}
	ev.match = match
	ev.outcome = o.scorer.Score(match, row)

	if !match.Matched() {
		if identifierError != "" {
			ev.errors = append(ev.errors, identifierError)
		}
		msg := "no matching product found"
		if match.BestRejected != nil {
			msg = fmt.Sprintf("no matching product found: best name match scored %.2f, below %.2f",
				match.BestRejected.Score, o.matcher.Config().FuzzyFloor)
		}
		ev.errors = append(ev.errors, msg)
	}
	return ev
}

// writer persists evaluated rows one at a time in file order
type writer struct {
	o          *Orchestrator
	jobID      string
	supplierID string
	enriched   map[string]bool
	results    []types.RowResult
	lastBeat   time.Time
}

func newWriter(o *Orchestrator, job *types.ImportJob) *writer {
	return &writer{
		o:          o,
		jobID:      job.ID,
		supplierID: job.SupplierID,
		enriched:   make(map[string]bool),
		lastBeat:   o.now(),
	}
}

// beat refreshes the job's liveness so the sweeper does not take a long
// run for an orphaned one. A failed touch is logged and the run continues.
func (w *writer) beat(ctx context.Context) {
	now := w.o.now()
	if now.Sub(w.lastBeat) < w.o.heartbeat {
		return
	}
	w.lastBeat = now
	if err := w.o.jobs.TouchJob(ctx, w.jobID); err != nil {
		w.o.logger.Warn().Err(err).Str("import_id", w.jobID).Msg("Failed to refresh import heartbeat")
	}
}

func (w *writer) write(ctx context.Context, ev evaluation) {
	w.beat(ctx)

	result := types.RowResult{
		RowIndex:        ev.row.Index,
		SKU:             ev.row.SKU,
		ProductID:       ev.outcome.ProductID,
		MatchMethod:     ev.outcome.Method,
		MatchConfidence: ev.outcome.Confidence,
		NeedsReview:     ev.outcome.NeedsReview,
		Issues:          ev.outcome.Issues,
		Errors:          []string{},
	}
	if result.Issues == nil {
		result.Issues = []types.IssueTag{}
	}

	defer func() {
		w.o.metrics.RecordRow(result)
		w.results = append(w.results, result)
	}()

	if len(ev.errors) > 0 {
		result.Status = types.RowFailed
		result.Errors = ev.errors
		return
	}

	product := *ev.match.Product
	item := types.SupplierItem{
		ID:           uuid.NewString(),
		SupplierID:   w.supplierID,
		ProductID:    product.ID,
		SupplierSKU:  ev.row.SKU,
		UnitPrice:    *ev.row.Price,
		Currency:     ev.row.Currency,
		MinOrderQty:  ev.row.MinQty,
		Stock:        ev.row.Stock,
		LeadTimeDays: ev.row.LeadTimeDays,
		Active:       true,
		LastSyncAt:   w.o.now().UTC(),
	}
	if _, err := w.o.items.UpsertSupplierItem(ctx, item); err != nil {
		result.Status = types.RowFailed
		result.Errors = append(result.Errors, fmt.Sprintf("failed to save supplier item: %v", err))
		return
	}

	result.Success = true
	result.Status = types.RowSuccess
	if ev.outcome.NeedsReview {
		result.Status = types.RowReview
	}

	// Only an exact identifier hit ties the registry record to this product.
	// A fuzzy link is unconfirmed and must not rewrite canonical attributes.
	if w.o.enricher != nil && ev.outcome.Method == types.MatchExactIdentifier && ev.gtin.Valid && !w.enriched[product.ID] {
		w.enriched[product.ID] = true
		outcome := w.o.enricher.Enrich(ctx, product, ev.gtin.Normalized)
		result.Enriched = outcome.Enriched
	}
}
