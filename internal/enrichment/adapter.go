package enrichment

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/kosarica/catalog-import/internal/matching"
	"github.com/kosarica/catalog-import/internal/types"
)

// Adapter enriches resolved products that lack descriptive attributes.
type Adapter struct {
	lookup     Lookup
	backfiller ProductBackfiller
	breaker    *CircuitBreaker
	logger     *zerolog.Logger
}

// NewAdapter creates an enrichment adapter. breaker may be nil to use a
// default breaker.
func NewAdapter(lookup Lookup, backfiller ProductBackfiller, breaker *CircuitBreaker, logger *zerolog.Logger) *Adapter {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}
	if breaker == nil {
		breaker = NewCircuitBreaker("registry", DefaultCircuitBreakerConfig(), logger)
	}
	return &Adapter{
		lookup:     lookup,
		backfiller: backfiller,
		breaker:    breaker,
		logger:     logger,
	}
}

// Enrich looks up attributes for product by its validated identifier and
// fills the blanks. It never returns an error: every failure is reported
// through the outcome reason.
func (a *Adapter) Enrich(ctx context.Context, product types.Product, gtin string) Outcome {
	outcome := a.enrich(ctx, product, gtin)
	recordOutcome(outcome.Reason)
	return outcome
}

func (a *Adapter) enrich(ctx context.Context, product types.Product, gtin string) Outcome {
	if !product.MissingAttributes() {
		return Outcome{Reason: ReasonNotNeeded}
	}
	if gtin == "" {
		return Outcome{Reason: ReasonNoIdentifier}
	}
	if !a.breaker.Allow() {
		return Outcome{Reason: ReasonCircuitOpen}
	}

	start := time.Now()
	attrs, err := a.lookup.FetchAttributes(ctx, gtin)
	recordLookup(time.Since(start))

	if err != nil {
		reason := classify(err)
		if reason == ReasonNotFound {
			// an expected absence says the registry is healthy
			a.breaker.RecordSuccess()
		} else {
			a.breaker.RecordFailure(err)
		}
		a.logger.Debug().
			Err(err).
			Str("product_id", product.ID).
			Str("gtin", gtin).
			Str("reason", string(reason)).
			Msg("Enrichment skipped")
		return Outcome{Reason: reason}
	}
	a.breaker.RecordSuccess()

	fill := blanksFrom(product, attrs)
	if fill.IsEmpty() {
		return Outcome{Reason: ReasonNoNewData}
	}

	updated, err := a.backfiller.BackfillAttributes(ctx, product.ID, fill)
	if err != nil {
		a.logger.Warn().Err(err).Str("product_id", product.ID).Msg("Failed to backfill product attributes")
		return Outcome{Reason: ReasonBackfillFailed}
	}
	if !updated {
		return Outcome{Reason: ReasonNoNewData}
	}

	return Outcome{Enriched: true, Reason: ReasonEnriched, Attributes: &fill}
}

func classify(err error) Reason {
	switch {
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrMalformedResponse):
		return ReasonMalformed
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	default:
		return ReasonLookupError
	}
}

// blanksFrom keeps only the fetched attributes the product does not have.
// The canonical name is never overwritten.
func blanksFrom(product types.Product, fetched *types.ProductAttributes) types.ProductAttributes {
	var fill types.ProductAttributes
	if fetched == nil {
		return fill
	}
	if product.Brand == "" && !matching.IsGenericBrand(fetched.Brand) {
		fill.Brand = fetched.Brand
	}
	if product.Description == "" {
		fill.Description = fetched.Description
	}
	if product.NetContent == "" {
		fill.NetContent = fetched.NetContent
	}
	return fill
}
