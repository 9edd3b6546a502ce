// Package enrichment fills missing descriptive attributes of canonical
// products from an external product registry. Every failure mode degrades
// to "not enriched"; enrichment never fails an import row.
package enrichment

import (
	"context"
	"errors"

	"github.com/kosarica/catalog-import/internal/types"
)

var (
	// ErrNotFound means the registry has no record for the identifier
	ErrNotFound = errors.New("product attributes not found")

	// ErrMalformedResponse means the registry answered with a body that
	// could not be decoded
	ErrMalformedResponse = errors.New("malformed registry response")
)

// Lookup fetches product attributes by validated trade identifier.
type Lookup interface {
	FetchAttributes(ctx context.Context, gtin string) (*types.ProductAttributes, error)
}

// ProductBackfiller writes enriched attributes onto a canonical product.
// Only blank attributes are filled; it reports whether anything changed.
type ProductBackfiller interface {
	BackfillAttributes(ctx context.Context, productID string, attrs types.ProductAttributes) (bool, error)
}

// Reason explains an enrichment outcome
type Reason string

const (
	ReasonEnriched       Reason = "enriched"
	ReasonNotNeeded      Reason = "not-needed"
	ReasonNoIdentifier   Reason = "no-identifier"
	ReasonNotFound       Reason = "not-found"
	ReasonTimeout        Reason = "timeout"
	ReasonMalformed      Reason = "malformed"
	ReasonCircuitOpen    Reason = "circuit-open"
	ReasonLookupError    Reason = "lookup-error"
	ReasonNoNewData      Reason = "no-new-data"
	ReasonBackfillFailed Reason = "backfill-failed"
)

// Outcome is the result of one enrichment attempt
type Outcome struct {
	Enriched bool
	Reason   Reason
	// Attributes holds what was written when Enriched is true
	Attributes *types.ProductAttributes
}
