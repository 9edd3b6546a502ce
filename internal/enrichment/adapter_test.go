package enrichment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/catalog-import/internal/types"
)

type stubLookup struct {
	attrs *types.ProductAttributes
	err   error
	calls int
}

func (s *stubLookup) FetchAttributes(_ context.Context, _ string) (*types.ProductAttributes, error) {
	s.calls++
	return s.attrs, s.err
}

type recordingBackfiller struct {
	got map[string]types.ProductAttributes
	err error
}

func (r *recordingBackfiller) BackfillAttributes(_ context.Context, productID string, attrs types.ProductAttributes) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	if r.got == nil {
		r.got = map[string]types.ProductAttributes{}
	}
	r.got[productID] = attrs
	return true, nil
}

var bareProduct = types.Product{ID: "p1", Name: "Widget"}

func TestAdapter_EnrichFillsBlanksOnly(t *testing.T) {
	lookup := &stubLookup{attrs: &types.ProductAttributes{
		Name:        "Registry Widget",
		Brand:       "Acme",
		Description: "A fine widget",
		NetContent:  "500 g",
	}}
	backfiller := &recordingBackfiller{}
	adapter := NewAdapter(lookup, backfiller, nil, nil)

	product := bareProduct
	product.Description = "Existing description"

	outcome := adapter.Enrich(context.Background(), product, "6291041500213")
	require.True(t, outcome.Enriched)
	assert.Equal(t, ReasonEnriched, outcome.Reason)
	assert.Equal(t, types.ProductAttributes{Brand: "Acme", NetContent: "500 g"}, backfiller.got["p1"])
}

func TestAdapter_SkipsCompleteProducts(t *testing.T) {
	lookup := &stubLookup{}
	adapter := NewAdapter(lookup, &recordingBackfiller{}, nil, nil)

	product := types.Product{ID: "p1", Brand: "Acme", Description: "d", NetContent: "1 l"}
	outcome := adapter.Enrich(context.Background(), product, "6291041500213")
	assert.False(t, outcome.Enriched)
	assert.Equal(t, ReasonNotNeeded, outcome.Reason)
	assert.Zero(t, lookup.calls)

	outcome = adapter.Enrich(context.Background(), bareProduct, "")
	assert.Equal(t, ReasonNoIdentifier, outcome.Reason)
	assert.Zero(t, lookup.calls)
}

func TestAdapter_DegradesOnLookupFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason Reason
	}{
		{"Not found", ErrNotFound, ReasonNotFound},
		{"Malformed", fmt.Errorf("%w: unexpected EOF", ErrMalformedResponse), ReasonMalformed},
		{"Timeout", fmt.Errorf("registry lookup: %w", context.DeadlineExceeded), ReasonTimeout},
		{"Other", errors.New("connection refused"), ReasonLookupError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backfiller := &recordingBackfiller{}
			adapter := NewAdapter(&stubLookup{err: tt.err}, backfiller, nil, nil)

			outcome := adapter.Enrich(context.Background(), bareProduct, "6291041500213")
			assert.False(t, outcome.Enriched)
			assert.Equal(t, tt.reason, outcome.Reason)
			assert.Empty(t, backfiller.got)
		})
	}
}

func TestAdapter_GenericBrandIsNotBackfilled(t *testing.T) {
	lookup := &stubLookup{attrs: &types.ProductAttributes{Brand: "n/a"}}
	adapter := NewAdapter(lookup, &recordingBackfiller{}, nil, nil)

	outcome := adapter.Enrich(context.Background(), bareProduct, "6291041500213")
	assert.False(t, outcome.Enriched)
	assert.Equal(t, ReasonNoNewData, outcome.Reason)
}

func TestAdapter_BackfillFailure(t *testing.T) {
	lookup := &stubLookup{attrs: &types.ProductAttributes{Brand: "Acme"}}
	adapter := NewAdapter(lookup, &recordingBackfiller{err: errors.New("db down")}, nil, nil)

	outcome := adapter.Enrich(context.Background(), bareProduct, "6291041500213")
	assert.False(t, outcome.Enriched)
	assert.Equal(t, ReasonBackfillFailed, outcome.Reason)
}

func TestAdapter_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	lookup := &stubLookup{err: errors.New("connection refused")}
	breaker := NewCircuitBreaker("test-adapter", CircuitBreakerConfig{MaxFailures: 2}, nil)
	adapter := NewAdapter(lookup, &recordingBackfiller{}, breaker, nil)

	adapter.Enrich(context.Background(), bareProduct, "6291041500213")
	adapter.Enrich(context.Background(), bareProduct, "6291041500213")
	outcome := adapter.Enrich(context.Background(), bareProduct, "6291041500213")

	assert.Equal(t, ReasonCircuitOpen, outcome.Reason)
	assert.Equal(t, 2, lookup.calls)
}
