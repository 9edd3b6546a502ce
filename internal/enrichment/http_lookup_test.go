package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/kosarica/catalog-import/internal/http"
	"github.com/kosarica/catalog-import/internal/http/ratelimit"
	"github.com/kosarica/catalog-import/internal/types"
)

func newRegistry(t *testing.T, handler http.HandlerFunc) *HTTPLookup {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := apphttp.NewClient(ratelimit.Config{MaxRetries: 0, InitialBackoffMs: 1, MaxBackoffMs: 1})
	return NewHTTPLookup(client, srv.URL+"/", 200*time.Millisecond)
}

func TestHTTPLookup_Found(t *testing.T) {
	lookup := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/6291041500213", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"gtin":"6291041500213","name":"Widget","brand":" Acme ","netContent":"500 g"}`))
	})

	attrs, err := lookup.FetchAttributes(context.Background(), "6291041500213")
	require.NoError(t, err)
	assert.Equal(t, &types.ProductAttributes{Name: "Widget", Brand: "Acme", NetContent: "500 g"}, attrs)
}

func TestHTTPLookup_NotFound(t *testing.T) {
	lookup := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := lookup.FetchAttributes(context.Background(), "6291041500213")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPLookup_EmptyRecordIsNotFound(t *testing.T) {
	lookup := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := lookup.FetchAttributes(context.Background(), "6291041500213")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPLookup_Malformed(t *testing.T) {
	lookup := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "Widg`))
	})

	_, err := lookup.FetchAttributes(context.Background(), "6291041500213")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestHTTPLookup_Timeout(t *testing.T) {
	lookup := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	_, err := lookup.FetchAttributes(context.Background(), "6291041500213")
	require.Error(t, err)
	assert.Equal(t, ReasonTimeout, classify(err))
}
