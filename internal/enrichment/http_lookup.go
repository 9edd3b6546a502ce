package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apphttp "github.com/kosarica/catalog-import/internal/http"
	"github.com/kosarica/catalog-import/internal/http/ratelimit"
	"github.com/kosarica/catalog-import/internal/types"
)

// DefaultTimeout bounds a single registry lookup
const DefaultTimeout = 3 * time.Second

// registryProduct is the registry's JSON shape for a product
type registryProduct struct {
	GTIN        string `json:"gtin"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	NetContent  string `json:"netContent"`
}

// HTTPLookup queries a product registry over HTTP:
// GET {baseURL}/products/{gtin}
type HTTPLookup struct {
	client  *apphttp.Client
	baseURL string
	timeout time.Duration
}

// NewHTTPLookup creates a registry lookup. A zero timeout uses DefaultTimeout.
func NewHTTPLookup(client *apphttp.Client, baseURL string, timeout time.Duration) *HTTPLookup {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = apphttp.NewClient(ratelimit.DefaultConfig())
	}
	return &HTTPLookup{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// FetchAttributes implements Lookup
func (l *HTTPLookup) FetchAttributes(ctx context.Context, gtin string) (*types.ProductAttributes, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	endpoint := l.baseURL + "/products/" + url.PathEscape(gtin)
	body, err := l.client.GetBytes(ctx, endpoint)
	if err != nil {
		var retryErr *ratelimit.FetchRetryError
		if errors.As(err, &retryErr) && retryErr.LastStatus == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("registry lookup for %s: %w", gtin, err)
	}

	var product registryProduct
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	attrs := &types.ProductAttributes{
		Name:        strings.TrimSpace(product.Name),
		Brand:       strings.TrimSpace(product.Brand),
		Description: strings.TrimSpace(product.Description),
		NetContent:  strings.TrimSpace(product.NetContent),
	}
	if attrs.IsEmpty() {
		return nil, ErrNotFound
	}
	return attrs, nil
}
