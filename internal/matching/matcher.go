package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/kosarica/catalog-import/internal/types"
)

const (
	// DefaultFuzzyFloor is the minimum name similarity accepted as a match
	DefaultFuzzyFloor = 0.70
	// DefaultCandidateLimit bounds the name candidates fetched per row
	DefaultCandidateLimit = 50
)

// ProductLookup is the read side of the canonical product catalog.
type ProductLookup interface {
	// FindByGTIN returns products whose identifier equals the 14-digit
	// normalized value, ordered by created_at then id.
	FindByGTIN(ctx context.Context, gtin14 string) ([]types.Product, error)
	// FindCandidatesByName returns up to limit products linkable by the
	// supplier whose names resemble name.
	FindCandidatesByName(ctx context.Context, supplierID, name string, limit int) ([]types.Product, error)
}

// MatcherConfig holds matcher tuning
type MatcherConfig struct {
	FuzzyFloor     float64
	CandidateLimit int
}

// DefaultMatcherConfig returns the default matcher configuration
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		FuzzyFloor:     DefaultFuzzyFloor,
		CandidateLimit: DefaultCandidateLimit,
	}
}

// MatchResult is what the matcher resolved for one row.
type MatchResult struct {
	Candidate types.MatchCandidate
	// Product is the resolved product, nil when Candidate.Method is NONE
	Product *types.Product
	// DuplicateSuspect is set when several products share the identifier
	DuplicateSuspect bool
	// BestRejected is the best fuzzy candidate that fell below the floor
	BestRejected *types.MatchCandidate
}

// Matched reports whether a product was resolved
func (r *MatchResult) Matched() bool {
	return r != nil && r.Product != nil && r.Candidate.Method != types.MatchNone
}

// Matcher resolves catalog rows to canonical products. It only reads the
// catalog and never creates products.
type Matcher struct {
	lookup ProductLookup
	config MatcherConfig
}

// NewMatcher creates a matcher over the given product lookup
func NewMatcher(lookup ProductLookup, config MatcherConfig) *Matcher {
	if config.FuzzyFloor <= 0 || config.FuzzyFloor > 1 {
		config.FuzzyFloor = DefaultFuzzyFloor
	}
	if config.CandidateLimit <= 0 {
		config.CandidateLimit = DefaultCandidateLimit
	}
	return &Matcher{lookup: lookup, config: config}
}

// Config returns the effective configuration
func (m *Matcher) Config() MatcherConfig {
	return m.config
}

// Match tries the exact identifier first, then the fuzzy name match, and
// stops at the first strategy that yields an accepted candidate.
func (m *Matcher) Match(ctx context.Context, supplierID string, row types.CatalogRow, gtin types.IdentifierValidationResult) (*MatchResult, error) {
	if gtin.Valid {
		result, err := m.matchExact(ctx, gtin.Normalized)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}

	return m.matchFuzzy(ctx, supplierID, row.Name)
}

func (m *Matcher) matchExact(ctx context.Context, cleaned string) (*MatchResult, error) {
	products, err := m.lookup.FindByGTIN(ctx, NormalizeGTIN(cleaned))
	if err != nil {
		return nil, fmt.Errorf("failed to look up GTIN %s: %w", cleaned, err)
	}
	if len(products) == 0 {
		return nil, nil
	}

	sortByCreation(products)
	product := products[0]
	return &MatchResult{
		Candidate: types.MatchCandidate{
			ProductID: product.ID,
			Method:    types.MatchExactIdentifier,
			Score:     1.0,
		},
		Product:          &product,
		DuplicateSuspect: len(products) > 1,
	}, nil
}

func (m *Matcher) matchFuzzy(ctx context.Context, supplierID, name string) (*MatchResult, error) {
	none := &MatchResult{Candidate: types.MatchCandidate{Method: types.MatchNone}}
	if NormalizeName(name) == "" {
		return none, nil
	}

	products, err := m.lookup.FindCandidatesByName(ctx, supplierID, name, m.config.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch name candidates: %w", err)
	}
	if len(products) == 0 {
		return none, nil
	}

	// Earliest product wins ties, so scan in creation order and only
	// replace on a strictly higher score.
	sortByCreation(products)
	bestIdx := -1
	bestScore := 0.0
	for i := range products {
		score := NameSimilarity(name, products[i].Name)
		if bestIdx < 0 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	best := products[bestIdx]
	candidate := types.MatchCandidate{
		ProductID: best.ID,
		Method:    types.MatchFuzzyName,
		Score:     bestScore,
	}
	if bestScore < m.config.FuzzyFloor {
		none.BestRejected = &candidate
		return none, nil
	}

	return &MatchResult{Candidate: candidate, Product: &best}, nil
}

func sortByCreation(products []types.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.Before(products[j].CreatedAt)
		}
		return products[i].ID < products[j].ID
	})
}
