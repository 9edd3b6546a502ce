package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kosarica/catalog-import/internal/types"
)

func matchOf(method types.MatchMethod, score float64, p types.Product, dup bool) *MatchResult {
	return &MatchResult{
		Candidate:        types.MatchCandidate{ProductID: p.ID, Method: method, Score: score},
		Product:          &p,
		DuplicateSuspect: dup,
	}
}

func TestScorer_Score(t *testing.T) {
	withGTIN := product("p1", "6291041500213", "Widget", 0)
	withoutGTIN := product("p2", "", "Widget", 0)
	completeRow := types.CatalogRow{SKU: "S", GTIN: "6291041500213", Name: "Widget", Currency: "EUR", Price: types.IntPtr(999)}
	incompleteRow := types.CatalogRow{SKU: "S", GTIN: "6291041500213", Price: types.IntPtr(999), Missing: []string{"name", "currency"}}

	tests := []struct {
		name        string
		match       *MatchResult
		row         types.CatalogRow
		confidence  float64
		issues      []types.IssueTag
		needsReview bool
	}{
		{
			name:       "Clean exact match",
			match:      matchOf(types.MatchExactIdentifier, 1.0, withGTIN, false),
			row:        completeRow,
			confidence: 1.0,
			issues:     []types.IssueTag{},
		},
		{
			name:        "Fuzzy at full score still reviewable",
			match:       matchOf(types.MatchFuzzyName, 1.0, withGTIN, false),
			row:         completeRow,
			confidence:  1.0,
			issues:      []types.IssueTag{types.IssueFuzzyMatch, types.IssueNeedsReview},
			needsReview: true,
		},
		{
			name:        "Low confidence fuzzy",
			match:       matchOf(types.MatchFuzzyName, 0.75, withGTIN, false),
			row:         completeRow,
			confidence:  0.75,
			issues:      []types.IssueTag{types.IssueLowConfidence, types.IssueFuzzyMatch, types.IssueNeedsReview},
			needsReview: true,
		},
		{
			name:        "Product without GTIN",
			match:       matchOf(types.MatchFuzzyName, 0.95, withoutGTIN, false),
			row:         completeRow,
			confidence:  0.95,
			issues:      []types.IssueTag{types.IssueNoGTIN, types.IssueFuzzyMatch, types.IssueNeedsReview},
			needsReview: true,
		},
		{
			name:        "Missing row data",
			match:       matchOf(types.MatchExactIdentifier, 1.0, withGTIN, false),
			row:         incompleteRow,
			confidence:  1.0,
			issues:      []types.IssueTag{types.IssueMissingData, types.IssueNeedsReview},
			needsReview: true,
		},
		{
			name:        "Duplicate identifier",
			match:       matchOf(types.MatchExactIdentifier, 1.0, withGTIN, true),
			row:         completeRow,
			confidence:  1.0,
			issues:      []types.IssueTag{types.IssueDuplicateSuspect, types.IssueNeedsReview},
			needsReview: true,
		},
	}

	scorer := NewScorer(DefaultReviewThreshold)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := scorer.Score(tt.match, tt.row)
			assert.Equal(t, tt.match.Candidate.Method, outcome.Method)
			assert.Equal(t, tt.confidence, outcome.Confidence)
			assert.Equal(t, tt.issues, outcome.Issues)
			assert.Equal(t, tt.needsReview, outcome.NeedsReview)
			if assert.NotNil(t, outcome.ProductID) {
				assert.Equal(t, tt.match.Product.ID, *outcome.ProductID)
			}
		})
	}
}

func TestScorer_ReviewThresholdIsConfigurable(t *testing.T) {
	match := matchOf(types.MatchExactIdentifier, 0.85, product("p1", "6291041500213", "Widget", 0), false)
	row := types.CatalogRow{SKU: "S", GTIN: "6291041500213", Name: "Widget", Currency: "EUR", Price: types.IntPtr(1)}

	assert.True(t, NewScorer(0.90).Score(match, row).HasIssue(types.IssueLowConfidence))
	assert.False(t, NewScorer(0.80).Score(match, row).HasIssue(types.IssueLowConfidence))
	// exactly at threshold is not low confidence
	assert.False(t, NewScorer(0.85).Score(match, row).HasIssue(types.IssueLowConfidence))
}

func TestScorer_NoMatch(t *testing.T) {
	scorer := NewScorer(DefaultReviewThreshold)
	none := &MatchResult{Candidate: types.MatchCandidate{Method: types.MatchNone}}

	outcome := scorer.Score(none, types.CatalogRow{SKU: "S", Name: "Widget", Brand: "Acme"})
	assert.Nil(t, outcome.ProductID)
	assert.Equal(t, types.MatchNone, outcome.Method)
	assert.Zero(t, outcome.Confidence)
	assert.True(t, outcome.NeedsReview)
	assert.Equal(t, []types.IssueTag{types.IssueNeedsReview}, outcome.Issues)

	outcome = scorer.Score(none, types.CatalogRow{SKU: "S"})
	assert.False(t, outcome.NeedsReview)
	assert.Empty(t, outcome.Issues)
}
