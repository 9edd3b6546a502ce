package matching

import (
	"github.com/kosarica/catalog-import/internal/types"
)

// DefaultReviewThreshold is the confidence below which a match needs review
const DefaultReviewThreshold = 0.90

// Scorer turns a match into a scored outcome with advisory issue tags.
// Tags never block persistence of a match.
type Scorer struct {
	reviewThreshold float64
}

// NewScorer creates a scorer. A threshold outside (0,1] falls back to the
// default.
func NewScorer(reviewThreshold float64) *Scorer {
	if reviewThreshold <= 0 || reviewThreshold > 1 {
		reviewThreshold = DefaultReviewThreshold
	}
	return &Scorer{reviewThreshold: reviewThreshold}
}

// Score computes confidence and issue tags for a row and its match.
// Tags are emitted in a fixed order with needs-review last.
func (s *Scorer) Score(match *MatchResult, row types.CatalogRow) types.MatchOutcome {
	outcome := types.MatchOutcome{
		Method: types.MatchNone,
		Issues: []types.IssueTag{},
		Errors: []string{},
	}

	matched := match.Matched()
	if matched {
		productID := match.Product.ID
		outcome.ProductID = &productID
		outcome.Method = match.Candidate.Method
		outcome.Confidence = match.Candidate.Score

		if outcome.Confidence < s.reviewThreshold {
			outcome.Issues = append(outcome.Issues, types.IssueLowConfidence)
		}
		if !match.Product.HasGTIN() {
			outcome.Issues = append(outcome.Issues, types.IssueNoGTIN)
		}
		if outcome.Method == types.MatchFuzzyName {
			outcome.Issues = append(outcome.Issues, types.IssueFuzzyMatch)
		}
	}

	if len(row.Missing) > 0 {
		outcome.Issues = append(outcome.Issues, types.IssueMissingData)
	}
	if matched && match.DuplicateSuspect {
		outcome.Issues = append(outcome.Issues, types.IssueDuplicateSuspect)
	}

	// An unmatched row with a name and brand has enough to create the
	// product by hand, so it is surfaced to a reviewer.
	if !matched && row.Name != "" && row.Brand != "" {
		outcome.NeedsReview = true
	}

	if len(outcome.Issues) > 0 || outcome.NeedsReview {
		outcome.Issues = append(outcome.Issues, types.IssueNeedsReview)
		outcome.NeedsReview = true
	}

	return outcome
}
