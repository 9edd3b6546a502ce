package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/catalog-import/internal/types"
)

type fakeLookup struct {
	products []types.Product
	err      error
	calls    []string
}

func (f *fakeLookup) FindByGTIN(_ context.Context, gtin14 string) ([]types.Product, error) {
	f.calls = append(f.calls, "gtin:"+gtin14)
	if f.err != nil {
		return nil, f.err
	}
	var out []types.Product
	for _, p := range f.products {
		if p.GTIN != nil && NormalizeGTIN(*p.GTIN) == gtin14 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLookup) FindCandidatesByName(_ context.Context, _ string, name string, limit int) ([]types.Product, error) {
	f.calls = append(f.calls, "name:"+name)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.products) > limit {
		return f.products[:limit], nil
	}
	return f.products, nil
}

var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func product(id, gtin, name string, age int) types.Product {
	p := types.Product{ID: id, Name: name, CreatedAt: baseTime.Add(time.Duration(age) * time.Hour)}
	if gtin != "" {
		p.GTIN = types.StringPtr(gtin)
	}
	return p
}

func TestMatcher_ExactIdentifier(t *testing.T) {
	lookup := &fakeLookup{products: []types.Product{
		product("p1", "6291041500213", "Widget", 0),
		product("p2", "", "Widget", 1),
	}}
	m := NewMatcher(lookup, DefaultMatcherConfig())

	row := types.CatalogRow{SKU: "SKU1", GTIN: "6291041500213", Name: "Widget"}
	result, err := m.Match(context.Background(), "sup", row, ValidateGTIN(row.GTIN))
	require.NoError(t, err)

	require.True(t, result.Matched())
	assert.Equal(t, "p1", result.Product.ID)
	assert.Equal(t, types.MatchExactIdentifier, result.Candidate.Method)
	assert.Equal(t, 1.0, result.Candidate.Score)
	assert.False(t, result.DuplicateSuspect)
	assert.Equal(t, []string{"gtin:06291041500213"}, lookup.calls)
}

func TestMatcher_ExactIdentifierAcrossLengths(t *testing.T) {
	lookup := &fakeLookup{products: []types.Product{product("p1", "0036000291452", "Cola", 0)}}
	m := NewMatcher(lookup, DefaultMatcherConfig())

	row := types.CatalogRow{GTIN: "036000291452", Name: "Cola"}
	result, err := m.Match(context.Background(), "sup", row, ValidateGTIN(row.GTIN))
	require.NoError(t, err)
	require.True(t, result.Matched())
	assert.Equal(t, "p1", result.Product.ID)
}

func TestMatcher_DuplicateIdentifierPicksEarliest(t *testing.T) {
	lookup := &fakeLookup{products: []types.Product{
		product("p-late", "6291041500213", "Widget B", 5),
		product("p-early", "6291041500213", "Widget A", 1),
	}}
	m := NewMatcher(lookup, DefaultMatcherConfig())

	row := types.CatalogRow{GTIN: "6291041500213", Name: "Widget"}
	result, err := m.Match(context.Background(), "sup", row, ValidateGTIN(row.GTIN))
	require.NoError(t, err)

	assert.Equal(t, "p-early", result.Product.ID)
	assert.True(t, result.DuplicateSuspect)
	assert.Equal(t, 1.0, result.Candidate.Score)
}

func TestMatcher_FallsBackToFuzzyWhenIdentifierMisses(t *testing.T) {
	lookup := &fakeLookup{products: []types.Product{product("p1", "", "Widget Pro", 0)}}
	m := NewMatcher(lookup, DefaultMatcherConfig())

	row := types.CatalogRow{GTIN: "4006381333931", Name: "widget pro"}
	result, err := m.Match(context.Background(), "sup", row, ValidateGTIN(row.GTIN))
	require.NoError(t, err)

	require.True(t, result.Matched())
	assert.Equal(t, types.MatchFuzzyName, result.Candidate.Method)
	assert.Equal(t, 1.0, result.Candidate.Score)
	assert.Len(t, lookup.calls, 2)
}

func TestMatcher_InvalidIdentifierSkipsExactLookup(t *testing.T) {
	lookup := &fakeLookup{products: []types.Product{product("p1", "6291041500213", "Gadget", 0)}}
	m := NewMatcher(lookup, DefaultMatcherConfig())

	row := types.CatalogRow{GTIN: "6291041500214", Name: "Widget"}
	result, err := m.Match(context.Background(), "sup", row, ValidateGTIN(row.GTIN))
	require.NoError(t, err)

	assert.False(t, result.Matched())
	assert.Equal(t, types.MatchNone, result.Candidate.Method)
	assert.Equal(t, []string{"name:Widget"}, lookup.calls)
	require.NotNil(t, result.BestRejected)
	assert.Equal(t, "p1", result.BestRejected.ProductID)
}

func TestMatcher_FuzzyFloorBoundary(t *testing.T) {
	tests := []struct {
		name    string
		floor   float64
		catalog string
		matched bool
	}{
		// 20 characters, 6 edits: exactly 0.70
		{"Exactly at floor", 0.70, "abcdefghijklmnuvwxyz", true},
		// 20 characters, 7 edits: 0.65
		{"Below floor", 0.70, "abcdefghijklmtuvwxyz", false},
		{"Raised floor", 0.75, "abcdefghijklmnuvwxyz", false},
		{"Lowered floor", 0.65, "abcdefghijklmtuvwxyz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := &fakeLookup{products: []types.Product{product("p1", "", tt.catalog, 0)}}
			m := NewMatcher(lookup, MatcherConfig{FuzzyFloor: tt.floor})

			row := types.CatalogRow{Name: "abcdefghijklmnopqrst"}
			result, err := m.Match(context.Background(), "sup", row, ValidateGTIN(""))
			require.NoError(t, err)
			assert.Equal(t, tt.matched, result.Matched())
		})
	}
}

func TestMatcher_FuzzyPicksHighestAndBreaksTiesByAge(t *testing.T) {
	lookup := &fakeLookup{products: []types.Product{
		product("p-weak", "", "Widget Mini", 0),
		product("p-tie-late", "", "Widget Pro", 3),
		product("p-tie-early", "", "Widget Pro", 2),
	}}
	m := NewMatcher(lookup, DefaultMatcherConfig())

	result, err := m.Match(context.Background(), "sup", types.CatalogRow{Name: "Widget Pro"}, ValidateGTIN(""))
	require.NoError(t, err)
	assert.Equal(t, "p-tie-early", result.Product.ID)
}

func TestMatcher_NoNameNoIdentifier(t *testing.T) {
	lookup := &fakeLookup{products: []types.Product{product("p1", "", "Widget", 0)}}
	m := NewMatcher(lookup, DefaultMatcherConfig())

	result, err := m.Match(context.Background(), "sup", types.CatalogRow{SKU: "X"}, ValidateGTIN(""))
	require.NoError(t, err)
	assert.False(t, result.Matched())
	assert.Empty(t, lookup.calls)
}

func TestMatcher_LookupError(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection reset")}
	m := NewMatcher(lookup, DefaultMatcherConfig())

	row := types.CatalogRow{GTIN: "6291041500213", Name: "Widget"}
	_, err := m.Match(context.Background(), "sup", row, ValidateGTIN(row.GTIN))
	assert.ErrorContains(t, err, "connection reset")
}

func TestNewMatcher_Defaults(t *testing.T) {
	m := NewMatcher(&fakeLookup{}, MatcherConfig{})
	assert.Equal(t, DefaultMatcherConfig(), m.Config())
}
