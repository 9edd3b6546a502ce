package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"Identical", "Widget", "Widget", 1.0},
		{"Case and punctuation only", "WIDGET!", "widget", 1.0},
		{"Reordered tokens", "Dukat Milk 1L", "Milk Dukat 1L", 1.0},
		{"Three edits in ten", "abcdefghij", "abcdefgxyz", 0.7},
		{"Four edits in ten", "abcdefghij", "abcdefwxyz", 0.6},
		{"Both empty", "", "", 1.0},
		{"One empty", "Widget", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NameSimilarity(tt.a, tt.b))
		})
	}
}

func TestNameSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Widget Pro", "Widget Pro Max"},
		{"Čokolada mliječna", "Cokolada mlijecna 100g"},
		{"abc", "xyz"},
	}
	for _, p := range pairs {
		assert.Equal(t, NameSimilarity(p[0], p[1]), NameSimilarity(p[1], p[0]), p)
		score := NameSimilarity(p[0], p[1])
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}
