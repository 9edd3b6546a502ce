package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/catalog-import/internal/types"
)

var validGTINs = []struct {
	code string
	kind types.IdentifierKind
}{
	{"96385074", types.KindGTIN8},
	{"036000291452", types.KindGTIN12},
	{"6291041500213", types.KindGTIN13},
	{"4006381333931", types.KindGTIN13},
	{"10614141000415", types.KindGTIN14},
}

func TestValidateGTIN(t *testing.T) {
	for _, tt := range validGTINs {
		t.Run(tt.code, func(t *testing.T) {
			result := ValidateGTIN(tt.code)
			assert.True(t, result.Valid)
			assert.Equal(t, tt.code, result.Normalized)
			assert.Equal(t, tt.kind, result.Kind)
			assert.Empty(t, result.Reason)
		})
	}
}

func TestValidateGTIN_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"Empty", "", "empty identifier"},
		{"Only separators", " - . ", "empty identifier"},
		{"Letters", "62910415002AB", "identifier contains non-digit characters"},
		{"Too short", "1234567", "invalid identifier length 7"},
		{"Length 10", "1234567890", "invalid identifier length 10"},
		{"Too long", "123456789012345", "invalid identifier length 15"},
		{"Bad check digit", "6291041500214", "invalid check digit: expected 3, got 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateGTIN(tt.input)
			assert.False(t, result.Valid)
			assert.Empty(t, result.Normalized)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}
}

func TestValidateGTIN_StripsSeparators(t *testing.T) {
	for _, input := range []string{"629-1041-500213", "629 1041 500 213", "629.1041.500.213", " 6291041500213 "} {
		result := ValidateGTIN(input)
		require.True(t, result.Valid, input)
		assert.Equal(t, "6291041500213", result.Normalized)
	}
}

// Any single-digit change must be caught by the check digit.
func TestValidateGTIN_DetectsSingleDigitErrors(t *testing.T) {
	for _, tt := range validGTINs {
		for pos := 0; pos < len(tt.code); pos++ {
			for d := byte('0'); d <= '9'; d++ {
				if tt.code[pos] == d {
					continue
				}
				mutated := []byte(tt.code)
				mutated[pos] = d

				result := ValidateGTIN(string(mutated))
				assert.False(t, result.Valid, "mutation %s of %s accepted", mutated, tt.code)
				assert.Contains(t, result.Reason, "invalid check digit", string(mutated))
			}
		}
	}
}

func TestCheckDigit(t *testing.T) {
	for _, tt := range validGTINs {
		digit, err := CheckDigit(tt.code[:len(tt.code)-1])
		require.NoError(t, err)
		assert.Equal(t, int(tt.code[len(tt.code)-1]-'0'), digit, tt.code)
	}

	_, err := CheckDigit("")
	assert.Error(t, err)
	_, err = CheckDigit("12a4")
	assert.Error(t, err)
}

func TestNormalizeGTIN(t *testing.T) {
	assert.Equal(t, "00000096385074", NormalizeGTIN("96385074"))
	assert.Equal(t, "00036000291452", NormalizeGTIN("036000291452"))
	assert.Equal(t, "10614141000415", NormalizeGTIN("10614141000415"))

	// UPC-A and its EAN-13 form are the same identifier
	assert.Equal(t, NormalizeGTIN("036000291452"), NormalizeGTIN("0036000291452"))
}

func TestLooksLikeGTIN(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"6291041500213", true},
		{"6291041500214", true}, // checksum is not verified
		{"1234-5678", true},
		{"1234567", false},
		{"123456789012345", false},
		{"ABC12345678", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			assert.Equal(t, tt.expected, LooksLikeGTIN(tt.input))
		})
	}
}
