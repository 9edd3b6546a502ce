package csv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"9.99", 999},
		{"12,99", 1299},
		{"1.299,00", 129900},
		{"1,299.00", 129900},
		{"€ 1 299,00", 129900},
		{" 12,50 ", 1250},
		{"15 EUR", 1500},
		{"EUR 15.5", 1550},
		{"$3", 300},
		{"0", 0},
		{"-2.50", -250},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cents, err := ParsePrice(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cents)
		})
	}
}

func TestParsePrice_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "EUR", "abc", "NaN", "Inf", "1.2.3,x"} {
		_, err := ParsePrice(input)
		assert.Error(t, err, "%q", input)
	}
}

func TestParseQuantity(t *testing.T) {
	n, err := ParseQuantity("12")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = ParseQuantity("12.0")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = ParseQuantity("1.5")
	assert.Error(t, err)
	_, err = ParseQuantity("many")
	assert.Error(t, err)
}

func TestParseLeadTime(t *testing.T) {
	for input, expected := range map[string]int{"5": 5, "5d": 5, "5 days": 5, "7 dana": 7, "1 Day": 1} {
		n, err := ParseLeadTime(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, n, input)
	}

	_, err := ParseLeadTime("two weeks")
	assert.Error(t, err)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "12.99", FormatCents(1299))
	assert.Equal(t, "0.05", FormatCents(5))
}
