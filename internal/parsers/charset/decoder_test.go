package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Encoding
	}{
		{"UTF-8 with BOM", []byte("\xEF\xBB\xBFsku"), EncodingUTF8},
		{"Plain ASCII", []byte("sku,gtin"), EncodingUTF8},
		{"UTF-8 diacritics", []byte("Čokolada"), EncodingUTF8},
		{"Windows-1250", []byte("\xC8okolada"), EncodingWindows1250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectEncoding(tt.data))
		})
	}
}

func TestDecode(t *testing.T) {
	out, err := Decode([]byte("\xC8okolada \x9Aljiva"), EncodingWindows1250)
	require.NoError(t, err)
	assert.Equal(t, "Čokolada šljiva", out)

	out, err = Decode([]byte("\xC8okolada \xB9ljiva"), EncodingISO88592)
	require.NoError(t, err)
	assert.Equal(t, "Čokolada šljiva", out)

	// already UTF-8 is never decoded twice
	out, err = Decode([]byte("Čokolada"), EncodingWindows1250)
	require.NoError(t, err)
	assert.Equal(t, "Čokolada", out)

	_, err = Decode([]byte("\xC8"), Encoding("ebcdic"))
	assert.Error(t, err)
}
