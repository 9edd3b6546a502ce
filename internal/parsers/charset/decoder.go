package charset

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Encoding represents a text encoding
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1250 Encoding = "windows-1250"
	EncodingISO88592    Encoding = "iso-8859-2"
)

// DetectEncoding detects the encoding of a byte buffer.
// Anything that is valid UTF-8 is treated as UTF-8; supplier exports that
// are not are almost always Windows-1250.
func DetectEncoding(data []byte) Encoding {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return EncodingUTF8
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}
	return EncodingWindows1250
}

// Decode converts a byte buffer from the specified encoding to a UTF-8 string.
// Valid UTF-8 input is returned as-is whatever encoding was requested, which
// avoids double-decoding files that were mislabelled.
func Decode(data []byte, enc Encoding) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	var decoder encoding.Encoding
	switch enc {
	case EncodingISO88592:
		decoder = charmap.ISO8859_2
	case EncodingWindows1250, EncodingUTF8, "":
		decoder = charmap.Windows1250
	default:
		return "", fmt.Errorf("unsupported encoding: %s", enc)
	}

	out, err := decoder.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(out), nil
}
