package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var croatianReplacer = strings.NewReplacer(
	"č", "c", "Č", "C",
	"ć", "c", "Ć", "C",
	"đ", "dj", "Đ", "Dj",
	"š", "s", "Š", "S",
	"ž", "z", "Ž", "Z",
)

// RemoveDiacritics strips combining marks. đ has no decomposition and is
// mapped to "dj" explicitly.
func RemoveDiacritics(s string) string {
	s = croatianReplacer.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName prepares a product name for comparison: case-folded,
// diacritics removed, punctuation replaced by spaces, whitespace collapsed
func NormalizeName(name string) string {
	s := strings.ToLower(RemoveDiacritics(name))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// IsGenericBrand checks if a brand is generic/unbranded
func IsGenericBrand(brand string) bool {
	switch strings.ToLower(strings.TrimSpace(brand)) {
	case "n/a", "nepoznato", "unknown", "-", "", "private label", "own brand":
		return true
	}
	return false
}
