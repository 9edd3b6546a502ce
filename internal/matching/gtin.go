package matching

import (
	"fmt"
	"strings"

	"github.com/kosarica/catalog-import/internal/types"
)

// GTINLength is the width identifiers are padded to for comparison
const GTINLength = 14

var gtinKinds = map[int]types.IdentifierKind{
	8:  types.KindGTIN8,
	12: types.KindGTIN12,
	13: types.KindGTIN13,
	14: types.KindGTIN14,
}

var gtinSeparators = strings.NewReplacer(" ", "", "-", "", ".", "")

// CleanGTIN strips the separators suppliers put into printed identifiers
func CleanGTIN(raw string) string {
	return gtinSeparators.Replace(strings.TrimSpace(raw))
}

// ValidateGTIN validates a GTIN-8/12/13/14 including its check digit.
// On success Normalized holds the cleaned digits (not padded).
func ValidateGTIN(raw string) types.IdentifierValidationResult {
	cleaned := CleanGTIN(raw)
	if cleaned == "" {
		return invalid("empty identifier")
	}
	if !isDigits(cleaned) {
		return invalid("identifier contains non-digit characters")
	}

	kind, ok := gtinKinds[len(cleaned)]
	if !ok {
		return invalid(fmt.Sprintf("invalid identifier length %d", len(cleaned)))
	}

	expected, err := CheckDigit(cleaned[:len(cleaned)-1])
	if err != nil {
		return invalid(err.Error())
	}
	got := int(cleaned[len(cleaned)-1] - '0')
	if got != expected {
		return invalid(fmt.Sprintf("invalid check digit: expected %d, got %d", expected, got))
	}

	return types.IdentifierValidationResult{
		Valid:      true,
		Normalized: cleaned,
		Kind:       kind,
	}
}

// CheckDigit computes the mod-10 check digit for an identifier body
// (all digits except the check digit). Weights alternate 3,1,3,...
// starting from the rightmost body digit.
func CheckDigit(body string) (int, error) {
	if body == "" || !isDigits(body) {
		return 0, fmt.Errorf("identifier body must be digits")
	}

	sum := 0
	weight := 3
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight = 4 - weight
	}
	return (10 - sum%10) % 10, nil
}

// NormalizeGTIN left-pads a cleaned identifier with zeros to 14 digits so
// identifiers of different lengths compare equal
func NormalizeGTIN(cleaned string) string {
	if len(cleaned) >= GTINLength {
		return cleaned
	}
	return strings.Repeat("0", GTINLength-len(cleaned)) + cleaned
}

// LooksLikeGTIN is a cheap prefilter: 8 to 14 digits once separators are
// removed. It does not verify the check digit and must not replace
// ValidateGTIN before matching.
func LooksLikeGTIN(raw string) bool {
	cleaned := CleanGTIN(raw)
	return len(cleaned) >= 8 && len(cleaned) <= GTINLength && isDigits(cleaned)
}

func invalid(reason string) types.IdentifierValidationResult {
	return types.IdentifierValidationResult{Valid: false, Reason: reason}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
