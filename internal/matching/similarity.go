package matching

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// NameSimilarity scores two product names in [0,1]. Both names are
// normalized first; the score is the better of the plain edit-distance
// ratio and the ratio over alphabetically sorted tokens, so reordered
// words ("Milk Dukat 1L" / "Dukat Milk 1L") still match.
func NameSimilarity(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		if na == nb {
			return 1.0
		}
		return 0.0
	}
	if na == nb {
		return 1.0
	}

	plain := editRatio(na, nb)
	sorted := editRatio(sortTokens(na), sortTokens(nb))
	if sorted > plain {
		return sorted
	}
	return plain
}

// editRatio is (maxLen - distance) / maxLen over runes
func editRatio(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-dist) / float64(maxLen)
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
