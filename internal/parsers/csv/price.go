package csv

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	currencySuffixRe = regexp.MustCompile(`\s*(KN|KUNA|HRK|EUR|USD|GBP|CHF)\s*$`)
	currencyPrefixRe = regexp.MustCompile(`^\s*(EUR|USD|GBP|CHF)\s*`)
	leadTimeRe       = regexp.MustCompile(`^(\d+)\s*(d|day|days|dana)?$`)
)

// ParsePrice parses a price string to cents (integer)
// Handles various formats: "12.99", "12,99", "1.299,00", "€ 1 299,00"
func ParsePrice(value string) (int, error) {
	if strings.TrimSpace(value) == "" {
		return 0, fmt.Errorf("empty price value")
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == '€' || r == '$' || r == '£' || r == ' ' || r == '\u00A0' {
			return -1
		}
		return r
	}, strings.TrimSpace(value))

	cleaned = strings.ToUpper(cleaned)
	cleaned = currencySuffixRe.ReplaceAllString(cleaned, "")
	cleaned = currencyPrefixRe.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return 0, fmt.Errorf("no numeric value found")
	}

	// The separator that appears last is the decimal separator
	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	if lastComma > lastDot {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else if lastDot > lastComma {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	result, err := parseFloat(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid price format: %w", err)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("invalid price format: %q", value)
	}

	return int(math.Round(result * 100)), nil
}

// ParseQuantity parses a whole-number quantity such as a stock level or a
// minimum order quantity. "12" and "12.0" are accepted, "1.5" is not.
func ParseQuantity(value string) (int, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, fmt.Errorf("empty quantity value")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := parseFloat(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: %w", value, err)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("quantity %q is not a whole number", value)
	}
	return int(f), nil
}

// ParseLeadTime parses a lead time in days: "5", "5d", "5 days"
func ParseLeadTime(value string) (int, error) {
	m := leadTimeRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(value)))
	if m == nil {
		return 0, fmt.Errorf("invalid lead time %q", value)
	}
	return strconv.Atoi(m[1])
}

// parseFloat safely parses a float with better error handling
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}

	hasDigit := false
	for _, r := range s {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return 0, fmt.Errorf("no digits found")
	}

	return strconv.ParseFloat(s, 64)
}

// FormatCents formats cents as a decimal string (e.g., 1299 -> "12.99")
func FormatCents(cents int) string {
	return fmt.Sprintf("%.2f", float64(cents)/100.0)
}
