package csv

import (
	"strings"
	"unicode/utf8"
)

// DetectDelimiter detects the CSV delimiter by analyzing the first few lines
func DetectDelimiter(content string) CsvDelimiter {
	sampleLines := make([]string, 0, 5)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			sampleLines = append(sampleLines, trimmed)
			if len(sampleLines) >= 5 {
				break
			}
		}
	}

	if len(sampleLines) == 0 {
		return DelimiterComma
	}

	delimiters := []CsvDelimiter{DelimiterComma, DelimiterSemicolon, DelimiterTab}
	bestDelimiter := DelimiterComma
	maxConsistency := 0.0

	for _, delim := range delimiters {
		counts := make([]int, 0, len(sampleLines))
		sum := 0
		for _, line := range sampleLines {
			c := len(SplitCSVLine(line, rune(delim[0]), '"')) - 1
			counts = append(counts, c)
			sum += c
		}

		avgCount := float64(sum) / float64(len(counts))
		if avgCount == 0 {
			continue
		}

		// All lines of a well-formed file split into the same number of fields
		variance := 0.0
		for _, c := range counts {
			diff := float64(c) - avgCount
			variance += diff * diff
		}
		variance /= float64(len(counts))

		consistency := avgCount / (1.0 + variance)
		if consistency > maxConsistency {
			maxConsistency = consistency
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// SplitCSVLine splits a CSV line handling quoted fields.
// A quoted field may contain the delimiter; a doubled quote inside a quoted
// field is an escaped quote.
func SplitCSVLine(line string, delimiter rune, quoteChar rune) []string {
	fields := make([]string, 0, 10)
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); {
		r, width := utf8.DecodeRuneInString(line[i:])
		i += width

		if inQuotes {
			if r == quoteChar {
				if next, w := utf8.DecodeRuneInString(line[i:]); i < len(line) && next == quoteChar {
					current.WriteRune(quoteChar)
					i += w
					continue
				}
				inQuotes = false
				continue
			}
			current.WriteRune(r)
			continue
		}

		switch r {
		case quoteChar:
			inQuotes = true
		case delimiter:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	fields = append(fields, current.String())
	return fields
}
