// Package cuid2 generates prefixed, URL-safe identifiers for import jobs
// and queued tasks.
package cuid2

import (
	"crypto/rand"
	"time"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	// timestampWidth is the number of characters used for the time prefix
	timestampWidth = 6

	// DefaultSortableLength is the random part length after a time prefix
	DefaultSortableLength = 18

	// DefaultRandomLength is the random part length without a time prefix
	DefaultRandomLength = 24
)

// PrefixedIdOptions controls GeneratePrefixedId
type PrefixedIdOptions struct {
	// Unsorted drops the time prefix. IDs are time-sortable by default so
	// that newer jobs land at the end of a B-tree index.
	Unsorted bool
	// RandomLength overrides the length of the random part
	RandomLength int
}

// now is swapped in tests
var now = time.Now

// EncodeTimestamp encodes Unix seconds as a fixed-width base62 string.
// Output sorts lexicographically in time order.
func EncodeTimestamp(seconds int64) string {
	out := make([]byte, timestampWidth)
	for i := timestampWidth - 1; i >= 0; i-- {
		out[i] = alphabet[seconds%62]
		seconds /= 62
	}
	return string(out)
}

// GeneratePrefixedId returns prefix + "_" + an optional time prefix +
// random base62 characters.
//
//	GeneratePrefixedId("imp", PrefixedIdOptions{})               // imp_1rK5iqB3cD5eF7gH9iJ1kLmNo
//	GeneratePrefixedId("task", PrefixedIdOptions{Unsorted: true}) // task_8kJ2mN4pQ6rS0tU3vW5xY7zA
func GeneratePrefixedId(prefix string, options PrefixedIdOptions) string {
	length := options.RandomLength
	if options.Unsorted {
		if length <= 0 {
			length = DefaultRandomLength
		}
		return prefix + "_" + randomString(length)
	}

	if length <= 0 {
		length = DefaultSortableLength
	}
	return prefix + "_" + EncodeTimestamp(now().Unix()) + randomString(length)
}

// randomString draws length base62 characters from crypto/rand. Bytes
// at or above 248 are rejected so every character is equally likely.
func randomString(length int) string {
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/8+4)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			panic("cuid2: failed to read random bytes: " + err.Error())
		}
		for _, b := range buf {
			if b >= 248 {
				continue
			}
			out = append(out, alphabet[b%62])
			if len(out) == length {
				break
			}
		}
	}
	return string(out)
}
