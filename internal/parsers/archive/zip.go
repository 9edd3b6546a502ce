// Package archive unpacks zipped catalog uploads.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNoCatalog is returned when an archive holds no readable catalog file
	ErrNoCatalog = errors.New("archive contains no catalog file")

	// ErrMultipleCatalogs is returned when an archive holds more than one
	// catalog file
	ErrMultipleCatalogs = errors.New("archive contains more than one catalog file")
)

// Options limits what is extracted from an archive
type Options struct {
	// MaxFileSize is the maximum size for a single entry in bytes (0 = unlimited)
	MaxFileSize int64
	// MaxEntries is the maximum number of candidate entries (0 = unlimited)
	MaxEntries int
	// AllowedExtensions filters which entries are extracted (empty = all)
	AllowedExtensions []string
	// SkipPatterns drops entries whose path contains any of these
	SkipPatterns []string
}

// DefaultOptions extracts CSV and XLSX entries up to 100MB each
func DefaultOptions() Options {
	return Options{
		MaxFileSize:       100 << 20,
		MaxEntries:        100,
		AllowedExtensions: []string{".csv", ".txt", ".xlsx", ".xlsm"},
		SkipPatterns: []string{
			"__MACOSX",
			".DS_Store",
			"Thumbs.db",
			"desktop.ini",
		},
	}
}

// Entry is one file extracted from an archive
type Entry struct {
	Name    string
	Content []byte
}

// IsZip reports whether the file name has a zip extension
func IsZip(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".zip")
}

// Extract returns the allowed entries of a zip archive. Directory structure is
// flattened to base names; entries with unsafe paths are skipped.
func Extract(content []byte, opts Options) ([]Entry, error) {
	// insecure names are handled per entry by sanitizeName
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	var entries []Entry
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		name, err := sanitizeName(file.Name)
		if err != nil {
			log.Debug().Str("entry", file.Name).Err(err).Msg("Skipping zip entry")
			continue
		}
		if skipped(file.Name, opts.SkipPatterns) || !allowed(name, opts.AllowedExtensions) {
			continue
		}

		if opts.MaxEntries > 0 && len(entries) >= opts.MaxEntries {
			return nil, fmt.Errorf("too many files in archive (limit: %d)", opts.MaxEntries)
		}
		if opts.MaxFileSize > 0 && int64(file.UncompressedSize64) > opts.MaxFileSize {
			return nil, fmt.Errorf("file %s exceeds maximum size (%d > %d)",
				name, file.UncompressedSize64, opts.MaxFileSize)
		}

		data, err := readEntry(file, name, opts.MaxFileSize)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Content: data})
	}

	return entries, nil
}

// ExtractCatalog returns the single catalog file in an archive
func ExtractCatalog(content []byte, opts Options) (Entry, error) {
	entries, err := Extract(content, opts)
	if err != nil {
		return Entry{}, err
	}
	switch len(entries) {
	case 0:
		return Entry{}, ErrNoCatalog
	case 1:
		return entries[0], nil
	default:
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name
		}
		return Entry{}, fmt.Errorf("%w: %s", ErrMultipleCatalogs, strings.Join(names, ", "))
	}
}

// readEntry reads an entry, enforcing the limit on the bytes actually
// inflated rather than the declared size
func readEntry(file *zip.File, name string, limit int64) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in zip: %w", name, err)
	}
	defer rc.Close()

	var reader io.Reader = rc
	if limit > 0 {
		reader = io.LimitReader(rc, limit+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from zip: %w", name, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("file %s exceeds maximum size (actual data > %d bytes)", name, limit)
	}
	return data, nil
}

// sanitizeName rejects absolute and escaping paths and returns the base name
func sanitizeName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")

	if path.IsAbs(name) {
		return "", fmt.Errorf("absolute path not allowed: %s", name)
	}
	if len(name) >= 2 && name[1] == ':' {
		return "", fmt.Errorf("drive letter not allowed: %s", name)
	}

	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return "", fmt.Errorf("path traversal not allowed: %s", name)
		}
	}

	base := path.Base(path.Clean(name))
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	return base, nil
}

func skipped(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

func allowed(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	for _, a := range extensions {
		if strings.EqualFold(ext, a) {
			return true
		}
	}
	return false
}
