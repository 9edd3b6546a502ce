// Package parsers selects the catalog reader for an uploaded file.
package parsers

import (
	"path/filepath"
	"strings"

	"github.com/kosarica/catalog-import/internal/parsers/archive"
	"github.com/kosarica/catalog-import/internal/parsers/csv"
	"github.com/kosarica/catalog-import/internal/parsers/xlsx"
	"github.com/kosarica/catalog-import/internal/types"
)

// DetectFileType infers the catalog format from the file name.
// Anything that is not a workbook is read as delimited text.
func DetectFileType(filename string) types.FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return types.FileTypeXLSX
	case ".zip":
		return types.FileTypeZIP
	default:
		return types.FileTypeCSV
	}
}

// ParseCatalog parses an uploaded catalog file. A zip upload must contain
// exactly one CSV or XLSX file.
func ParseCatalog(filename string, content []byte) (*csv.Catalog, error) {
	if DetectFileType(filename) == types.FileTypeZIP {
		entry, err := archive.ExtractCatalog(content, archive.DefaultOptions())
		if err != nil {
			return nil, err
		}
		filename, content = entry.Name, entry.Content
	}

	if DetectFileType(filename) == types.FileTypeXLSX {
		return xlsx.NewParser(xlsx.Options{}).Parse(content)
	}
	return csv.Parse(content)
}
