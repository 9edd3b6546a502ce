package xlsx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kosarica/catalog-import/internal/parsers/csv"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Options selects the worksheet to read
type Options struct {
	// SheetNameOrIndex is a sheet name (string) or zero-based index (int);
	// nil selects the first sheet
	SheetNameOrIndex any
}

// Parser reads supplier catalogs delivered as Excel workbooks
type Parser struct {
	options Options
}

// NewParser creates a new XLSX parser
func NewParser(options Options) *Parser {
	return &Parser{options: options}
}

// Parse reads the selected worksheet into a catalog. The first non-empty
// row is the header; header rules are the same as for CSV files.
func (p *Parser) Parse(content []byte) (*csv.Catalog, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName, err := p.selectSheet(f)
	if err != nil {
		return nil, err
	}

	// Raw values keep long identifiers out of scientific notation
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheetName, err)
	}

	headerAt := -1
	for i, row := range rows {
		if !isBlank(row) {
			headerAt = i
			break
		}
	}
	if headerAt == -1 {
		return nil, csv.ErrEmptyFile
	}

	data := rows[headerAt+1:]
	records := func(yield func([]string) bool) {
		for _, row := range data {
			if isBlank(row) {
				continue
			}
			if !yield(row) {
				return
			}
		}
	}

	log.Debug().Str("sheet", sheetName).Int("rows", len(data)).Msg("Parsed workbook header")

	return csv.NewCatalog(rows[headerAt], records)
}

// selectSheet selects the appropriate sheet from the workbook
func (p *Parser) selectSheet(f *excelize.File) (string, error) {
	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	switch v := p.options.SheetNameOrIndex.(type) {
	case int:
		if v < 0 || v >= len(sheetList) {
			return "", fmt.Errorf("sheet index %d not found. Workbook has %d sheets", v, len(sheetList))
		}
		return sheetList[v], nil
	case string:
		for _, name := range sheetList {
			if name == v {
				return name, nil
			}
		}
		return "", fmt.Errorf("sheet %q not found. Available sheets: %s", v, strings.Join(sheetList, ", "))
	default:
		return sheetList[0], nil
	}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
