package csv

import (
	"bytes"
	"fmt"
	"iter"
	"strings"

	"github.com/kosarica/catalog-import/internal/parsers/charset"
	"github.com/kosarica/catalog-import/internal/types"
	"github.com/rs/zerolog/log"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Catalog is a parsed catalog header together with a restartable source of
// data records. Rows are decoded lazily each time Rows is ranged over.
type Catalog struct {
	Header  []string
	Columns ColumnIndex
	records iter.Seq[[]string]
}

// Parser implements CSV parsing with encoding detection and column mapping
type Parser struct {
	options CsvParserOptions
}

// NewParser creates a new CSV parser with the given options
func NewParser(options CsvParserOptions) *Parser {
	if options.QuoteChar == 0 {
		options.QuoteChar = '"'
	}
	return &Parser{
		options: options,
	}
}

// Parse decodes content and resolves the header. It fails with ErrEmptyFile
// when there is no header line and with a *MissingColumnsError when a
// required column is absent; no rows are read in either case.
func (p *Parser) Parse(content []byte) (*Catalog, error) {
	opts := p.options

	content = bytes.TrimPrefix(content, byteOrderMark)

	if opts.Encoding == "" {
		opts.Encoding = CsvEncoding(charset.DetectEncoding(content))
	}

	decoded, err := charset.Decode(content, charset.Encoding(opts.Encoding))
	if err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}
	// A BOM may also survive a legacy-encoding round trip
	decoded = strings.TrimPrefix(decoded, "\uFEFF")

	if opts.Delimiter == "" {
		opts.Delimiter = DetectDelimiter(decoded)
	}
	delim := rune(opts.Delimiter[0])

	lines := splitLines(decoded)

	headerAt := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			headerAt = i
			break
		}
	}
	if headerAt == -1 {
		return nil, ErrEmptyFile
	}

	header := SplitCSVLine(lines[headerAt], delim, opts.QuoteChar)
	data := lines[headerAt+1:]

	records := func(yield func([]string) bool) {
		for _, line := range data {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !yield(SplitCSVLine(line, delim, opts.QuoteChar)) {
				return
			}
		}
	}

	log.Debug().
		Str("delimiter", string(opts.Delimiter)).
		Str("encoding", string(opts.Encoding)).
		Int("lines", len(data)).
		Msg("Parsed catalog header")

	return NewCatalog(header, records)
}

// Parse parses CSV content with default options
func Parse(content []byte) (*Catalog, error) {
	return NewParser(DefaultOptions()).Parse(content)
}

// NewCatalog resolves the header into a column index and wraps records.
// records must already leave out blank lines and be safe to range over
// more than once. A record whose cells are all blank is still a row.
func NewCatalog(header []string, records iter.Seq[[]string]) (*Catalog, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	columns, missing := buildColumnIndex(normalized)
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	return &Catalog{
		Header:  normalized,
		Columns: columns,
		records: records,
	}, nil
}

// Rows returns the data rows in file order. Each range over the sequence
// starts again from the first row.
func (c *Catalog) Rows() iter.Seq[types.CatalogRow] {
	return func(yield func(types.CatalogRow) bool) {
		index := 0
		for record := range c.records {
			if !yield(c.mapRecord(index, record)) {
				return
			}
			index++
		}
	}
}

// Count returns the number of data rows
func (c *Catalog) Count() int {
	n := 0
	for range c.records {
		n++
	}
	return n
}

// buildColumnIndex maps normalized header names to positions and reports
// the required columns that are absent
func buildColumnIndex(header []string) (ColumnIndex, []string) {
	columns := emptyColumnIndex()

	for i, h := range header {
		name := h
		if alias, ok := headerAliases[h]; ok {
			name = alias
		}
		// First occurrence wins when a supplier repeats a column
		if columns.position(name) == -1 {
			columns.set(name, i)
		}
	}

	var missing []string
	for _, required := range RequiredColumns {
		if !columns.Has(required) {
			missing = append(missing, required)
		}
	}
	return columns, missing
}

// mapRecord maps a raw record onto a typed row. Numeric cells that do not
// parse are left nil; the raw text is kept for error reporting.
func (c *Catalog) mapRecord(index int, record []string) types.CatalogRow {
	get := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return cleanField(record[idx])
	}

	row := types.CatalogRow{
		Index:       index,
		SKU:         get(c.Columns.SKU),
		GTIN:        get(c.Columns.GTIN),
		Name:        get(c.Columns.Name),
		Brand:       get(c.Columns.Brand),
		Description: get(c.Columns.Description),
		PriceRaw:    get(c.Columns.Price),
		Currency:    strings.ToUpper(get(c.Columns.Currency)),
		MinQtyRaw:   get(c.Columns.MinQty),
		StockRaw:    get(c.Columns.Stock),
		LeadTimeRaw: get(c.Columns.LeadTime),
	}

	if row.PriceRaw != "" {
		if cents, err := ParsePrice(row.PriceRaw); err == nil {
			row.Price = &cents
		} else {
			log.Debug().Int("row", index).Str("value", row.PriceRaw).Err(err).Msg("Price parse failed")
		}
	}
	if row.MinQtyRaw != "" {
		if n, err := ParseQuantity(row.MinQtyRaw); err == nil {
			row.MinQty = &n
		}
	}
	if row.StockRaw != "" {
		if n, err := ParseQuantity(row.StockRaw); err == nil {
			row.Stock = &n
		}
	}
	if row.LeadTimeRaw != "" {
		if n, err := ParseLeadTime(row.LeadTimeRaw); err == nil {
			row.LeadTimeDays = &n
		}
	}

	values := map[string]string{
		ColumnSKU:      row.SKU,
		ColumnGTIN:     row.GTIN,
		ColumnName:     row.Name,
		ColumnPrice:    row.PriceRaw,
		ColumnCurrency: row.Currency,
	}
	for _, field := range ExpectedFields {
		if values[field] == "" {
			row.Missing = append(row.Missing, field)
		}
	}

	return row
}

// normalizeHeader lower-cases a header cell and folds separators so that
// "Min Qty" and "min-qty" both resolve to min_qty
func normalizeHeader(h string) string {
	h = strings.ToLower(cleanField(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	return h
}

// cleanField trims whitespace and any quotes left around a value
func cleanField(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	return v
}

// splitLines splits content into lines handling different line endings
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}
