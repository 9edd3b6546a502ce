package csv

import (
	"errors"
	"strings"
)

// CsvDelimiter represents supported CSV delimiters
type CsvDelimiter string

const (
	DelimiterComma     CsvDelimiter = ","
	DelimiterSemicolon CsvDelimiter = ";"
	DelimiterTab       CsvDelimiter = "\t"
)

// CsvEncoding represents supported encodings
type CsvEncoding string

const (
	EncodingUTF8        CsvEncoding = "utf-8"
	EncodingWindows1250 CsvEncoding = "windows-1250"
	EncodingISO88592    CsvEncoding = "iso-8859-2"
)

// Canonical catalog column names
const (
	ColumnSKU         = "sku"
	ColumnGTIN        = "gtin"
	ColumnName        = "name"
	ColumnBrand       = "brand"
	ColumnDescription = "description"
	ColumnPrice       = "price"
	ColumnCurrency    = "currency"
	ColumnMinQty      = "min_qty"
	ColumnStock       = "stock"
	ColumnLeadTime    = "lead_time"
)

// RequiredColumns must all be present in the header or the whole import fails
var RequiredColumns = []string{ColumnSKU, ColumnGTIN, ColumnPrice}

// ExpectedFields are the row values whose absence is reported as missing data
var ExpectedFields = []string{ColumnSKU, ColumnGTIN, ColumnName, ColumnPrice, ColumnCurrency}

// headerAliases maps common supplier spellings onto canonical column names
var headerAliases = map[string]string{
	"ean":            ColumnGTIN,
	"ean13":          ColumnGTIN,
	"barcode":        ColumnGTIN,
	"upc":            ColumnGTIN,
	"product_name":   ColumnName,
	"title":          ColumnName,
	"unit_price":     ColumnPrice,
	"min_order_qty":  ColumnMinQty,
	"moq":            ColumnMinQty,
	"lead_time_days": ColumnLeadTime,
	"leadtime":       ColumnLeadTime,
	"qty":            ColumnStock,
}

var (
	// ErrEmptyFile is returned when the file has no header line
	ErrEmptyFile = errors.New("catalog file is empty")

	// ErrMissingColumns is returned when a required column is absent from the header
	ErrMissingColumns = errors.New("required columns missing")
)

// MissingColumnsError lists the required columns absent from a header
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}

// CsvParserOptions represents CSV parser options
type CsvParserOptions struct {
	Delimiter CsvDelimiter `json:"delimiter,omitempty"` // detected when empty
	Encoding  CsvEncoding  `json:"encoding,omitempty"`  // detected when empty
	QuoteChar rune         `json:"quoteChar,omitempty"`
}

// DefaultOptions returns default CSV parser options
func DefaultOptions() CsvParserOptions {
	return CsvParserOptions{
		QuoteChar: '"',
	}
}

// ColumnIndex holds the position of each known column, -1 when absent.
// It is resolved once per file from the header.
type ColumnIndex struct {
	SKU         int
	GTIN        int
	Name        int
	Brand       int
	Description int
	Price       int
	Currency    int
	MinQty      int
	Stock       int
	LeadTime    int
}

// Has reports whether the named canonical column was found in the header
func (c ColumnIndex) Has(column string) bool {
	return c.position(column) >= 0
}

func (c ColumnIndex) position(column string) int {
	switch column {
	case ColumnSKU:
		return c.SKU
	case ColumnGTIN:
		return c.GTIN
	case ColumnName:
		return c.Name
	case ColumnBrand:
		return c.Brand
	case ColumnDescription:
		return c.Description
	case ColumnPrice:
		return c.Price
	case ColumnCurrency:
		return c.Currency
	case ColumnMinQty:
		return c.MinQty
	case ColumnStock:
		return c.Stock
	case ColumnLeadTime:
		return c.LeadTime
	default:
		return -1
	}
}

func (c *ColumnIndex) set(column string, idx int) {
	switch column {
	case ColumnSKU:
		c.SKU = idx
	case ColumnGTIN:
		c.GTIN = idx
	case ColumnName:
		c.Name = idx
	case ColumnBrand:
		c.Brand = idx
	case ColumnDescription:
		c.Description = idx
	case ColumnPrice:
		c.Price = idx
	case ColumnCurrency:
		c.Currency = idx
	case ColumnMinQty:
		c.MinQty = idx
	case ColumnStock:
		c.Stock = idx
	case ColumnLeadTime:
		c.LeadTime = idx
	}
}

func emptyColumnIndex() ColumnIndex {
	return ColumnIndex{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1}
}
