package xlsx

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kosarica/catalog-import/internal/parsers/csv"
)

func workbook(t *testing.T, sheets map[string][][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			if row == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParse_FirstSheet(t *testing.T) {
	content := workbook(t, map[string][][]any{
		"Catalog": {
			{"SKU", "GTIN", "Name", "Price", "Currency"},
			{"SKU1", "6291041500213", "Widget", "9.99", "EUR"},
			nil,
			{"SKU2", "96385074", "Gadget", 12, "EUR"},
		},
	})

	catalog, err := NewParser(Options{}).Parse(content)
	require.NoError(t, err)

	rows := slices.Collect(catalog.Rows())
	require.Len(t, rows, 2)
	assert.Equal(t, "SKU1", rows[0].SKU)
	assert.Equal(t, "6291041500213", rows[0].GTIN)
	assert.Equal(t, 999, *rows[0].Price)
	assert.Equal(t, "SKU2", rows[1].SKU)
	assert.Equal(t, 1, rows[1].Index)
	assert.Equal(t, 1200, *rows[1].Price)
}

func TestParse_NamedSheet(t *testing.T) {
	content := workbook(t, map[string][][]any{
		"Prices": {
			{"sku", "ean", "price"},
			{"A", "96385074", "1"},
		},
	})

	catalog, err := NewParser(Options{SheetNameOrIndex: "Prices"}).Parse(content)
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.Count())

	_, err = NewParser(Options{SheetNameOrIndex: "Missing"}).Parse(content)
	assert.ErrorContains(t, err, `sheet "Missing" not found`)

	_, err = NewParser(Options{SheetNameOrIndex: 3}).Parse(content)
	assert.ErrorContains(t, err, "sheet index 3 not found")
}

func TestParse_MissingColumns(t *testing.T) {
	content := workbook(t, map[string][][]any{
		"Sheet": {{"sku", "name"}, {"A", "Widget"}},
	})

	_, err := NewParser(Options{}).Parse(content)
	assert.True(t, errors.Is(err, csv.ErrMissingColumns))
}

func TestParse_EmptySheet(t *testing.T) {
	content := workbook(t, map[string][][]any{"Sheet": {}})

	_, err := NewParser(Options{}).Parse(content)
	assert.ErrorIs(t, err, csv.ErrEmptyFile)
}

func TestParse_NotAWorkbook(t *testing.T) {
	_, err := NewParser(Options{}).Parse([]byte("sku,gtin,price"))
	assert.ErrorContains(t, err, "failed to open workbook")
}
