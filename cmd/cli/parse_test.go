package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/catalog-import/internal/types"
)

func TestBuildParseReport(t *testing.T) {
	content := []byte("sku,gtin,name,price,currency\n" +
		"A1,4006381333931,Widget,1.99,EUR\n" +
		"A2,123,Gadget,,EUR\n")

	report, err := buildParseReport("catalog.csv", content)
	require.NoError(t, err)

	assert.Equal(t, types.FileTypeCSV, report.FileType)
	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 1, report.ValidGTINs)
	assert.Equal(t, 1, report.MissingPrices)
	require.Len(t, report.Rows, 2)
	assert.True(t, report.Rows[0].GTINCheck.Valid)
	assert.False(t, report.Rows[1].GTINCheck.Valid)
	assert.Contains(t, report.Rows[1].Missing, "price")
}

func TestBuildParseReport_MissingColumns(t *testing.T) {
	_, err := buildParseReport("catalog.csv", []byte("sku,name\nA1,Widget\n"))
	assert.EqualError(t, err, "missing required columns: gtin, price")
}
