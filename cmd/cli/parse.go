package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/catalog-import/internal/matching"
	"github.com/kosarica/catalog-import/internal/parsers"
	"github.com/kosarica/catalog-import/internal/parsers/csv"
	"github.com/kosarica/catalog-import/internal/types"
)

var (
	parseOutput string
	parseLimit  int
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a catalog file without importing it",
	Long: `Parse a local CSV or XLSX catalog and report how each row would be read:
column mapping, identifier validity, prices and missing fields. Nothing is written
to the database.`,
	Example: `  catalog-import parse ./data/acme.csv
  catalog-import parse ./data/acme.xlsx --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseOutput, "output", "table", "Output format: table or json")
	parseCmd.Flags().IntVar(&parseLimit, "limit", 20, "Maximum rows to show in table output (0 for all)")
}

// parsedRow is one row of the dry-run report
type parsedRow struct {
	types.CatalogRow
	GTINCheck types.IdentifierValidationResult `json:"gtinCheck"`
}

// parseReport summarizes a dry-run parse
type parseReport struct {
	FileType      types.FileType `json:"fileType"`
	Header        []string       `json:"header"`
	TotalRows     int            `json:"totalRows"`
	ValidGTINs    int            `json:"validGtins"`
	MissingPrices int            `json:"missingPrices"`
	Rows          []parsedRow    `json:"rows"`
}

func runParse(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	logger.Info().Str("file", filePath).Msgf("Read %d bytes", len(content))

	report, err := buildParseReport(filePath, content)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	switch strings.ToLower(parseOutput) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "table":
		outputParseTable(filePath, report)
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", parseOutput)
	}
	return nil
}

func buildParseReport(filename string, content []byte) (*parseReport, error) {
	catalog, err := parsers.ParseCatalog(filename, content)
	if err != nil {
		return nil, err
	}

	report := &parseReport{
		FileType: parsers.DetectFileType(filename),
		Header:   catalog.Header,
	}
	for row := range catalog.Rows() {
		check := matching.ValidateGTIN(row.GTIN)
		if check.Valid {
			report.ValidGTINs++
		}
		if !row.HasPrice() {
			report.MissingPrices++
		}
		report.Rows = append(report.Rows, parsedRow{CatalogRow: row, GTINCheck: check})
	}
	report.TotalRows = len(report.Rows)
	return report, nil
}

func outputParseTable(filePath string, report *parseReport) {
	fmt.Printf("\nParse Results for %s (%s)\n", filePath, report.FileType)
	fmt.Println(strings.Repeat("-", 60))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Metric\tValue\n")
	fmt.Fprintf(w, "------\t-----\n")
	fmt.Fprintf(w, "Columns\t%s\n", strings.Join(report.Header, ", "))
	fmt.Fprintf(w, "Total Rows\t%d\n", report.TotalRows)
	fmt.Fprintf(w, "Valid GTINs\t%d\n", report.ValidGTINs)
	fmt.Fprintf(w, "Missing Prices\t%d\n", report.MissingPrices)
	w.Flush()

	if report.TotalRows == 0 {
		return
	}

	shown := report.Rows
	if parseLimit > 0 && len(shown) > parseLimit {
		shown = shown[:parseLimit]
	}
	fmt.Printf("\nRows (first %d):\n", len(shown))
	fmt.Println(strings.Repeat("-", 60))

	w = tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Row\tSKU\tGTIN\tName\tPrice\tMissing\n")
	for _, row := range shown {
		gtin := row.GTIN
		if row.GTIN != "" && !row.GTINCheck.Valid {
			gtin += " (" + row.GTINCheck.Reason + ")"
		}
		price := "-"
		if row.Price != nil {
			price = csv.FormatCents(*row.Price) + " " + row.Currency
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			row.Index, row.SKU, gtin, row.Name, price, strings.Join(row.Missing, ","))
	}
	w.Flush()
}
