package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/catalog-import/internal/database"
	"github.com/kosarica/catalog-import/internal/enrichment"
	"github.com/kosarica/catalog-import/internal/importer"
	"github.com/kosarica/catalog-import/internal/types"
)

var (
	importSupplier string
	importOutput   string
)

// importCmd runs a catalog import inline against the configured database
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a supplier catalog file",
	Long: `Import a CSV or XLSX catalog for a supplier. The file is parsed, every row is
matched to a canonical product and linked to the supplier. The command prints the
job summary and the rows that failed or need review.`,
	Example: `  catalog-import import ./data/acme.csv --supplier sup-acme
  catalog-import import ./data/acme.xlsx --supplier sup-acme --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importSupplier, "supplier", "", "Supplier ID (required)")
	importCmd.Flags().StringVar(&importOutput, "output", "table", "Output format: table or json")
	importCmd.MarkFlagRequired("supplier")
}

func runImport(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	logger.Info().Str("file", filePath).Msgf("Read %d bytes", len(content))

	store := database.NewCatalogStore(database.Pool())
	deps := importer.Dependencies{
		Jobs:       store,
		Products:   store,
		Items:      store,
		Authorizer: store,
		Logger:     logger,
	}
	if cfg.Enrichment.Enabled {
		adapter, closeCache := enrichment.NewRegistryAdapter(cfg.Enrichment.RegistryOptions(), store, logger)
		defer closeCache()
		deps.Enricher = adapter
	}
	orchestrator := importer.New(deps, cfg.ImporterConfig())

	result, err := orchestrator.Import(cmd.Context(), importSupplier, filepath.Base(filePath), content)
	if err != nil {
		return fmt.Errorf("import interrupted: %w", err)
	}

	switch strings.ToLower(importOutput) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	case "table":
		outputImportTable(result)
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", importOutput)
	}

	if !result.Success {
		return fmt.Errorf("%s", importer.Summarize(*result))
	}
	return nil
}

func outputImportTable(result *types.ImportResult) {
	fmt.Println(importer.Summarize(*result))
	if result.Status != types.ImportCompleted {
		return
	}

	var flagged []types.RowResult
	for _, row := range result.Items {
		if row.Status != types.RowSuccess {
			flagged = append(flagged, row)
		}
	}
	if len(flagged) == 0 {
		return
	}

	fmt.Printf("\nRows needing attention (%d):\n", len(flagged))
	fmt.Println(strings.Repeat("-", 60))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Row\tSKU\tStatus\tMethod\tConfidence\tIssues\tErrors\n")
	for _, row := range flagged {
		issues := make([]string, len(row.Issues))
		for i, tag := range row.Issues {
			issues[i] = string(tag)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			row.RowIndex, row.SKU, row.Status, row.MatchMethod, row.MatchConfidence,
			strings.Join(issues, ","), strings.Join(row.Errors, "; "))
	}
	w.Flush()
}
