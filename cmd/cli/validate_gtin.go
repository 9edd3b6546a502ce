package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/catalog-import/internal/matching"
)

var validateGTINCmd = &cobra.Command{
	Use:   "validate-gtin <code>...",
	Short: "Validate GTIN-8/12/13/14 codes",
	Example: `  catalog-import validate-gtin 4006381333931
  catalog-import validate-gtin 96385074 0 12345-67890-5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidateGTIN,
}

func init() {
	rootCmd.AddCommand(validateGTINCmd)
}

func runValidateGTIN(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Code\tValid\tKind\tNormalized\tError\n")

	invalid := 0
	for _, code := range args {
		result := matching.ValidateGTIN(code)
		normalized := ""
		if result.Valid {
			normalized = matching.NormalizeGTIN(result.Normalized)
		} else {
			invalid++
		}
		fmt.Fprintf(w, "%s\t%t\t%s\t%s\t%s\n", code, result.Valid, result.Kind, normalized, result.Reason)
	}
	w.Flush()

	if invalid > 0 {
		return fmt.Errorf("%d of %d codes are invalid", invalid, len(args))
	}
	return nil
}
