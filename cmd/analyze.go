package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/imagesearch/internal/relevance"
	"github.com/lehigh-university-libraries/imagesearch/internal/results"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var input string
	var criteria string
	var format string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Rank saved search results against criteria",
		Long: `Scores each record by keyword matches in its title, its resolution and
whether it is a product listing, then prints the records best first with a
recommendation label. Does not contact the provider.`,
		Example: `  imagesearch search red shoes > shoes.json
  imagesearch analyze --input shoes.json --criteria "running red"

  imagesearch search red shoes | imagesearch analyze --input - --criteria leather --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", input, err)
				}
				defer f.Close()
				r = f
			}

			records, err := results.Read(r, input)
			if err != nil {
				return err
			}

			return results.Write(cmd.OutOrStdout(), format, relevance.Analyze(records, criteria))
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "JSON or YAML file of search results (- for JSON on stdin)")
	cmd.Flags().StringVarP(&criteria, "criteria", "c", "", "Criteria for selecting the best images")
	cmd.Flags().StringVarP(&format, "format", "f", results.FormatJSON, "Output format (json or yaml)")
	_ = cmd.MarkFlagRequired("criteria")

	return cmd
}
