package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/imagesearch/internal/results"
	"github.com/lehigh-university-libraries/imagesearch/internal/serpapi"
)

func newSearchCmd(a *app) *cobra.Command {
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search Google Images and print the results",
		Example: `  imagesearch search red shoes --limit 5
  imagesearch search "mountain lake" --format yaml > lake.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := a.provider()
			if err != nil {
				return err
			}

			records, err := provider.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return fmt.Errorf("failed to search for images: %w", err)
			}

			return results.Write(cmd.OutOrStdout(), format, records)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", serpapi.DefaultLimit, "Maximum number of results to return")
	cmd.Flags().StringVarP(&format, "format", "f", results.FormatJSON, "Output format (json or yaml)")

	return cmd
}
