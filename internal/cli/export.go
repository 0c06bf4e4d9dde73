package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Chative-core-poc-v1/intake/internal/intake/complaints"
)

// ExportCommand creates the complaint export command
func ExportCommand(cfg AppConfig) *cobra.Command {
	var (
		outPath string
		query   string
		limit   int
		offset  int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export filed complaints as CSV",
		Long: `Write filed complaints as CSV, newest first.

Examples:
  intake export --out complaints.csv
  intake export --query "CMP-20250102" --limit 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := Build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}
			n, err := runExport(cmd.Context(), app.Complaints, w, complaints.ListFilter{Query: query, Limit: limit, Offset: offset})
			if err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "✅ exported %d complaint(s) to %s\n", n, outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&query, "query", "", "Filter by reference, description, category or name")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows (0 exports everything)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")
	return cmd
}

func runExport(ctx context.Context, repo complaints.Repository, w io.Writer, f complaints.ListFilter) (int, error) {
	return complaints.ExportCSV(ctx, repo, w, f)
}
