package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/summary-analyzer/internal/model"
	"github.com/sells-group/summary-analyzer/internal/store"
)

var analysesCmd = &cobra.Command{
	Use:   "analyses",
	Short: "Inspect stored analyses",
}

var analysesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored analyses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		company, _ := cmd.Flags().GetString("company")
		limit, _ := cmd.Flags().GetInt("limit")

		analyses, err := st.ListAnalyses(ctx, store.ListFilter{
			Status:  model.AnalysisStatus(status),
			Company: company,
			Limit:   limit,
		})
		if err != nil {
			return eris.Wrap(err, "analyses list")
		}

		if len(analyses) == 0 {
			fmt.Fprintln(os.Stderr, "No analyses found.")
			return nil
		}

		formatAnalysesList(cmd.OutOrStdout(), analyses)
		return nil
	},
}

var analysesShowCmd = &cobra.Command{
	Use:   "show <analysis-id>",
	Short: "Print a stored analysis report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		format, _ := cmd.Flags().GetString("format")
		art, err := st.GetArtifact(ctx, args[0], model.ArtifactFormat(format))
		if err != nil {
			return eris.Wrapf(err, "analyses show %s", args[0])
		}

		fmt.Fprintln(cmd.OutOrStdout(), art.Content)
		return nil
	},
}

func formatAnalysesList(w io.Writer, analyses []model.Analysis) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPANY\tSTATUS\tCREATED")
	for _, a := range analyses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			a.ID, a.CompanyName, a.Status, a.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func init() {
	analysesListCmd.Flags().String("status", "", "filter by status (complete, failed)")
	analysesListCmd.Flags().String("company", "", "filter by company name")
	analysesListCmd.Flags().Int("limit", 50, "maximum number of analyses to list")

	analysesShowCmd.Flags().String("format", "markdown", "artifact format (markdown, html)")

	analysesCmd.AddCommand(analysesListCmd)
	analysesCmd.AddCommand(analysesShowCmd)
	rootCmd.AddCommand(analysesCmd)
}
