package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pavelhrncir/casebook/internal/config"
	"github.com/pavelhrncir/casebook/internal/store"
	"github.com/spf13/cobra"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List case files",
	Long:  `Retrieves and displays the stored case files in their list order.`,
	RunE:  runCases,
}

func init() {
	rootCmd.AddCommand(casesCmd)

	casesCmd.Flags().Bool("archived", false, "Include archived cases")
	casesCmd.Flags().String("query", "", "Search query to filter cases")
}

func runCases(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	archived := mustGetBool(cmd, "archived")
	query := mustGetString(cmd, "query")

	gw, err := openGateway(cfg)
	if err != nil {
		return err
	}
	defer gw.Close()

	summaries, err := gw.ListCases(context.Background(), store.ListFilter{
		IncludeArchived: archived,
		Query:           query,
	})
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Println("No cases found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPHOTOS\tTAGS\tUPDATED")
	fmt.Fprintln(w, "--\t-----\t------\t----\t-------")

	for i := range summaries {
		title := summaries[i].Title
		if summaries[i].Archived {
			title += " (archived)"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			summaries[i].ID, title, summaries[i].PhotoCount,
			len(summaries[i].TagIDs), summaries[i].UpdatedAt.Format("2006-01-02 15:04"),
		)
	}

	w.Flush()

	fmt.Printf("\nTotal: %d cases\n", len(summaries))

	return nil
}
