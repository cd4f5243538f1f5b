package commands

import (
	"os"

	"fitexport/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var reportCategory *string
var reportFrom *string
var reportTo *string

func init() {
	reportCategory = reportCmd.Flags().String("category", "Nutrition", "Report category (Nutrition or Fitness).")
	reportFrom = reportCmd.Flags().String("from", "", "Oldest date to include (YYYY-MM-DD).")
	reportTo = reportCmd.Flags().String("to", "", "Newest date to include (YYYY-MM-DD).")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <name> [--category <category>] [--from <date>] [--to <date>]",
	Short: "Prints a report series, e.g. \"Net Calories\".",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		entries, err := client.Report(
			cmd.Context(), args[0], *reportCategory,
			parseBound(*reportFrom), parseBound(*reportTo),
		)
		if err != nil {
			serviceutil.Fatal("failed to fetch report", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Date", args[0]})
		for _, entry := range entries {
			t.AppendRow(table.Row{entry.Date.Format("2006-01-02"), entry.Value})
		}
		t.Render()
	},
}
