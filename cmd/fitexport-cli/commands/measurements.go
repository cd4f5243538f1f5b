package commands

import (
	"os"
	"time"

	"fitexport/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var measurementsFrom *string
var measurementsTo *string
var measurementsSet *float64

func init() {
	measurementsFrom = measurementsCmd.Flags().String("from", "", "Oldest date to include (YYYY-MM-DD).")
	measurementsTo = measurementsCmd.Flags().String("to", "", "Newest date to include (YYYY-MM-DD).")
	measurementsSet = measurementsCmd.Flags().Float64("set", 0, "Record this value for today instead of listing.")
	rootCmd.AddCommand(measurementsCmd)
	rootCmd.AddCommand(measurementTypesCmd)
}

func parseBound(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	bound, err := time.Parse("2006-01-02", value)
	if err != nil {
		serviceutil.Fatal("failed to parse bound, expected YYYY-MM-DD", err)
	}
	return bound
}

var measurementsCmd = &cobra.Command{
	Use:   "measurements <name> [--from <date>] [--to <date>] [--set <value>]",
	Short: "Prints (or records) measurements of a given series.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		if cmd.Flags().Changed("set") {
			err := client.SetMeasurement(cmd.Context(), args[0], *measurementsSet, time.Now())
			if err != nil {
				serviceutil.Fatal("failed to record measurement", err)
			}
			return
		}

		entries, err := client.Measurements(
			cmd.Context(), args[0],
			parseBound(*measurementsFrom), parseBound(*measurementsTo),
		)
		if err != nil {
			serviceutil.Fatal("failed to fetch measurements", err)
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

var measurementTypesCmd = &cobra.Command{
	Use:   "measurement-types",
	Short: "Prints the measurement series known to your account.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		types, err := client.MeasurementTypes(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to fetch measurement types", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "Id"})
		for name, id := range types {
			t.AppendRow(table.Row{name, id})
		}
		t.Render()
	},
}
