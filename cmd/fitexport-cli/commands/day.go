package commands

import (
	"fmt"
	"os"
	"sort"
	"time"

	"fitexport/lib/scrapers/myfitnesspal"
	"fitexport/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var dayFriend *string
var dayExercises *bool

func init() {
	dayFriend = dayCmd.Flags().String("friend", "", "Show a friend's diary instead of your own.")
	dayExercises = dayCmd.Flags().Bool("exercises", false, "Also print the exercise diary.")
	rootCmd.AddCommand(dayCmd)
}

func parseDateArg(args []string) time.Time {
	if len(args) == 0 {
		return time.Now()
	}
	date, err := time.Parse("2006-01-02", args[0])
	if err != nil {
		serviceutil.Fatal("failed to parse date, expected YYYY-MM-DD", err)
	}
	return date
}

// nutritionFields returns the union of attribute names in a stable
// order, calories first.
func nutritionFields(values map[string]float64) []string {
	var fields []string
	for k := range values {
		if k == "calories" {
			continue
		}
		fields = append(fields, k)
	}
	sort.Strings(fields)
	if _, ok := values["calories"]; ok {
		fields = append([]string{"calories"}, fields...)
	}
	return fields
}

var dayCmd = &cobra.Command{
	Use:   "day [YYYY-MM-DD] [--friend <username>] [--exercises]",
	Short: "Prints the food diary for a date.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		date := parseDateArg(args)
		client := createClient(cmd.Context())

		var day *myfitnesspal.Day
		var err error
		if *dayFriend != "" {
			day, err = client.FriendDay(cmd.Context(), *dayFriend, date)
		} else {
			day, err = client.Day(cmd.Context(), date)
		}
		if err != nil {
			serviceutil.Fatal("failed to fetch diary", err)
		}

		totals := day.Totals()
		fields := nutritionFields(totals)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		header := table.Row{"Food"}
		for _, f := range fields {
			header = append(header, f)
		}
		t.AppendHeader(header)

		for _, meal := range day.Meals {
			for _, entry := range meal.Entries {
				row := table.Row{fmt.Sprintf("[%s] %s", meal.Name, entry.Name)}
				for _, f := range fields {
					v, ok := entry.Value(f)
					if !ok {
						row = append(row, "")
						continue
					}
					row = append(row, v)
				}
				t.AppendRow(row)
			}
		}

		totalRow := table.Row{"Total"}
		goalRow := table.Row{"Goal"}
		for _, f := range fields {
			totalRow = append(totalRow, totals[f])
			goalRow = append(goalRow, day.Goals[f])
		}
		t.AppendFooter(totalRow)
		t.AppendFooter(goalRow)
		t.Render()

		fmt.Printf("complete: %v\n", day.Complete)

		if *dayFriend == "" {
			if note, err := day.Notes(); err == nil && note.Body != "" {
				fmt.Printf("note: %s\n", note.Body)
			}
			if water, err := day.Water(); err == nil {
				fmt.Printf("water: %.0f ml\n", water)
			}
		}

		if *dayExercises {
			exercises, err := day.Exercises()
			if err != nil {
				serviceutil.Fatal("failed to fetch exercises", err)
			}
			for _, exercise := range exercises {
				renderExercise(exercise)
			}
		}
	},
}

func renderExercise(exercise myfitnesspal.Exercise) {
	union := map[string]float64{}
	for _, entry := range exercise.Entries {
		for k, v := range entry.Nutrition {
			union[k] = v
		}
	}
	fields := nutritionFields(union)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	header := table.Row{exercise.Name}
	for _, f := range fields {
		header = append(header, f)
	}
	t.AppendHeader(header)
	for _, entry := range exercise.Entries {
		row := table.Row{entry.Name}
		for _, f := range fields {
			v, ok := entry.Value(f)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, v)
		}
		t.AppendRow(row)
	}
	t.Render()
}
