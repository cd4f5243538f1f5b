package commands

import (
	"fmt"
	"os"
	"strconv"

	"fitexport/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(foodCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Searches the food catalog.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		items, err := client.FoodSearch(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to search", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Name", "Brand", "Verified", "Calories"})
		for _, item := range items {
			calories := ""
			if item.HasCalories {
				calories = fmt.Sprint(item.Calories)
			}
			t.AppendRow(table.Row{item.Id, item.Name, item.Brand, item.Verified, calories})
		}
		t.Render()
	},
}

var foodCmd = &cobra.Command{
	Use:   "food <id>",
	Short: "Prints full nutrition details for a food item.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			serviceutil.Fatal("failed to parse food id", err)
		}
		client := createClient(cmd.Context())

		item, err := client.FoodItemDetails(cmd.Context(), id)
		if err != nil {
			serviceutil.Fatal("failed to fetch food item", err)
		}
		details, err := item.Details(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to fetch food details", err)
		}

		fmt.Printf("%s (%d confirmations)\n", item, details.Confirmations)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Nutrient", "Amount"})
		t.AppendRows([]table.Row{
			{"calories", item.Calories},
			{"carbohydrates", details.Carbohydrates},
			{"fat", details.Fat},
			{"saturated fat", details.SaturatedFat},
			{"polyunsaturated fat", details.PolyunsaturatedFat},
			{"monounsaturated fat", details.MonounsaturatedFat},
			{"trans fat", details.TransFat},
			{"protein", details.Protein},
			{"fiber", details.Fiber},
			{"sugar", details.Sugar},
			{"sodium", details.Sodium},
			{"potassium", details.Potassium},
			{"cholesterol", details.Cholesterol},
			{"calcium", details.Calcium},
			{"iron", details.Iron},
			{"vitamin a", details.VitaminA},
			{"vitamin c", details.VitaminC},
		})
		t.Render()

		if len(details.Servings) > 0 {
			st := table.NewWriter()
			st.SetOutputMirror(os.Stdout)
			st.AppendHeader(table.Row{"Serving", "Multiplier"})
			for _, serving := range details.Servings {
				st.AppendRow(table.Row{serving.String(), serving.NutritionMultiplier})
			}
			st.Render()
		}
	},
}
