package commands

import (
	"fmt"
	"os"

	"fitexport/lib/scrapers/myfitnesspal"
	"fitexport/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(recipesCmd)
	rootCmd.AddCommand(recipeCmd)
	rootCmd.AddCommand(mealsCmd)
	rootCmd.AddCommand(mealCmd)
}

func renderIdTable(rows map[string]string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Id", "Name"})
	for id, name := range rows {
		t.AppendRow(table.Row{id, name})
	}
	t.Render()
}

func renderRecipe(recipe *myfitnesspal.Recipe) {
	fmt.Printf("%s (yield: %s)\n%s\n\n", recipe.Name, recipe.Yield, recipe.Url)
	for _, ingredient := range recipe.Ingredients {
		fmt.Printf("  - %s\n", ingredient)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Nutrient", "Amount"})
	for _, f := range nutritionFields(recipe.Nutrition) {
		t.AppendRow(table.Row{f, recipe.Nutrition[f]})
	}
	t.Render()
}

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Lists your saved recipes.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())
		recipes, err := client.Recipes(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to fetch recipes", err)
		}
		renderIdTable(recipes)
	},
}

var recipeCmd = &cobra.Command{
	Use:   "recipe <id>",
	Short: "Prints a saved recipe's ingredients and nutrition.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())
		recipe, err := client.RecipeDetails(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to fetch recipe", err)
		}
		renderRecipe(recipe)
	},
}

var mealsCmd = &cobra.Command{
	Use:   "meals",
	Short: "Lists your saved meals.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())
		meals, err := client.SavedMeals(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to fetch meals", err)
		}
		renderIdTable(meals)
	},
}

var mealCmd = &cobra.Command{
	Use:   "meal <id> <name>",
	Short: "Prints a saved meal's ingredients and nutrition totals.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())
		meal, err := client.SavedMeal(cmd.Context(), args[0], args[1])
		if err != nil {
			serviceutil.Fatal("failed to fetch meal", err)
		}
		renderRecipe(meal)
	},
}
