package myfitnesspal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecipes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/recipe_parser", r.URL.Path)
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `<html><body><div id="main">
				<ul>
					<li><div></div><div><h2><span><a href="/recipe/view/111" title="Pasta Bake">Pasta Bake</a></span></h2></div></li>
					<li><div></div><div><h2><span><a href="/recipe/view/222" title="Green Curry">Green Curry</a></span></h2></div></li>
				</ul>
				<ul class="pagination"><a href="?page=2">Next</a></ul>
			</div></body></html>`)
		case "2":
			fmt.Fprint(w, `<html><body><div id="main">
				<ul>
					<li><div></div><div><h2><span><a href="/recipe/view/333" title="Overnight Oats">Overnight Oats</a></span></h2></div></li>
				</ul>
				<ul class="pagination"><a href="?page=1">Previous</a></ul>
			</div></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{SiteUrl: server.URL})
	require.NoError(t, err)

	recipes, err := client.Recipes(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"111": "Pasta Bake",
		"222": "Green Curry",
		"333": "Overnight Oats",
	}, recipes)
}

func TestRecipeDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/recipe/view/111", r.URL.Path)
		fmt.Fprint(w, `<html><body><div id="main">
			<div><div>
				<h1>Pasta Bake</h1>
				<div><div class="calories">450</div></div>
			</div></div>
			<div><div>
				<ul>
					<li class="ingredient">200 g penne</li>
					<li class="ingredient">1 jar tomato sauce</li>
					<li class="ingredient">100 g mozzarella</li>
				</ul>
			</div></div>
			<table>
				<tr id="carbs"><td><span>Carbs</span><span>62 g</span></td></tr>
				<tr id="fiber"><td><span>Fiber</span><span>5 g</span></td></tr>
				<tr id="sugar"><td><span>Sugar</span><span>9 g</span></td></tr>
				<tr id="sodium"><td><span>Sodium</span><span>620 mg</span></td></tr>
				<tr id="protein"><td><span>Protein</span><span>21 g</span></td></tr>
				<tr id="total_fat"><td><span>Fat</span><span>14 g</span></td></tr>
				<tr id="saturated_fat"><td><span>Saturated</span><span>6 g</span></td></tr>
				<tr id="monounsaturated_fat"><td><span>Monounsaturated</span><span>4 g</span></td></tr>
				<tr id="polyunsaturated_fat"><td><span>Polyunsaturated</span><span>2 g</span></td></tr>
				<tr id="trans_fat"><td><span>Trans</span><span>0 g</span></td></tr>
			</table>
			<div id="recipe_servings_holder"><span id="recipe_servings">4</span></div>
		</div></body></html>`)
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{SiteUrl: server.URL})
	require.NoError(t, err)

	recipe, err := client.RecipeDetails(context.Background(), "111")
	require.NoError(t, err)
	require.Equal(t, "Pasta Bake", recipe.Name)
	require.Equal(t, "4", recipe.Yield)
	require.Len(t, recipe.Ingredients, 3)
	require.Equal(t, "200 g penne", recipe.Ingredients[0])
	require.Equal(t, 450.0, recipe.Nutrition["calories"])
	require.Equal(t, 62.0, recipe.Nutrition["carbohydrates"])
	require.Equal(t, 14.0, recipe.Nutrition["fat"])
	require.Equal(t, 620.0, recipe.Nutrition["sodium"])
}

func TestSavedMeals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/meal/mine", r.URL.Path)
		fmt.Fprint(w, `<html><body><ul id="matching">
			<li><a href="/meal/view/10?from=mine">Protein Breakfast</a></li>
			<li><a href="/meal/view/20?from=mine">Post Workout</a></li>
		</ul></body></html>`)
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{SiteUrl: server.URL})
	require.NoError(t, err)

	meals, err := client.SavedMeals(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"10": "Protein Breakfast",
		"20": "Post Workout",
	}, meals)
}

func TestSavedMeal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/meal/update_meal_ingredients/10", r.URL.Path)
		fmt.Fprint(w, `<html><body>
			<table id="meal-table"><tbody>
				<tr><td>Eggs, 3 large</td><td>210</td></tr>
				<tr><td>Toast, 2 slice</td><td>160</td></tr>
			</tbody></table>
			<table id="mealTableTotal"><tbody>
				<tr><td>Total</td><td>370</td><td>30</td><td>18</td><td>25</td><td>540</td><td>4</td></tr>
			</tbody></table>
		</body></html>`)
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{SiteUrl: server.URL})
	require.NoError(t, err)

	meal, err := client.SavedMeal(context.Background(), "10", "Protein Breakfast")
	require.NoError(t, err)
	require.Equal(t, "Protein Breakfast", meal.Name)
	require.Equal(t, []string{"Eggs, 3 large", "Toast, 2 slice"}, meal.Ingredients)
	require.Equal(t, 370.0, meal.Nutrition["calories"])
	require.Equal(t, 30.0, meal.Nutrition["carbohydrates"])
	require.Equal(t, 18.0, meal.Nutrition["fat"])
	require.Equal(t, 25.0, meal.Nutrition["protein"])
	require.Equal(t, 540.0, meal.Nutrition["sodium"])
	require.Equal(t, 4.0, meal.Nutrition["sugar"])
}

func TestSavedMealNoIngredients(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<table id="meal-table"><tbody><tr><td>&nbsp;</td></tr></tbody></table>
		</body></html>`)
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{SiteUrl: server.URL})
	require.NoError(t, err)

	_, err = client.SavedMeal(context.Background(), "10", "Empty Meal")
	require.Error(t, err)
}
