package myfitnesspal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fitexport/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// Recipes lists the account's saved recipes, mapping recipe id to
// title. Walks the recipe list page by page until the pagination
// footer stops offering a next link.
func (c *Client) Recipes(ctx context.Context) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "client:Recipes")
	defer span.End()

	recipes := map[string]string{}
	for page := 1; ; page++ {
		link := c.siteLink(fmt.Sprintf("/recipe_parser?page=%d&sort_order=recent", page))
		doc, err := c.getDocument(ctx, link)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch recipes page")
			return nil, err
		}

		doc.Find("#main > ul").First().Find("li").Each(func(_ int, li *goquery.Selection) {
			anchor := li.Find("h2 span a").First()
			href, ok := anchor.Attr("href")
			if !ok {
				return
			}
			parts := strings.Split(href, "/")
			id := parts[len(parts)-1]
			title, _ := anchor.Attr("title")
			recipes[id] = title
		})

		// the footer carries one link on the first and last pages, two
		// in between
		pagination := doc.Find("#main > ul").Eq(1).Find("a")
		switch {
		case pagination.Length() == 0:
			return recipes, nil
		case page == 1:
			continue
		case pagination.Length() > 1:
			continue
		default:
			return recipes, nil
		}
	}
}

// RecipeDetails fetches one saved recipe's ingredients and per-yield
// nutrition.
func (c *Client) RecipeDetails(ctx context.Context, id string) (*Recipe, error) {
	ctx, span := tracer.Start(ctx, "client:RecipeDetails")
	defer span.End()

	link := c.siteLink("/recipe/view/" + id)
	doc, err := c.getDocument(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch recipe page")
		return nil, err
	}

	recipe := &Recipe{
		Url:       link,
		Name:      strings.TrimSpace(doc.Find("#main h1").First().Text()),
		Yield:     strings.TrimSpace(doc.Find("#recipe_servings").First().Text()),
		Nutrition: map[string]float64{},
	}
	doc.Find("#main ul li.ingredient, #main ol li.ingredient, #main div ul li").Each(func(_ int, li *goquery.Selection) {
		text := strings.Trim(li.Text(), " \n")
		if text != "" {
			recipe.Ingredients = append(recipe.Ingredients, text)
		}
	})

	recipe.Nutrition["calories"] = Numeric(doc.Find("#main div.calories, #main > div > div > div > div").First().Text())
	for id, name := range map[string]string{
		"carbs":               "carbohydrates",
		"fiber":               "fiber",
		"sugar":               "sugar",
		"sodium":              "sodium",
		"protein":             "protein",
		"total_fat":           "fat",
		"saturated_fat":       "saturated fat",
		"monounsaturated_fat": "monounsaturated fat",
		"polyunsaturated_fat": "polyunsaturated fat",
		"trans_fat":           "trans fat",
	} {
		cell := doc.Find("#" + id + " td span").Eq(1)
		if cell.Length() == 0 {
			continue
		}
		recipe.Nutrition[name] = Numeric(cell.Text())
	}
	return recipe, nil
}

// SavedMeals lists the account's saved meals, mapping meal id to
// name.
func (c *Client) SavedMeals(ctx context.Context) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "client:SavedMeals")
	defer span.End()

	doc, err := c.getDocument(ctx, c.siteLink("/meal/mine"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch meals page")
		return nil, err
	}

	meals := map[string]string{}
	for _, anchor := range htmlutil.GetAnchors(ctx, doc.Find("#matching li a")) {
		if anchor.Href == "" {
			slog.WarnContext(ctx, "saved meal entry carries no link", "name", anchor.Name)
			continue
		}
		parts := strings.Split(anchor.Href, "/")
		id := strings.SplitN(parts[len(parts)-1], "?", 2)[0]
		meals[id] = anchor.Name
	}
	return meals, nil
}

// SavedMeal fetches one saved meal's ingredient list and nutrition
// totals, flattened into the recipe shape.
func (c *Client) SavedMeal(ctx context.Context, id string, name string) (*Recipe, error) {
	ctx, span := tracer.Start(ctx, "client:SavedMeal")
	defer span.End()

	link := c.siteLink("/meal/update_meal_ingredients/" + id)
	doc, err := c.getDocument(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch meal page")
		return nil, err
	}

	meal := &Recipe{
		Url:       link,
		Name:      name,
		Yield:     "1",
		Nutrition: map[string]float64{},
	}

	rows := doc.Find("#meal-table tbody tr")
	if rows.Length() == 1 && strings.TrimSpace(rows.First().Children().First().Text()) == "" {
		return nil, fmt.Errorf("no ingredients found for meal %q", name)
	}
	rows.Each(func(_ int, row *goquery.Selection) {
		meal.Ingredients = append(meal.Ingredients, strings.TrimSpace(row.Children().First().Text()))
	})

	total := doc.Find("#mealTableTotal tbody tr").First()
	cells := total.Children()
	for i, field := range []string{"calories", "carbohydrates", "fat", "protein", "sodium", "sugar"} {
		cell := cells.Eq(i + 1)
		if cell.Length() == 0 {
			continue
		}
		meal.Nutrition[field] = Numeric(cell.Text())
	}
	return meal, nil
}
