package myfitnesspal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubmitFood(t *testing.T) {
	var nutritionForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/food/submit":
			fmt.Fprint(w, `<html><body><form><input name="utf8" value="&#x2713;"/><input name="authenticity_token" value="tok-a"/></form></body></html>`)
		case r.URL.Path == "/food/duplicate":
			require.NoError(t, r.ParseForm())
			require.Equal(t, "tok-a", r.PostForm.Get("authenticity_token"))
			require.Equal(t, "Acme Foods", r.PostForm.Get("food[brand]"))
			fmt.Fprint(w, `<html><body><div id="main"><p>No duplicates found.</p></div></body></html>`)
		case r.URL.Path == "/food/new" && r.Method == http.MethodGet:
			fmt.Fprint(w, `<html><body><form><input name="utf8" value="&#x2713;"/><input name="authenticity_token" value="tok-b"/></form></body></html>`)
		case r.URL.Path == "/food/new" && r.Method == http.MethodPost:
			require.NoError(t, r.ParseForm())
			nutritionForm = map[string]string{}
			for k := range r.PostForm {
				nutritionForm[k] = r.PostForm.Get(k)
			}
			fmt.Fprint(w, `<html><body><p>Food saved.</p></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{SiteUrl: server.URL})
	require.NoError(t, err)

	sodium := 140.0
	err = client.SubmitFood(context.Background(), NewFood{
		Brand:       "Acme Foods",
		Description: "Peanut Butter",
		Calories:    190,
		Fat:         16,
		Carbs:       7,
		Protein:     8,
		Sodium:      &sodium,
	})
	require.NoError(t, err)

	require.Equal(t, "tok-b", nutritionForm["authenticity_token"])
	require.Equal(t, "190", nutritionForm["nutritional_content[calories]"])
	require.Equal(t, "140", nutritionForm["nutritional_content[sodium]"])
	// optional nutrients that were not given submit as blank fields
	require.Equal(t, "", nutritionForm["nutritional_content[iron]"])
	require.Equal(t, "1 Serving", nutritionForm["weight[serving_size]"])
	require.Equal(t, "no", nutritionForm["addtodiary"])
	// sharing must be absent entirely unless requested
	_, shared := nutritionForm["sharefood"]
	require.False(t, shared)
}

func TestSubmitFoodRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			fmt.Fprint(w, `<html><body><form><input name="utf8" value="&#x2713;"/><input name="authenticity_token" value="tok"/></form></body></html>`)
		case r.URL.Path == "/food/duplicate":
			fmt.Fprint(w, `<html><body></body></html>`)
		default:
			fmt.Fprint(w, `<html><body><div id="errorExplanation"><ul><li>Description can't be blank</li></ul></div></body></html>`)
		}
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{SiteUrl: server.URL})
	require.NoError(t, err)

	err = client.SubmitFood(context.Background(), NewFood{Brand: "Acme Foods"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "can't be blank")
}

const currentGoalsPayload = `{
	"items": [{
		"valid_from": "2023-01-01",
		"default_goal": {
			"energy": {"unit": "calories", "value": 2000},
			"carbohydrates": 250,
			"protein": 150,
			"fat": 44,
			"meal_goals": []
		},
		"daily_goals": [
			{
				"day_of_week": "monday",
				"energy": {"unit": "calories", "value": 2000},
				"carbohydrates": 250, "protein": 150, "fat": 44,
				"meal_goals": []
			}
		]
	}]
}`

func TestSetNutrientGoal(t *testing.T) {
	var submitted map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/nutrient-goals", r.URL.Path)
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, currentGoalsPayload)
			return
		}
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &submitted))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{
		SiteUrl: server.URL,
		ApiUrl:  server.URL,
	})
	require.NoError(t, err)
	client.Now = func() time.Time { return time.Date(2023, 5, 10, 12, 0, 0, 0, time.UTC) }

	// no macros given: derive them from the current goal's ratios
	err = client.SetNutrientGoal(context.Background(), NutrientGoal{
		Energy:     1800,
		EnergyUnit: "calories",
	})
	require.NoError(t, err)

	item := submitted["item"].(map[string]any)
	require.Equal(t, "2023-05-10", item["valid_from"])
	goal := item["default_goal"].(map[string]any)
	require.Equal(t, 1800.0, goal["energy"].(map[string]any)["value"])
	require.InDelta(t, 225.0, goal["carbohydrates"].(float64), 0.001)
	require.InDelta(t, 135.0, goal["protein"].(float64), 0.001)
	require.InDelta(t, 39.6, goal["fat"].(float64), 0.001)

	daily := item["daily_goals"].([]any)[0].(map[string]any)
	require.InDelta(t, 225.0, daily["carbohydrates"].(float64), 0.001)
}

func TestSetNutrientGoalFromMacros(t *testing.T) {
	var submitted map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, currentGoalsPayload)
			return
		}
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &submitted))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{
		SiteUrl: server.URL,
		ApiUrl:  server.URL,
	})
	require.NoError(t, err)

	carbs, protein, fat := 200.0, 140.0, 50.0
	// the macros imply 4*200 + 4*140 + 9*50 = 1810 kcal, which wins
	// over the lower stated energy
	err = client.SetNutrientGoal(context.Background(), NutrientGoal{
		Energy:        1500,
		EnergyUnit:    "calories",
		Carbohydrates: &carbs,
		Protein:       &protein,
		Fat:           &fat,
	})
	require.NoError(t, err)

	goal := submitted["item"].(map[string]any)["default_goal"].(map[string]any)
	require.Equal(t, 1810.0, goal["energy"].(map[string]any)["value"])
	require.Equal(t, 200.0, goal["carbohydrates"])
}

func TestSetNutrientGoalBadPercentages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, currentGoalsPayload)
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{
		SiteUrl: server.URL,
		ApiUrl:  server.URL,
	})
	require.NoError(t, err)

	pc, pp, pf := 50.0, 30.0, 30.0
	err = client.SetNutrientGoal(context.Background(), NutrientGoal{
		Energy:               2000,
		EnergyUnit:           "calories",
		PercentCarbohydrates: &pc,
		PercentProtein:       &pp,
		PercentFat:           &pf,
	})
	require.Error(t, err)
}
