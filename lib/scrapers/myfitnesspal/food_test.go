package myfitnesspal

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

//go:embed testdata/search.html
var searchPage []byte

const foodDetailsPayload = `{
	"item": {
		"description": "Peanut Butter",
		"brand_name": "Acme Foods",
		"verified": true,
		"confirmations": 42,
		"nutritional_contents": {
			"energy": {"unit": "calories", "value": 190},
			"fat": 16,
			"carbohydrates": 7,
			"protein": 8,
			"sodium": 140,
			"sugar": 3,
			"fiber": 2
		},
		"serving_sizes": [
			{"id": "srv-1", "nutrition_multiplier": 1, "value": 2, "unit": "tbsp", "index": 0},
			{"id": "srv-2", "nutrition_multiplier": 0.5, "value": 1, "unit": "tbsp", "index": 1}
		]
	}
}`

func foodServer(t *testing.T, detailFetches *int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/food/search" && r.Method == http.MethodGet:
			fmt.Fprint(w, `<html><body><form><input name="authenticity_token" value="searchtok"/></form></body></html>`)
		case r.URL.Path == "/food/search" && r.Method == http.MethodPost:
			require.NoError(t, r.ParseForm())
			require.Equal(t, "searchtok", r.PostForm.Get("authenticity_token"))
			require.Equal(t, "0", r.PostForm.Get("meal"))
			w.Write(searchPage)
		case r.URL.Path == "/v2/foods/1234567":
			if detailFetches != nil {
				*detailFetches++
			}
			require.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, foodDetailsPayload)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestFoodSearch(t *testing.T) {
	server := foodServer(t, nil)
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{
		SiteUrl: server.URL,
		ApiUrl:  server.URL,
	})
	require.NoError(t, err)

	items, err := client.FoodSearch(context.Background(), "peanut butter")
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.Equal(t, int64(1234567), items[0].Id)
	require.Equal(t, "Peanut Butter", items[0].Name)
	require.Equal(t, "Acme Foods", items[0].Brand)
	require.True(t, items[0].Verified)
	require.True(t, items[0].HasCalories)
	require.Equal(t, 190.0, items[0].Calories)

	require.Equal(t, "Generic", items[1].Brand)
	require.False(t, items[1].Verified)

	// no nutritional summary line means no calories
	require.False(t, items[2].HasCalories)
}

func TestFoodSearchNoResultsMarker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `<html><body><form><input name="authenticity_token" value="tok"/></form></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><p>Something went wrong.</p></body></html>`)
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{SiteUrl: server.URL})
	require.NoError(t, err)

	_, err = client.FoodSearch(context.Background(), "peanut butter")
	require.Error(t, err)
}

func TestFoodItemDetailsLazyOnce(t *testing.T) {
	fetches := 0
	server := foodServer(t, &fetches)
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{
		SiteUrl: server.URL,
		ApiUrl:  server.URL,
	})
	require.NoError(t, err)

	items, err := client.FoodSearch(context.Background(), "peanut butter")
	require.NoError(t, err)

	details, err := items[0].Details(context.Background())
	require.NoError(t, err)
	require.Equal(t, 16.0, details.Fat)
	require.Equal(t, 7.0, details.Carbohydrates)
	require.Equal(t, 42, details.Confirmations)
	require.Len(t, details.Servings, 2)
	require.Equal(t, "2.00 x tbsp", details.Servings[0].String())

	// second access reuses the fetched details
	_, err = items[0].Details(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, fetches)
}

func TestFoodItemDetailsDirect(t *testing.T) {
	server := foodServer(t, nil)
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{
		SiteUrl: server.URL,
		ApiUrl:  server.URL,
	})
	require.NoError(t, err)

	item, err := client.FoodItemDetails(context.Background(), 1234567)
	require.NoError(t, err)
	require.Equal(t, "Peanut Butter", item.Name)
	require.Equal(t, "Acme Foods", item.Brand)
	require.True(t, item.Verified)
	require.Equal(t, 190.0, item.Calories)

	details, err := item.Details(context.Background())
	require.NoError(t, err)
	require.Equal(t, 8.0, details.Protein)
}
