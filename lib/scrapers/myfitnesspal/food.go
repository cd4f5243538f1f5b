package myfitnesspal

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

const searchPath = "/food/search"

// FoodSearch queries the food catalog and returns summary items. Each
// item can lazily fetch its full nutrition via Details.
func (c *Client) FoodSearch(ctx context.Context, query string) ([]*FoodItem, error) {
	ctx, span := tracer.Start(ctx, "client:FoodSearch")
	defer span.End()

	doc, err := c.getDocument(ctx, c.siteLink(searchPath))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch search page")
		return nil, err
	}
	token, ok := doc.Find(`input[name="authenticity_token"]`).First().Attr("value")
	if !ok {
		err := fmt.Errorf("search page carries no authenticity token")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	link := c.siteLink(searchPath)
	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"authenticity_token": token,
			"search":             query,
			"date":               c.Now().Format("2006-01-02"),
			"meal":               "0",
		}).
		Post(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit search")
		return nil, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "search request rejected")
		return nil, RequestFailedError{StatusCode: res.StatusCode(), Url: link}
	}

	body := string(res.Body())
	if !strings.Contains(body, "Matching Foods:") {
		err := fmt.Errorf("unable to load search results")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	doc, err = goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return c.extractFoodSearchResults(doc), nil
}

func (c *Client) extractFoodSearchResults(doc *goquery.Document) []*FoodItem {
	var items []*FoodItem
	doc.Find("li.matched-food").Each(func(_ int, li *goquery.Selection) {
		anchor := li.Find("div.search-title-container a").First()
		rawId, _ := anchor.Attr("data-external-id")
		id, err := strconv.ParseInt(rawId, 10, 64)
		if err != nil {
			return
		}

		item := &FoodItem{
			Id:       id,
			Name:     strings.TrimSpace(anchor.Text()),
			Verified: li.Find("div.verified.verified-list-icon").Length() > 0,
			client:   c,
		}

		// summary line reads "<brand>, <serving>, <n> calories"
		info := strings.TrimSpace(li.Find("p.search-nutritional-info").First().Text())
		if info != "" {
			parts := strings.Split(info, ",")
			if len(parts) >= 3 {
				item.Brand = strings.TrimSpace(strings.Join(parts[:len(parts)-2], " "))
			}
			last := strings.TrimSpace(strings.ReplaceAll(parts[len(parts)-1], "calories", ""))
			if calories, err := strconv.ParseFloat(last, 64); err == nil {
				item.Calories = calories
				item.HasCalories = true
			}
		}
		items = append(items, item)
	})
	return items
}

type foodItemPayload struct {
	Description   string `json:"description"`
	BrandName     string `json:"brand_name"`
	Verified      bool   `json:"verified"`
	Confirmations int    `json:"confirmations"`
	ServingSizes  []struct {
		Id                  string  `json:"id"`
		NutritionMultiplier float64 `json:"nutrition_multiplier"`
		Value               float64 `json:"value"`
		Unit                string  `json:"unit"`
		Index               int     `json:"index"`
	} `json:"serving_sizes"`

	RawNutrition struct {
		Energy struct {
			Value float64 `json:"value"`
		} `json:"energy"`
		Calcium            float64 `json:"calcium"`
		Carbohydrates      float64 `json:"carbohydrates"`
		Cholesterol        float64 `json:"cholesterol"`
		Fat                float64 `json:"fat"`
		Fiber              float64 `json:"fiber"`
		Iron               float64 `json:"iron"`
		MonounsaturatedFat float64 `json:"monounsaturated_fat"`
		PolyunsaturatedFat float64 `json:"polyunsaturated_fat"`
		Potassium          float64 `json:"potassium"`
		Protein            float64 `json:"protein"`
		SaturatedFat       float64 `json:"saturated_fat"`
		Sodium             float64 `json:"sodium"`
		Sugar              float64 `json:"sugar"`
		TransFat           float64 `json:"trans_fat"`
		VitaminA           float64 `json:"vitamin_a"`
		VitaminC           float64 `json:"vitamin_c"`
	} `json:"nutritional_contents"`
}

// FoodItemDetails fetches a food item directly by id, details
// included.
func (c *Client) FoodItemDetails(ctx context.Context, id int64) (*FoodItem, error) {
	ctx, span := tracer.Start(ctx, "client:FoodItemDetails")
	defer span.End()

	payload, err := c.fetchFoodItem(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch food item")
		return nil, err
	}

	item := &FoodItem{
		Id:          id,
		Name:        payload.Description,
		Brand:       payload.BrandName,
		Verified:    payload.Verified,
		Calories:    payload.RawNutrition.Energy.Value,
		HasCalories: true,
		client:      c,
		details:     foodDetailsFromPayload(payload),
	}
	return item, nil
}

func (c *Client) fetchFoodItem(ctx context.Context, id int64) (*foodItemPayload, error) {
	query := url.Values{}
	for _, field := range []string{"nutritional_contents", "serving_sizes", "confirmations"} {
		query.Add("fields[]", field)
	}
	link := c.apiLink(fmt.Sprintf("/v2/foods/%d?%s", id, query.Encode()))

	var payload struct {
		Item foodItemPayload `json:"item"`
	}
	err := c.getApiJson(ctx, link, &payload)
	if err != nil {
		return nil, err
	}
	return &payload.Item, nil
}

func foodDetailsFromPayload(payload *foodItemPayload) *FoodDetails {
	raw := payload.RawNutrition
	details := &FoodDetails{
		Calcium:            raw.Calcium,
		Carbohydrates:      raw.Carbohydrates,
		Cholesterol:        raw.Cholesterol,
		Fat:                raw.Fat,
		Fiber:              raw.Fiber,
		Iron:               raw.Iron,
		MonounsaturatedFat: raw.MonounsaturatedFat,
		PolyunsaturatedFat: raw.PolyunsaturatedFat,
		Potassium:          raw.Potassium,
		Protein:            raw.Protein,
		SaturatedFat:       raw.SaturatedFat,
		Sodium:             raw.Sodium,
		Sugar:              raw.Sugar,
		TransFat:           raw.TransFat,
		VitaminA:           raw.VitaminA,
		VitaminC:           raw.VitaminC,
		Confirmations:      payload.Confirmations,
	}
	for _, s := range payload.ServingSizes {
		details.Servings = append(details.Servings, FoodItemServing{
			Id:                  s.Id,
			NutritionMultiplier: s.NutritionMultiplier,
			Value:               s.Value,
			Unit:                s.Unit,
			Index:               s.Index,
		})
	}
	return details
}

// Details returns the item's full nutrition block, fetching it on
// first access.
func (f *FoodItem) Details(ctx context.Context) (*FoodDetails, error) {
	if f.details != nil {
		return f.details, nil
	}
	if f.client == nil {
		return nil, fmt.Errorf("food item is not attached to a client")
	}
	payload, err := f.client.fetchFoodItem(ctx, f.Id)
	if err != nil {
		return nil, err
	}
	f.details = foodDetailsFromPayload(payload)
	if !f.HasCalories {
		f.Calories = payload.RawNutrition.Energy.Value
		f.HasCalories = true
	}
	return f.details, nil
}
