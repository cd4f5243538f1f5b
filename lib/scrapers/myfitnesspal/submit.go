package myfitnesspal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// NewFood describes a food to submit to the shared catalog. Required
// macros are plain values; the optional nutrients submit as blank
// form fields when nil.
type NewFood struct {
	Brand       string
	Description string
	Calories    float64
	Fat         float64
	Carbs       float64
	Protein     float64

	Sodium             *float64
	Potassium          *float64
	SaturatedFat       *float64
	PolyunsaturatedFat *float64
	Fiber              *float64
	MonounsaturatedFat *float64
	Sugar              *float64
	TransFat           *float64
	Cholesterol        *float64
	VitaminA           *float64
	Calcium            *float64
	VitaminC           *float64
	Iron               *float64

	ServingSize          string
	ServingsPerContainer float64
	SharePublic          bool
}

func optionalField(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(*v)
}

// SubmitFood pushes a new food through the site's multi-step
// submission form: brand and description first (which may surface a
// duplicate warning), then the full nutrition form with a fresh
// token.
func (c *Client) SubmitFood(ctx context.Context, food NewFood) error {
	ctx, span := tracer.Start(ctx, "client:SubmitFood")
	defer span.End()

	if food.ServingSize == "" {
		food.ServingSize = "1 Serving"
	}
	if food.ServingsPerContainer == 0 {
		food.ServingsPerContainer = 1
	}
	date := c.Now().Format("2006-01-02")

	token, utf8, err := c.formTokens(ctx, c.siteLink("/food/submit"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch submit form")
		return err
	}

	link := c.siteLink("/food/duplicate")
	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"utf8":               utf8,
			"authenticity_token": token,
			"date":               date,
			"food[brand]":        food.Brand,
			"food[description]":  food.Description,
		}).
		Post(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit brand and description")
		return err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "brand submit rejected")
		return RequestFailedError{StatusCode: res.StatusCode(), Url: link}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(res.Body())))
	if err == nil {
		if warning := strings.TrimSpace(doc.Find("#main p span").First().Text()); warning != "" {
			slog.WarnContext(ctx, "duplicate check responded with a warning", "warning", warning)
		}
	}

	token, utf8, err = c.formTokens(ctx, c.siteLink(fmt.Sprintf("/food/new?date=%s&meal=0", date)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch nutrition form")
		return err
	}

	form := map[string]string{
		"utf8":                                        utf8,
		"authenticity_token":                          token,
		"date":                                        date,
		"food[brand]":                                 food.Brand,
		"food[description]":                           food.Description,
		"weight[serving_size]":                        food.ServingSize,
		"servingspercontainer":                        fmt.Sprint(food.ServingsPerContainer),
		"nutritional_content[calories]":               fmt.Sprint(food.Calories),
		"nutritional_content[fat]":                    fmt.Sprint(food.Fat),
		"nutritional_content[carbs]":                  fmt.Sprint(food.Carbs),
		"nutritional_content[protein]":                fmt.Sprint(food.Protein),
		"nutritional_content[sodium]":                 optionalField(food.Sodium),
		"nutritional_content[potassium]":              optionalField(food.Potassium),
		"nutritional_content[saturated_fat]":          optionalField(food.SaturatedFat),
		"nutritional_content[polyunsaturated_fat]":    optionalField(food.PolyunsaturatedFat),
		"nutritional_content[fiber]":                  optionalField(food.Fiber),
		"nutritional_content[monounsaturated_fat]":    optionalField(food.MonounsaturatedFat),
		"nutritional_content[sugar]":                  optionalField(food.Sugar),
		"nutritional_content[trans_fat]":              optionalField(food.TransFat),
		"nutritional_content[cholesterol]":            optionalField(food.Cholesterol),
		"nutritional_content[vitamin_a]":              optionalField(food.VitaminA),
		"nutritional_content[calcium]":                optionalField(food.Calcium),
		"nutritional_content[vitamin_c]":              optionalField(food.VitaminC),
		"nutritional_content[iron]":                   optionalField(food.Iron),
		"food_entry[quantity]":                        "1.0",
		"food_entry[meal_id]":                         "0",
		"addtodiary":                                  "no",
		"preserve_exact_description_and_brand":        "true",
		"continue":                                    "Save",
	}
	// submitting sharefood=0 still publishes, so the key is only
	// present when sharing is wanted
	if food.SharePublic {
		form["sharefood"] = "1"
	}

	link = c.siteLink("/food/new")
	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit nutrition form")
		return err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "nutrition submit rejected")
		return RequestFailedError{StatusCode: res.StatusCode(), Url: link}
	}

	doc, err = goquery.NewDocumentFromReader(strings.NewReader(string(res.Body())))
	if err != nil {
		span.RecordError(err)
		return err
	}
	if msg := doc.Find("#errorExplanation ul li").First(); msg.Length() > 0 {
		text := strings.Replace(strings.TrimSpace(msg.Text()), "Description ", "", 1)
		err := fmt.Errorf("unable to submit food: %s", text)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (c *Client) formTokens(ctx context.Context, link string) (token string, utf8 string, err error) {
	doc, err := c.getDocument(ctx, link)
	if err != nil {
		return "", "", err
	}
	token, ok := doc.Find(`input[name="authenticity_token"]`).First().Attr("value")
	if !ok {
		return "", "", fmt.Errorf("page carries no authenticity token")
	}
	utf8, _ = doc.Find(`input[name="utf8"]`).First().Attr("value")
	return token, utf8, nil
}

// NutrientGoal describes a nutrition goal update. Energy is required;
// macro grams or macro percentages are optional, with missing values
// derived from the account's current goal ratios.
type NutrientGoal struct {
	Energy     float64
	EnergyUnit string

	Carbohydrates *float64
	Protein       *float64
	Fat           *float64

	PercentCarbohydrates *float64
	PercentProtein       *float64
	PercentFat           *float64
}

type nutrientGoalPayload struct {
	ValidFrom      string          `json:"valid_from,omitempty"`
	ValidTo        json.RawMessage `json:"valid_to,omitempty"`
	DefaultGroupId json.RawMessage `json:"default_group_id,omitempty"`
	UpdatedAt      json.RawMessage `json:"updated_at,omitempty"`
	DefaultGoal    goalValues      `json:"default_goal"`
	DailyGoals     []dailyGoal     `json:"daily_goals"`
}

type goalValues struct {
	Energy struct {
		Value float64 `json:"value"`
		Unit  string  `json:"unit"`
	} `json:"energy"`
	Carbohydrates float64           `json:"carbohydrates"`
	Protein       float64           `json:"protein"`
	Fat           float64           `json:"fat"`
	MealGoals     []json.RawMessage `json:"meal_goals"`
}

type dailyGoal struct {
	goalValues
	Day     string          `json:"day_of_week,omitempty"`
	GroupId json.RawMessage `json:"group_id,omitempty"`
}

// SetNutrientGoal updates the account's nutrition goals through the
// internal goals api, mirroring the calculation the site's own goal
// editor performs: 4 kcal per carbohydrate or protein gram, 9 per fat
// gram, scaled by 4.184 for kilojoule accounts.
func (c *Client) SetNutrientGoal(ctx context.Context, goal NutrientGoal) error {
	ctx, span := tracer.Start(ctx, "client:SetNutrientGoal")
	defer span.End()

	unit := goal.EnergyUnit
	if unit != "calories" && unit != "kilojoules" {
		unit = c.userMetadata.UnitPreferences.Energy
		if unit == "" {
			unit = "calories"
		}
	}
	today := c.Now().Format("2006-01-02")

	var current struct {
		Items []nutrientGoalPayload `json:"items"`
	}
	err := c.getApiJson(ctx, c.apiLink("/v2/nutrient-goals?date="+today), &current)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch current goals")
		return err
	}
	if len(current.Items) == 0 {
		err := fmt.Errorf("account has no current nutrient goals")
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	energy := goal.Energy
	carbs, protein, fat, err := resolveMacros(goal, &energy, unit, current.Items[0].DefaultGoal)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	item := current.Items[0]
	item.ValidFrom = today
	item.ValidTo = nil
	item.DefaultGroupId = nil
	item.UpdatedAt = nil
	item.DefaultGoal.Energy.Value = energy
	item.DefaultGoal.Energy.Unit = unit
	item.DefaultGoal.Carbohydrates = carbs
	item.DefaultGoal.Protein = protein
	item.DefaultGoal.Fat = fat
	item.DefaultGoal.MealGoals = []json.RawMessage{}
	for i := range item.DailyGoals {
		item.DailyGoals[i].GroupId = nil
		item.DailyGoals[i].Energy.Value = energy
		item.DailyGoals[i].Energy.Unit = unit
		item.DailyGoals[i].Carbohydrates = carbs
		item.DailyGoals[i].Protein = protein
		item.DailyGoals[i].Fat = fat
		item.DailyGoals[i].MealGoals = []json.RawMessage{}
	}

	body, err := json.Marshal(map[string]any{"item": item})
	if err != nil {
		return err
	}

	link := c.apiLink("/v2/nutrient-goals")
	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.accessToken).
		SetHeader("mfp-client-id", "mfp-main-js").
		SetHeader("mfp-user-id", c.userId).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit goals")
		return err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "goal submit rejected")
		return RequestFailedError{StatusCode: res.StatusCode(), Url: link}
	}
	return nil
}

func resolveMacros(goal NutrientGoal, energy *float64, unit string, old goalValues) (carbs, protein, fat float64, err error) {
	switch {
	case goal.Carbohydrates != nil && goal.Protein != nil && goal.Fat != nil:
		carbs, protein, fat = *goal.Carbohydrates, *goal.Protein, *goal.Fat
		macroEnergy := carbs*4 + protein*4 + fat*9
		if unit == "kilojoules" {
			macroEnergy *= 4.184
		}
		if *energy < macroEnergy {
			slog.Warn("provided energy is below the energy implied by macros, overriding",
				"energy", *energy, "macro_energy", macroEnergy)
			*energy = macroEnergy
		}
		return carbs, protein, fat, nil

	case goal.PercentCarbohydrates != nil && goal.PercentProtein != nil && goal.PercentFat != nil:
		if int(*goal.PercentCarbohydrates+*goal.PercentProtein+*goal.PercentFat) != 100 {
			return 0, 0, 0, fmt.Errorf("macro percentages do not add up to 100")
		}
		carbs = *energy * *goal.PercentCarbohydrates / 100 / 4
		protein = *energy * *goal.PercentProtein / 100 / 4
		fat = *energy * *goal.PercentFat / 100 / 9
		if unit == "kilojoules" {
			carbs /= 4.184
			protein /= 4.184
			fat /= 4.184
		}
		return carbs, protein, fat, nil

	default:
		oldEnergy := old.Energy.Value
		oldUnit := old.Energy.Unit
		if oldUnit != unit {
			switch {
			case oldUnit == "kilojoules" && unit == "calories":
				oldEnergy *= 0.2388
			case oldUnit == "calories" && unit == "kilojoules":
				oldEnergy *= 4.184
			default:
				return 0, 0, 0, fmt.Errorf("unexpected energy unit in current goals: %q", oldUnit)
			}
		}
		if oldEnergy == 0 {
			return 0, 0, 0, fmt.Errorf("current goals carry no energy value to derive macros from")
		}
		carbs = *energy * old.Carbohydrates / oldEnergy
		protein = *energy * old.Protein / oldEnergy
		fat = *energy * old.Fat / oldEnergy
		return carbs, protein, fat, nil
	}
}
