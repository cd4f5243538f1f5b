package myfitnesspal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fitexport/lib/units"
)

// Entry is a single logged food or exercise line. Nutrition maps
// canonical attribute names to values; attributes the site rendered as
// "N/A" (exercise tables only) are simply absent from the map.
type Entry struct {
	Name      string
	Nutrition map[string]float64
}

// Value looks up a single attribute by canonical name.
func (e Entry) Value(field string) (float64, bool) {
	v, ok := e.Nutrition[field]
	return v, ok
}

// Quantity projects an attribute into its unit-aware form.
func (e Entry) Quantity(field string) (units.Quantity, bool) {
	v, ok := e.Nutrition[field]
	if !ok {
		return units.Quantity{}, false
	}
	return units.ForNutrient(field, v)
}

var entryNameRegex = regexp.MustCompile(`^(.+), ([\d.]+) (.+)$`)

// EntryNameParts is the structured form of entry names shaped like
// "Banana, 1 medium".
type EntryNameParts struct {
	ShortName string
	Quantity  float64
	Unit      string
}

// NameParts splits the entry name into short name, quantity and unit.
// The second return is false when the name doesn't follow the
// "<short name>, <quantity> <unit>" convention.
func (e Entry) NameParts() (EntryNameParts, bool) {
	groups := entryNameRegex.FindStringSubmatch(e.Name)
	if groups == nil {
		return EntryNameParts{}, false
	}
	quantity, err := strconv.ParseFloat(groups[2], 64)
	if err != nil {
		return EntryNameParts{}, false
	}
	return EntryNameParts{
		ShortName: groups[1],
		Quantity:  quantity,
		Unit:      groups[3],
	}, true
}

// Meal is a named, ordered run of entries ("breakfast", "lunch"...).
type Meal struct {
	Name    string
	Entries []Entry
}

// Totals sums the meal's entries element-wise.
func (m Meal) Totals() map[string]float64 {
	return sumNutrition(m.Entries)
}

// Exercise is one exercise category table ("cardiovascular",
// "strength training") and its entries.
type Exercise struct {
	Name    string
	Entries []Entry
}

// Note is a diary note. Body is fully entity-decoded; Type and Date
// are optional upstream, a zero Date means the note carries none.
type Note struct {
	Body string
	Type string
	Date time.Time
}

func (n Note) String() string {
	return n.Body
}

// Day is one calendar date's diary. Notes, water and exercises live
// behind extra requests, so they are fetched lazily through closures
// captured at construction; those fetches are NOT memoized (each
// access refetches). Totals are memoized after the first computation.
type Day struct {
	Date     time.Time
	Meals    []Meal
	Goals    map[string]float64
	Complete bool

	fetchNotes     func() (Note, error)
	fetchWater     func() (float64, error)
	fetchExercises func() ([]Exercise, error)

	totals map[string]float64
}

// Entries returns every entry across all meals, in diary order.
func (d *Day) Entries() []Entry {
	var out []Entry
	for _, meal := range d.Meals {
		out = append(out, meal.Entries...)
	}
	return out
}

// Meal looks a meal up by name, case-insensitively.
func (d *Day) Meal(name string) (Meal, bool) {
	for _, meal := range d.Meals {
		if strings.EqualFold(meal.Name, name) {
			return meal, true
		}
	}
	return Meal{}, false
}

// Totals returns the element-wise sum of all entry nutrition across
// the day. Computed once and cached; every call returns an
// independent copy, so callers may mutate the result freely.
func (d *Day) Totals() map[string]float64 {
	if d.totals == nil {
		d.totals = sumNutrition(d.Entries())
	}
	out := make(map[string]float64, len(d.totals))
	for k, v := range d.totals {
		out[k] = v
	}
	return out
}

// TotalQuantities is the unit-aware projection of Totals. Nutrients
// with no known unit are left out.
func (d *Day) TotalQuantities() map[string]units.Quantity {
	out := map[string]units.Quantity{}
	for k, v := range d.Totals() {
		q, ok := units.ForNutrient(k, v)
		if !ok {
			continue
		}
		out[k] = q
	}
	return out
}

// Notes fetches the day's note. Unavailable on a friend's diary.
func (d *Day) Notes() (Note, error) {
	if d.fetchNotes == nil {
		return Note{}, fmt.Errorf("notes are not available for a friend's diary")
	}
	return d.fetchNotes()
}

// Water fetches the day's logged water volume in milliliters.
// Unavailable on a friend's diary.
func (d *Day) Water() (float64, error) {
	if d.fetchWater == nil {
		return 0, fmt.Errorf("water is not available for a friend's diary")
	}
	return d.fetchWater()
}

// Exercises fetches the day's exercise diary.
func (d *Day) Exercises() ([]Exercise, error) {
	return d.fetchExercises()
}

func sumNutrition(entries []Entry) map[string]float64 {
	totals := map[string]float64{}
	for _, entry := range entries {
		for k, v := range entry.Nutrition {
			totals[k] += v
		}
	}
	return totals
}

// FoodItemServing is one selectable serving size of a food item;
// index 0 denotes the default serving.
type FoodItemServing struct {
	Id                  string
	NutritionMultiplier float64
	Value               float64
	Unit                string
	Index               int
}

func (s FoodItemServing) String() string {
	return fmt.Sprintf("%.2f x %s", s.Value, s.Unit)
}

// FoodDetails is the nutrition block of a food item's details payload.
type FoodDetails struct {
	Calcium            float64
	Carbohydrates      float64
	Cholesterol        float64
	Fat                float64
	Fiber              float64
	Iron               float64
	MonounsaturatedFat float64
	PolyunsaturatedFat float64
	Potassium          float64
	Protein            float64
	SaturatedFat       float64
	Sodium             float64
	Sugar              float64
	TransFat           float64
	VitaminA           float64
	VitaminC           float64

	Confirmations int
	Servings      []FoodItemServing
}

// FoodItem is one food catalog record, as produced by search results
// or a direct details lookup. The full nutrition details require an
// extra API call; Details performs it at most once per instance.
type FoodItem struct {
	Id       int64
	Name     string
	Brand    string
	Verified bool
	// base calories from the search summary line, absent when the
	// summary was missing
	Calories    float64
	HasCalories bool

	client  *Client
	details *FoodDetails
}

func (f *FoodItem) String() string {
	return fmt.Sprintf("%s -- %s", f.Name, f.Brand)
}

// Recipe is a saved recipe or saved meal, flattened to its
// ingredients and per-yield nutrition.
type Recipe struct {
	Url         string
	Name        string
	Yield       string
	Ingredients []string
	Nutrition   map[string]float64
}
