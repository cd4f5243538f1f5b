package myfitnesspal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fitexport/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

func diaryLink(base string, username string, date time.Time) string {
	return fmt.Sprintf("%s/%s?date=%s", base, username, date.Format("2006-01-02"))
}

// Day extracts the authenticated user's food diary for a date. Notes,
// water and exercises are wired up as lazy fetches on the returned
// value.
func (c *Client) Day(ctx context.Context, date time.Time) (*Day, error) {
	username := c.EffectiveUsername()
	return c.day(ctx, date, username, false)
}

// FriendDay extracts a friend's food diary for a date. Notes and water
// are not exposed for friends, so those accessors error.
func (c *Client) FriendDay(ctx context.Context, friendUsername string, date time.Time) (*Day, error) {
	return c.day(ctx, date, friendUsername, true)
}

func (c *Client) day(ctx context.Context, date time.Time, username string, friend bool) (*Day, error) {
	ctx, span := tracer.Start(ctx, "client:Day")
	defer span.End()

	doc, err := c.getDocument(ctx, c.siteLink(diaryLink("/food/diary", username, date)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch diary page")
		return nil, err
	}

	// locked and private diaries still render as 200 pages with an
	// explanatory blurb where the tables would be
	text := doc.Text()
	if strings.Contains(text, "diary is locked with a key") {
		span.SetStatus(codes.Error, DiaryLocked.Error())
		return nil, DiaryLocked
	}
	if friend && strings.Contains(text, "user maintains a private diary") {
		span.SetStatus(codes.Error, DiaryPrivate.Error())
		return nil, DiaryPrivate
	}

	day := &Day{
		Date:     date,
		Meals:    extractMeals(doc),
		Goals:    extractGoals(doc),
		Complete: extractCompletion(doc),
	}
	if !friend {
		day.fetchNotes = func() (Note, error) {
			return c.Notes(ctx, date)
		}
		day.fetchWater = func() (float64, error) {
			return c.Water(ctx, date)
		}
	}
	day.fetchExercises = func() ([]Exercise, error) {
		name := username
		return c.exercises(ctx, name, date)
	}
	return day, nil
}

// extractMeals walks the diary table's meal_header rows. Each header
// names a meal and starts a run of unclassed entry rows; the field
// list comes from the first header's cells and applies to every meal.
func extractMeals(doc *goquery.Document) []Meal {
	var meals []Meal
	var fields []string
	doc.Find("tr.meal_header").Each(func(_ int, header *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(header.Children().First().Text()))
		if fields == nil {
			fields = fieldList(header)
		}
		entries, _ := entryRun(header.Next(), fields, false)
		meals = append(meals, Meal{Name: name, Entries: entries})
	})
	return meals
}

// extractGoals reads the goal row, which immediately follows the
// totals row. Absent on friend diaries hiding goals, in which case
// the result is nil.
func extractGoals(doc *goquery.Document) map[string]float64 {
	total := doc.Find("tr.total").First()
	if total.Length() == 0 {
		return nil
	}
	header := doc.Find("tr.meal_header").First()
	if header.Length() == 0 {
		return nil
	}
	return extractValues(total.Next(), fieldList(header))
}

func extractCompletion(doc *goquery.Document) bool {
	marker := doc.Find("div#complete_day").Children().First()
	if marker.Length() == 0 {
		return false
	}
	return htmlutil.HasClass(marker, "day_complete_message")
}
