package myfitnesspal

import (
	"context"
	"strings"
	"time"

	"fitexport/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// Exercises extracts the authenticated user's exercise diary for a
// date: one Exercise per category table, each with its entry run.
func (c *Client) Exercises(ctx context.Context, date time.Time) ([]Exercise, error) {
	return c.exercises(ctx, c.EffectiveUsername(), date)
}

func (c *Client) exercises(ctx context.Context, username string, date time.Time) ([]Exercise, error) {
	ctx, span := tracer.Start(ctx, "client:Exercises")
	defer span.End()

	doc, err := c.getDocument(ctx, c.siteLink(diaryLink("/exercise/diary", username, date)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch exercise page")
		return nil, err
	}
	return extractExercises(doc), nil
}

func extractExercises(doc *goquery.Document) []Exercise {
	var exercises []Exercise
	doc.Find("table.table0").Each(func(_ int, table *goquery.Selection) {
		header := table.Find("thead tr").First()
		cells := header.Children()
		name := strings.ToLower(strings.TrimSpace(cells.First().Text()))

		var fields []string
		cells.Each(func(i int, cell *goquery.Selection) {
			if i == 0 {
				return
			}
			fields = append(fields, textutil.CanonicalField(cell.Text()))
		})

		var entries []Entry
		row := table.Find("tbody tr").First()
		for row.Length() > 0 {
			if row.AttrOr("class", "") != "" {
				break
			}
			entry := extractEntry(row, fields, true)
			entry.Name = exerciseEntryName(row)
			entries = append(entries, entry)
			row = row.Next()
		}
		exercises = append(exercises, Exercise{Name: name, Entries: entries})
	})
	return exercises
}

// exerciseEntryName digs the entry name out of the first cell. Cardio
// rows nest the anchor in a div, strength rows put it directly in the
// cell, and public diaries drop the anchor entirely.
func exerciseEntryName(row *goquery.Selection) string {
	cell := row.Children().First()

	if a := cell.ChildrenFiltered("a"); a.Length() > 0 {
		if name := textutil.CleanText(a.First().Text()); name != "" {
			return name
		}
	}
	if a := cell.Find("div a"); a.Length() > 0 {
		if name := textutil.CleanText(a.First().Text()); name != "" {
			return name
		}
	}
	if div := cell.ChildrenFiltered("div"); div.Length() > 0 {
		return textutil.CleanText(div.First().Text())
	}
	return textutil.CleanText(cell.Text())
}
