package myfitnesspal

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
)

// Notes fetches the food note attached to a date. The note body comes
// back double entity-encoded, so it is unescaped twice.
func (c *Client) Notes(ctx context.Context, date time.Time) (Note, error) {
	ctx, span := tracer.Start(ctx, "client:Notes")
	defer span.End()

	var payload struct {
		Item struct {
			Body string `json:"body"`
			Type string `json:"type"`
			Date string `json:"date"`
		} `json:"item"`
	}
	link := c.siteLink("/food/note?date=" + date.Format("2006-01-02"))
	err := c.getJson(ctx, link, &payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch note")
		return Note{}, err
	}

	note := Note{
		Body: html.UnescapeString(html.UnescapeString(payload.Item.Body)),
		Type: payload.Item.Type,
	}
	if payload.Item.Date != "" {
		noteDate, err := time.Parse("2006-01-02", payload.Item.Date)
		if err == nil {
			note.Date = noteDate
		}
	}
	return note, nil
}

// Water fetches the water logged on a date, in milliliters.
func (c *Client) Water(ctx context.Context, date time.Time) (float64, error) {
	ctx, span := tracer.Start(ctx, "client:Water")
	defer span.End()

	var payload struct {
		Item struct {
			Milliliters float64 `json:"milliliters"`
		} `json:"item"`
	}
	link := c.siteLink("/food/water?date=" + date.Format("2006-01-02"))
	err := c.getJson(ctx, link, &payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch water")
		return 0, err
	}
	return payload.Item.Milliliters, nil
}

// Report fetches a nutrition or fitness report series between two
// dates, newest last. The report api keys results by position rather
// than date: the series always ends on today, so dates are recovered
// from each entry's index.
func (c *Client) Report(ctx context.Context, reportName, reportCategory string, lowerBound, upperBound time.Time) ([]MeasurementEntry, error) {
	ctx, span := tracer.Start(ctx, "client:Report")
	defer span.End()

	today := c.Now().Truncate(24 * time.Hour)
	if !lowerBound.IsZero() && today.Sub(lowerBound) > 80*24*time.Hour {
		slog.WarnContext(ctx, "report api may not look back this far, some results may be incorrect",
			"lower_bound", lowerBound.Format("2006-01-02"))
	}
	lowerBound, upperBound = c.ensureBounds(lowerBound, upperBound)

	days := int(today.Sub(lowerBound).Hours() / 24)
	link := c.apiReportLink(reportName, reportCategory, days)

	var payload struct {
		Outcome struct {
			Results []struct {
				Total float64 `json:"total"`
			} `json:"results"`
		} `json:"outcome"`
	}
	err := c.getJson(ctx, link, &payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch report")
		return nil, err
	}

	results := payload.Outcome.Results
	if len(results) == 0 {
		err := fmt.Errorf("no results for report %q in category %q", reportName, reportCategory)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var out []MeasurementEntry
	for i, entry := range results {
		date := today.AddDate(0, 0, -len(results)+i+1)
		if date.Before(lowerBound) || date.After(upperBound) {
			continue
		}
		out = append(out, MeasurementEntry{Date: date, Value: entry.Total})
	}
	return out, nil
}

func (c *Client) apiReportLink(reportName, reportCategory string, days int) string {
	return c.siteLink(fmt.Sprintf("/api/services/reports/results/%s/%s/%d.json",
		strings.ToLower(reportCategory), reportName, days))
}
