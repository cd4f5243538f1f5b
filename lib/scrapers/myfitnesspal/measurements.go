package myfitnesspal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/codes"
)

// MeasurementEntry is one dated reading of a measurement series.
type MeasurementEntry struct {
	Date  time.Time
	Value float64
}

func measurementsLink(page int, measurement string) string {
	query := url.Values{}
	query.Set("page", fmt.Sprint(page))
	query.Set("type", measurement)
	return "/measurements/edit?" + query.Encode()
}

// MeasurementTypes returns the account's measurement catalog, mapping
// display names to their internal ids. Series referenced by the page
// but missing from the catalog payload map to an empty id.
func (c *Client) MeasurementTypes(ctx context.Context) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "client:MeasurementTypes")
	defer span.End()

	doc, err := c.getDocument(ctx, c.siteLink(measurementsLink(1, "")))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch measurements page")
		return nil, err
	}
	return extractMeasurementIds(doc)
}

func extractMeasurementIds(doc *goquery.Document) (map[string]string, error) {
	ids := map[string]string{}

	page, err := nextData(doc)
	if err != nil {
		return ids, nil
	}
	queries, err := dehydratedQueries(page)
	if err != nil {
		return nil, err
	}
	for _, q := range queries {
		switch queryKeyName(q.QueryKey) {
		case "measurementTypes":
			var types []struct {
				Id          json.Number `json:"id"`
				Description string      `json:"description"`
			}
			if json.Unmarshal(q.State.Data, &types) != nil {
				continue
			}
			for _, t := range types {
				ids[t.Description] = t.Id.String()
			}
		case "measurements":
			// a series the page queries is a real series even when the
			// catalog payload omits it
			if len(q.QueryKey) < 2 {
				continue
			}
			var name string
			if json.Unmarshal(q.QueryKey[1], &name) != nil {
				continue
			}
			if _, ok := ids[name]; !ok {
				ids[name] = ""
			}
		}
	}
	return ids, nil
}

// Measurements returns the named series between two dates, newest
// first. Bounds default to the last 30 days and are swapped when
// given in reverse order. The name must exist in the measurement
// catalog; an unknown name fails before any series page is fetched,
// with the closest known name attached.
func (c *Client) Measurements(ctx context.Context, measurement string, lowerBound, upperBound time.Time) ([]MeasurementEntry, error) {
	ctx, span := tracer.Start(ctx, "client:Measurements")
	defer span.End()

	lowerBound, upperBound = c.ensureBounds(lowerBound, upperBound)

	ids, err := c.MeasurementTypes(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := ids[measurement]; !ok {
		err := UnknownMeasurementError{
			Name:         measurement,
			ClosestMatch: closestMeasurement(measurement, ids),
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	series := newMeasurementSeries()
	for page := 1; ; page++ {
		doc, err := c.getDocument(ctx, c.siteLink(measurementsLink(page, measurement)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch measurements page")
			return nil, err
		}
		results, err := extractMeasurements(doc)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to extract measurements")
			return nil, err
		}
		for _, entry := range results {
			series.put(entry)
		}
		if len(results) == 0 {
			break
		}
		if !results[len(results)-1].Date.After(lowerBound) {
			break
		}
	}

	var out []MeasurementEntry
	for _, entry := range series.entries {
		if entry.Date.Before(lowerBound) || entry.Date.After(upperBound) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (c *Client) ensureBounds(lowerBound, upperBound time.Time) (time.Time, time.Time) {
	if upperBound.IsZero() {
		upperBound = c.Now().Truncate(24 * time.Hour)
	}
	if lowerBound.IsZero() {
		lowerBound = upperBound.AddDate(0, 0, -30)
	}
	if lowerBound.After(upperBound) {
		lowerBound, upperBound = upperBound, lowerBound
	}
	return lowerBound, upperBound
}

func closestMeasurement(name string, ids map[string]string) string {
	best := ""
	bestScore := 0.0
	for candidate := range ids {
		score := matchr.JaroWinkler(strings.ToLower(name), strings.ToLower(candidate), true)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best
}

// measurementSeries keeps entries in first-seen date order while
// letting a later page overwrite an earlier value for the same date.
type measurementSeries struct {
	entries []MeasurementEntry
	index   map[time.Time]int
}

func newMeasurementSeries() *measurementSeries {
	return &measurementSeries{index: map[time.Time]int{}}
}

func (s *measurementSeries) put(entry MeasurementEntry) {
	if i, ok := s.index[entry.Date]; ok {
		s.entries[i].Value = entry.Value
		return
	}
	s.index[entry.Date] = len(s.entries)
	s.entries = append(s.entries, entry)
}

// extractMeasurements reads one series page. Current pages embed
// their entries in next data; older check-in pages render a plain
// table, kept as a fallback.
func extractMeasurements(doc *goquery.Document) ([]MeasurementEntry, error) {
	page, err := nextData(doc)
	if err != nil {
		return extractLegacyMeasurements(doc), nil
	}
	queries, err := dehydratedQueries(page)
	if err != nil {
		return nil, err
	}

	var out []MeasurementEntry
	for _, q := range queries {
		if queryKeyName(q.QueryKey) != "measurements" {
			continue
		}
		var data struct {
			Items []struct {
				Date  string          `json:"date"`
				Value json.RawMessage `json:"value"`
				Unit  string          `json:"unit"`
			} `json:"items"`
		}
		if json.Unmarshal(q.State.Data, &data) != nil {
			continue
		}
		for _, item := range data.Items {
			date, err := time.Parse("2006-01-02", item.Date)
			if err != nil {
				continue
			}
			// the unit rides along with the value so stone-denominated
			// weights normalize to pounds
			value := string(item.Value)
			var text string
			if json.Unmarshal(item.Value, &text) == nil {
				value = text
			}
			out = append(out, MeasurementEntry{Date: date, Value: Numeric(value + " " + item.Unit)})
		}
	}
	return out, nil
}

func extractLegacyMeasurements(doc *goquery.Document) []MeasurementEntry {
	var out []MeasurementEntry
	// check-in rows lead with the series name; date and value sit in
	// the second and third columns
	doc.Find("table.check-in tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Children()
		if cells.Length() < 3 {
			return
		}
		date, err := time.Parse("01/02/2006", strings.TrimSpace(cells.Eq(1).Text()))
		if err != nil {
			return
		}
		out = append(out, MeasurementEntry{
			Date:  date,
			Value: Numeric(cells.Eq(2).Text()),
		})
	})
	return out
}

// SetMeasurement records a value for the named series on a date,
// through the same form the site's edit page submits.
func (c *Client) SetMeasurement(ctx context.Context, measurement string, value float64, date time.Time) error {
	ctx, span := tracer.Start(ctx, "client:SetMeasurement")
	defer span.End()

	if date.IsZero() {
		date = c.Now()
	}

	doc, err := c.getDocument(ctx, c.siteLink(measurementsLink(1, "")))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch measurements page")
		return err
	}

	token, ok := doc.Find(`form[action="/measurements/new"] input[name="authenticity_token"]`).Attr("value")
	if !ok {
		err := fmt.Errorf("measurements page carries no authenticity token")
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	ids, err := extractMeasurementIds(doc)
	if err != nil {
		return err
	}
	id, ok := ids[measurement]
	if !ok {
		err := UnknownMeasurementError{
			Name:         measurement,
			ClosestMatch: closestMeasurement(measurement, ids),
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	link := c.siteLink("/measurements/new")
	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"authenticity_token":          token,
			"measurement[display_value]":  fmt.Sprint(value),
			"type":                        id,
			"measurement[entry_date(1i)]": fmt.Sprint(date.Year()),
			"measurement[entry_date(2i)]": fmt.Sprint(int(date.Month())),
			"measurement[entry_date(3i)]": fmt.Sprint(date.Day()),
		}).
		Post(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit measurement")
		return err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "measurement submit rejected")
		return RequestFailedError{StatusCode: res.StatusCode(), Url: link}
	}
	return nil
}
