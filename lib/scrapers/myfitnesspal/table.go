package myfitnesspal

import (
	"strings"

	"fitexport/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// fieldList reads a header row's cells into the canonical attribute
// names for the columns that follow. The first header cell labels the
// name column, not an attribute, so it is skipped.
func fieldList(header *goquery.Selection) []string {
	var fields []string
	header.Children().Each(func(i int, cell *goquery.Selection) {
		if i == 0 {
			return
		}
		fields = append(fields, textutil.CanonicalField(cell.Text()))
	})
	return fields
}

// entryRun walks sibling rows starting at row, extracting one Entry
// per row, and stops at the first sibling carrying a non-empty class
// attribute. Diary tables separate meals with classed separator rows
// (meal headers, totals), so a classed row is the run terminator,
// never part of the run.
//
// lenientValues controls cell parsing: exercise tables render missing
// attributes as "N/A", which should be absent from the map rather
// than 0.
func entryRun(row *goquery.Selection, fields []string, lenientValues bool) ([]Entry, *goquery.Selection) {
	var entries []Entry
	for row.Length() > 0 {
		if row.AttrOr("class", "") != "" {
			break
		}
		entries = append(entries, extractEntry(row, fields, lenientValues))
		row = row.Next()
	}
	return entries, row
}

func extractEntry(row *goquery.Selection, fields []string, lenientValues bool) Entry {
	entry := Entry{Nutrition: map[string]float64{}}
	row.Children().Each(func(i int, cell *goquery.Selection) {
		if i == 0 {
			entry.Name = entryName(cell)
			return
		}
		if i-1 >= len(fields) {
			// trailing delete-buttons column
			return
		}
		text := cellText(cell)
		if lenientValues && (strings.TrimSpace(text) == "" || strings.Contains(text, "N/A")) {
			return
		}
		entry.Nutrition[fields[i-1]] = Numeric(text)
	})
	return entry
}

// entryName prefers the food link's text; the cell also holds edit
// and delete widgets, and anchor-less rows (friend diaries) fall
// back to the whole cell.
func entryName(cell *goquery.Selection) string {
	if a := cell.ChildrenFiltered("a"); a.Length() > 0 {
		return textutil.CleanText(a.First().Text())
	}
	return textutil.CleanText(cell.Text())
}

// cellText prefers the macro-value span when present; some cells
// stack the value with a percentage annotation.
func cellText(cell *goquery.Selection) string {
	macro := cell.Find("span.macro-value")
	if macro.Length() > 0 {
		return macro.First().Text()
	}
	return cell.Text()
}

// extractValues parses a classed summary row (totals, goals,
// remaining) against the field list. Same cell handling as entry rows.
func extractValues(row *goquery.Selection, fields []string) map[string]float64 {
	values := map[string]float64{}
	row.Children().Each(func(i int, cell *goquery.Selection) {
		if i == 0 || i-1 >= len(fields) {
			return
		}
		values[fields[i-1]] = Numeric(cellText(cell))
	})
	return values
}
