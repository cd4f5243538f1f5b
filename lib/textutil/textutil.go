package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// column headers the upstream site abbreviates
var abbreviations = map[string]string{
	"carbs": "carbohydrates",
}

// CanonicalField maps a raw table header cell to the canonical
// attribute name used across diary and exercise records.
func CanonicalField(raw string) string {
	name := strings.ToLower(strings.Trim(raw, " \n\t"))
	if full, ok := abbreviations[name]; ok {
		return full
	}
	return name
}

func CleanText(s string) string {
	s = strings.Trim(s, " \n\t")
	return whitespaceRegex.ReplaceAllString(s, " ")
}
