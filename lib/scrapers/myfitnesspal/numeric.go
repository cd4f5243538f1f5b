package myfitnesspal

import (
	"regexp"
	"strconv"
)

var britishUnitRegex = regexp.MustCompile(`^(?:(\d+) st)\W*(?:(\d+) lb)?`)
var nonNumericRegex = regexp.MustCompile(`[^-\d.]+`)

// Numeric parses the heterogeneous numeric text found in diary cells:
// plain numbers, numbers with units or thousands separators embedded,
// and British "N st N lb" weight notation (converted to pounds).
// Anything unparseable yields 0 rather than an error, so one bad cell
// never aborts extraction of a whole page.
func Numeric(s string) float64 {
	groups := britishUnitRegex.FindStringSubmatch(s)
	if groups != nil {
		st, _ := strconv.ParseFloat(groups[1], 64)
		lbs := 0.0
		if groups[2] != "" {
			lbs, _ = strconv.ParseFloat(groups[2], 64)
		}
		return lbs + st*14
	}

	stripped := nonNumericRegex.ReplaceAllString(s, "")
	value, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return 0
	}
	return value
}
