package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var numberWords = map[string]int{
	"one":    1,
	"two":    2,
	"three":  3,
	"four":   4,
	"five":   5,
	"six":    6,
	"seven":  7,
	"eight":  8,
	"nine":   9,
	"ten":    10,
	"eleven": 11,
	"twelve": 12,
}

var quantityUnitPattern = regexp.MustCompile(
	`(\d+|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)[-\s]*(day|week|month|year)s?`,
)

// relativePhrases are checked in order when no explicit quantity is present.
var relativePhrases = []struct {
	phrase string
	unit   string
}{
	{"last year", "year"},
	{"last month", "month"},
	{"last week", "week"},
}

// Days per unit. Months and years are fixed approximations (30 and 365 days),
// not calendar arithmetic: "3 months" before 2024-05-31 is 2024-03-02.
var unitDays = map[string]int{
	"day":   1,
	"week":  7,
	"month": 30,
	"year":  365,
}

// maxWindowDays bounds the look-back; longer windows are treated as absent.
const maxWindowDays = 1000 * 365

// ExtractTimeWindow derives a trailing reporting window ending at now from
// phrases like "last 2 weeks", "three months" or "last year". It returns nil
// when the text names no window.
func ExtractTimeWindow(text string, now time.Time) *TimeWindow {
	quantity, unit, ok := parseQuantityUnit(strings.ToLower(text))
	if !ok || quantity > maxWindowDays/unitDays[unit] {
		return nil
	}

	start := now.AddDate(0, 0, -quantity*unitDays[unit])
	return &TimeWindow{
		StartDate: start.Format(DateLayout),
		EndDate:   now.Format(DateLayout),
	}
}

func parseQuantityUnit(lower string) (int, string, bool) {
	if m := quantityUnitPattern.FindStringSubmatch(lower); m != nil {
		raw, unit := m[1], m[2]
		if n, ok := numberWords[raw]; ok {
			return n, unit, true
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, "", false
		}
		return n, unit, true
	}

	for _, rp := range relativePhrases {
		if strings.Contains(lower, rp.phrase) {
			return 1, rp.unit, true
		}
	}
	return 0, "", false
}
