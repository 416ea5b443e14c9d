// Package dates turns the many ways an audit date shows up in a workbook into
// a calendar date.
package dates

import (
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/samber/lo"
)

// Layouts are tried in order and the first match wins. Day-first numeric
// layouts come before month-first ones, so "06-11-2025" is 6 November.
var Layouts = []string{
	"2006-1-2 15:04:05",
	"2006-1-2",
	"2-Jan-06",
	"2-January-06",
	"2-Jan-2006",
	"2-January-2006",
	"2/Jan/06",
	"2/January/06",
	"2/Jan/2006",
	"2/January/2006",
	"2.Jan.06",
	"2.January.06",
	"2-1-2006",
	"2/1/2006",
	"2-1-06",
	"2/1/06",
	"1/2/2006",
	"1-2-2006",
	"1/2/06",
	"1-2-06",
}

// DisplayLayout is how dates are shown to the user.
const DisplayLayout = "02-Jan-2006"

// excelEpoch is day 1 of the 1900 date system.
var excelEpoch = civil.Date{Year: 1900, Month: time.January, Day: 1}

// Parse converts a cell value to a date. It reports false, never an error,
// when nothing matches.
func Parse(v any) (civil.Date, bool) {
	switch x := v.(type) {
	case nil:
		return civil.Date{}, false
	case civil.Date:
		return x, x.IsValid()
	case time.Time:
		if x.IsZero() {
			return civil.Date{}, false
		}
		return civil.DateOf(x), true
	case float64:
		return FromSerial(x)
	case int:
		return FromSerial(float64(x))
	case string:
		return parseString(x)
	}
	return civil.Date{}, false
}

func parseString(raw string) (civil.Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return civil.Date{}, false
	}

	// "2025-11-06 00:00:00" and friends.
	if strings.Contains(s, " ") && strings.Contains(s, ":") {
		datePart, _, _ := strings.Cut(s, " ")
		if t, err := time.Parse("2006-1-2", datePart); err == nil {
			return civil.DateOf(t), true
		}
	}

	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}

	if isSerial(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return FromSerial(f)
		}
	}
	return civil.Date{}, false
}

// isSerial accepts digits with at most one decimal point.
func isSerial(s string) bool {
	if s == "" || strings.Count(s, ".") > 1 {
		return false
	}
	return lo.EveryBy([]rune(s), func(r rune) bool {
		return r == '.' || (r >= '0' && r <= '9')
	})
}

// FromSerial converts a spreadsheet serial day number. Serials above 59 skip
// the phantom 29 Feb 1900; any time-of-day fraction is dropped.
func FromSerial(serial float64) (civil.Date, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 0 || serial > 2958465 {
		return civil.Date{}, false
	}
	if serial > 59 {
		serial--
	}
	return excelEpoch.AddDays(int(math.Floor(serial - 1))), true
}

// Format renders a date as ISO YYYY-MM-DD, which Parse reads back.
func Format(d civil.Date) string {
	return d.String()
}

// Display renders a date as 06-Nov-2025.
func Display(d civil.Date) string {
	return d.In(time.UTC).Format(DisplayLayout)
}

// ParseDisplay reads a date produced by Display.
func ParseDisplay(s string) (civil.Date, error) {
	t, err := time.Parse(DisplayLayout, strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, err
	}
	return civil.DateOf(t), nil
}

// FirstOfMonth returns day 1 of d's month.
func FirstOfMonth(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: d.Month, Day: 1}
}

// DetectColumn finds the "Audit Date" header, ignoring case.
func DetectColumn(headers []string) (string, bool) {
	return lo.Find(headers, func(h string) bool {
		return strings.EqualFold(strings.TrimSpace(h), "audit date")
	})
}

var excludedCandidates = []string{"_row_number", "_sheet_name", "lead status", "dq reason", "agent name"}

// ColumnCandidates lists the headers a user may pick as the date column when
// DetectColumn finds nothing.
func ColumnCandidates(headers []string) []string {
	return lo.Reject(headers, func(h string, _ int) bool {
		return lo.Contains(excludedCandidates, strings.ToLower(strings.TrimSpace(h)))
	})
}
