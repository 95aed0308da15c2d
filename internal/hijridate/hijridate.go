// Package hijridate rewrites Hijri calendar dates found in free text into
// Gregorian ISO dates so downstream plausibility checks can reason about a
// single calendar.
//
// Conversion uses the Umm al-Qura tables (the official Saudi civil calendar),
// which cover the years 1356-1500 AH. Candidate dates outside that window, or
// with an impossible day or month, are left exactly as they were found: the
// window is also what keeps ordinary Gregorian dates like 12/5/2023 from
// being misread as Hijri.
package hijridate

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/hablullah/go-hijri"
)

// Umm al-Qura table coverage in Hijri years.
const (
	MinYear = 1356
	MaxYear = 1500
)

// datePattern matches day/month/year with slashes or dashes, optionally
// followed by a Hijri marker. The marker and its leading whitespace are part
// of the match only when present, so replacement never swallows unrelated
// spacing.
var datePattern = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})(?:\s*(?:هجري|هـ))?`)

// Normalize replaces every convertible Hijri date in text with its Gregorian
// equivalent formatted as YYYY-MM-DD. Matches that cannot be converted are
// preserved verbatim; the rest of the text is never touched.
func Normalize(text string) string {
	return datePattern.ReplaceAllStringFunc(text, func(match string) string {
		parts := datePattern.FindStringSubmatch(match)
		if parts == nil {
			return match
		}

		day, _ := strconv.Atoi(parts[1])
		month, _ := strconv.Atoi(parts[2])
		year, _ := strconv.Atoi(parts[3])

		gregorian, err := ToGregorian(day, month, year)
		if err != nil {
			return match
		}
		return gregorian.Format("2006-01-02")
	})
}

// ToGregorian converts a single Umm al-Qura date to Gregorian. It rejects
// values outside the supported table range and dates that do not round-trip,
// such as day 30 of a 29-day month.
func ToGregorian(day, month, year int) (time.Time, error) {
	if day < 1 || day > 30 {
		return time.Time{}, fmt.Errorf("hijri day out of range: %d", day)
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("hijri month out of range: %d", month)
	}
	if year < MinYear || year > MaxYear {
		return time.Time{}, fmt.Errorf("hijri year outside Umm al-Qura coverage: %d", year)
	}

	date := hijri.UmmAlQuraDate{
		Day:   int64(day),
		Month: int64(month),
		Year:  int64(year),
	}
	gregorian := date.ToGregorian()

	roundTrip, err := hijri.CreateUmmAlQuraDate(gregorian)
	if err != nil {
		return time.Time{}, fmt.Errorf("hijri conversion failed for %d/%d/%d: %w", day, month, year, err)
	}
	if roundTrip.Day != date.Day || roundTrip.Month != date.Month || roundTrip.Year != date.Year {
		return time.Time{}, fmt.Errorf("invalid hijri date: %d/%d/%d", day, month, year)
	}

	return gregorian, nil
}
