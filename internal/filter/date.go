package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRegex   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	slashDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// ParseDate accepts the date shapes browsers and spreadsheets send:
// "2026-08-15", "2026-08-15T00:00:00.000Z" and "08/15/2026".
// The result is a UTC midnight.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}

	//case 1: ISO date or full timestamp, keep the calendar day as written
	if isoDateRegex.MatchString(value) {
		if len(value) > 10 {
			ts, err := time.Parse(time.RFC3339Nano, value)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid date %q", raw)
			}
			y, m, d := ts.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q", raw)
		}
		return t, nil
	}

	//case 2: US form mm/dd/yyyy
	if match := slashDateRegex.FindStringSubmatch(value); match != nil {
		month, _ := strconv.Atoi(match[1])
		day, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])

		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		//time.Date normalises 02/30 into March; reject instead
		if t.Month() != time.Month(month) || t.Day() != day {
			return time.Time{}, fmt.Errorf("invalid date %q", raw)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", raw)
}

// ProcessingHours is the elapsed time between two instants in hours,
// never negative.
func ProcessingHours(from, to time.Time) float64 {
	if to.Before(from) {
		return 0
	}
	return to.Sub(from).Hours()
}
