package trips

import (
	"sort"
	"strings"
)

// CalendarDay groups the trips that run on one date.
type CalendarDay struct {
	Date  string
	Trips []Trip
}

// Summary joins the day's trip labels the way the calendar pane rendered
// them: "IDA Feira | VOLTA Feira".
func (d CalendarDay) Summary() string {
	labels := make([]string, 0, len(d.Trips))
	for _, t := range d.Trips {
		labels = append(labels, strings.TrimSpace(d.tripLabel(t)))
	}
	return strings.Join(labels, " | ")
}

func (d CalendarDay) tripLabel(t Trip) string {
	return strings.TrimSpace(t.Direction.Label() + " " + strings.TrimSpace(t.Title))
}

// Months returns the sorted distinct YYYY-MM months that contain trips with
// well-formed dates. Trips with malformed dates simply don't appear on the
// calendar; they are still listed and editable.
func Months(ts []Trip) []string {
	seen := make(map[string]bool)
	for _, t := range ts {
		d := strings.TrimSpace(t.Date)
		if dateRE.MatchString(d) {
			seen[d[:7]] = true
		}
	}
	months := make([]string, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

// MonthDays returns the trips of one YYYY-MM month grouped by date, dates
// ascending. Trips within a day keep their document order.
func MonthDays(ts []Trip, month string) []CalendarDay {
	grouped := make(map[string][]Trip)
	for _, t := range ts {
		d := strings.TrimSpace(t.Date)
		if dateRE.MatchString(d) && strings.HasPrefix(d, month) {
			grouped[d] = append(grouped[d], t)
		}
	}

	dates := make([]string, 0, len(grouped))
	for d := range grouped {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	days := make([]CalendarDay, 0, len(dates))
	for _, d := range dates {
		days = append(days, CalendarDay{Date: d, Trips: grouped[d]})
	}
	return days
}
