package gamestate

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const dateLayout = "2006-01-02"

// Unavailable is displayed in place of dates that could not be parsed.
const Unavailable = "N/A"

var eastern = mustLoad("America/New_York")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseDate returns the calendar date of an upstream date field as UTC
// midnight. The field is either a bare date or a full ISO timestamp whose
// date part is the game's local date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(dateLayout) {
		return time.Time{}, fmt.Errorf("invalid game date %q", s)
	}
	d, err := time.Parse(dateLayout, s[:len(dateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid game date %q: %w", s, err)
	}
	return d, nil
}

// FormatDate renders an upstream date with layout, or Unavailable.
func FormatDate(s, layout string) string {
	d, err := ParseDate(s)
	if err != nil {
		return Unavailable
	}
	return d.Format(layout)
}

// CalendarDay truncates t to its calendar date in loc, expressed as UTC midnight
// so it compares directly with ParseDate results.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// DateString formats a calendar day the way the upstream API expects it.
func DateString(day time.Time) string {
	return day.Format(dateLayout)
}

// parseTipoff reads a tip-off time out of the status field, which upstream
// fills with either an ISO timestamp or text like "7:30 pm ET".
func parseTipoff(status string, day time.Time) (time.Time, bool) {
	status = strings.TrimSpace(status)
	if status == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, status); err == nil {
		return t, true
	}
	lower := strings.ToLower(status)
	if !strings.HasSuffix(lower, " et") {
		return time.Time{}, false
	}
	clock, err := time.Parse("3:04 pm", strings.TrimSpace(strings.TrimSuffix(lower, " et")))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, eastern), true
}
