// Package wallclock converts between naive wall-clock strings and absolute instants.
//
// Every conversion takes the zone explicitly. Nothing here reads or changes a
// process-wide "current" zone, so concurrent requests from users in different zones
// cannot interfere with each other.
package wallclock

import (
	"fmt"
	"time"
)

const (
	// Layout is the accepted input format for event timestamps (no offset).
	Layout = "2006-01-02 15:04:05"

	// DayLayout is the accepted format for day filters.
	DayLayout = "2006-01-02"
)

// FormatError is returned when a value doesn't match the expected layout.
type FormatError struct {
	Field  string // set by callers that know which input was malformed
	Value  string
	Layout string
}

func (e *FormatError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %q does not match %s", e.Field, e.Value, humanLayout(e.Layout))
	}
	return fmt.Sprintf("%q does not match %s", e.Value, humanLayout(e.Layout))
}

// Message is the user-facing description of the expected format.
func (e *FormatError) Message() string {
	return "Datetime has wrong format. Use one of these formats instead: " + humanLayout(e.Layout) + "."
}

func humanLayout(layout string) string {
	switch layout {
	case Layout:
		return "YYYY-MM-DD hh:mm:ss"
	case DayLayout:
		return "YYYY-MM-DD"
	default:
		return layout
	}
}

// LoadZone resolves an IANA zone identifier. "" and "Local" are refused: they name UTC
// and the process zone rather than a user's zone.
func LoadZone(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return nil, fmt.Errorf("timezone %q is not an IANA zone", name)
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", name, err)
	}
	return loc, nil
}

// ParseInZone interprets value as local wall-clock time in loc and returns the instant in UTC.
func ParseInZone(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, value, loc)
	// time.Parse accepts fractional seconds the layout doesn't mention
	if err != nil || t.Format(Layout) != value {
		return time.Time{}, &FormatError{Value: value, Layout: Layout}
	}
	return t.UTC(), nil
}

// Render formats an instant as RFC 3339 in loc, keeping the zone offset.
func Render(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.RFC3339)
}

// Format renders an instant as a naive wall-clock string in loc, the inverse of ParseInZone.
func Format(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(Layout)
}

// DayWindow returns the half-open window [midnight, next midnight) of the given calendar
// day in loc. Days that are 23 or 25 hours long because of DST are handled.
func DayWindow(day string, loc *time.Location) (from, to time.Time, err error) {
	d, err := time.ParseInLocation(DayLayout, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, &FormatError{Field: "day", Value: day, Layout: DayLayout}
	}
	next := time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, loc)
	return d.UTC(), next.UTC(), nil
}
