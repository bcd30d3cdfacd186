package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates throughout the board.
const DateLayout = "2006-01-02"

// Defaults applied when a date has no calendar entry: a 16-hour shift
// starting at 08:00 plus the fixed one-hour break, putting the off-work
// boundary at hour 25 (01:00 the next day).
const (
	DefaultShiftStart = 8.0
	DefaultWorkHours  = 16.0
	BreakHours        = 1.0
)

// Day is one row of the work-calendar table. WorkHours of zero marks a
// non-working day; StartTime is shift start as HH:MM.
type Day struct {
	Date      string
	WorkHours float64
	StartTime string
}

// Overlay is a non-working interval expressed in the selected day's 8-32
// coordinate frame.
type Overlay struct {
	StartHour float64
	EndHour   float64
}

// ErrInvalidDate indicates a date string that does not parse as YYYY-MM-DD.
var ErrInvalidDate = errors.New("calendar: invalid date")

// Resolver answers off-work queries against an in-memory calendar table.
// It is pure given the table it was built from; rebuild it when the
// calendar changes.
type Resolver struct {
	days map[string]Day
}

// NewResolver indexes the provided calendar days. Later duplicates of the
// same date win.
func NewResolver(days []Day) *Resolver {
	indexed := make(map[string]Day, len(days))
	for _, day := range days {
		indexed[day.Date] = day
	}
	return &Resolver{days: indexed}
}

// Lookup returns the calendar entry for a date, if one exists.
func (r *Resolver) Lookup(date string) (Day, bool) {
	day, ok := r.days[date]
	return day, ok
}

// ShiftStartHour returns the hour the shift begins on the given date. Dates
// without an entry, and entries with an unparseable start time, use the
// default 08:00.
func (r *Resolver) ShiftStartHour(date string) float64 {
	day, ok := r.days[date]
	if !ok {
		return DefaultShiftStart
	}
	return parseStartHour(day.StartTime)
}

// OffWorkHour returns the hour at which work stops on the given date. A
// missing entry defaults to shift start + default hours + break (25). A
// zero-hour day is off from its shift start; otherwise the boundary is
// shift start + work hours + the fixed break.
func (r *Resolver) OffWorkHour(date string) float64 {
	day, ok := r.days[date]
	if !ok {
		return DefaultShiftStart + DefaultWorkHours + BreakHours
	}
	start := parseStartHour(day.StartTime)
	if day.WorkHours == 0 {
		return start
	}
	return start + day.WorkHours + BreakHours
}

// OffWorkOverlays returns the non-working intervals of the visible window
// for the selected date: the tail of the current day past its off-work
// boundary, and the whole [24,32) band when the following day does not
// work at all.
func (r *Resolver) OffWorkOverlays(selectedDate string) []Overlay {
	var overlays []Overlay

	boundary := r.OffWorkHour(selectedDate)
	if boundary < 32 {
		overlays = append(overlays, Overlay{StartHour: boundary, EndHour: 32})
	}

	next, err := NextDate(selectedDate)
	if err != nil {
		return overlays
	}
	if r.OffWorkHour(next) <= r.ShiftStartHour(next) {
		overlays = append(overlays, Overlay{StartHour: 24, EndHour: 32})
	}
	return overlays
}

// BoundaryAfter returns the start of the first off-work interval past the
// given hour on the selected date, or the window end when none exists.
func (r *Resolver) BoundaryAfter(selectedDate string, hour float64) float64 {
	boundary := 32.0
	for _, overlay := range r.OffWorkOverlays(selectedDate) {
		if overlay.StartHour > hour && overlay.StartHour < boundary {
			boundary = overlay.StartHour
		}
	}
	return boundary
}

// NextDate returns the calendar date following the given one.
func NextDate(date string) (string, error) {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return parsed.AddDate(0, 0, 1).Format(DateLayout), nil
}

// PrevDate returns the calendar date preceding the given one.
func PrevDate(date string) (string, error) {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return parsed.AddDate(0, 0, -1).Format(DateLayout), nil
}

// parseStartHour converts an HH:MM shift start into fractional hours,
// falling back to the default start on malformed input.
func parseStartHour(startTime string) float64 {
	parts := strings.SplitN(strings.TrimSpace(startTime), ":", 2)
	if len(parts) != 2 {
		return DefaultShiftStart
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return DefaultShiftStart
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return DefaultShiftStart
	}
	return float64(hours) + float64(minutes)/60
}
