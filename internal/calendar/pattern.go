package calendar

import (
	"errors"
	"time"
)

// ShiftSpec is the working profile of one weekday in a weekly pattern.
type ShiftSpec struct {
	WorkHours float64
	StartTime string
}

// WeeklyPattern maps weekdays to their shift profile. Weekdays absent from
// the map are non-working.
type WeeklyPattern map[time.Weekday]ShiftSpec

// ExpandOptions bounds a pattern expansion. Both dates are inclusive.
type ExpandOptions struct {
	From string
	To   string
}

// ErrInvalidWindow indicates an expansion window that is empty or reversed.
var ErrInvalidWindow = errors.New("calendar: expansion window must not be empty")

// ExpandPattern fills the date range with calendar days derived from the
// weekly pattern, skipping any date that already has an explicit entry in
// the resolver. Explicit rows always win over generated ones; the result
// contains only the generated days.
func ExpandPattern(resolver *Resolver, pattern WeeklyPattern, opts ExpandOptions) ([]Day, error) {
	from, err := time.Parse(DateLayout, opts.From)
	if err != nil {
		return nil, ErrInvalidDate
	}
	to, err := time.Parse(DateLayout, opts.To)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if to.Before(from) {
		return nil, ErrInvalidWindow
	}

	var generated []Day
	for current := from; !current.After(to); current = current.AddDate(0, 0, 1) {
		date := current.Format(DateLayout)
		if resolver != nil {
			if _, exists := resolver.Lookup(date); exists {
				continue
			}
		}
		spec, working := pattern[current.Weekday()]
		if !working {
			// Record the rest day explicitly so downstream consumers see
			// the zero-hour marker rather than the missing-entry default.
			generated = append(generated, Day{Date: date, WorkHours: 0, StartTime: "08:00"})
			continue
		}
		startTime := spec.StartTime
		if startTime == "" {
			startTime = "08:00"
		}
		generated = append(generated, Day{
			Date:      date,
			WorkHours: spec.WorkHours,
			StartTime: startTime,
		})
	}
	return generated, nil
}
