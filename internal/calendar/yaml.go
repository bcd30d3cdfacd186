package calendar

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// calendarFile is the on-disk shape of a calendar import: explicit days
// plus an optional weekly pattern used to fill the gaps between them.
type calendarFile struct {
	Days []struct {
		Date      string  `yaml:"date"`
		WorkHours float64 `yaml:"work_hours"`
		StartTime string  `yaml:"start_time"`
	} `yaml:"days"`
	Pattern map[string]struct {
		WorkHours float64 `yaml:"work_hours"`
		StartTime string  `yaml:"start_time"`
	} `yaml:"pattern"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// LoadYAML reads a calendar file and returns its explicit days and weekly
// pattern. Either section may be empty.
func LoadYAML(path string) ([]Day, WeeklyPattern, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("calendar: read %s: %w", path, err)
	}
	return ParseYAML(raw)
}

// ParseYAML decodes calendar YAML content.
func ParseYAML(raw []byte) ([]Day, WeeklyPattern, error) {
	var file calendarFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("calendar: parse yaml: %w", err)
	}

	days := make([]Day, 0, len(file.Days))
	for _, entry := range file.Days {
		if _, err := time.Parse(DateLayout, entry.Date); err != nil {
			return nil, nil, fmt.Errorf("%w: %q", ErrInvalidDate, entry.Date)
		}
		days = append(days, Day{
			Date:      entry.Date,
			WorkHours: entry.WorkHours,
			StartTime: entry.StartTime,
		})
	}

	var pattern WeeklyPattern
	if len(file.Pattern) > 0 {
		pattern = make(WeeklyPattern, len(file.Pattern))
		for name, spec := range file.Pattern {
			weekday, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return nil, nil, fmt.Errorf("calendar: unknown weekday %q", name)
			}
			pattern[weekday] = ShiftSpec{WorkHours: spec.WorkHours, StartTime: spec.StartTime}
		}
	}

	return days, pattern, nil
}
