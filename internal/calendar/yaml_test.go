package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestParseYAML(t *testing.T) {
	t.Parallel()

	t.Run("parses days and pattern", func(t *testing.T) {
		t.Parallel()
		raw := []byte(`
days:
  - date: "2026-01-05"
    work_hours: 8
    start_time: "08:00"
  - date: "2026-01-06"
    work_hours: 0
    start_time: "08:00"
pattern:
  monday:
    work_hours: 8
    start_time: "08:00"
  Friday:
    work_hours: 4
`)
		days, pattern, err := ParseYAML(raw)
		if err != nil {
			t.Fatalf("ParseYAML: %v", err)
		}
		if len(days) != 2 {
			t.Fatalf("len(days) = %d, want 2", len(days))
		}
		if days[0].Date != "2026-01-05" || days[0].WorkHours != 8 {
			t.Errorf("days[0] = %+v", days[0])
		}
		if len(pattern) != 2 {
			t.Fatalf("len(pattern) = %d, want 2", len(pattern))
		}
		// Weekday names are case-insensitive.
		if spec, ok := pattern[time.Friday]; !ok || spec.WorkHours != 4 {
			t.Errorf("friday spec = %+v, ok = %v", spec, ok)
		}
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		t.Parallel()
		_, _, err := ParseYAML([]byte("days:\n  - date: \"01/05/2026\"\n    work_hours: 8\n"))
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("err = %v, want ErrInvalidDate", err)
		}
	})

	t.Run("rejects unknown weekdays", func(t *testing.T) {
		t.Parallel()
		_, _, err := ParseYAML([]byte("pattern:\n  noday:\n    work_hours: 8\n"))
		if err == nil {
			t.Fatal("expected an error for an unknown weekday")
		}
	})

	t.Run("empty document yields nothing", func(t *testing.T) {
		t.Parallel()
		days, pattern, err := ParseYAML(nil)
		if err != nil {
			t.Fatalf("ParseYAML: %v", err)
		}
		if len(days) != 0 || len(pattern) != 0 {
			t.Fatalf("days = %v, pattern = %v, want empty", days, pattern)
		}
	})
}
