package schedule

import (
	"fmt"
	"math"
	"testing"
)

func sequenceIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	boundary := SplitBoundary{
		Date:          "2026-01-05",
		StartHour:     17,
		NextDate:      "2026-01-06",
		NextStartHour: 8,
	}

	t.Run("carries the remainder onto the receiving day", func(t *testing.T) {
		t.Parallel()
		source := Segment{
			ID: "row-1", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01",
			ScheduledDate: "2026-01-05", StartHour: 15, EndHour: 18,
		}
		parts := Split(source, boundary, sequenceIDs("split-100"))
		if len(parts) != 2 {
			t.Fatalf("expected two parts, got %d", len(parts))
		}

		first, second := parts[0], parts[1]
		if first.StartHour != 15 || first.EndHour != 17 {
			t.Fatalf("first part = [%v,%v), want [15,17)", first.StartHour, first.EndHour)
		}
		if second.ScheduledDate != "2026-01-06" {
			t.Fatalf("second part date = %s, want 2026-01-06", second.ScheduledDate)
		}
		if second.StartHour != 8 || second.EndHour != 9 {
			t.Fatalf("second part = [%v,%v), want [8,9)", second.StartHour, second.EndHour)
		}

		total := first.Duration() + second.Duration()
		if math.Abs(total-source.Duration()) > 1e-9 {
			t.Fatalf("duration not conserved: %v != %v", total, source.Duration())
		}

		if first.LinkedID != second.ID || second.LinkedID != first.ID {
			t.Fatalf("parts not linked: %q / %q", first.LinkedID, second.LinkedID)
		}
		for _, part := range parts {
			if part.OriginalID != "row-1" {
				t.Fatalf("part %s originalID = %q, want row-1", part.ID, part.OriginalID)
			}
			if !part.IsModified {
				t.Fatalf("part %s not stamped modified", part.ID)
			}
			if part.SplitPart == 0 || part.TotalSplits != 2 {
				t.Fatalf("part %s split metadata %d/%d", part.ID, part.SplitPart, part.TotalSplits)
			}
		}
	})

	t.Run("original id chains through repeated edits", func(t *testing.T) {
		t.Parallel()
		source := Segment{
			ID: "split-99-1", OriginalID: "row-7",
			ScheduledDate: "2026-01-05", StartHour: 16, EndHour: 19,
		}
		parts := Split(source, boundary, sequenceIDs("split-101"))
		for _, part := range parts {
			if part.OriginalID != "row-7" {
				t.Fatalf("originalID = %q, want the chain root row-7", part.OriginalID)
			}
		}
	})

	t.Run("segment entirely before the boundary stays whole", func(t *testing.T) {
		t.Parallel()
		source := Segment{ID: "row-2", ScheduledDate: "2026-01-05", StartHour: 10, EndHour: 14}
		parts := Split(source, boundary, sequenceIDs("split-102"))
		if len(parts) != 1 {
			t.Fatalf("expected one part, got %d", len(parts))
		}
		if parts[0].IsSplit {
			t.Fatalf("degenerate split marked as family: %+v", parts[0])
		}
		if parts[0].Duration() != source.Duration() {
			t.Fatalf("duration changed: %v != %v", parts[0].Duration(), source.Duration())
		}
	})

	t.Run("segment entirely past the boundary moves whole to the next day", func(t *testing.T) {
		t.Parallel()
		source := Segment{ID: "row-3", ScheduledDate: "2026-01-05", StartHour: 18, EndHour: 20}
		parts := Split(source, boundary, sequenceIDs("split-103"))
		if len(parts) != 1 {
			t.Fatalf("expected one part, got %d", len(parts))
		}
		part := parts[0]
		if part.ScheduledDate != "2026-01-06" || part.StartHour != 8 || part.EndHour != 10 {
			t.Fatalf("part = %s [%v,%v), want 2026-01-06 [8,10)", part.ScheduledDate, part.StartHour, part.EndHour)
		}
	})
}

func TestModified(t *testing.T) {
	t.Parallel()

	segments := []Segment{
		{ID: "a"},
		{ID: "b", IsModified: true},
		{ID: "c", IsModified: true},
	}
	modified := Modified(segments)
	if len(modified) != 2 || modified[0].ID != "b" || modified[1].ID != "c" {
		t.Fatalf("Modified = %+v", modified)
	}
}
