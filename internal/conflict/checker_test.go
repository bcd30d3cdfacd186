package conflict

import (
	"testing"

	"github.com/example/production-board/internal/calendar"
	"github.com/example/production-board/internal/schedule"
)

func TestOverlaps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     float64
		want                           bool
	}{
		{"disjoint", 8, 10, 12, 14, false},
		{"touching end to start", 8, 10, 10, 12, false},
		{"touching start to end", 10, 12, 8, 10, false},
		{"partial overlap", 8, 11, 10, 12, true},
		{"containment", 8, 14, 10, 12, true},
		{"identical", 8, 10, 8, 10, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Fatalf("Overlaps(%v,%v,%v,%v) = %v, want %v", tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, got, tc.want)
			}
		})
	}
}

func TestDowntime(t *testing.T) {
	t.Parallel()

	slots := []schedule.DowntimeSlot{
		{MachineID: "A01", StartHour: 12, EndHour: 14},
		{MachineID: "B02", StartHour: 8, EndHour: 20},
	}

	if !Downtime(slots, Candidate{MachineID: "A01", StartHour: 13, EndHour: 15}) {
		t.Fatalf("overlap with A01 downtime not detected")
	}
	if Downtime(slots, Candidate{MachineID: "A01", StartHour: 14, EndHour: 16}) {
		t.Fatalf("touching downtime flagged as conflict")
	}
	// B02's downtime must not leak onto A01.
	if Downtime(slots, Candidate{MachineID: "A01", StartHour: 9, EndHour: 11}) {
		t.Fatalf("downtime of another machine flagged")
	}

	// A slot belongs to its own day; a window on another day is clean.
	dated := []schedule.DowntimeSlot{{MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 8, EndHour: 10}}
	if Downtime(dated, Candidate{MachineID: "A01", Date: "2026-01-06", StartHour: 8, EndHour: 10}) {
		t.Fatalf("downtime of another day flagged")
	}
	if !Downtime(dated, Candidate{MachineID: "A01", Date: "2026-01-05", StartHour: 8, EndHour: 10}) {
		t.Fatalf("same-day downtime overlap not flagged")
	}
}

func TestOrder(t *testing.T) {
	t.Parallel()

	// Two adjacent segments of the same order on one machine, per the
	// same-order carve-out, plus a foreign order elsewhere.
	segments := []schedule.Segment{
		{ID: "s1", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", StartHour: 9, EndHour: 11},
		{ID: "s2", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", StartHour: 11, EndHour: 13},
	}

	t.Run("same order never conflicts", func(t *testing.T) {
		t.Parallel()
		dragged := schedule.Segment{ID: "s2", OrderID: "ORD-1", ProductID: "P1"}
		c := Candidate{MachineID: "A01", StartHour: 10, EndHour: 12}
		if Order(segments, c, dragged) {
			t.Fatalf("same-order overlap flagged")
		}
	})

	t.Run("foreign order overlapping is flagged", func(t *testing.T) {
		t.Parallel()
		dragged := schedule.Segment{ID: "s3", OrderID: "ORD-2", ProductID: "P1"}
		c := Candidate{MachineID: "A01", StartHour: 10, EndHour: 12}
		if !Order(segments, c, dragged) {
			t.Fatalf("foreign-order overlap not flagged")
		}
	})

	t.Run("same product different order still conflicts", func(t *testing.T) {
		t.Parallel()
		dragged := schedule.Segment{ID: "s4", OrderID: "ORD-3", ProductID: "P1"}
		c := Candidate{MachineID: "A01", StartHour: 9, EndHour: 10}
		if !Order(segments, c, dragged) {
			t.Fatalf("order key must pair order and product")
		}
	})

	t.Run("other machine does not conflict", func(t *testing.T) {
		t.Parallel()
		dragged := schedule.Segment{ID: "s5", OrderID: "ORD-2", ProductID: "P1"}
		c := Candidate{MachineID: "C03", StartHour: 10, EndHour: 12}
		if Order(segments, c, dragged) {
			t.Fatalf("overlap on a different machine flagged")
		}
	})

	t.Run("rows on another day never conflict", func(t *testing.T) {
		t.Parallel()
		// A split tail scheduled tomorrow shares raw hours with today's
		// window but lives in its own day frame.
		rows := []schedule.Segment{
			{ID: "t1", OrderID: "ORD-9", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-06", StartHour: 8, EndHour: 9},
		}
		dragged := schedule.Segment{ID: "s6", OrderID: "ORD-2", ProductID: "P1", ScheduledDate: "2026-01-05"}
		today := Candidate{MachineID: "A01", Date: "2026-01-05", StartHour: 8, EndHour: 10}
		if Order(rows, today, dragged) {
			t.Fatalf("row of another day flagged against today's window")
		}
		tomorrow := Candidate{MachineID: "A01", Date: "2026-01-06", StartHour: 8, EndHour: 10}
		if !Order(rows, tomorrow, dragged) {
			t.Fatalf("same-day overlap not flagged")
		}
	})

	t.Run("sub-epsilon overlap still flags", func(t *testing.T) {
		t.Parallel()
		dragged := schedule.Segment{ID: "s7", OrderID: "ORD-2", ProductID: "P1"}
		c := Candidate{MachineID: "A01", StartHour: 10.9999999, EndHour: 11}
		if !Order(segments, c, dragged) {
			t.Fatalf("order overlap uses plain strict comparison, no tolerance")
		}
	})
}

func TestOffWork(t *testing.T) {
	t.Parallel()

	overlays := []calendar.Overlay{{StartHour: 17, EndHour: 32}}

	t.Run("ending exactly at the boundary is clean", func(t *testing.T) {
		t.Parallel()
		if OffWork(overlays, Candidate{StartHour: 15, EndHour: 17}) {
			t.Fatalf("placement ending at boundary flagged")
		}
	})

	t.Run("ending a minute past the boundary is flagged", func(t *testing.T) {
		t.Parallel()
		if !OffWork(overlays, Candidate{StartHour: 15, EndHour: 17.01}) {
			t.Fatalf("placement past boundary not flagged")
		}
	})

	t.Run("floating point noise at the boundary is tolerated", func(t *testing.T) {
		t.Parallel()
		if OffWork(overlays, Candidate{StartHour: 15, EndHour: 17 + 1e-9}) {
			t.Fatalf("sub-epsilon crossing flagged")
		}
	})
}

func TestVerdict(t *testing.T) {
	t.Parallel()

	if (Verdict{OffWork: true}).Hard() {
		t.Fatalf("off-work alone must not be a hard conflict")
	}
	if !(Verdict{OffWork: true}).Any() {
		t.Fatalf("off-work must still count as a conflict")
	}
	for _, v := range []Verdict{{Downtime: true}, {Order: true}, {Incompatible: true}} {
		if !v.Hard() {
			t.Fatalf("verdict %+v should be hard", v)
		}
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	segments := []schedule.Segment{
		{ID: "s1", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", StartHour: 9, EndHour: 11},
	}
	slots := []schedule.DowntimeSlot{{MachineID: "A01", StartHour: 13, EndHour: 14}}
	overlays := []calendar.Overlay{{StartHour: 17, EndHour: 32}}
	dragged := schedule.Segment{ID: "s9", OrderID: "ORD-2", ProductID: "P9"}

	verdict := Check(segments, slots, overlays, Candidate{MachineID: "A01", StartHour: 10, EndHour: 18}, dragged)
	if !verdict.Downtime || !verdict.Order || !verdict.OffWork {
		t.Fatalf("expected all synchronous predicates to fire, got %+v", verdict)
	}
}
