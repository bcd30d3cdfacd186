// Package conflict holds the pure predicates a drag commit is judged by.
// Every check is a half-open interval test with strict inequalities on
// both sides, so touching intervals (end == start) never count as
// overlapping. Hours are expressed in each row's own day frame, so
// interval tests only apply between windows on the same calendar day.
package conflict

import (
	"github.com/example/production-board/internal/calendar"
	"github.com/example/production-board/internal/schedule"
)

// Epsilon absorbs floating-point noise at the off-work boundary: a
// placement ending exactly on the boundary is not a conflict, one ending
// measurably past it is. Downtime and order overlap use plain strict
// comparisons without it.
const Epsilon = 1e-6

// Candidate is a proposed placement under evaluation. Date names the
// calendar day the window's hours are framed in; when empty, every row is
// treated as sharing the candidate's day.
type Candidate struct {
	MachineID string
	Date      string
	StartHour float64
	EndHour   float64
}

// Overlaps reports whether two half-open hour intervals intersect.
func Overlaps(aStart, aEnd, bStart, bEnd float64) bool {
	return aStart < bEnd && aEnd > bStart
}

// sameDay reports whether a row's day frame matches the candidate's.
// Either side being unset means no frame information, which counts as a
// match.
func sameDay(candidateDate, rowDate string) bool {
	return candidateDate == "" || rowDate == "" || candidateDate == rowDate
}

// Downtime reports whether the candidate window intersects any downtime
// slot on its machine and day.
func Downtime(slots []schedule.DowntimeSlot, c Candidate) bool {
	for _, slot := range slots {
		if slot.MachineID != c.MachineID {
			continue
		}
		if !sameDay(c.Date, slot.ScheduledDate) {
			continue
		}
		if Overlaps(c.StartHour, c.EndHour, slot.StartHour, slot.EndHour) {
			return true
		}
	}
	return false
}

// Order reports whether the candidate window intersects a segment of a
// different logical order on the same machine. Segments sharing the
// dragged segment's order key are carved out: two parts of one order may
// legitimately coexist on a machine. Rows scheduled on a different
// calendar day are skipped, since their hours live in their own day's
// frame and can never occupy the candidate's.
func Order(segments []schedule.Segment, c Candidate, dragged schedule.Segment) bool {
	key := dragged.OrderKey()
	for _, other := range segments {
		if other.ID == dragged.ID {
			continue
		}
		if other.MachineID != c.MachineID {
			continue
		}
		if !sameDay(c.Date, other.ScheduledDate) {
			continue
		}
		if other.OrderKey() == key {
			continue
		}
		if Overlaps(c.StartHour, c.EndHour, other.StartHour, other.EndHour) {
			return true
		}
	}
	return false
}

// OffWork reports whether the candidate window reaches into any
// non-working interval of the visible day. The epsilon tie-break keeps a
// window ending exactly on the boundary clean.
func OffWork(overlays []calendar.Overlay, c Candidate) bool {
	for _, overlay := range overlays {
		if c.StartHour < overlay.EndHour-Epsilon && c.EndHour > overlay.StartHour+Epsilon {
			return true
		}
	}
	return false
}

// Verdict aggregates the predicate results for one candidate placement.
// Equipment compatibility is resolved asynchronously and folded in by the
// committer.
type Verdict struct {
	Downtime     bool
	Order        bool
	OffWork      bool
	Incompatible bool
}

// Hard reports whether any non-negotiable constraint fired. Off-work
// overlap is deliberately excluded: it is a branch requiring user
// confirmation, not a rejection.
func (v Verdict) Hard() bool {
	return v.Downtime || v.Order || v.Incompatible
}

// Any reports whether any predicate fired at all.
func (v Verdict) Any() bool {
	return v.Hard() || v.OffWork
}

// Check evaluates the three synchronous predicates against a candidate.
func Check(segments []schedule.Segment, slots []schedule.DowntimeSlot, overlays []calendar.Overlay, c Candidate, dragged schedule.Segment) Verdict {
	return Verdict{
		Downtime: Downtime(slots, c),
		Order:    Order(segments, c, dragged),
		OffWork:  OffWork(overlays, c),
	}
}
