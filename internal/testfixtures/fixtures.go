package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/production-board/internal/persistence"
	"github.com/example/production-board/internal/schedule"
)

var (
	segmentCounter uint64
	machineCounter uint64
)

var referenceTime = time.Date(2026, time.January, 5, 6, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the schedule date fixtures default to.
func ReferenceDate() string {
	return "2026-01-05"
}

// ---------------------------- Segment fixtures ----------------------------

// SegmentOption configures the generated segment fixture.
type SegmentOption func(*schedule.Segment)

// NewSegmentFixture returns a deterministic scheduling row with optional
// overrides. Each call yields a distinct id and order so fixtures never
// collide on the same board unless a test asks them to.
func NewSegmentFixture(opts ...SegmentOption) schedule.Segment {
	idx := atomic.AddUint64(&segmentCounter, 1)
	fixture := schedule.Segment{
		ID:            fmt.Sprintf("seg-%03d", idx),
		OrderID:       fmt.Sprintf("ORD-%03d", idx),
		ProductID:     "P1",
		MachineID:     "A01",
		ScheduledDate: ReferenceDate(),
		StartHour:     8,
		EndHour:       10,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSegmentID overrides the fixture id.
func WithSegmentID(id string) SegmentOption {
	return func(s *schedule.Segment) { s.ID = id }
}

// WithOrder overrides the order and product pair.
func WithOrder(orderID, productID string) SegmentOption {
	return func(s *schedule.Segment) {
		s.OrderID = orderID
		s.ProductID = productID
	}
}

// WithMachine places the fixture on a machine.
func WithMachine(machineID string) SegmentOption {
	return func(s *schedule.Segment) { s.MachineID = machineID }
}

// WithMold assigns a mold code.
func WithMold(moldCode string) SegmentOption {
	return func(s *schedule.Segment) { s.MoldCode = moldCode }
}

// WithWindow sets the scheduled window.
func WithWindow(date string, startHour, endHour float64) SegmentOption {
	return func(s *schedule.Segment) {
		s.ScheduledDate = date
		s.StartHour = startHour
		s.EndHour = endHour
	}
}

// WithSplitPart marks the fixture as one part of a split family.
func WithSplitPart(part, total int, linkedID string) SegmentOption {
	return func(s *schedule.Segment) {
		s.IsSplit = true
		s.SplitPart = part
		s.TotalSplits = total
		s.LinkedID = linkedID
	}
}

// NewSplitFamilyFixture returns a head and tail pair for one order: the head
// runs to the end hour on the reference date, the tail carries the remainder
// on the next day.
func NewSplitFamilyFixture(headStart, headEnd, tailEnd float64) (schedule.Segment, schedule.Segment) {
	head := NewSegmentFixture(
		WithWindow(ReferenceDate(), headStart, headEnd),
		WithSplitPart(1, 2, ""),
	)
	tail := NewSegmentFixture(
		WithOrder(head.OrderID, head.ProductID),
		WithMachine(head.MachineID),
		WithWindow("2026-01-06", 8, tailEnd),
		WithSplitPart(2, 2, head.ID),
	)
	head.LinkedID = tail.ID
	return head, tail
}

// ---------------------------- Machine fixtures ----------------------------

// MachineOption configures the generated machine fixture.
type MachineOption func(*schedule.Machine)

// NewMachineFixture returns a deterministic machine fixture.
func NewMachineFixture(opts ...MachineOption) schedule.Machine {
	idx := atomic.AddUint64(&machineCounter, 1)
	fixture := schedule.Machine{
		ID:   fmt.Sprintf("M%02d", idx),
		Area: "A",
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMachineID overrides the machine id.
func WithMachineID(id string) MachineOption {
	return func(m *schedule.Machine) { m.ID = id }
}

// WithArea places the machine in an area.
func WithArea(area string) MachineOption {
	return func(m *schedule.Machine) { m.Area = area }
}

// ---------------------------- Downtime fixtures ---------------------------

// NewDowntimeFixture returns a maintenance window on the given machine.
func NewDowntimeFixture(machineID string, startHour, endHour float64) schedule.DowntimeSlot {
	return schedule.DowntimeSlot{
		MachineID:     machineID,
		ScheduledDate: ReferenceDate(),
		StartHour:     startHour,
		EndHour:       endHour,
	}
}

// --------------------------- Persistence records ---------------------------

// SegmentRecord converts a domain segment into its persistence row.
func SegmentRecord(segment schedule.Segment) persistence.Segment {
	return persistence.Segment{
		ID:            segment.ID,
		OrderID:       segment.OrderID,
		ProductID:     segment.ProductID,
		MachineID:     segment.MachineID,
		MoldCode:      segment.MoldCode,
		ScheduledDate: segment.ScheduledDate,
		StartHour:     segment.StartHour,
		EndHour:       segment.EndHour,
		IsSplit:       segment.IsSplit,
		SplitPart:     segment.SplitPart,
		TotalSplits:   segment.TotalSplits,
		LinkedID:      segment.LinkedID,
		OriginalID:    segment.OriginalID,
	}
}

// MachineRecord converts a domain machine into its persistence row.
func MachineRecord(machine schedule.Machine) persistence.Machine {
	return persistence.Machine{ID: machine.ID, Area: machine.Area}
}
