package testfixtures

import (
	"context"
	"strings"
	"testing"

	"github.com/example/production-board/internal/persistence"
)

func TestServiceFactoryHarnessBoardService(t *testing.T) {
	factory := NewServiceFactory()
	harness := NewSQLiteHarness(t)
	ctx := context.Background()

	machine := NewMachineFixture(WithMachineID("A01"))
	if err := harness.Machines.CreateMachine(ctx, MachineRecord(machine)); err != nil {
		t.Fatalf("failed to seed machine: %v", err)
	}
	segment := NewSegmentFixture(WithMachine("A01"))
	if err := harness.Segments.CreateSegment(ctx, SegmentRecord(segment)); err != nil {
		t.Fatalf("failed to seed segment: %v", err)
	}
	if err := harness.Calendar.UpsertDay(ctx, persistence.CalendarDay{
		Date: ReferenceDate(), WorkHours: 8, StartTime: "08:00",
	}); err != nil {
		t.Fatalf("failed to seed calendar: %v", err)
	}

	svc := factory.HarnessBoardService(harness, nil)
	snapshot, err := svc.LoadBoard(ctx, ReferenceDate())
	if err != nil {
		t.Fatalf("LoadBoard returned error: %v", err)
	}

	if len(snapshot.Machines) != 1 || snapshot.Machines[0].ID != "A01" {
		t.Fatalf("unexpected machines in snapshot: %#v", snapshot.Machines)
	}
	if len(snapshot.Segments) != 1 || snapshot.Segments[0].ID != segment.ID {
		t.Fatalf("unexpected segments in snapshot: %#v", snapshot.Segments)
	}
	if snapshot.Calendar.OffWorkHour(ReferenceDate()) != 17 {
		t.Fatalf("calendar not hydrated: boundary %v", snapshot.Calendar.OffWorkHour(ReferenceDate()))
	}
}

func TestServiceFactorySplitIDs(t *testing.T) {
	factory := NewServiceFactory()
	next := factory.SplitIDs()

	first, second := next(), next()
	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
	if !strings.HasPrefix(first, "split-test-") {
		t.Fatalf("unexpected id format: %q", first)
	}
}
