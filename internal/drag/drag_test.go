package drag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/example/production-board/internal/calendar"
	"github.com/example/production-board/internal/schedule"
	"github.com/example/production-board/internal/timeline"
)

type staticChecker struct {
	compatible bool
	err        error
}

func (c staticChecker) Peek(_, _ string) (bool, bool) { return c.compatible, true }

func (c staticChecker) Resolve(_ context.Context, _, _ string) (bool, error) {
	return c.compatible, c.err
}

func testEnv(t *testing.T, segments []schedule.Segment) Env {
	t.Helper()
	mapper, err := timeline.NewMapper(timeline.DefaultBaseWidth, 1.0)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	resolver := calendar.NewResolver([]calendar.Day{
		{Date: "2026-01-05", WorkHours: 8, StartTime: "08:00"},
		{Date: "2026-01-06", WorkHours: 8, StartTime: "08:00"},
	})
	n := 0
	return Env{
		Mapper:   mapper,
		Calendar: resolver,
		Date:     "2026-01-05",
		Segments: schedule.Regroup(segments),
		NewID: func() string {
			n++
			return fmt.Sprintf("split-1000-%d", n)
		},
	}
}

func mustGrab(t *testing.T, session Session, id string, pointerX float64) Session {
	t.Helper()
	next, err := session.Grab(id, pointerX)
	if err != nil {
		t.Fatalf("Grab(%s): %v", id, err)
	}
	return next
}

func mustMove(t *testing.T, session Session, pointerX float64, machineID string) Session {
	t.Helper()
	next, err := session.Move(pointerX, machineID)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	return next
}

func familyDuration(segments []schedule.Segment, of schedule.Segment) float64 {
	total := 0.0
	for _, member := range schedule.Family(segments, of) {
		total += member.Duration()
	}
	return total
}

func TestSession_SnapOnPlainMove(t *testing.T) {
	t.Parallel()

	// Scenario: a two-hour segment grabbed at its left edge and dropped at
	// a raw pointer time of 13.3 snaps to 13:00-15:00 at zoom 1.
	seg := schedule.Segment{
		ID: "s1", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01",
		ScheduledDate: "2026-01-05", StartHour: 10, EndHour: 12,
	}
	env := testEnv(t, []schedule.Segment{seg})
	session := NewSession(env)

	session = mustGrab(t, session, "s1", env.Mapper.TimeToX(10))
	session = mustMove(t, session, env.Mapper.TimeToX(13.3), "A01")

	if got := session.Preview().StartHour; got != 13 {
		t.Fatalf("preview start = %v, want 13", got)
	}

	session, result := session.Drop(context.Background())
	if result.Outcome != OutcomeCommitted {
		t.Fatalf("outcome = %v, want committed", result.Outcome)
	}
	if session.State != StateIdle {
		t.Fatalf("state = %v, want idle", session.State)
	}

	moved, _ := findSegment(result.Segments, "s1")
	if moved.StartHour != 13 || moved.EndHour != 15 {
		t.Fatalf("moved segment = [%v,%v), want [13,15)", moved.StartHour, moved.EndHour)
	}
	if !moved.IsModified {
		t.Fatalf("committed segment not stamped modified")
	}
}

func TestSession_GrabOffsetKeepsGhostUnderPointer(t *testing.T) {
	t.Parallel()

	seg := schedule.Segment{
		ID: "s1", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01",
		ScheduledDate: "2026-01-05", StartHour: 10, EndHour: 12,
	}
	env := testEnv(t, []schedule.Segment{seg})
	session := NewSession(env)

	// Grab one hour into the segment, then put the pointer at 14:00: the
	// segment start lands on 13:00, not 14:00.
	session = mustGrab(t, session, "s1", env.Mapper.TimeToX(11))
	session = mustMove(t, session, env.Mapper.TimeToX(14), "A01")

	if got := session.Preview().StartHour; got != 13 {
		t.Fatalf("preview start = %v, want 13", got)
	}
}

func TestSession_PlainOffWorkDropAwaitsConfirmation(t *testing.T) {
	t.Parallel()

	seg := schedule.Segment{
		ID: "row-1", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01",
		ScheduledDate: "2026-01-05", StartHour: 13, EndHour: 16,
	}
	env := testEnv(t, []schedule.Segment{seg})
	session := NewSession(env)

	session = mustGrab(t, session, "row-1", env.Mapper.TimeToX(13))
	session = mustMove(t, session, env.Mapper.TimeToX(15), "A01")

	session, result := session.Drop(context.Background())
	if result.Outcome != OutcomeAwaiting {
		t.Fatalf("outcome = %v, want awaiting confirmation", result.Outcome)
	}
	if session.State != StateAwaitingConfirmation {
		t.Fatalf("state = %v, want awaiting", session.State)
	}

	proposal := result.Proposal
	if proposal == nil || len(proposal.Parts) != 2 {
		t.Fatalf("expected a two-part proposal, got %+v", proposal)
	}
	first, second := proposal.Parts[0], proposal.Parts[1]
	if first.StartHour != 15 || first.EndHour != 17 {
		t.Fatalf("part1 = [%v,%v), want [15,17)", first.StartHour, first.EndHour)
	}
	if second.ScheduledDate != "2026-01-06" || second.StartHour != 8 || second.EndHour != 9 {
		t.Fatalf("part2 = %s [%v,%v), want 2026-01-06 [8,9)", second.ScheduledDate, second.StartHour, second.EndHour)
	}

	t.Run("confirm replaces the original row", func(t *testing.T) {
		confirmed, confirmResult := session.ConfirmSplit()
		if confirmResult.Outcome != OutcomeCommitted {
			t.Fatalf("confirm outcome = %v", confirmResult.Outcome)
		}
		if confirmed.State != StateIdle {
			t.Fatalf("state after confirm = %v", confirmed.State)
		}
		if _, stillThere := findSegment(confirmResult.Segments, "row-1"); stillThere {
			t.Fatalf("original row survived the split")
		}
		if len(confirmResult.Segments) != 2 {
			t.Fatalf("expected 2 segments after split, got %d", len(confirmResult.Segments))
		}
		total := 0.0
		for _, segment := range confirmResult.Segments {
			total += segment.Duration()
			if segment.OriginalID != "row-1" {
				t.Fatalf("part %s lost its original row reference", segment.ID)
			}
		}
		if math.Abs(total-3) > 1e-9 {
			t.Fatalf("split duration = %v, want 3", total)
		}
	})

	t.Run("cancel leaves the schedule unchanged", func(t *testing.T) {
		cancelled, cancelResult := session.CancelSplit()
		if cancelResult.Outcome != OutcomeCancelled {
			t.Fatalf("cancel outcome = %v", cancelResult.Outcome)
		}
		if cancelled.State != StateIdle {
			t.Fatalf("state after cancel = %v", cancelled.State)
		}
		if cancelResult.Segments != nil {
			t.Fatalf("cancel must not mutate the schedule")
		}
	})
}

func TestSession_HardConflictsRevert(t *testing.T) {
	t.Parallel()

	t.Run("cross order overlap", func(t *testing.T) {
		t.Parallel()
		segments := []schedule.Segment{
			{ID: "s1", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 9, EndHour: 11},
			{ID: "s2", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 11, EndHour: 13},
			{ID: "s3", OrderID: "ORD-2", ProductID: "P1", MachineID: "B02", ScheduledDate: "2026-01-05", StartHour: 8, EndHour: 10},
		}
		env := testEnv(t, segments)
		session := NewSession(env)

		session = mustGrab(t, session, "s3", env.Mapper.TimeToX(8))
		session = mustMove(t, session, env.Mapper.TimeToX(10), "A01")
		session, result := session.Drop(context.Background())

		if result.Outcome != OutcomeReverted {
			t.Fatalf("outcome = %v, want reverted", result.Outcome)
		}
		if !result.Verdict.Order {
			t.Fatalf("verdict = %+v, want order conflict", result.Verdict)
		}
		if session.State != StateIdle {
			t.Fatalf("state = %v, want idle", session.State)
		}
	})

	t.Run("downtime overlap", func(t *testing.T) {
		t.Parallel()
		seg := schedule.Segment{ID: "s1", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 8, EndHour: 10}
		env := testEnv(t, []schedule.Segment{seg})
		env.Downtime = []schedule.DowntimeSlot{{MachineID: "A01", StartHour: 12, EndHour: 14}}
		session := NewSession(env)

		session = mustGrab(t, session, "s1", env.Mapper.TimeToX(8))
		session = mustMove(t, session, env.Mapper.TimeToX(13), "A01")
		session, result := session.Drop(context.Background())

		if result.Outcome != OutcomeReverted || !result.Verdict.Downtime {
			t.Fatalf("outcome=%v verdict=%+v, want downtime revert", result.Outcome, result.Verdict)
		}
		_ = session
	})

	t.Run("incompatible equipment at commit", func(t *testing.T) {
		t.Parallel()
		seg := schedule.Segment{ID: "s1", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", MoldCode: "M-601", ScheduledDate: "2026-01-05", StartHour: 8, EndHour: 10}
		env := testEnv(t, []schedule.Segment{seg})
		env.Compat = staticChecker{compatible: false}
		session := NewSession(env)

		session = mustGrab(t, session, "s1", env.Mapper.TimeToX(8))
		session = mustMove(t, session, env.Mapper.TimeToX(10), "B02")
		_, result := session.Drop(context.Background())

		if result.Outcome != OutcomeReverted || !result.Verdict.Incompatible {
			t.Fatalf("outcome=%v verdict=%+v, want incompatibility revert", result.Outcome, result.Verdict)
		}
	})

	t.Run("compatibility lookup failure fails closed", func(t *testing.T) {
		t.Parallel()
		seg := schedule.Segment{ID: "s1", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", MoldCode: "M-601", ScheduledDate: "2026-01-05", StartHour: 8, EndHour: 10}
		env := testEnv(t, []schedule.Segment{seg})
		env.Compat = staticChecker{compatible: true, err: errors.New("mold service down")}
		session := NewSession(env)

		session = mustGrab(t, session, "s1", env.Mapper.TimeToX(8))
		session = mustMove(t, session, env.Mapper.TimeToX(10), "B02")
		_, result := session.Drop(context.Background())

		if result.Outcome != OutcomeReverted || !result.Verdict.Incompatible {
			t.Fatalf("outcome=%v verdict=%+v, want fail-closed revert", result.Outcome, result.Verdict)
		}
	})
}

func TestSession_HeadDragConservesFamilyDuration(t *testing.T) {
	t.Parallel()

	// Scenario: head [8,17) with a one-hour tail on the next day. Moving
	// the head start to 10:00 pins its end at 17:00 and grows the tail
	// from [8,9) to [8,11).
	segments := []schedule.Segment{
		{ID: "head", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 8, EndHour: 17, IsSplit: true, SplitPart: 1, TotalSplits: 2},
		{ID: "tail", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-06", StartHour: 8, EndHour: 9, IsSplit: true, SplitPart: 2, TotalSplits: 2},
	}
	env := testEnv(t, segments)
	before := familyDuration(env.Segments, env.Segments[0])

	session := NewSession(env)
	session = mustGrab(t, session, "head", env.Mapper.TimeToX(8))
	session = mustMove(t, session, env.Mapper.TimeToX(10), "A01")
	_, result := session.Drop(context.Background())

	if result.Outcome != OutcomeCommitted {
		t.Fatalf("outcome = %v, want committed", result.Outcome)
	}

	head, _ := findSegment(result.Segments, "head")
	tail, _ := findSegment(result.Segments, "tail")
	if head.StartHour != 10 || head.EndHour != 17 {
		t.Fatalf("head = [%v,%v), want [10,17)", head.StartHour, head.EndHour)
	}
	if tail.StartHour != 8 || tail.EndHour != 11 {
		t.Fatalf("tail = [%v,%v), want [8,11)", tail.StartHour, tail.EndHour)
	}

	after := familyDuration(result.Segments, head)
	if math.Abs(after-before) > 1e-9 {
		t.Fatalf("family duration %v != %v", after, before)
	}
	if !head.IsModified || !tail.IsModified {
		t.Fatalf("family members not stamped modified")
	}
}

func TestSession_TailDragTakesDeltaFromHead(t *testing.T) {
	t.Parallel()

	segments := []schedule.Segment{
		{ID: "head", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 8, EndHour: 17, IsSplit: true, SplitPart: 1, TotalSplits: 2},
		{ID: "tail", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-06", StartHour: 8, EndHour: 9, IsSplit: true, SplitPart: 2, TotalSplits: 2},
	}
	env := testEnv(t, segments)
	env.Date = "2026-01-06" // the tail's own day is in view
	before := familyDuration(env.Segments, env.Segments[0])

	session := NewSession(env)
	session = mustGrab(t, session, "tail", env.Mapper.TimeToX(8))
	session = mustMove(t, session, env.Mapper.TimeToX(10), "A01")
	_, result := session.Drop(context.Background())

	if result.Outcome != OutcomeCommitted {
		t.Fatalf("outcome = %v, want committed", result.Outcome)
	}

	head, _ := findSegment(result.Segments, "head")
	tail, _ := findSegment(result.Segments, "tail")
	// The tail's start stays pinned to the shift start; dragging it two
	// hours right grows it to [8,11) and the head gives up the two hours.
	if tail.StartHour != 8 || tail.EndHour != 11 {
		t.Fatalf("tail = [%v,%v), want [8,11)", tail.StartHour, tail.EndHour)
	}
	if head.StartHour != 10 || head.EndHour != 17 {
		t.Fatalf("head = [%v,%v), want [10,17)", head.StartHour, head.EndHour)
	}

	if after := familyDuration(result.Segments, head); math.Abs(after-before) > 1e-9 {
		t.Fatalf("family duration %v != %v", after, before)
	}
}

func TestSession_MiddleDragTranslatesWholeFamily(t *testing.T) {
	t.Parallel()

	segments := []schedule.Segment{
		{ID: "p1", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 8, EndHour: 10, IsSplit: true, SplitPart: 1, TotalSplits: 3},
		{ID: "p2", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 10, EndHour: 12, IsSplit: true, SplitPart: 2, TotalSplits: 3},
		{ID: "p3", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 12, EndHour: 14, IsSplit: true, SplitPart: 3, TotalSplits: 3},
	}
	env := testEnv(t, segments)

	session := NewSession(env)
	session = mustGrab(t, session, "p2", env.Mapper.TimeToX(10))
	session = mustMove(t, session, env.Mapper.TimeToX(11), "B02")
	_, result := session.Drop(context.Background())

	if result.Outcome != OutcomeCommitted {
		t.Fatalf("outcome = %v, want committed", result.Outcome)
	}

	wantStarts := map[string]float64{"p1": 9, "p2": 11, "p3": 13}
	for id, wantStart := range wantStarts {
		member, ok := findSegment(result.Segments, id)
		if !ok {
			t.Fatalf("member %s missing", id)
		}
		if member.StartHour != wantStart {
			t.Fatalf("%s start = %v, want %v", id, member.StartHour, wantStart)
		}
		if member.MachineID != "B02" {
			t.Fatalf("%s machine = %s, want B02 for the whole family", id, member.MachineID)
		}
	}
}

func TestSession_NonOverlapAfterCommit(t *testing.T) {
	t.Parallel()

	segments := []schedule.Segment{
		{ID: "s1", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 9, EndHour: 11},
		{ID: "s2", OrderID: "ORD-2", ProductID: "P2", MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 12, EndHour: 14},
	}
	env := testEnv(t, segments)

	session := NewSession(env)
	session = mustGrab(t, session, "s2", env.Mapper.TimeToX(12))
	session = mustMove(t, session, env.Mapper.TimeToX(14.5), "A01")
	_, result := session.Drop(context.Background())

	if result.Outcome != OutcomeCommitted {
		t.Fatalf("outcome = %v, want committed", result.Outcome)
	}
	for i, a := range result.Segments {
		for _, b := range result.Segments[i+1:] {
			if a.MachineID != b.MachineID || a.OrderKey() == b.OrderKey() {
				continue
			}
			if a.StartHour < b.EndHour && a.EndHour > b.StartHour {
				t.Fatalf("overlap after commit: %s and %s", a.ID, b.ID)
			}
		}
	}
}

func TestSession_EventOrderIsEnforced(t *testing.T) {
	t.Parallel()

	seg := schedule.Segment{ID: "s1", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 8, EndHour: 10}
	env := testEnv(t, []schedule.Segment{seg})
	session := NewSession(env)

	if _, err := session.Move(0, "A01"); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("Move while idle = %v, want ErrNotDragging", err)
	}
	if _, err := session.Grab("missing", 0); !errors.Is(err, ErrUnknownSegment) {
		t.Fatalf("Grab unknown = %v, want ErrUnknownSegment", err)
	}

	session = mustGrab(t, session, "s1", env.Mapper.TimeToX(8))
	if _, err := session.Grab("s1", 0); !errors.Is(err, ErrNotIdle) {
		t.Fatalf("double grab = %v, want ErrNotIdle", err)
	}

	if _, result := session.ConfirmSplit(); result.Outcome != OutcomeNone {
		t.Fatalf("confirm while dragging = %v, want none", result.Outcome)
	}

	released := session.Release()
	if released.State != StateIdle {
		t.Fatalf("release state = %v, want idle", released.State)
	}
}

func TestSession_NextDayRowsDoNotBlockDrop(t *testing.T) {
	t.Parallel()

	// A foreign order's split tail sits at [8,9) tomorrow on the same
	// machine. Its hours live in its own day frame, so dropping today's
	// segment onto [8,10) must commit.
	segments := []schedule.Segment{
		{ID: "a1", OrderID: "ORD-A", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 12, EndHour: 14},
		{ID: "b2", OrderID: "ORD-B", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-06", StartHour: 8, EndHour: 9, IsSplit: true, SplitPart: 2, TotalSplits: 2},
	}
	env := testEnv(t, segments)
	session := NewSession(env)

	session = mustGrab(t, session, "a1", env.Mapper.TimeToX(12))
	session = mustMove(t, session, env.Mapper.TimeToX(8), "A01")
	_, result := session.Drop(context.Background())

	if result.Outcome != OutcomeCommitted {
		t.Fatalf("outcome = %v (verdict %+v), want committed", result.Outcome, result.Verdict)
	}
	moved, _ := findSegment(result.Segments, "a1")
	if moved.StartHour != 8 || moved.EndHour != 10 {
		t.Fatalf("moved segment = [%v,%v), want [8,10)", moved.StartHour, moved.EndHour)
	}
}

func TestSession_HeadDragChecksGrownTailWindow(t *testing.T) {
	t.Parallel()

	// Moving the head start to 10:00 grows the tail from [8,9) to [8,11)
	// on the next day, where a foreign order occupies [10,12). The grown
	// window collides there, so the drop must revert.
	segments := []schedule.Segment{
		{ID: "head", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-05", StartHour: 8, EndHour: 17, IsSplit: true, SplitPart: 1, TotalSplits: 2},
		{ID: "tail", OrderID: "ORD-1", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-06", StartHour: 8, EndHour: 9, IsSplit: true, SplitPart: 2, TotalSplits: 2},
		{ID: "c1", OrderID: "ORD-2", ProductID: "P1", MachineID: "A01", ScheduledDate: "2026-01-06", StartHour: 10, EndHour: 12},
	}
	env := testEnv(t, segments)
	session := NewSession(env)

	session = mustGrab(t, session, "head", env.Mapper.TimeToX(8))
	session = mustMove(t, session, env.Mapper.TimeToX(10), "A01")
	session, result := session.Drop(context.Background())

	if result.Outcome != OutcomeReverted {
		t.Fatalf("outcome = %v, want reverted", result.Outcome)
	}
	if !result.Verdict.Order {
		t.Fatalf("verdict = %+v, want an order conflict", result.Verdict)
	}
	if session.State != StateIdle {
		t.Fatalf("state = %v, want idle", session.State)
	}
}
