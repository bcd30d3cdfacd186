package drag

import (
	"context"

	"github.com/example/production-board/internal/conflict"
	"github.com/example/production-board/internal/schedule"
)

// Outcome classifies how a gesture ended.
type Outcome int

const (
	// OutcomeNone means the event did not end the gesture.
	OutcomeNone Outcome = iota
	// OutcomeCommitted means the mutation was applied.
	OutcomeCommitted
	// OutcomeReverted means a hard conflict rejected the move.
	OutcomeReverted
	// OutcomeAwaiting means an off-work overlap needs the user's decision.
	OutcomeAwaiting
	// OutcomeCancelled means the user declined the split; nothing changed.
	OutcomeCancelled
)

// Result reports the end of a drop evaluation. Segments carries the full
// updated set when a mutation was applied, nil otherwise.
type Result struct {
	Outcome  Outcome
	Verdict  conflict.Verdict
	Segments []schedule.Segment
	Proposal *SplitProposal
}

// SplitProposal is the two-way split implied by a drop that crossed an
// off-work boundary, held while the user decides.
type SplitProposal struct {
	Source   schedule.Segment
	Boundary schedule.SplitBoundary
	Parts    []schedule.Segment
}

// Drop evaluates the gesture's final placement and applies the move policy
// for the grabbed segment's family role. Downtime, cross-order overlap,
// and equipment incompatibility reject the move outright; an off-work
// overlap on a plain segment parks the session awaiting the user's split
// decision.
func (s Session) Drop(ctx context.Context) (Session, Result) {
	if s.State != StateDragging {
		return s, Result{Outcome: OutcomeNone}
	}

	target := s.preview
	if target.MachineID == "" {
		target.MachineID = s.grabbed.MachineID
	}

	switch s.role {
	case schedule.RoleSplitHead:
		return s.dropHead(ctx, target)
	case schedule.RoleSplitTail:
		return s.dropTail(ctx, target)
	case schedule.RoleSplitMiddle:
		return s.dropMiddle(ctx, target)
	default:
		return s.dropPlain(ctx, target)
	}
}

// dropPlain handles segments outside any split family. The hard-conflict
// checks run against the window clamped to the next off-work boundary, so
// a move that will be shortened or split is not rejected for hours it will
// never occupy; the off-work check runs against the full window and, when
// it fires alone, routes to the confirmation branch instead of committing.
func (s Session) dropPlain(ctx context.Context, target Preview) (Session, Result) {
	date := s.grabbed.ScheduledDate
	if date == "" {
		date = s.env.Date
	}
	boundary := s.env.Calendar.BoundaryAfter(date, target.StartHour)

	clampedEnd := target.EndHour
	if clampedEnd > boundary {
		clampedEnd = boundary
	}
	clamped := conflict.Candidate{MachineID: target.MachineID, Date: date, StartHour: target.StartHour, EndHour: clampedEnd}
	full := conflict.Candidate{MachineID: target.MachineID, Date: date, StartHour: target.StartHour, EndHour: target.EndHour}

	verdict := conflict.Verdict{
		Downtime:     conflict.Downtime(s.env.Downtime, clamped),
		Order:        conflict.Order(s.env.Segments, clamped, s.grabbed),
		OffWork:      conflict.OffWork(s.env.Calendar.OffWorkOverlays(s.env.Date), full),
		Incompatible: !s.resolveCompatibility(ctx, target.MachineID),
	}

	if verdict.Hard() {
		return s.Release(), Result{Outcome: OutcomeReverted, Verdict: verdict}
	}

	if verdict.OffWork {
		nextDate, err := nextScheduleDate(date)
		if err != nil {
			return s.Release(), Result{Outcome: OutcomeReverted, Verdict: verdict}
		}
		moved := s.grabbed
		moved.MachineID = target.MachineID
		moved.StartHour = target.StartHour
		moved.EndHour = target.EndHour
		splitBoundary := schedule.SplitBoundary{
			Date:          date,
			StartHour:     boundary,
			NextDate:      nextDate,
			NextStartHour: s.env.Calendar.ShiftStartHour(nextDate),
		}
		proposal := &SplitProposal{
			Source:   moved,
			Boundary: splitBoundary,
			Parts:    schedule.Split(moved, splitBoundary, s.env.NewID),
		}
		s.State = StateAwaitingConfirmation
		s.proposal = proposal
		return s, Result{Outcome: OutcomeAwaiting, Verdict: verdict, Proposal: proposal}
	}

	updated := replaceSegment(s.env.Segments, s.grabbed.ID, func(segment schedule.Segment) schedule.Segment {
		segment.MachineID = target.MachineID
		segment.StartHour = target.StartHour
		segment.EndHour = target.EndHour
		segment.IsModified = true
		return segment
	})
	return s.commit(updated, verdict)
}

// dropHead moves the start of a split family's first part. The end stays
// pinned to the next off-work boundary, and the duration delta is taken
// from the family's tail so the family total is conserved.
func (s Session) dropHead(ctx context.Context, target Preview) (Session, Result) {
	head := s.grabbed
	tail := s.family[len(s.family)-1]
	date := head.ScheduledDate
	if date == "" {
		date = s.env.Date
	}

	newStart := target.StartHour
	pinnedEnd := s.env.Calendar.BoundaryAfter(date, newStart)
	newDuration := pinnedEnd - newStart
	if newDuration <= 0 {
		return s.Release(), Result{Outcome: OutcomeReverted}
	}

	delta := newDuration - head.Duration()
	newTailEnd := tail.EndHour - delta
	if tail.ID != head.ID && newTailEnd-tail.StartHour <= 0 {
		// The grown head would swallow the tail entirely.
		return s.Release(), Result{Outcome: OutcomeReverted}
	}

	candidate := conflict.Candidate{MachineID: target.MachineID, Date: date, StartHour: newStart, EndHour: pinnedEnd}
	verdict := conflict.Verdict{
		Downtime:     conflict.Downtime(s.env.Downtime, candidate),
		Order:        conflict.Order(s.env.Segments, candidate, head),
		Incompatible: !s.resolveCompatibility(ctx, target.MachineID),
	}
	if tail.ID != head.ID {
		// The grown tail occupies new hours on its own day; those must
		// pass the same checks as the dragged window.
		grownTail := conflict.Candidate{MachineID: target.MachineID, Date: tail.ScheduledDate, StartHour: tail.StartHour, EndHour: newTailEnd}
		verdict.Downtime = verdict.Downtime || conflict.Downtime(s.env.Downtime, grownTail)
		verdict.Order = verdict.Order || conflict.Order(s.env.Segments, grownTail, head)
	}
	if verdict.Hard() {
		return s.Release(), Result{Outcome: OutcomeReverted, Verdict: verdict}
	}

	updated := updateFamily(s.env.Segments, s.family, target.MachineID, func(segment schedule.Segment) schedule.Segment {
		switch segment.ID {
		case head.ID:
			segment.StartHour = newStart
			segment.EndHour = pinnedEnd
		case tail.ID:
			segment.EndHour = newTailEnd
		}
		return segment
	})
	return s.commit(updated, verdict)
}

// dropTail moves the end of a split family's last part. The start stays
// pinned to the day's shift start, the end is clamped to the day's
// off-work boundary, and the delta is taken from the family's head.
func (s Session) dropTail(ctx context.Context, target Preview) (Session, Result) {
	tail := s.grabbed
	head := s.family[0]
	date := tail.ScheduledDate
	if date == "" {
		date = s.env.Date
	}

	pinnedStart := s.env.Calendar.ShiftStartHour(date)
	newEnd := target.StartHour + tail.Duration()
	if boundary := s.env.Calendar.BoundaryAfter(date, pinnedStart); newEnd > boundary {
		newEnd = boundary
	}
	newDuration := newEnd - pinnedStart
	if newDuration <= 0 {
		return s.Release(), Result{Outcome: OutcomeReverted}
	}

	delta := newDuration - tail.Duration()
	newHeadStart := head.StartHour + delta
	if head.ID != tail.ID && head.EndHour-newHeadStart <= 0 {
		return s.Release(), Result{Outcome: OutcomeReverted}
	}

	candidate := conflict.Candidate{MachineID: target.MachineID, Date: date, StartHour: pinnedStart, EndHour: newEnd}
	verdict := conflict.Verdict{
		Downtime:     conflict.Downtime(s.env.Downtime, candidate),
		Order:        conflict.Order(s.env.Segments, candidate, tail),
		Incompatible: !s.resolveCompatibility(ctx, target.MachineID),
	}
	if head.ID != tail.ID {
		shrunkHead := conflict.Candidate{MachineID: target.MachineID, Date: head.ScheduledDate, StartHour: newHeadStart, EndHour: head.EndHour}
		verdict.Downtime = verdict.Downtime || conflict.Downtime(s.env.Downtime, shrunkHead)
		verdict.Order = verdict.Order || conflict.Order(s.env.Segments, shrunkHead, tail)
	}
	if verdict.Hard() {
		return s.Release(), Result{Outcome: OutcomeReverted, Verdict: verdict}
	}

	updated := updateFamily(s.env.Segments, s.family, target.MachineID, func(segment schedule.Segment) schedule.Segment {
		switch segment.ID {
		case tail.ID:
			segment.StartHour = pinnedStart
			segment.EndHour = newEnd
		case head.ID:
			segment.StartHour = newHeadStart
		}
		return segment
	})
	return s.commit(updated, verdict)
}

// dropMiddle translates the whole family by the dragged segment's time
// delta. Middle parts have no free edge of their own; the family moves as
// one block, machine reassignment included.
func (s Session) dropMiddle(ctx context.Context, target Preview) (Session, Result) {
	delta := target.StartHour - s.grabbed.StartHour

	candidate := conflict.Candidate{MachineID: target.MachineID, Date: s.grabbed.ScheduledDate, StartHour: target.StartHour, EndHour: target.EndHour}
	verdict := conflict.Verdict{
		Downtime:     conflict.Downtime(s.env.Downtime, candidate),
		Order:        conflict.Order(s.env.Segments, candidate, s.grabbed),
		Incompatible: !s.resolveCompatibility(ctx, target.MachineID),
	}
	// Every other family member translates too; each window is checked in
	// its own day frame.
	for _, member := range s.family {
		if member.ID == s.grabbed.ID {
			continue
		}
		moved := conflict.Candidate{MachineID: target.MachineID, Date: member.ScheduledDate, StartHour: member.StartHour + delta, EndHour: member.EndHour + delta}
		verdict.Downtime = verdict.Downtime || conflict.Downtime(s.env.Downtime, moved)
		verdict.Order = verdict.Order || conflict.Order(s.env.Segments, moved, s.grabbed)
	}
	if verdict.Hard() {
		return s.Release(), Result{Outcome: OutcomeReverted, Verdict: verdict}
	}

	updated := updateFamily(s.env.Segments, s.family, target.MachineID, func(segment schedule.Segment) schedule.Segment {
		segment.StartHour += delta
		segment.EndHour += delta
		return segment
	})
	return s.commit(updated, verdict)
}

// ConfirmSplit applies the pending cross-day split: the dragged physical
// row is replaced by the non-empty parts and the set is renormalized.
func (s Session) ConfirmSplit() (Session, Result) {
	if s.State != StateAwaitingConfirmation || s.proposal == nil {
		return s, Result{Outcome: OutcomeNone}
	}

	proposal := s.proposal
	var updated []schedule.Segment
	for _, segment := range s.env.Segments {
		if segment.ID == s.grabbed.ID {
			continue
		}
		updated = append(updated, segment)
	}
	updated = append(updated, proposal.Parts...)
	return s.commit(updated, conflict.Verdict{OffWork: true})
}

// CancelSplit discards the pending proposal and leaves the schedule
// unchanged. Declining is a normal path, not a failure.
func (s Session) CancelSplit() (Session, Result) {
	if s.State != StateAwaitingConfirmation {
		return s, Result{Outcome: OutcomeNone}
	}
	return s.Release(), Result{Outcome: OutcomeCancelled}
}

func (s Session) commit(updated []schedule.Segment, verdict conflict.Verdict) (Session, Result) {
	normalized := schedule.Regroup(updated)
	s = s.Release()
	s.env.Segments = normalized
	return s, Result{Outcome: OutcomeCommitted, Verdict: verdict, Segments: normalized}
}

// updateFamily applies fn to every family member and stamps the whole
// family with the target machine and the modified flag. Split families
// always travel to one machine together.
func updateFamily(segments []schedule.Segment, family []schedule.Segment, machineID string, fn func(schedule.Segment) schedule.Segment) []schedule.Segment {
	members := make(map[string]struct{}, len(family))
	for _, member := range family {
		members[member.ID] = struct{}{}
	}

	out := make([]schedule.Segment, len(segments))
	for i, segment := range segments {
		if _, ok := members[segment.ID]; ok {
			segment = fn(segment)
			segment.MachineID = machineID
			segment.IsModified = true
		}
		out[i] = segment
	}
	return out
}

func replaceSegment(segments []schedule.Segment, id string, fn func(schedule.Segment) schedule.Segment) []schedule.Segment {
	out := make([]schedule.Segment, len(segments))
	for i, segment := range segments {
		if segment.ID == id {
			segment = fn(segment)
		}
		out[i] = segment
	}
	return out
}
