// Package drag owns the pointer-to-schedule state machine. A Session is a
// value; every event produces the next session value bubbletea-style, so
// transitions stay pure and replayable. Only Drop touches the outside
// world, through the authoritative compatibility lookup.
package drag

import (
	"context"
	"errors"

	"github.com/example/production-board/internal/calendar"
	"github.com/example/production-board/internal/compat"
	"github.com/example/production-board/internal/conflict"
	"github.com/example/production-board/internal/schedule"
	"github.com/example/production-board/internal/timeline"
)

// State enumerates the gesture lifecycle.
type State int

const (
	// StateIdle means no gesture is active.
	StateIdle State = iota
	// StateDragging means a segment follows the pointer.
	StateDragging
	// StateAwaitingConfirmation means the drop crossed an off-work
	// boundary and the implied split is waiting for the user's verdict.
	StateAwaitingConfirmation
)

var (
	// ErrNotIdle is returned when a grab arrives while a gesture is active.
	ErrNotIdle = errors.New("drag: session is not idle")
	// ErrNotDragging is returned for pointer events outside a gesture.
	ErrNotDragging = errors.New("drag: no active gesture")
	// ErrUnknownSegment is returned when the grabbed id is not in the set.
	ErrUnknownSegment = errors.New("drag: unknown segment")
	// ErrNotAwaiting is returned for a split decision with no pending split.
	ErrNotAwaiting = errors.New("drag: no split awaiting confirmation")
)

// Env is the immutable world one gesture runs against: the coordinate
// mapper, the calendar, the visible normalized segment set, downtime, and
// the compatibility collaborator. Compat may be nil when no mold data is
// available; everything is then treated as compatible.
type Env struct {
	Mapper   *timeline.Mapper
	Calendar *calendar.Resolver
	Date     string
	Segments []schedule.Segment
	Downtime []schedule.DowntimeSlot
	Compat   compat.Checker
	NewID    func() string
}

// Tooltip is the formatted payload shown next to the ghost segment.
type Tooltip struct {
	Start    string
	End      string
	Duration string
}

// Preview is the live placement republished on every pointer move.
type Preview struct {
	StartHour    float64
	EndHour      float64
	MachineID    string
	SnapX        float64
	OffWork      bool
	Incompatible bool
	Tooltip      Tooltip
}

// Session is the drag gesture state machine.
type Session struct {
	State State

	env        Env
	grabbed    schedule.Segment
	role       schedule.Role
	family     []schedule.Segment
	grabOffset float64
	preview    Preview
	proposal   *SplitProposal
}

// NewSession returns an idle session over the given environment.
func NewSession(env Env) Session {
	return Session{State: StateIdle, env: env}
}

// Preview returns the current live placement. Meaningful only while a
// gesture is active.
func (s Session) Preview() Preview { return s.preview }

// Grabbed returns the segment the gesture started on.
func (s Session) Grabbed() schedule.Segment { return s.grabbed }

// Proposal returns the pending cross-day split, if the session is awaiting
// confirmation.
func (s Session) Proposal() *SplitProposal { return s.proposal }

// Grab starts a gesture on the segment with the given id, capturing the
// pointer's offset inside the segment so the ghost does not jump to the
// cursor. The family role is decided here, once, and drives the commit
// policy at drop time.
func (s Session) Grab(segmentID string, pointerX float64) (Session, error) {
	if s.State != StateIdle {
		return s, ErrNotIdle
	}

	grabbed, ok := findSegment(s.env.Segments, segmentID)
	if !ok {
		return s, ErrUnknownSegment
	}

	s.State = StateDragging
	s.grabbed = grabbed
	s.role = grabbed.Role()
	s.family = schedule.Family(s.env.Segments, grabbed)
	s.grabOffset = s.env.Mapper.XToTime(pointerX) - grabbed.StartHour
	s.preview = s.buildPreview(grabbed.StartHour, grabbed.MachineID)
	s.proposal = nil
	return s, nil
}

// Move recomputes the live preview from the pointer position: raw time,
// snap, window clamp, target machine from the pointer's row. It runs
// synchronously per input event; the advisory compatibility peek never
// blocks it.
func (s Session) Move(pointerX float64, machineID string) (Session, error) {
	if s.State != StateDragging {
		return s, ErrNotDragging
	}
	if machineID == "" {
		machineID = s.preview.MachineID
	}

	raw := s.env.Mapper.XToTime(pointerX) - s.grabOffset
	snapped := s.env.Mapper.SnapToGrid(raw)
	start := s.env.Mapper.ClampToWindow(snapped, s.grabbed.Duration())

	s.preview = s.buildPreview(start, machineID)
	return s, nil
}

// Release abandons the gesture without evaluating anything, e.g. when the
// terminal loses focus mid-drag.
func (s Session) Release() Session {
	s.State = StateIdle
	s.proposal = nil
	return s
}

func (s Session) buildPreview(start float64, machineID string) Preview {
	duration := s.grabbed.Duration()
	end := start + duration

	overlays := s.env.Calendar.OffWorkOverlays(s.env.Date)
	candidate := conflict.Candidate{MachineID: machineID, StartHour: start, EndHour: end}

	incompatible := false
	if s.grabbed.MoldCode != "" && s.env.Compat != nil {
		// Advisory: unknown answers count as compatible so the ghost keeps
		// tracking the pointer while the lookup is in flight.
		if compatible, known := s.env.Compat.Peek(s.grabbed.MoldCode, machineID); known && !compatible {
			incompatible = true
		}
	}

	return Preview{
		StartHour:    start,
		EndHour:      end,
		MachineID:    machineID,
		SnapX:        s.env.Mapper.TimeToX(start),
		OffWork:      conflict.OffWork(overlays, candidate),
		Incompatible: incompatible,
		Tooltip: Tooltip{
			Start:    timeline.FormatHour(start),
			End:      timeline.FormatHour(end),
			Duration: timeline.FormatDuration(duration),
		},
	}
}

// resolveCompatibility is the authoritative commit-time check: a lookup
// failure rejects the move rather than letting an invalid placement
// through.
func (s Session) resolveCompatibility(ctx context.Context, machineID string) bool {
	if s.grabbed.MoldCode == "" || s.env.Compat == nil {
		return true
	}
	compatible, err := s.env.Compat.Resolve(ctx, s.grabbed.MoldCode, machineID)
	if err != nil {
		return false
	}
	return compatible
}

func nextScheduleDate(date string) (string, error) {
	return calendar.NextDate(date)
}

func findSegment(segments []schedule.Segment, id string) (schedule.Segment, bool) {
	for _, segment := range segments {
		if segment.ID == id {
			return segment, true
		}
	}
	return schedule.Segment{}, false
}
