package schedule

// Segment is one physical scheduled time-block assigned to one machine.
// Hours are fractional, on the 8-32 window of the segment's ScheduledDate;
// values past 24 fall on the following calendar day.
type Segment struct {
	ID            string
	OrderID       string
	ProductID     string
	MachineID     string
	MoldCode      string
	ScheduledDate string
	StartHour     float64
	EndHour       float64

	// Split metadata. A split family is the ordered set of segments
	// carrying the same order/product pairing; SplitPart numbers members
	// from 1 to TotalSplits.
	IsSplit     bool
	SplitPart   int
	TotalSplits int

	// LinkedID points at the sibling produced by a cross-day split.
	// OriginalID names the persisted row this segment supersedes; ids with
	// the "split-" prefix have not been persisted yet.
	LinkedID   string
	OriginalID string

	IsModified bool
}

// OrderKey identifies the logical work item a segment belongs to. Two
// segments with equal keys are parts of one order and never conflict with
// each other.
func (s Segment) OrderKey() string {
	return s.OrderID + "/" + s.ProductID
}

// Duration returns the segment's extent in hours.
func (s Segment) Duration() float64 {
	return s.EndHour - s.StartHour
}

// PersistedID resolves the physical row a chain of edits started from: the
// OriginalID when set, otherwise the segment's own id.
func (s Segment) PersistedID() string {
	if s.OriginalID != "" {
		return s.OriginalID
	}
	return s.ID
}

// Role classifies a segment's position within its split family. The role
// decides which move policy a drag commit applies.
type Role int

const (
	// RolePlain is a segment outside any split family.
	RolePlain Role = iota
	// RoleSplitHead is the first part of a split family.
	RoleSplitHead
	// RoleSplitMiddle is an interior part of a split family.
	RoleSplitMiddle
	// RoleSplitTail is the last part of a split family.
	RoleSplitTail
)

// Role derives the family role from the split metadata. Call it after the
// split-group resolver has normalized the metadata.
func (s Segment) Role() Role {
	if !s.IsSplit || s.TotalSplits <= 1 {
		return RolePlain
	}
	switch s.SplitPart {
	case 1:
		return RoleSplitHead
	case s.TotalSplits:
		return RoleSplitTail
	default:
		return RoleSplitMiddle
	}
}

func (r Role) String() string {
	switch r {
	case RolePlain:
		return "plain"
	case RoleSplitHead:
		return "split-head"
	case RoleSplitMiddle:
		return "split-middle"
	case RoleSplitTail:
		return "split-tail"
	default:
		return "unknown"
	}
}

// Machine is one schedulable resource. The active set is supplied
// externally and immutable for the session.
type Machine struct {
	ID   string
	Area string
}

// DowntimeSlot is an unavailable interval on one machine for the visible
// day. Read-only to the board core.
type DowntimeSlot struct {
	MachineID     string
	ScheduledDate string
	StartHour     float64
	EndHour       float64
}

// Modified filters segments down to those stamped by a committed drag,
// which is exactly the set the persistence collaborator consumes.
func Modified(segments []Segment) []Segment {
	var out []Segment
	for _, segment := range segments {
		if segment.IsModified {
			out = append(out, segment)
		}
	}
	return out
}
