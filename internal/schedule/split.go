package schedule

// SplitBoundary describes the off-work gap a segment is split across: work
// stops at StartHour on Date and resumes at NextStartHour on NextDate.
type SplitBoundary struct {
	Date          string
	StartHour     float64
	NextDate      string
	NextStartHour float64
}

// Split divides a segment at an off-work boundary into at most two parts,
// preserving the total duration. The first part keeps the segment's date
// and is truncated at the boundary; the second carries the remainder onto
// the receiving day, pinned to that day's shift start. A part whose
// duration would not be positive is omitted.
//
// Both parts receive fresh ids from nextID, reference each other through
// LinkedID, and carry the source's persisted row id as OriginalID so any
// chain of edits resolves back to the one physical row to supersede.
func Split(source Segment, boundary SplitBoundary, nextID func() string) []Segment {
	firstDuration := boundary.StartHour - source.StartHour
	if firstDuration < 0 {
		firstDuration = 0
	}
	if firstDuration > source.Duration() {
		firstDuration = source.Duration()
	}
	secondDuration := source.Duration() - firstDuration

	originalID := source.PersistedID()

	var parts []Segment
	if firstDuration > 0 {
		first := source
		first.ID = nextID()
		first.ScheduledDate = boundary.Date
		first.EndHour = source.StartHour + firstDuration
		first.IsSplit = true
		first.SplitPart = 1
		first.TotalSplits = 2
		first.OriginalID = originalID
		first.IsModified = true
		parts = append(parts, first)
	}
	if secondDuration > 0 {
		second := source
		second.ID = nextID()
		second.ScheduledDate = boundary.NextDate
		second.StartHour = boundary.NextStartHour
		second.EndHour = boundary.NextStartHour + secondDuration
		second.IsSplit = true
		second.SplitPart = 2
		second.TotalSplits = 2
		second.OriginalID = originalID
		second.IsModified = true
		parts = append(parts, second)
	}

	switch len(parts) {
	case 2:
		parts[0].LinkedID = parts[1].ID
		parts[1].LinkedID = parts[0].ID
	case 1:
		// A degenerate split keeps the segment whole; it is not a split
		// family of one.
		parts[0].IsSplit = false
		parts[0].SplitPart = 1
		parts[0].TotalSplits = 1
		parts[0].LinkedID = ""
	}
	return parts
}
