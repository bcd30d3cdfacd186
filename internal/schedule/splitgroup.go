package schedule

import "sort"

// Regroup normalizes split metadata across the visible segment set. The
// upstream schedule source may report inconsistent split numbers when only
// part of a family is in view (a single-date query, for instance), which
// would break synchronized drags; recomputing from the visible members
// while trusting a larger remote total restores a consistent view.
//
// Within each order/product family, members are ordered by (StartHour, ID)
// and numbered by position unless they already carry a server-assigned
// part number. A server-reported TotalSplits larger than the visible count
// means other parts exist off-screen and is preserved. The returned slice
// is a copy sorted by (MachineID, ScheduledDate, StartHour, ID) for stable
// rendering; the input is not mutated.
//
// Regroup is idempotent: applying it to its own output changes nothing.
func Regroup(segments []Segment) []Segment {
	out := make([]Segment, len(segments))
	copy(out, segments)

	groups := make(map[string][]int)
	for i, segment := range out {
		key := segment.OrderKey()
		groups[key] = append(groups[key], i)
	}

	for _, indices := range groups {
		sort.SliceStable(indices, func(a, b int) bool {
			sa, sb := out[indices[a]], out[indices[b]]
			if sa.StartHour != sb.StartHour {
				return sa.StartHour < sb.StartHour
			}
			return sa.ID < sb.ID
		})

		physicalCount := len(indices)
		totalSplits := physicalCount
		if reported := out[indices[0]].TotalSplits; reported > physicalCount {
			totalSplits = reported
		}
		isSplit := totalSplits > 1

		for position, idx := range indices {
			member := &out[idx]
			member.TotalSplits = totalSplits
			member.IsSplit = isSplit
			if member.SplitPart == 0 {
				member.SplitPart = position + 1
			}
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].MachineID != out[b].MachineID {
			return out[a].MachineID < out[b].MachineID
		}
		if out[a].ScheduledDate != out[b].ScheduledDate {
			return out[a].ScheduledDate < out[b].ScheduledDate
		}
		if out[a].StartHour != out[b].StartHour {
			return out[a].StartHour < out[b].StartHour
		}
		return out[a].ID < out[b].ID
	})

	return out
}

// Family returns the members of the given segment's split family, ordered
// by part number, from the provided set.
func Family(segments []Segment, of Segment) []Segment {
	key := of.OrderKey()
	var members []Segment
	for _, segment := range segments {
		if segment.OrderKey() == key {
			members = append(members, segment)
		}
	}
	sort.SliceStable(members, func(a, b int) bool {
		if members[a].SplitPart != members[b].SplitPart {
			return members[a].SplitPart < members[b].SplitPart
		}
		return members[a].ID < members[b].ID
	})
	return members
}
