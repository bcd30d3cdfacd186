package timeline

import "math"

// TickKind distinguishes labelled grid lines from unlabelled ones.
type TickKind int

const (
	// TickMinor is a grid line at sub-hour granularity without a label.
	TickMinor TickKind = iota
	// TickMajor is a grid line on a whole hour, rendered with a label.
	TickMajor
)

// Tick is one grid line of the timeline ruler.
type Tick struct {
	Hour  float64
	X     float64
	Kind  TickKind
	Label string
}

// Ticks materializes the full ruler for the visible window at the current
// snap granularity. The slice is regenerated whenever the zoom changes;
// callers may retain it until then.
func (m *Mapper) Ticks() []Tick {
	interval := m.SnapInterval()
	count := int(math.Round((WindowEnd-WindowStart)/interval)) + 1
	ticks := make([]Tick, 0, count)

	for i := 0; i < count; i++ {
		hour := WindowStart + float64(i)*interval
		tick := Tick{Hour: hour, X: m.TimeToX(hour), Kind: TickMinor}
		if isWholeHour(hour) {
			tick.Kind = TickMajor
			tick.Label = FormatHour(hour)
		}
		ticks = append(ticks, tick)
	}
	return ticks
}

func isWholeHour(hour float64) bool {
	return math.Abs(hour-math.Round(hour)) < 1e-9
}
