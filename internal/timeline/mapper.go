package timeline

import (
	"errors"
	"fmt"
	"math"
)

// The visible window runs from 08:00 of the selected day to 08:00 of the
// following day, expressed in fractional hours. Hours beyond 24 belong to
// the following calendar day.
const (
	WindowStart = 8.0
	WindowEnd   = 32.0
)

// DefaultBaseWidth is the horizontal extent of one hour at zoom 1.0, in
// viewport units. The rendering layer decides what a unit is (pixels,
// terminal cells); the mapper only does arithmetic on it.
const DefaultBaseWidth = 4.0

// ErrInvalidZoom indicates a zoom factor that is not strictly positive.
var ErrInvalidZoom = errors.New("timeline: zoom must be positive")

// ErrInvalidBaseWidth indicates a non-positive per-hour width.
var ErrInvalidBaseWidth = errors.New("timeline: base width must be positive")

// Mapper converts between wall-clock hours and horizontal viewport
// coordinates. A Mapper is immutable; derive a rescaled one with WithZoom.
type Mapper struct {
	baseWidth float64
	zoom      float64
}

// NewMapper constructs a mapper with the given per-hour width and zoom
// factor. Both must be strictly positive.
func NewMapper(baseWidth, zoom float64) (*Mapper, error) {
	if baseWidth <= 0 {
		return nil, ErrInvalidBaseWidth
	}
	if zoom <= 0 {
		return nil, ErrInvalidZoom
	}
	return &Mapper{baseWidth: baseWidth, zoom: zoom}, nil
}

// WithZoom returns a mapper identical to the receiver except for the zoom
// factor. Non-positive zoom values yield ErrInvalidZoom.
func (m *Mapper) WithZoom(zoom float64) (*Mapper, error) {
	return NewMapper(m.baseWidth, zoom)
}

// Zoom reports the current zoom factor.
func (m *Mapper) Zoom() float64 { return m.zoom }

// BaseWidth reports the per-hour width at zoom 1.0.
func (m *Mapper) BaseWidth() float64 { return m.baseWidth }

// TimeToX maps an hour value to a horizontal offset from the window origin.
func (m *Mapper) TimeToX(t float64) float64 {
	return (t - WindowStart) * m.baseWidth * m.zoom
}

// XToTime maps a horizontal offset back to an hour value. It is the exact
// inverse of TimeToX for any valid zoom.
func (m *Mapper) XToTime(x float64) float64 {
	return x/(m.baseWidth*m.zoom) + WindowStart
}

// DurationToWidth maps an hour duration to a horizontal extent.
func (m *Mapper) DurationToWidth(d float64) float64 {
	return d * m.baseWidth * m.zoom
}

// WidthToDuration maps a horizontal extent back to an hour duration.
func (m *Mapper) WidthToDuration(w float64) float64 {
	return w / (m.baseWidth * m.zoom)
}

// SnapInterval derives the grid granularity from the zoom factor. The
// steps are chosen so tick labels stay legible: one hour when zoomed out,
// thirty minutes at mid zoom, ten minutes when zoomed in.
func (m *Mapper) SnapInterval() float64 {
	switch {
	case m.zoom <= 1.5:
		return 1.0
	case m.zoom <= 3.0:
		return 0.5
	default:
		return 1.0 / 6.0
	}
}

// SnapToGrid rounds an hour value to the nearest grid step at the current
// granularity.
func (m *Mapper) SnapToGrid(t float64) float64 {
	interval := m.SnapInterval()
	return math.Round(t/interval) * interval
}

// ClampToWindow constrains a start hour so that a segment of the given
// duration stays inside the visible window.
func (m *Mapper) ClampToWindow(start, duration float64) float64 {
	if start < WindowStart {
		return WindowStart
	}
	if max := WindowEnd - duration; start > max {
		return max
	}
	return start
}

// FormatHour renders a fractional hour as HH:MM wall-clock text. Hours at
// or past 24 wrap onto the following day.
func FormatHour(t float64) string {
	minutes := int(math.Round(t * 60))
	h := (minutes / 60) % 24
	m := minutes % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// FormatDuration renders an hour count as a compact label, e.g. "2h" or
// "1h30m".
func FormatDuration(d float64) string {
	minutes := int(math.Round(d * 60))
	h := minutes / 60
	m := minutes % 60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, m)
	}
}
