package board

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles the board renders with.
type Styles struct {
	Header       lipgloss.Style
	Ruler        lipgloss.Style
	MachineLabel lipgloss.Style
	RowEven      lipgloss.Style
	RowOdd       lipgloss.Style

	Segment         lipgloss.Style
	SegmentModified lipgloss.Style
	SegmentSplit    lipgloss.Style
	Ghost           lipgloss.Style
	GhostBlocked    lipgloss.Style

	OffWork  lipgloss.Style
	Downtime lipgloss.Style

	Tooltip   lipgloss.Style
	Dialog    lipgloss.Style
	StatusBar lipgloss.Style
	StatusErr lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles is the built-in dark-terminal palette.
func DefaultStyles() Styles {
	return Styles{
		Header:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Ruler:        lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		MachineLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true),
		RowEven:      lipgloss.NewStyle(),
		RowOdd:       lipgloss.NewStyle().Background(lipgloss.Color("235")),

		Segment:         lipgloss.NewStyle().Background(lipgloss.Color("24")).Foreground(lipgloss.Color("15")),
		SegmentModified: lipgloss.NewStyle().Background(lipgloss.Color("130")).Foreground(lipgloss.Color("15")),
		SegmentSplit:    lipgloss.NewStyle().Background(lipgloss.Color("60")).Foreground(lipgloss.Color("15")),
		Ghost:           lipgloss.NewStyle().Background(lipgloss.Color("28")).Foreground(lipgloss.Color("15")),
		GhostBlocked:    lipgloss.NewStyle().Background(lipgloss.Color("124")).Foreground(lipgloss.Color("15")),

		OffWork:  lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("240")),
		Downtime: lipgloss.NewStyle().Background(lipgloss.Color("94")).Foreground(lipgloss.Color("15")),

		Tooltip:   lipgloss.NewStyle().Background(lipgloss.Color("238")).Foreground(lipgloss.Color("15")).Padding(0, 1),
		Dialog:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2),
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		StatusErr: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
