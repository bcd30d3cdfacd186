package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/example/production-board/internal/drag"
	"github.com/example/production-board/internal/schedule"
	"github.com/example/production-board/internal/timeline"
)

// cell is one styled character of a rendered row. Rows are painted onto a
// cell canvas back to front, then compressed into styled runs.
type cell struct {
	ch    rune
	style lipgloss.Style
}

// View renders the board.
func (m Model) View() string {
	if !m.ready {
		return "loading terminal..."
	}
	if m.loading {
		return m.styles.StatusBar.Render(fmt.Sprintf("loading %s...", m.date))
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(m.renderRuler())
	b.WriteByte('\n')

	for i, machine := range m.snapshot.Machines {
		b.WriteString(m.renderMachineRow(i, machine))
		b.WriteByte('\n')
	}

	if m.session.State == drag.StateDragging {
		b.WriteString(m.renderTooltip())
		b.WriteByte('\n')
	}
	if m.session.State == drag.StateAwaitingConfirmation {
		b.WriteString(m.renderSplitDialog())
		b.WriteByte('\n')
	}

	b.WriteString(m.renderStatusBar())
	b.WriteByte('\n')
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	title := fmt.Sprintf("Production Board  %s  zoom %.1fx  snap %s",
		m.date, m.zoom, timeline.FormatDuration(m.mapper.SnapInterval()))
	return m.styles.Header.Render(title)
}

// renderRuler draws hour labels at major ticks and dots at minor ones,
// offset past the machine-label gutter.
func (m Model) renderRuler() string {
	canvas := m.blankRow(' ')
	nextFree := 0
	for _, tick := range m.mapper.Ticks() {
		x := labelWidth + int(tick.X)
		if x >= len(canvas) {
			break
		}
		if tick.Kind == timeline.TickMinor {
			canvas[x].ch = '.'
			continue
		}
		// Labels are wider than the tick spacing at low zoom; drop the
		// ones that would collide and leave a bare mark instead.
		if x < nextFree {
			canvas[x].ch = '\''
			continue
		}
		for i, r := range tick.Label {
			if x+i >= len(canvas) {
				break
			}
			canvas[x+i].ch = r
		}
		nextFree = x + len(tick.Label) + 1
	}
	for i := range canvas {
		canvas[i].style = m.styles.Ruler
	}
	return renderCells(canvas)
}

func (m Model) renderMachineRow(index int, machine schedule.Machine) string {
	rowStyle := m.styles.RowEven
	if index%2 == 1 {
		rowStyle = m.styles.RowOdd
	}

	canvas := m.blankRow(' ')
	for i := range canvas {
		canvas[i].style = rowStyle
	}

	if m.snapshot.Calendar != nil {
		for _, overlay := range m.snapshot.Calendar.OffWorkOverlays(m.date) {
			m.paintSpan(canvas, overlay.StartHour, overlay.EndHour, '/', m.styles.OffWork)
		}
	}
	for _, slot := range m.snapshot.Downtime {
		if slot.MachineID != machine.ID {
			continue
		}
		m.paintSpan(canvas, slot.StartHour, slot.EndHour, 'x', m.styles.Downtime)
	}
	for _, segment := range m.snapshot.Segments {
		if segment.MachineID != machine.ID || segment.ScheduledDate != m.date {
			continue
		}
		m.paintSegment(canvas, segment)
	}

	if m.session.State == drag.StateDragging {
		preview := m.session.Preview()
		if preview.MachineID == machine.ID {
			style := m.styles.Ghost
			if preview.OffWork || preview.Incompatible {
				style = m.styles.GhostBlocked
			}
			m.paintSpan(canvas, preview.StartHour, preview.EndHour, '░', style)
		}
	}

	label := machine.ID
	if len(label) > labelWidth-1 {
		label = label[:labelWidth-1]
	}
	for i, r := range label {
		canvas[i] = cell{ch: r, style: m.styles.MachineLabel}
	}
	return renderCells(canvas)
}

func (m Model) paintSegment(canvas []cell, segment schedule.Segment) {
	style := m.styles.Segment
	switch {
	case segment.IsModified:
		style = m.styles.SegmentModified
	case segment.IsSplit:
		style = m.styles.SegmentSplit
	}
	m.paintSpan(canvas, segment.StartHour, segment.EndHour, '█', style)

	// Overlay the order id on the block when it fits.
	start := labelWidth + int(m.mapper.TimeToX(segment.StartHour))
	end := labelWidth + int(m.mapper.TimeToX(segment.EndHour))
	label := segment.OrderID
	if segment.IsSplit {
		label = fmt.Sprintf("%s %d/%d", segment.OrderID, segment.SplitPart, segment.TotalSplits)
	}
	if end-start < len(label)+2 {
		return
	}
	for i, r := range label {
		x := start + 1 + i
		if x < 0 || x >= len(canvas) {
			break
		}
		canvas[x].ch = r
	}
}

func (m Model) paintSpan(canvas []cell, startHour, endHour float64, ch rune, style lipgloss.Style) {
	start := labelWidth + int(m.mapper.TimeToX(startHour))
	end := labelWidth + int(m.mapper.TimeToX(endHour))
	for x := start; x < end; x++ {
		if x < labelWidth || x >= len(canvas) {
			continue
		}
		canvas[x] = cell{ch: ch, style: style}
	}
}

func (m Model) renderTooltip() string {
	preview := m.session.Preview()
	text := fmt.Sprintf("%s %s - %s (%s)",
		m.session.Grabbed().OrderID,
		preview.Tooltip.Start, preview.Tooltip.End, preview.Tooltip.Duration)
	var warnings []string
	if preview.OffWork {
		warnings = append(warnings, "crosses off-work hours")
	}
	if preview.Incompatible {
		warnings = append(warnings, "mold incompatible")
	}
	if len(warnings) > 0 {
		text += "  ! " + strings.Join(warnings, ", ")
	}
	return m.styles.Tooltip.Render(text)
}

func (m Model) renderSplitDialog() string {
	proposal := m.session.Proposal()
	if proposal == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s runs past the end of the shift.\n", proposal.Source.OrderID)
	b.WriteString("Split across days?\n")
	for _, part := range proposal.Parts {
		fmt.Fprintf(&b, "  part %d/%d  %s  %s - %s\n",
			part.SplitPart, part.TotalSplits, part.ScheduledDate,
			timeline.FormatHour(part.StartHour), timeline.FormatHour(part.EndHour))
	}
	b.WriteString("[y] split  [n] cancel")
	return m.styles.Dialog.Render(b.String())
}

func (m Model) renderStatusBar() string {
	if m.statusErr {
		return m.styles.StatusErr.Render(m.status)
	}
	return m.styles.StatusBar.Render(m.status)
}

func (m Model) renderHelp() string {
	return m.styles.Help.Render("h/l day  +/- zoom  r reload  drag to move  q quit")
}

// blankRow allocates one row of the canvas, wide enough for the full
// timeline or the terminal, whichever is narrower.
func (m Model) blankRow(ch rune) []cell {
	width := labelWidth + int(m.mapper.TimeToX(timeline.WindowEnd))
	if m.width > 0 && m.width < width {
		width = m.width
	}
	cells := make([]cell, width)
	for i := range cells {
		cells[i].ch = ch
	}
	return cells
}

// renderCells compresses a cell row into styled runs.
func renderCells(cells []cell) string {
	var b strings.Builder
	start := 0
	for i := 1; i <= len(cells); i++ {
		if i < len(cells) && sameStyle(cells[i].style, cells[start].style) {
			continue
		}
		var run strings.Builder
		for _, c := range cells[start:i] {
			run.WriteRune(c.ch)
		}
		b.WriteString(cells[start].style.Render(run.String()))
		start = i
	}
	return b.String()
}

func sameStyle(a, b lipgloss.Style) bool {
	return a.Render(" ") == b.Render(" ")
}
