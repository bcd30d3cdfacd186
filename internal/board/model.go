// Package board is the interactive scheduling board TUI. It renders one day
// of machine rows on the 08:00-08:00 timeline and turns mouse gestures into
// drag sessions, persisting committed moves through the board service.
package board

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"

	"github.com/example/production-board/internal/application"
	"github.com/example/production-board/internal/calendar"
	"github.com/example/production-board/internal/compat"
	"github.com/example/production-board/internal/conflict"
	"github.com/example/production-board/internal/drag"
	"github.com/example/production-board/internal/schedule"
	"github.com/example/production-board/internal/timeline"
)

// Board geometry. Machine labels occupy a fixed gutter on the left; the
// header and tick ruler take the top two rows.
const (
	labelWidth = 10
	headerRows = 2
)

// zoomLevels are the zoom stops + and - cycle through. The snap step
// coarsens as the view zooms out.
var zoomLevels = []float64{0.5, 1.0, 1.5, 2.0, 3.0, 4.0}

type boardLoadedMsg struct {
	snapshot application.BoardSnapshot
	checker  compat.Checker
	err      error
}

type dropResultMsg struct {
	session drag.Session
	result  drag.Result
}

type savedMsg struct {
	segments []schedule.Segment
	err      error
}

// Model is the bubbletea model for the scheduling board.
type Model struct {
	service *application.BoardService
	remote  compat.Checker

	keys   KeyMap
	styles Styles

	date   string
	zoom   float64
	mapper *timeline.Mapper

	snapshot application.BoardSnapshot
	checker  compat.Checker
	session  drag.Session
	// baseline is the persisted segment state the next save diffs against.
	baseline []schedule.Segment

	width    int
	height   int
	ready    bool
	loading  bool
	dropping bool

	status    string
	statusErr bool
}

// New constructs a board model for the given date. The remote checker is
// optional; when nil, a compatibility matrix is built from persistence on
// every load.
func New(service *application.BoardService, remote compat.Checker, date string, baseWidth, zoom float64) (Model, error) {
	mapper, err := timeline.NewMapper(baseWidth, zoom)
	if err != nil {
		return Model{}, err
	}
	return Model{
		service: service,
		remote:  remote,
		keys:    DefaultKeyMap,
		styles:  DefaultStyles(),
		date:    date,
		zoom:    zoom,
		mapper:  mapper,
		loading: true,
	}, nil
}

// Init loads the initial board snapshot.
func (m Model) Init() tea.Cmd {
	return m.loadBoard()
}

func (m Model) loadBoard() tea.Cmd {
	service, remote, date := m.service, m.remote, m.date
	return func() tea.Msg {
		ctx := context.Background()
		snapshot, err := service.LoadBoard(ctx, date)
		if err != nil {
			return boardLoadedMsg{err: err}
		}

		checker := remote
		if checker == nil {
			matrix, err := service.CompatibilityMatrix(ctx, snapshot.Segments)
			if err != nil {
				return boardLoadedMsg{err: err}
			}
			checker = matrix
		}
		return boardLoadedMsg{snapshot: snapshot, checker: checker}
	}
}

func (m Model) saveBoard(before, after []schedule.Segment) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		if err := service.SaveBoard(context.Background(), before, after); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{segments: after}
	}
}

// Update handles bubbletea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch message := msg.(type) {
	case boardLoadedMsg:
		m.loading = false
		if message.err != nil {
			m.setStatus(fmt.Sprintf("load failed: %v", message.err), true)
			return m, nil
		}
		m.snapshot = message.snapshot
		m.checker = message.checker
		m.baseline = message.snapshot.Segments
		m.session = drag.NewSession(m.dragEnv())
		m.setStatus(fmt.Sprintf("%s loaded", m.date), false)
		return m, nil

	case dropResultMsg:
		m.dropping = false
		m.session = message.session
		return m.applyDragResult(message.result)

	case savedMsg:
		if message.err != nil {
			m.setStatus(fmt.Sprintf("save failed: %v", message.err), true)
			// The in-memory board may no longer match persistence.
			m.loading = true
			return m, m.loadBoard()
		}
		m.baseline = message.segments
		m.setStatus("saved", false)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(message)

	case tea.MouseMsg:
		return m.handleMouse(message)

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending split confirmation captures y/n before anything else.
	if m.session.State == drag.StateAwaitingConfirmation {
		switch {
		case key.Matches(message, m.keys.Confirm):
			session, result := m.session.ConfirmSplit()
			m.session = session
			return m.applyDragResult(result)
		case key.Matches(message, m.keys.Cancel):
			session, result := m.session.CancelSplit()
			m.session = session
			return m.applyDragResult(result)
		}
		return m, nil
	}

	switch {
	case key.Matches(message, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(message, m.keys.Reload):
		m.loading = true
		return m, m.loadBoard()

	case key.Matches(message, m.keys.PrevDay):
		if date, err := calendar.PrevDate(m.date); err == nil {
			m.date = date
			m.loading = true
			return m, m.loadBoard()
		}

	case key.Matches(message, m.keys.NextDay):
		if date, err := calendar.NextDate(m.date); err == nil {
			m.date = date
			m.loading = true
			return m, m.loadBoard()
		}

	case key.Matches(message, m.keys.ZoomIn):
		return m.setZoom(nextZoomLevel(m.zoom, 1)), nil

	case key.Matches(message, m.keys.ZoomOut):
		return m.setZoom(nextZoomLevel(m.zoom, -1)), nil
	}
	return m, nil
}

func (m Model) handleMouse(message tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.loading || m.dropping {
		return m, nil
	}

	pointerX := float64(message.X - labelWidth)

	switch {
	case message.Button == tea.MouseButtonLeft && message.Action == tea.MouseActionPress:
		if m.session.State != drag.StateIdle {
			return m, nil
		}
		machineID, ok := m.machineAt(message.Y)
		if !ok || message.X < labelWidth {
			return m, nil
		}
		segment, ok := m.segmentAt(machineID, m.mapper.XToTime(pointerX))
		if !ok {
			return m, nil
		}
		session, err := m.session.Grab(segment.ID, pointerX)
		if err != nil {
			return m, nil
		}
		m.session = session
		m.setStatus(fmt.Sprintf("dragging %s", segment.OrderID), false)
		return m, nil

	case message.Action == tea.MouseActionMotion:
		if m.session.State != drag.StateDragging {
			return m, nil
		}
		machineID, _ := m.machineAt(message.Y)
		session, err := m.session.Move(pointerX, machineID)
		if err != nil {
			return m, nil
		}
		m.session = session
		return m, nil

	case message.Action == tea.MouseActionRelease:
		if m.session.State != drag.StateDragging {
			return m, nil
		}
		m.dropping = true
		session := m.session
		return m, func() tea.Msg {
			next, result := session.Drop(context.Background())
			return dropResultMsg{session: next, result: result}
		}
	}
	return m, nil
}

// applyDragResult folds a drop, confirm or cancel outcome back into the
// board: commits update the segment set and persist, everything else just
// reports.
func (m Model) applyDragResult(result drag.Result) (tea.Model, tea.Cmd) {
	switch result.Outcome {
	case drag.OutcomeCommitted:
		before := m.baseline
		m.snapshot.Segments = result.Segments
		m.session = drag.NewSession(m.dragEnv())
		return m, m.saveBoard(before, result.Segments)

	case drag.OutcomeReverted:
		m.setStatus(revertReason(result.Verdict), true)
		return m, nil

	case drag.OutcomeAwaiting:
		m.setStatus("crosses the off-work boundary", false)
		return m, nil

	case drag.OutcomeCancelled:
		m.setStatus("split cancelled", false)
		return m, nil
	}
	return m, nil
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m Model) setZoom(zoom float64) Model {
	mapper, err := m.mapper.WithZoom(zoom)
	if err != nil {
		return m
	}
	m.zoom = zoom
	m.mapper = mapper
	if m.session.State == drag.StateIdle {
		m.session = drag.NewSession(m.dragEnv())
	}
	return m
}

func (m Model) dragEnv() drag.Env {
	return drag.Env{
		Mapper:   m.mapper,
		Calendar: m.snapshot.Calendar,
		Date:     m.date,
		Segments: m.snapshot.Segments,
		Downtime: m.snapshot.Downtime,
		Compat:   m.checker,
		NewID:    m.service.NewSplitID,
	}
}

// machineAt maps a terminal row to the machine rendered there.
func (m Model) machineAt(y int) (string, bool) {
	row := y - headerRows
	if row < 0 || row >= len(m.snapshot.Machines) {
		return "", false
	}
	return m.snapshot.Machines[row].ID, true
}

// segmentAt finds the visible segment covering the given board time on a
// machine row.
func (m Model) segmentAt(machineID string, t float64) (schedule.Segment, bool) {
	for _, segment := range m.snapshot.Segments {
		if segment.MachineID != machineID || segment.ScheduledDate != m.date {
			continue
		}
		if t >= segment.StartHour && t < segment.EndHour {
			return segment, true
		}
	}
	return schedule.Segment{}, false
}

func nextZoomLevel(current float64, direction int) float64 {
	nearest := 0
	for i, level := range zoomLevels {
		if abs(level-current) < abs(zoomLevels[nearest]-current) {
			nearest = i
		}
	}
	next := nearest + direction
	if next < 0 || next >= len(zoomLevels) {
		return current
	}
	return zoomLevels[next]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func revertReason(verdict conflict.Verdict) string {
	switch {
	case verdict.Downtime:
		return "rejected: overlaps machine downtime"
	case verdict.Order:
		return "rejected: overlaps another order"
	case verdict.Incompatible:
		return "rejected: mold not compatible with machine"
	}
	return "rejected"
}
