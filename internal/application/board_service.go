package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/production-board/internal/calendar"
	"github.com/example/production-board/internal/compat"
	"github.com/example/production-board/internal/persistence"
	"github.com/example/production-board/internal/schedule"
)

// calendarHorizonDays bounds how far past the selected date the resolver is
// hydrated. Split tails land at most one day ahead, but operators page
// forward, so a week of calendar keeps boundary math exact without loading
// the whole table.
const calendarHorizonDays = 7

// BoardSnapshot is everything one board view needs: the machine rows, the
// normalized segment set (split families completed across dates), the day's
// downtime and a calendar resolver hydrated around the selected date.
type BoardSnapshot struct {
	Date     string
	Machines []schedule.Machine
	Segments []schedule.Segment
	Downtime []schedule.DowntimeSlot
	Calendar *calendar.Resolver
}

// BoardService orchestrates persistence for the scheduling board: loading a
// day's snapshot and writing a committed drag back.
type BoardService struct {
	segments persistence.SegmentRepository
	machines persistence.MachineRepository
	downtime persistence.DowntimeRepository
	calendar persistence.CalendarRepository
	molds    persistence.MoldCompatRepository

	logger *slog.Logger
	now    func() time.Time
}

// NewBoardService wires the repositories the board depends on.
func NewBoardService(
	segments persistence.SegmentRepository,
	machines persistence.MachineRepository,
	downtime persistence.DowntimeRepository,
	calendarRepo persistence.CalendarRepository,
	molds persistence.MoldCompatRepository,
	logger *slog.Logger,
	now func() time.Time,
) *BoardService {
	if now == nil {
		now = time.Now
	}
	return &BoardService{
		segments: segments,
		machines: machines,
		downtime: downtime,
		calendar: calendarRepo,
		molds:    molds,
		logger:   defaultLogger(logger),
		now:      now,
	}
}

// NewSplitID returns a fresh identifier for a split part. The prefix marks
// the row as client-created so SaveBoard knows to insert it instead of
// updating.
func (s *BoardService) NewSplitID() string {
	return fmt.Sprintf("split-%d-%s", s.now().Unix(), uuid.NewString()[:8])
}

// LoadBoard assembles the snapshot for one date. Split families whose parts
// run past the date are completed with their off-screen rows so family
// moves always see every member.
func (s *BoardService) LoadBoard(ctx context.Context, date string) (BoardSnapshot, error) {
	logger := serviceLogger(ctx, s.logger, "board", "load", "date", date)

	if _, err := time.Parse(calendar.DateLayout, date); err != nil {
		vErr := &ValidationError{}
		vErr.add("date", "must be formatted as YYYY-MM-DD")
		return BoardSnapshot{}, vErr
	}

	machines, err := s.machines.ListMachines(ctx)
	if err != nil {
		logger.Error("failed to list machines", "error", err)
		return BoardSnapshot{}, fmt.Errorf("list machines: %w", err)
	}

	segments, err := s.loadSegments(ctx, date)
	if err != nil {
		logger.Error("failed to load segments", "error", err)
		return BoardSnapshot{}, err
	}

	slots, err := s.downtime.ListDowntime(ctx, date)
	if err != nil {
		logger.Error("failed to load downtime", "error", err)
		return BoardSnapshot{}, fmt.Errorf("list downtime: %w", err)
	}

	resolver, err := s.loadCalendar(ctx, date)
	if err != nil {
		logger.Error("failed to load calendar", "error", err)
		return BoardSnapshot{}, err
	}

	snapshot := BoardSnapshot{
		Date:     date,
		Machines: toDomainMachines(machines),
		Segments: schedule.Regroup(toDomainSegments(segments)),
		Downtime: toDomainDowntime(slots),
		Calendar: resolver,
	}
	logger.Info("board loaded",
		"machines", len(snapshot.Machines),
		"segments", len(snapshot.Segments),
		"downtime", len(snapshot.Downtime),
	)
	return snapshot, nil
}

// CompatibilityMatrix builds an in-memory compatibility checker covering
// every mold present in the segments. Used when no remote lookup endpoint
// is configured.
func (s *BoardService) CompatibilityMatrix(ctx context.Context, segments []schedule.Segment) (*compat.Matrix, error) {
	allowed := make(map[string]map[string]bool)
	for _, segment := range segments {
		if segment.MoldCode == "" {
			continue
		}
		if _, done := allowed[segment.MoldCode]; done {
			continue
		}
		entries, err := s.molds.ListForMold(ctx, segment.MoldCode)
		if err != nil {
			return nil, fmt.Errorf("list compatibility for %s: %w", segment.MoldCode, err)
		}
		row := make(map[string]bool, len(entries))
		for _, entry := range entries {
			row[entry.MachineID] = entry.Compatible
		}
		allowed[segment.MoldCode] = row
	}
	return compat.NewMatrix(allowed), nil
}

// SaveBoard persists the difference between the snapshot the gesture
// started from and the committed segment set. Rows with fresh split ids are
// inserted together with the removal of the row they replace; everything
// else is updated in place.
func (s *BoardService) SaveBoard(ctx context.Context, before, after []schedule.Segment) error {
	logger := serviceLogger(ctx, s.logger, "board", "save")

	beforeByID := make(map[string]schedule.Segment, len(before))
	for _, segment := range before {
		beforeByID[segment.ID] = segment
	}
	afterIDs := make(map[string]struct{}, len(after))
	for _, segment := range after {
		afterIDs[segment.ID] = struct{}{}
	}

	// Fresh rows grouped by the persisted row they replace.
	splitParts := make(map[string][]persistence.Segment)
	var inserts []persistence.Segment
	var updates []persistence.Segment

	for _, segment := range after {
		if _, existed := beforeByID[segment.ID]; existed {
			if segment.IsModified {
				updates = append(updates, toRecord(segment))
			}
			continue
		}
		original := segment.PersistedID()
		if _, known := beforeByID[original]; known && original != segment.ID {
			splitParts[original] = append(splitParts[original], toRecord(segment))
			continue
		}
		inserts = append(inserts, toRecord(segment))
	}

	consumed := make(map[string]struct{}, len(splitParts))
	for originalID, parts := range splitParts {
		if err := s.segments.ReplaceSplit(ctx, originalID, parts); err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return fmt.Errorf("%w: segment %s", ErrStaleBoard, originalID)
			}
			logger.Error("failed to persist split", "original_id", originalID, "error", err)
			return fmt.Errorf("replace split %s: %w", originalID, err)
		}
		consumed[originalID] = struct{}{}
		logger.Info("split persisted", "original_id", originalID, "parts", len(parts))
	}

	for _, record := range updates {
		if err := s.segments.UpdateSegment(ctx, record); err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return fmt.Errorf("%w: segment %s", ErrStaleBoard, record.ID)
			}
			logger.Error("failed to update segment", "segment_id", record.ID, "error", err)
			return fmt.Errorf("update segment %s: %w", record.ID, err)
		}
	}

	for _, record := range inserts {
		if err := s.segments.CreateSegment(ctx, record); err != nil {
			logger.Error("failed to create segment", "segment_id", record.ID, "error", err)
			return fmt.Errorf("create segment %s: %w", record.ID, err)
		}
	}

	// Rows that vanished without being replaced by a split are deletions.
	for _, segment := range before {
		if _, kept := afterIDs[segment.ID]; kept {
			continue
		}
		if _, replaced := consumed[segment.ID]; replaced {
			continue
		}
		if err := s.segments.DeleteSegment(ctx, segment.ID); err != nil && !errors.Is(err, persistence.ErrNotFound) {
			logger.Error("failed to delete segment", "segment_id", segment.ID, "error", err)
			return fmt.Errorf("delete segment %s: %w", segment.ID, err)
		}
	}

	return nil
}

// loadSegments returns the date's rows plus the off-date members of any
// split family touching the date.
func (s *BoardService) loadSegments(ctx context.Context, date string) ([]persistence.Segment, error) {
	records, err := s.segments.ListSegments(ctx, persistence.SegmentFilter{Date: date})
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}

	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		seen[record.ID] = struct{}{}
	}

	orders := make(map[string]struct{})
	for _, record := range records {
		if record.IsSplit || record.LinkedID != "" {
			orders[record.OrderID] = struct{}{}
		}
	}

	for orderID := range orders {
		family, err := s.segments.ListSegments(ctx, persistence.SegmentFilter{OrderID: orderID})
		if err != nil {
			return nil, fmt.Errorf("list family for %s: %w", orderID, err)
		}
		for _, record := range family {
			if _, dup := seen[record.ID]; dup {
				continue
			}
			seen[record.ID] = struct{}{}
			records = append(records, record)
		}
	}

	return records, nil
}

func (s *BoardService) loadCalendar(ctx context.Context, date string) (*calendar.Resolver, error) {
	from, err := time.Parse(calendar.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	to := from.AddDate(0, 0, calendarHorizonDays)

	records, err := s.calendar.ListDays(ctx, from.Format(calendar.DateLayout), to.Format(calendar.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("list calendar days: %w", err)
	}

	days := make([]calendar.Day, 0, len(records))
	for _, record := range records {
		days = append(days, calendar.Day{
			Date:      record.Date,
			WorkHours: record.WorkHours,
			StartTime: record.StartTime,
		})
	}
	return calendar.NewResolver(days), nil
}

func toDomainSegments(records []persistence.Segment) []schedule.Segment {
	segments := make([]schedule.Segment, 0, len(records))
	for _, record := range records {
		segments = append(segments, schedule.Segment{
			ID:            record.ID,
			OrderID:       record.OrderID,
			ProductID:     record.ProductID,
			MachineID:     record.MachineID,
			MoldCode:      record.MoldCode,
			ScheduledDate: record.ScheduledDate,
			StartHour:     record.StartHour,
			EndHour:       record.EndHour,
			IsSplit:       record.IsSplit,
			SplitPart:     record.SplitPart,
			TotalSplits:   record.TotalSplits,
			LinkedID:      record.LinkedID,
			OriginalID:    record.OriginalID,
		})
	}
	return segments
}

func toDomainMachines(records []persistence.Machine) []schedule.Machine {
	machines := make([]schedule.Machine, 0, len(records))
	for _, record := range records {
		machines = append(machines, schedule.Machine{ID: record.ID, Area: record.Area})
	}
	return machines
}

func toDomainDowntime(records []persistence.DowntimeSlot) []schedule.DowntimeSlot {
	slots := make([]schedule.DowntimeSlot, 0, len(records))
	for _, record := range records {
		slots = append(slots, schedule.DowntimeSlot{
			MachineID:     record.MachineID,
			ScheduledDate: record.ScheduledDate,
			StartHour:     record.StartHour,
			EndHour:       record.EndHour,
		})
	}
	return slots
}

func toRecord(segment schedule.Segment) persistence.Segment {
	return persistence.Segment{
		ID:            segment.ID,
		OrderID:       segment.OrderID,
		ProductID:     segment.ProductID,
		MachineID:     segment.MachineID,
		MoldCode:      segment.MoldCode,
		ScheduledDate: segment.ScheduledDate,
		StartHour:     segment.StartHour,
		EndHour:       segment.EndHour,
		IsSplit:       segment.IsSplit,
		SplitPart:     segment.SplitPart,
		TotalSplits:   segment.TotalSplits,
		LinkedID:      segment.LinkedID,
		OriginalID:    strings.TrimSpace(segment.OriginalID),
	}
}
