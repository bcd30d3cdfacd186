package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/example/production-board/internal/application"
	"github.com/example/production-board/internal/board"
	"github.com/example/production-board/internal/calendar"
	"github.com/example/production-board/internal/compat"
	"github.com/example/production-board/internal/config"
	"github.com/example/production-board/internal/logging"
	"github.com/example/production-board/internal/persistence"
	"github.com/example/production-board/internal/persistence/sqlite"
	"github.com/example/production-board/internal/timeline"
)

// calendarSeedDays is how far past the selected date a weekly pattern is
// expanded when importing a calendar file.
const calendarSeedDays = 60

func main() {
	date := pflag.String("date", time.Now().Format(calendar.DateLayout), "board date (YYYY-MM-DD)")
	zoom := pflag.Float64("zoom", 0, "initial zoom factor (0 uses the configured default)")
	calendarFile := pflag.String("calendar", "", "import a work-calendar YAML file before starting")
	headless := pflag.Bool("headless", false, "print the board snapshot and exit")
	pflag.Parse()

	// The terminal is the UI, so structured logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := logging.ContextWithLogger(context.Background(), logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *zoom == 0 {
		*zoom = cfg.DefaultZoom
	}
	if *calendarFile == "" {
		*calendarFile = cfg.CalendarPath
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err, "dsn", cfg.SQLiteDSN)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(ctx, pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	calendarRepo := sqlite.NewCalendarRepository(pool)
	if *calendarFile != "" {
		if err := importCalendar(ctx, calendarRepo, *calendarFile, *date); err != nil {
			logger.Error("failed to import calendar", "error", err, "path", *calendarFile)
			os.Exit(1)
		}
		logger.Info("calendar imported", "path", *calendarFile)
	}

	service := application.NewBoardService(
		sqlite.NewSegmentRepository(pool),
		sqlite.NewMachineRepository(pool),
		sqlite.NewDowntimeRepository(pool),
		calendarRepo,
		sqlite.NewMoldCompatRepository(pool),
		logger,
		time.Now,
	)

	var remote compat.Checker
	if cfg.CompatEndpoint != "" {
		remote = compat.NewClient(cfg.CompatEndpoint,
			compat.WithLogger(logger),
			compat.WithHTTPClient(&http.Client{Timeout: cfg.CompatTimeout}),
		)
	}

	if *headless {
		if err := printBoard(ctx, service, *date); err != nil {
			logger.Error("failed to load board", "error", err, "date", *date)
			os.Exit(1)
		}
		return
	}

	baseWidth := cfg.BaseWidth
	if baseWidth <= 0 {
		baseWidth = timeline.DefaultBaseWidth
	}
	model, err := board.New(service, remote, *date, baseWidth, *zoom)
	if err != nil {
		logger.Error("failed to build board", "error", err)
		os.Exit(1)
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		logger.Error("board terminated", "error", err)
		os.Exit(1)
	}
}

// importCalendar loads a YAML calendar and upserts its days: explicit rows
// first, then pattern-generated days around the selected date. Explicit
// rows win over generated ones.
func importCalendar(ctx context.Context, repo persistence.CalendarRepository, path, date string) error {
	days, pattern, err := calendar.LoadYAML(path)
	if err != nil {
		return err
	}
	for _, day := range days {
		record := persistence.CalendarDay{Date: day.Date, WorkHours: day.WorkHours, StartTime: day.StartTime}
		if err := repo.UpsertDay(ctx, record); err != nil {
			return fmt.Errorf("upsert %s: %w", day.Date, err)
		}
	}
	if len(pattern) == 0 {
		return nil
	}

	from, err := calendar.PrevDate(date)
	if err != nil {
		return err
	}
	to := date
	for i := 0; i < calendarSeedDays; i++ {
		if to, err = calendar.NextDate(to); err != nil {
			return err
		}
	}
	generated, err := calendar.ExpandPattern(calendar.NewResolver(days), pattern, calendar.ExpandOptions{From: from, To: to})
	if err != nil {
		return err
	}
	for _, day := range generated {
		record := persistence.CalendarDay{Date: day.Date, WorkHours: day.WorkHours, StartTime: day.StartTime}
		if err := repo.UpsertDay(ctx, record); err != nil {
			return fmt.Errorf("upsert %s: %w", day.Date, err)
		}
	}
	return nil
}

// printBoard dumps one day of the schedule as text, for scripting and
// smoke checks without a terminal session.
func printBoard(ctx context.Context, service *application.BoardService, date string) error {
	snapshot, err := service.LoadBoard(ctx, date)
	if err != nil {
		return err
	}

	fmt.Printf("%s  machines=%d segments=%d downtime=%d\n",
		snapshot.Date, len(snapshot.Machines), len(snapshot.Segments), len(snapshot.Downtime))
	for _, machine := range snapshot.Machines {
		fmt.Printf("%s (%s)\n", machine.ID, machine.Area)
		for _, segment := range snapshot.Segments {
			if segment.MachineID != machine.ID || segment.ScheduledDate != date {
				continue
			}
			label := segment.OrderID
			if segment.IsSplit {
				label = fmt.Sprintf("%s %d/%d", segment.OrderID, segment.SplitPart, segment.TotalSplits)
			}
			fmt.Printf("  %s - %s  %s\n",
				timeline.FormatHour(segment.StartHour), timeline.FormatHour(segment.EndHour), label)
		}
	}
	return nil
}
