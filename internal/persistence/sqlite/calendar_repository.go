package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/production-board/internal/persistence"
)

// CalendarRepository implements persistence.CalendarRepository using SQLite.
type CalendarRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewCalendarRepository creates a new SQLite calendar repository.
func NewCalendarRepository(pool *ConnectionPool) *CalendarRepository {
	return &CalendarRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    time.Now,
	}
}

// UpsertDay creates or replaces the calendar entry for a date.
func (r *CalendarRepository) UpsertDay(ctx context.Context, day persistence.CalendarDay) error {
	if day.Date == "" || day.WorkHours < 0 {
		return persistence.ErrConstraintViolation
	}
	startTime := day.StartTime
	if startTime == "" {
		startTime = "08:00"
	}

	now := r.now().UTC().Format(time.RFC3339)
	_, err := r.helper.Exec(ctx, `
		INSERT INTO calendar_days (date, work_hours, start_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			work_hours = excluded.work_hours,
			start_time = excluded.start_time,
			updated_at = excluded.updated_at
	`, day.Date, day.WorkHours, startTime, now, now)
	return r.mapper.MapError(err)
}

// GetDay retrieves the calendar entry for a date.
func (r *CalendarRepository) GetDay(ctx context.Context, date string) (persistence.CalendarDay, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT date, work_hours, start_time, created_at, updated_at FROM calendar_days WHERE date = ?
	`, date)

	day, err := scanCalendarDay(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.CalendarDay{}, persistence.ErrNotFound
		}
		return persistence.CalendarDay{}, r.mapper.MapError(err)
	}
	return day, nil
}

// ListDays returns calendar entries in the inclusive date range ordered by
// date.
func (r *CalendarRepository) ListDays(ctx context.Context, from, to string) ([]persistence.CalendarDay, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT date, work_hours, start_time, created_at, updated_at
		FROM calendar_days WHERE date >= ? AND date <= ?
		ORDER BY date
	`, from, to)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	days := make([]persistence.CalendarDay, 0)
	for rows.Next() {
		day, err := scanCalendarDay(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return days, nil
}

func scanCalendarDay(row rowScanner) (persistence.CalendarDay, error) {
	var day persistence.CalendarDay
	var createdAt, updatedAt string

	if err := row.Scan(&day.Date, &day.WorkHours, &day.StartTime, &createdAt, &updatedAt); err != nil {
		return persistence.CalendarDay{}, err
	}

	var err error
	if day.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.CalendarDay{}, fmt.Errorf("invalid created_at for day %s: %w", day.Date, err)
	}
	if day.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.CalendarDay{}, fmt.Errorf("invalid updated_at for day %s: %w", day.Date, err)
	}
	return day, nil
}
