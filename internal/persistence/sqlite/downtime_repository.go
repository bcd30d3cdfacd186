package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/production-board/internal/persistence"
)

// DowntimeRepository implements persistence.DowntimeRepository using SQLite.
type DowntimeRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewDowntimeRepository creates a new SQLite downtime repository.
func NewDowntimeRepository(pool *ConnectionPool) *DowntimeRepository {
	return &DowntimeRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    time.Now,
	}
}

// CreateDowntime inserts a planned maintenance window.
func (r *DowntimeRepository) CreateDowntime(ctx context.Context, slot persistence.DowntimeSlot) error {
	if slot.ID == "" || slot.MachineID == "" || slot.ScheduledDate == "" {
		return persistence.ErrConstraintViolation
	}
	if slot.EndHour <= slot.StartHour {
		return persistence.ErrConstraintViolation
	}

	now := r.now().UTC()
	_, err := r.helper.Exec(ctx, `
		INSERT INTO downtime_slots (id, machine_id, scheduled_date, start_hour, end_hour, reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		slot.ID, slot.MachineID, slot.ScheduledDate, slot.StartHour, slot.EndHour, slot.Reason,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	return r.mapper.MapError(err)
}

// ListDowntime returns maintenance windows for a date ordered by machine
// and start hour.
func (r *DowntimeRepository) ListDowntime(ctx context.Context, date string) ([]persistence.DowntimeSlot, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, machine_id, scheduled_date, start_hour, end_hour, reason, created_at, updated_at
		FROM downtime_slots WHERE scheduled_date = ?
		ORDER BY machine_id, start_hour, id
	`, date)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	slots := make([]persistence.DowntimeSlot, 0)
	for rows.Next() {
		var slot persistence.DowntimeSlot
		var createdAt, updatedAt string
		if err := rows.Scan(
			&slot.ID, &slot.MachineID, &slot.ScheduledDate, &slot.StartHour, &slot.EndHour, &slot.Reason,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if slot.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at for downtime %s: %w", slot.ID, err)
		}
		if slot.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("invalid updated_at for downtime %s: %w", slot.ID, err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return slots, nil
}

// DeleteDowntime removes a maintenance window by ID.
func (r *DowntimeRepository) DeleteDowntime(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM downtime_slots WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
