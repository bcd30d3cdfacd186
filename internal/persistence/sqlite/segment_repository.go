package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/production-board/internal/persistence"
)

// SegmentRepository implements persistence.SegmentRepository using SQLite.
type SegmentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewSegmentRepository creates a new SQLite segment repository.
func NewSegmentRepository(pool *ConnectionPool) *SegmentRepository {
	return &SegmentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    time.Now,
	}
}

const segmentColumns = `id, order_id, product_id, machine_id, mold_code, scheduled_date,
	start_hour, end_hour, is_split, split_part, total_splits, linked_id, original_id,
	created_at, updated_at`

// CreateSegment inserts a new scheduling row.
func (r *SegmentRepository) CreateSegment(ctx context.Context, segment persistence.Segment) error {
	if err := validateSegment(segment); err != nil {
		return err
	}

	now := r.now().UTC()
	segment.CreatedAt = now
	segment.UpdatedAt = now

	_, err := r.helper.Exec(ctx, `
		INSERT INTO segments (`+segmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, segmentArgs(segment)...)
	return r.mapper.MapError(err)
}

// UpdateSegment updates an existing scheduling row.
func (r *SegmentRepository) UpdateSegment(ctx context.Context, segment persistence.Segment) error {
	if err := validateSegment(segment); err != nil {
		return err
	}

	segment.UpdatedAt = r.now().UTC()

	result, err := r.helper.Exec(ctx, `
		UPDATE segments
		SET order_id = ?, product_id = ?, machine_id = ?, mold_code = ?, scheduled_date = ?,
			start_hour = ?, end_hour = ?, is_split = ?, split_part = ?, total_splits = ?,
			linked_id = ?, original_id = ?, updated_at = ?
		WHERE id = ?
	`,
		segment.OrderID, segment.ProductID, segment.MachineID, segment.MoldCode, segment.ScheduledDate,
		segment.StartHour, segment.EndHour, segment.IsSplit, segment.SplitPart, segment.TotalSplits,
		segment.LinkedID, segment.OriginalID, segment.UpdatedAt.Format(time.RFC3339),
		segment.ID,
	)
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

// GetSegment retrieves a scheduling row by ID.
func (r *SegmentRepository) GetSegment(ctx context.Context, id string) (persistence.Segment, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+segmentColumns+` FROM segments WHERE id = ?`, id)
	segment, err := scanSegment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Segment{}, persistence.ErrNotFound
		}
		return persistence.Segment{}, r.mapper.MapError(err)
	}
	return segment, nil
}

// ListSegments returns rows matching the filter ordered by machine, date
// and start hour.
func (r *SegmentRepository) ListSegments(ctx context.Context, filter persistence.SegmentFilter) ([]persistence.Segment, error) {
	query, args := buildSegmentQuery(filter)
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	segments := make([]persistence.Segment, 0)
	for rows.Next() {
		segment, err := scanSegment(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		segments = append(segments, segment)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return segments, nil
}

// DeleteSegment removes a scheduling row by ID.
func (r *SegmentRepository) DeleteSegment(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM segments WHERE id = ?`, id)
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

// ReplaceSplit removes the original row and inserts its split parts in one
// transaction, so a crash never leaves both the whole row and its parts on
// the board.
func (r *SegmentRepository) ReplaceSplit(ctx context.Context, originalID string, parts []persistence.Segment) error {
	if originalID == "" || len(parts) == 0 {
		return persistence.ErrConstraintViolation
	}
	for _, part := range parts {
		if err := validateSegment(part); err != nil {
			return err
		}
	}

	now := r.now().UTC()

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := r.helper.ExecTx(tx, `DELETE FROM segments WHERE id = ?`, originalID)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		for _, part := range parts {
			part.CreatedAt = now
			part.UpdatedAt = now
			if _, err := r.helper.ExecTx(tx, `
				INSERT INTO segments (`+segmentColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, segmentArgs(part)...); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, persistence.ErrNotFound) {
		return err
	}
	return r.mapper.MapError(err)
}

func validateSegment(segment persistence.Segment) error {
	if segment.ID == "" || segment.OrderID == "" || segment.MachineID == "" || segment.ScheduledDate == "" {
		return persistence.ErrConstraintViolation
	}
	if segment.EndHour <= segment.StartHour {
		return persistence.ErrConstraintViolation
	}
	return nil
}

func segmentArgs(segment persistence.Segment) []any {
	return []any{
		segment.ID, segment.OrderID, segment.ProductID, segment.MachineID, segment.MoldCode,
		segment.ScheduledDate, segment.StartHour, segment.EndHour,
		segment.IsSplit, segment.SplitPart, segment.TotalSplits,
		segment.LinkedID, segment.OriginalID,
		segment.CreatedAt.Format(time.RFC3339), segment.UpdatedAt.Format(time.RFC3339),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSegment(row rowScanner) (persistence.Segment, error) {
	var segment persistence.Segment
	var createdAt, updatedAt string

	err := row.Scan(
		&segment.ID, &segment.OrderID, &segment.ProductID, &segment.MachineID, &segment.MoldCode,
		&segment.ScheduledDate, &segment.StartHour, &segment.EndHour,
		&segment.IsSplit, &segment.SplitPart, &segment.TotalSplits,
		&segment.LinkedID, &segment.OriginalID,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.Segment{}, err
	}

	if segment.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Segment{}, fmt.Errorf("invalid created_at for segment %s: %w", segment.ID, err)
	}
	if segment.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Segment{}, fmt.Errorf("invalid updated_at for segment %s: %w", segment.ID, err)
	}
	return segment, nil
}

func buildSegmentQuery(filter persistence.SegmentFilter) (string, []any) {
	var conditions []string
	var args []any

	if len(filter.MachineIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.MachineIDs)), ", ")
		conditions = append(conditions, fmt.Sprintf("machine_id IN (%s)", placeholders))
		for _, id := range filter.MachineIDs {
			args = append(args, id)
		}
	}
	if filter.Date != "" {
		conditions = append(conditions, "scheduled_date = ?")
		args = append(args, filter.Date)
	}
	if filter.OrderID != "" {
		conditions = append(conditions, "order_id = ?")
		args = append(args, filter.OrderID)
	}

	query := `SELECT ` + segmentColumns + ` FROM segments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY machine_id, scheduled_date, start_hour, id"
	return query, args
}
