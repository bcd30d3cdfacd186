package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/production-board/internal/persistence"
)

// MoldCompatRepository implements persistence.MoldCompatRepository using
// SQLite.
type MoldCompatRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewMoldCompatRepository creates a new SQLite mold compatibility repository.
func NewMoldCompatRepository(pool *ConnectionPool) *MoldCompatRepository {
	return &MoldCompatRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    time.Now,
	}
}

// UpsertCompatibility creates or replaces one matrix entry.
func (r *MoldCompatRepository) UpsertCompatibility(ctx context.Context, entry persistence.MoldCompatibility) error {
	if entry.MoldCode == "" || entry.MachineID == "" {
		return persistence.ErrConstraintViolation
	}

	now := r.now().UTC().Format(time.RFC3339)
	_, err := r.helper.Exec(ctx, `
		INSERT INTO mold_compatibility (mold_code, machine_id, compatible, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(mold_code, machine_id) DO UPDATE SET
			compatible = excluded.compatible,
			updated_at = excluded.updated_at
	`, entry.MoldCode, entry.MachineID, entry.Compatible, now, now)
	return r.mapper.MapError(err)
}

// LookupCompatibility answers whether a mold may run on a machine. A pair
// missing from the matrix returns ErrNotFound rather than a guess.
func (r *MoldCompatRepository) LookupCompatibility(ctx context.Context, moldCode, machineID string) (bool, error) {
	var compatible bool
	err := r.helper.QueryRow(ctx, `
		SELECT compatible FROM mold_compatibility WHERE mold_code = ? AND machine_id = ?
	`, moldCode, machineID).Scan(&compatible)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, persistence.ErrNotFound
		}
		return false, r.mapper.MapError(err)
	}
	return compatible, nil
}

// ListForMold returns all matrix entries for a mold ordered by machine.
func (r *MoldCompatRepository) ListForMold(ctx context.Context, moldCode string) ([]persistence.MoldCompatibility, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT mold_code, machine_id, compatible, created_at, updated_at
		FROM mold_compatibility WHERE mold_code = ?
		ORDER BY machine_id
	`, moldCode)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	entries := make([]persistence.MoldCompatibility, 0)
	for rows.Next() {
		var entry persistence.MoldCompatibility
		var createdAt, updatedAt string
		if err := rows.Scan(&entry.MoldCode, &entry.MachineID, &entry.Compatible, &createdAt, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at for mold %s: %w", entry.MoldCode, err)
		}
		if entry.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("invalid updated_at for mold %s: %w", entry.MoldCode, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return entries, nil
}
