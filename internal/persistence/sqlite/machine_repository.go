package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/production-board/internal/persistence"
)

// MachineRepository implements persistence.MachineRepository using SQLite.
type MachineRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewMachineRepository creates a new SQLite machine repository.
func NewMachineRepository(pool *ConnectionPool) *MachineRepository {
	return &MachineRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    time.Now,
	}
}

// CreateMachine inserts a new machine catalog entry.
func (r *MachineRepository) CreateMachine(ctx context.Context, machine persistence.Machine) error {
	if machine.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := r.now().UTC()
	_, err := r.helper.Exec(ctx, `
		INSERT INTO machines (id, area, created_at, updated_at) VALUES (?, ?, ?, ?)
	`, machine.ID, machine.Area, now.Format(time.RFC3339), now.Format(time.RFC3339))
	return r.mapper.MapError(err)
}

// GetMachine retrieves a machine by ID.
func (r *MachineRepository) GetMachine(ctx context.Context, id string) (persistence.Machine, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, area, created_at, updated_at FROM machines WHERE id = ?
	`, id)

	machine, err := scanMachine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Machine{}, persistence.ErrNotFound
		}
		return persistence.Machine{}, r.mapper.MapError(err)
	}
	return machine, nil
}

// ListMachines returns all machines ordered by area then ID, the order the
// board renders its rows in.
func (r *MachineRepository) ListMachines(ctx context.Context) ([]persistence.Machine, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, area, created_at, updated_at FROM machines ORDER BY area, id
	`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	machines := make([]persistence.Machine, 0)
	for rows.Next() {
		machine, err := scanMachine(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		machines = append(machines, machine)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return machines, nil
}

// DeleteMachine removes a machine by ID.
func (r *MachineRepository) DeleteMachine(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM machines WHERE id = ?`, id)
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

func scanMachine(row rowScanner) (persistence.Machine, error) {
	var machine persistence.Machine
	var createdAt, updatedAt string

	if err := row.Scan(&machine.ID, &machine.Area, &createdAt, &updatedAt); err != nil {
		return persistence.Machine{}, err
	}

	var err error
	if machine.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Machine{}, fmt.Errorf("invalid created_at for machine %s: %w", machine.ID, err)
	}
	if machine.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Machine{}, fmt.Errorf("invalid updated_at for machine %s: %w", machine.ID, err)
	}
	return machine, nil
}
