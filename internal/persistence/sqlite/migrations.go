package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migration is one ordered schema step. Versions are applied in slice
// order and recorded in schema_migrations; a step never changes once
// released.
type migration struct {
	version     int
	description string
	statements  []string
}

var migrations = []migration{
	{
		version:     1,
		description: "create machines and segments",
		statements: []string{
			`CREATE TABLE machines (
				id TEXT PRIMARY KEY,
				area TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE segments (
				id TEXT PRIMARY KEY,
				order_id TEXT NOT NULL,
				product_id TEXT NOT NULL,
				machine_id TEXT NOT NULL REFERENCES machines(id),
				mold_code TEXT NOT NULL DEFAULT '',
				scheduled_date TEXT NOT NULL,
				start_hour REAL NOT NULL,
				end_hour REAL NOT NULL,
				is_split INTEGER NOT NULL DEFAULT 0,
				split_part INTEGER NOT NULL DEFAULT 0,
				total_splits INTEGER NOT NULL DEFAULT 0,
				linked_id TEXT NOT NULL DEFAULT '',
				original_id TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CHECK (end_hour > start_hour)
			)`,
			`CREATE INDEX idx_segments_machine_date ON segments(machine_id, scheduled_date)`,
			`CREATE INDEX idx_segments_order ON segments(order_id, product_id)`,
		},
	},
	{
		version:     2,
		description: "create downtime slots",
		statements: []string{
			`CREATE TABLE downtime_slots (
				id TEXT PRIMARY KEY,
				machine_id TEXT NOT NULL REFERENCES machines(id),
				scheduled_date TEXT NOT NULL,
				start_hour REAL NOT NULL,
				end_hour REAL NOT NULL,
				reason TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CHECK (end_hour > start_hour)
			)`,
			`CREATE INDEX idx_downtime_date ON downtime_slots(scheduled_date)`,
		},
	},
	{
		version:     3,
		description: "create work calendar",
		statements: []string{
			`CREATE TABLE calendar_days (
				date TEXT PRIMARY KEY,
				work_hours REAL NOT NULL,
				start_time TEXT NOT NULL DEFAULT '08:00',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CHECK (work_hours >= 0)
			)`,
		},
	},
	{
		version:     4,
		description: "create mold compatibility matrix",
		statements: []string{
			`CREATE TABLE mold_compatibility (
				mold_code TEXT NOT NULL,
				machine_id TEXT NOT NULL REFERENCES machines(id),
				compatible INTEGER NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (mold_code, machine_id)
			)`,
		},
	},
}

// Migrate brings the schema to the latest version. Already applied steps
// are skipped, so running it on every startup is safe.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	if _, err := pool.DB().ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, step := range migrations {
		applied, err := migrationApplied(ctx, pool, step.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, statement := range step.statements {
				if _, err := tx.Exec(statement); err != nil {
					return fmt.Errorf("migration %d (%s): %w", step.version, step.description, err)
				}
			}
			_, err := tx.Exec(
				`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
				step.version, step.description, time.Now().UTC().Format(time.RFC3339),
			)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func migrationApplied(ctx context.Context, pool *ConnectionPool, version int) (bool, error) {
	var count int
	err := pool.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	return count > 0, nil
}
