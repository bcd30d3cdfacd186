package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/production-board/internal/persistence"
	"github.com/example/production-board/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Segments persistence.SegmentRepository
	Machines persistence.MachineRepository
	Downtime persistence.DowntimeRepository
	Calendar persistence.CalendarRepository
	Molds    persistence.MoldCompatRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dsn := "file:" + filepath.Join(tb.TempDir(), "board.db")

	pool, err := sqlite.NewConnectionPool(dsn)
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Segments: sqlite.NewSegmentRepository(pool),
		Machines: sqlite.NewMachineRepository(pool),
		Downtime: sqlite.NewDowntimeRepository(pool),
		Calendar: sqlite.NewCalendarRepository(pool),
		Molds:    sqlite.NewMoldCompatRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
