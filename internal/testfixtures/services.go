package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/production-board/internal/application"
	"github.com/example/production-board/internal/persistence"
)

// ServiceFactory assists tests with constructing board services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("split-test"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("split-test")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// BoardServiceDeps captures dependencies for constructing a board service.
// Any nil repository defaults to the matching harness repository.
type BoardServiceDeps struct {
	Segments persistence.SegmentRepository
	Machines persistence.MachineRepository
	Downtime persistence.DowntimeRepository
	Calendar persistence.CalendarRepository
	Molds    persistence.MoldCompatRepository
	Logger   *slog.Logger
	Now      func() time.Time
}

// NewBoardService builds a board service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewBoardService(deps BoardServiceDeps) *application.BoardService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewBoardService(
		deps.Segments,
		deps.Machines,
		deps.Downtime,
		deps.Calendar,
		deps.Molds,
		deps.Logger,
		now,
	)
}

// HarnessBoardService builds a board service backed entirely by a fresh
// SQLite harness.
func (f *ServiceFactory) HarnessBoardService(harness *SQLiteHarness, logger *slog.Logger) *application.BoardService {
	return f.NewBoardService(BoardServiceDeps{
		Segments: harness.Segments,
		Machines: harness.Machines,
		Downtime: harness.Downtime,
		Calendar: harness.Calendar,
		Molds:    harness.Molds,
		Logger:   logger,
	})
}

// SplitIDs exposes the factory's deterministic generator as a split id
// source for drag environments.
func (f *ServiceFactory) SplitIDs() func() string {
	return f.IDGenerator.NextFunc()
}
