package persistence

import "context"

// SegmentFilter narrows segment queries.
type SegmentFilter struct {
	MachineIDs []string
	Date       string
	OrderID    string
}

// SegmentRepository stores scheduling rows.
type SegmentRepository interface {
	CreateSegment(ctx context.Context, segment Segment) error
	UpdateSegment(ctx context.Context, segment Segment) error
	GetSegment(ctx context.Context, id string) (Segment, error)
	ListSegments(ctx context.Context, filter SegmentFilter) ([]Segment, error)
	DeleteSegment(ctx context.Context, id string) error
	// ReplaceSplit atomically removes the original row and inserts the
	// split parts that replace it.
	ReplaceSplit(ctx context.Context, originalID string, parts []Segment) error
}

// MachineRepository exposes CRUD operations for machines.
type MachineRepository interface {
	CreateMachine(ctx context.Context, machine Machine) error
	GetMachine(ctx context.Context, id string) (Machine, error)
	ListMachines(ctx context.Context) ([]Machine, error)
	DeleteMachine(ctx context.Context, id string) error
}

// DowntimeRepository stores planned maintenance windows.
type DowntimeRepository interface {
	CreateDowntime(ctx context.Context, slot DowntimeSlot) error
	ListDowntime(ctx context.Context, date string) ([]DowntimeSlot, error)
	DeleteDowntime(ctx context.Context, id string) error
}

// CalendarRepository stores the work calendar.
type CalendarRepository interface {
	UpsertDay(ctx context.Context, day CalendarDay) error
	GetDay(ctx context.Context, date string) (CalendarDay, error)
	ListDays(ctx context.Context, from, to string) ([]CalendarDay, error)
}

// MoldCompatRepository stores the mold to machine compatibility matrix.
type MoldCompatRepository interface {
	UpsertCompatibility(ctx context.Context, entry MoldCompatibility) error
	LookupCompatibility(ctx context.Context, moldCode, machineID string) (bool, error)
	ListForMold(ctx context.Context, moldCode string) ([]MoldCompatibility, error)
}
