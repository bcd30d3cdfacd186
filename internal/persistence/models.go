package persistence

import "time"

// Segment represents one physical scheduling row for an order on a machine.
// Split parts of the same order are separate rows linked by LinkedID and
// numbered by SplitPart/TotalSplits.
type Segment struct {
	ID            string
	OrderID       string
	ProductID     string
	MachineID     string
	MoldCode      string
	ScheduledDate string
	StartHour     float64
	EndHour       float64
	IsSplit       bool
	SplitPart     int
	TotalSplits   int
	LinkedID      string
	OriginalID    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Machine represents a production machine catalog entry.
type Machine struct {
	ID        string
	Area      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DowntimeSlot represents a planned maintenance window on a machine.
type DowntimeSlot struct {
	ID            string
	MachineID     string
	ScheduledDate string
	StartHour     float64
	EndHour       float64
	Reason        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CalendarDay represents one work calendar entry. StartTime is stored as
// "HH:MM"; a zero WorkHours marks a rest day.
type CalendarDay struct {
	Date      string
	WorkHours float64
	StartTime string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MoldCompatibility records whether a mold may run on a machine.
type MoldCompatibility struct {
	MoldCode   string
	MachineID  string
	Compatible bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
