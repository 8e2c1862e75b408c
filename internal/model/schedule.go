package model

import "time"

type WorkStatus string

const (
	WorkStatusWorking WorkStatus = "working"
	WorkStatusLeave   WorkStatus = "leave"
)

// ScheduleEntry is the declared working window (or leave marker) for one staff
// member on one date. At most one entry exists per (staff, date); the absence
// of an entry means off-duty that day.
type ScheduleEntry struct {
	ID          int64      `json:"id"`
	StaffID     int64      `json:"staff_id"`
	Date        time.Time  `json:"date"`
	StartMinute int        `json:"start_minute"`
	EndMinute   int        `json:"end_minute"`
	WorkStatus  WorkStatus `json:"work_status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Window returns the declared working window as a TimeRange.
func (e *ScheduleEntry) Window() TimeRange {
	return TimeRange{Date: e.Date, StartMinute: e.StartMinute, EndMinute: e.EndMinute}
}

// ScheduledHours returns the declared hours for a working entry, 0 for leave.
func (e *ScheduleEntry) ScheduledHours() float64 {
	if e.WorkStatus != WorkStatusWorking {
		return 0
	}
	return float64(e.EndMinute-e.StartMinute) / 60
}
