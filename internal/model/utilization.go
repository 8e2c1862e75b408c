package model

// StaffUtilization is one row of the per-staff utilization breakdown.
type StaffUtilization struct {
	StaffID         int64   `json:"staff_id"`
	StaffName       string  `json:"staff_name"`
	ScheduledHours  float64 `json:"scheduled_hours"`
	BookedHours     float64 `json:"booked_hours"`
	IdleHours       float64 `json:"idle_hours"`
	UtilizationRate float64 `json:"utilization_rate"`
}

// UtilizationReport aggregates scheduled vs booked time over a date range.
// PerStaff is ordered by utilization rate descending for leaderboard display.
type UtilizationReport struct {
	ScheduledHours  float64            `json:"scheduled_hours"`
	BookedHours     float64            `json:"booked_hours"`
	IdleHours       float64            `json:"idle_hours"`
	UtilizationRate float64            `json:"utilization_rate"`
	PerStaff        []StaffUtilization `json:"per_staff"`
}
