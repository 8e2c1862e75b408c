package model

type RosterStatus string

const (
	RosterOffDuty    RosterStatus = "off_duty"
	RosterAvailable  RosterStatus = "available"
	RosterWithClient RosterStatus = "with_client"
	RosterOnBreak    RosterStatus = "on_break"
)

// RosterInfo is the derived real-time working state of a staff member.
// It is computed fresh on every call and never persisted.
type RosterInfo struct {
	StaffID       int64        `json:"staff_id"`
	StaffName     string       `json:"staff_name"`
	Status        RosterStatus `json:"status"`
	ScheduleText  string       `json:"schedule_text"`
	HoursToday    float64      `json:"hours_today"`
	CurrentClient string       `json:"current_client,omitempty"`
	BreakDetail   string       `json:"break_detail,omitempty"`
}
