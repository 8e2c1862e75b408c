package model

import (
	"fmt"
	"time"
)

// TimeRange is a half-open [StartMinute, EndMinute) span of minutes-from-midnight
// on a single calendar date.
type TimeRange struct {
	Date        time.Time `json:"date"`
	StartMinute int       `json:"start_minute"`
	EndMinute   int       `json:"end_minute"`
}

// Overlaps reports whether two ranges share any time. Ranges on different dates
// never overlap; on the same date the check is the symmetric strict inequality,
// so a range ending exactly when another starts does not overlap it.
func (r TimeRange) Overlaps(other TimeRange) bool {
	if !SameDate(r.Date, other.Date) {
		return false
	}
	return r.StartMinute < other.EndMinute && other.StartMinute < r.EndMinute
}

// Contains reports whether the given minute of the range's date falls inside it.
func (r TimeRange) Contains(minute int) bool {
	return minute >= r.StartMinute && minute < r.EndMinute
}

// Minutes returns the length of the range.
func (r TimeRange) Minutes() int {
	return r.EndMinute - r.StartMinute
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s %s-%s", r.Date.Format("2006-01-02"), FormatMinute(r.StartMinute), FormatMinute(r.EndMinute))
}

// DateOnly truncates t to midnight UTC so dates compare by calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two timestamps fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// MinuteOf converts a timestamp to minutes since midnight.
func MinuteOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FormatMinute renders minutes-from-midnight as HH:MM.
func FormatMinute(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// ParseMinute parses an HH:MM string into minutes since midnight. "24:00" is
// the largest accepted value, as the end of a range closing at midnight.
func ParseMinute(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse time %q: %w", s, err)
	}
	if h < 0 || m < 0 || m > 59 || h*60+m > 24*60 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return h*60 + m, nil
}
