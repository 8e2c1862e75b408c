package model

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusNoShow     BookingStatus = "no_show"
)

// Booking is one customer visit made up of one or more ordered line items.
// The finish time is never stored; it is always derived from the line items.
type Booking struct {
	ID           int64          `json:"id"`
	CustomerID   int64          `json:"customer_id"`
	CustomerName string         `json:"customer_name"`
	Date         time.Time      `json:"date"`
	StartMinute  int            `json:"start_minute"`
	Status       BookingStatus  `json:"status"`
	Items        []*BookingItem `json:"items,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// BookingItem is one service within a booking. Duration, cleanup and price are
// quoted at booking time so later catalog edits never alter an existing booking.
type BookingItem struct {
	ID             int64         `json:"id"`
	BookingID      int64         `json:"booking_id"`
	ServiceID      int64         `json:"service_id"`
	QuotedDuration int           `json:"quoted_duration"`
	QuotedCleanup  int           `json:"quoted_cleanup"`
	QuotedPrice    int64         `json:"quoted_price"`
	Quantity       int           `json:"quantity"`
	SequenceOrder  int           `json:"sequence_order"`
	StaffID        *int64        `json:"staff_id"` // nil means unassigned
	ServiceStatus  BookingStatus `json:"service_status"`
}

// Minutes returns the chair time the item occupies, cleanup included.
func (i *BookingItem) Minutes() int {
	return (i.QuotedDuration + i.QuotedCleanup) * i.Quantity
}

// TotalMinutes sums chair time over all line items in sequence.
func (b *Booking) TotalMinutes() int {
	total := 0
	for _, item := range b.Items {
		total += item.Minutes()
	}
	return total
}

// FinishMinute is the derived end of the booking.
func (b *Booking) FinishMinute() int {
	return b.StartMinute + b.TotalMinutes()
}

// Window is the booking-level conflict window [start, finish) on the booking date.
// Conflicts are checked at this level regardless of how many items the booking has.
func (b *Booking) Window() TimeRange {
	return TimeRange{Date: b.Date, StartMinute: b.StartMinute, EndMinute: b.FinishMinute()}
}

// ConflictInfo describes an existing booking that blocks an assignment.
type ConflictInfo struct {
	BookingID    int64     `json:"booking_id"`
	CustomerName string    `json:"customer_name"`
	Window       TimeRange `json:"window"`
}

// Terminal reports whether the status no longer occupies a staff member's time.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// AssignedTo reports whether any line item of the booking is assigned to the staff member.
func (b *Booking) AssignedTo(staffID int64) bool {
	for _, item := range b.Items {
		if item.StaffID != nil && *item.StaffID == staffID {
			return true
		}
	}
	return false
}
