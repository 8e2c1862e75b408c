package service

import (
	"context"
	"time"

	"github.com/glowdesk/salon_backend/internal/model"
)

// Stores are the narrow ports the engine needs from persistence. The pgx
// repositories implement them; tests use in-memory fakes.

type StaffStore interface {
	GetByID(ctx context.Context, id int64) (*model.StaffMember, error)
	GetActive(ctx context.Context) ([]*model.StaffMember, error)
}

type ServiceStore interface {
	GetByID(ctx context.Context, id int64) (*model.Service, error)
}

type ScheduleStore interface {
	GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time) (*model.ScheduleEntry, error)
	GetRange(ctx context.Context, staffID *int64, from, to time.Time) ([]*model.ScheduleEntry, error)
}

type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	GetItemByID(ctx context.Context, id int64) (*model.BookingItem, error)
	SetItemStaff(ctx context.Context, itemID int64, staffID *int64) error
	UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) error
	Reschedule(ctx context.Context, bookingID, staffID int64, startMinute int) error
	GetOverlapping(ctx context.Context, staffID int64, window model.TimeRange, excludeBookingID int64) ([]*model.ConflictInfo, error)
	GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time, statuses []model.BookingStatus) ([]*model.Booking, error)
	GetRange(ctx context.Context, staffID *int64, from, to time.Time, statuses []model.BookingStatus) ([]*model.Booking, error)
}

// StaffDayLocker serializes the conflict-check-and-commit section per
// (staff, date) so concurrent assignments cannot double-book.
type StaffDayLocker interface {
	Acquire(ctx context.Context, staffID int64, date time.Time) (func(), error)
}

// BreakDetector decides whether a gap at the given minute counts as a break.
// The default implementation infers breaks from booking adjacency; it sits
// behind this interface so an explicit break schedule can replace it without
// touching the roster state machine.
type BreakDetector interface {
	InBreak(bookings []*model.Booking, minute int) bool
}
