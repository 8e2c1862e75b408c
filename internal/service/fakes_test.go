package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/glowdesk/salon_backend/internal/model"
)

// fakeStore is an in-memory implementation of the store ports, mirroring the
// query semantics of the pgx repositories.
type fakeStore struct {
	mu       sync.Mutex
	staff    map[int64]*model.StaffMember
	services map[int64]*model.Service
	entries  []*model.ScheduleEntry
	bookings map[int64]*model.Booking
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		staff:    make(map[int64]*model.StaffMember),
		services: make(map[int64]*model.Service),
		bookings: make(map[int64]*model.Booking),
		nextID:   1000,
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addStaff(s *model.StaffMember) *model.StaffMember {
	if s.ID == 0 {
		s.ID = f.id()
	}
	f.staff[s.ID] = s
	return s
}

func (f *fakeStore) addService(s *model.Service) *model.Service {
	if s.ID == 0 {
		s.ID = f.id()
	}
	f.services[s.ID] = s
	return s
}

func (f *fakeStore) addEntry(e *model.ScheduleEntry) *model.ScheduleEntry {
	e.Date = model.DateOnly(e.Date)
	f.entries = append(f.entries, e)
	return e
}

func (f *fakeStore) addBooking(b *model.Booking) *model.Booking {
	if b.ID == 0 {
		b.ID = f.id()
	}
	b.Date = model.DateOnly(b.Date)
	for _, item := range b.Items {
		if item.ID == 0 {
			item.ID = f.id()
		}
		item.BookingID = b.ID
	}
	f.bookings[b.ID] = b
	return b
}

// StaffStore

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*model.StaffMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.staff[id], nil
}

func (f *fakeStore) GetActive(ctx context.Context) ([]*model.StaffMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.StaffMember
	for _, s := range f.staff {
		if s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

// ServiceStore is split off so the same fake can satisfy both ports despite
// the clashing GetByID signatures.
type fakeServiceStore struct{ f *fakeStore }

func (s fakeServiceStore) GetByID(ctx context.Context, id int64) (*model.Service, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	return s.f.services[id], nil
}

// ScheduleStore

type fakeScheduleStore struct{ f *fakeStore }

func (s fakeScheduleStore) GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time) (*model.ScheduleEntry, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	for _, e := range s.f.entries {
		if e.StaffID == staffID && model.SameDate(e.Date, date) {
			return e, nil
		}
	}
	return nil, nil
}

func (s fakeScheduleStore) GetRange(ctx context.Context, staffID *int64, from, to time.Time) ([]*model.ScheduleEntry, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []*model.ScheduleEntry
	for _, e := range s.f.entries {
		if e.Date.Before(model.DateOnly(from)) || e.Date.After(model.DateOnly(to)) {
			continue
		}
		if staffID != nil && e.StaffID != *staffID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// BookingStore

type fakeBookingStore struct{ f *fakeStore }

func (s fakeBookingStore) Create(ctx context.Context, booking *model.Booking) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.addBooking(booking)
	return nil
}

func (s fakeBookingStore) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	return s.f.bookings[id], nil
}

func (s fakeBookingStore) GetItemByID(ctx context.Context, id int64) (*model.BookingItem, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	for _, b := range s.f.bookings {
		for _, item := range b.Items {
			if item.ID == id {
				return item, nil
			}
		}
	}
	return nil, nil
}

func (s fakeBookingStore) SetItemStaff(ctx context.Context, itemID int64, staffID *int64) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	for _, b := range s.f.bookings {
		for _, item := range b.Items {
			if item.ID == itemID {
				item.StaffID = staffID
				return nil
			}
		}
	}
	return fmt.Errorf("booking item not found")
}

func (s fakeBookingStore) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	b, ok := s.f.bookings[id]
	if !ok {
		return fmt.Errorf("booking not found")
	}
	b.Status = status
	for _, item := range b.Items {
		item.ServiceStatus = status
	}
	return nil
}

func (s fakeBookingStore) Reschedule(ctx context.Context, bookingID, staffID int64, startMinute int) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	b, ok := s.f.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking not found")
	}
	b.StartMinute = startMinute
	for _, item := range b.Items {
		id := staffID
		item.StaffID = &id
	}
	return nil
}

func (s fakeBookingStore) GetOverlapping(ctx context.Context, staffID int64, window model.TimeRange, excludeBookingID int64) ([]*model.ConflictInfo, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []*model.ConflictInfo
	for _, b := range s.f.bookings {
		if b.ID == excludeBookingID || b.Status.Terminal() || !b.AssignedTo(staffID) {
			continue
		}
		if b.Window().Overlaps(window) {
			out = append(out, &model.ConflictInfo{
				BookingID:    b.ID,
				CustomerName: b.CustomerName,
				Window:       b.Window(),
			})
		}
	}
	return out, nil
}

func (s fakeBookingStore) GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time, statuses []model.BookingStatus) ([]*model.Booking, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []*model.Booking
	for _, b := range s.f.bookings {
		if !model.SameDate(b.Date, date) || !b.AssignedTo(staffID) || !statusIn(b.Status, statuses) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s fakeBookingStore) GetRange(ctx context.Context, staffID *int64, from, to time.Time, statuses []model.BookingStatus) ([]*model.Booking, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []*model.Booking
	for _, b := range s.f.bookings {
		if b.Date.Before(model.DateOnly(from)) || b.Date.After(model.DateOnly(to)) {
			continue
		}
		if !statusIn(b.Status, statuses) {
			continue
		}
		if staffID != nil && !b.AssignedTo(*staffID) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func statusIn(status model.BookingStatus, statuses []model.BookingStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// fakeLocker serializes the critical section with one mutex; enough to give
// the atomicity the real advisory lock provides per (staff, date).
type fakeLocker struct {
	mu sync.Mutex
}

func (l *fakeLocker) Acquire(ctx context.Context, staffID int64, date time.Time) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}
