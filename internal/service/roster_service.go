package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/glowdesk/salon_backend/internal/model"
	"go.uber.org/zap"
)

// breakNeighborhoodMinutes is the adjacency window of the break heuristic:
// a gap next to a booking within this many minutes reads as a break.
const breakNeighborhoodMinutes = 15

// RosterService derives the real-time working state of staff members from
// their declared schedule and current bookings. The status is computed fresh
// on every call and never persisted.
type RosterService struct {
	staffStore    StaffStore
	scheduleStore ScheduleStore
	bookingStore  BookingStore
	breaks        BreakDetector
	logger        *zap.Logger
}

func NewRosterService(
	staffStore StaffStore,
	scheduleStore ScheduleStore,
	bookingStore BookingStore,
	breaks BreakDetector,
	logger *zap.Logger,
) *RosterService {
	if breaks == nil {
		breaks = AdjacencyBreakDetector{Neighborhood: breakNeighborhoodMinutes}
	}
	return &RosterService{
		staffStore:    staffStore,
		scheduleStore: scheduleStore,
		bookingStore:  bookingStore,
		breaks:        breaks,
		logger:        logger,
	}
}

// StatusOf computes the roster status of one staff member at a point in time.
func (s *RosterService) StatusOf(ctx context.Context, staffID int64, date time.Time, minute int) (*model.RosterInfo, error) {
	staff, err := s.staffStore.GetByID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("get staff: %w", err)
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}

	entry, err := s.scheduleStore.GetByStaffAndDate(ctx, staffID, date)
	if err != nil {
		return nil, fmt.Errorf("get schedule entry: %w", err)
	}

	bookings, err := s.bookingStore.GetByStaffAndDate(ctx, staffID, date,
		[]model.BookingStatus{model.BookingStatusConfirmed, model.BookingStatusInProgress})
	if err != nil {
		return nil, fmt.Errorf("get bookings: %w", err)
	}

	info := DeriveRosterStatus(staff, entry, bookings, minute, s.breaks)
	return &info, nil
}

// Board computes the roster status of every active staff member, ordered by
// status (clients first) then name, for the front-desk display.
func (s *RosterService) Board(ctx context.Context, date time.Time, minute int) ([]*model.RosterInfo, error) {
	members, err := s.staffStore.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("get active staff: %w", err)
	}

	var board []*model.RosterInfo
	for _, staff := range members {
		entry, err := s.scheduleStore.GetByStaffAndDate(ctx, staff.ID, date)
		if err != nil {
			return nil, fmt.Errorf("get schedule entry: %w", err)
		}
		bookings, err := s.bookingStore.GetByStaffAndDate(ctx, staff.ID, date,
			[]model.BookingStatus{model.BookingStatusConfirmed, model.BookingStatusInProgress})
		if err != nil {
			return nil, fmt.Errorf("get bookings: %w", err)
		}
		info := DeriveRosterStatus(staff, entry, bookings, minute, s.breaks)
		board = append(board, &info)
	}

	rank := map[model.RosterStatus]int{
		model.RosterWithClient: 0,
		model.RosterOnBreak:    1,
		model.RosterAvailable:  2,
		model.RosterOffDuty:    3,
	}
	sort.Slice(board, func(i, j int) bool {
		if rank[board[i].Status] != rank[board[j].Status] {
			return rank[board[i].Status] < rank[board[j].Status]
		}
		return board[i].StaffName < board[j].StaffName
	})

	return board, nil
}

// DeriveRosterStatus is the roster state machine. It is a pure function of
// the schedule entry, the day's active bookings and the current minute.
// Rules apply in priority order, first match wins:
//  1. no entry, or entry on leave: off-duty ("Off today")
//  2. outside the declared working window: off-duty
//  3. an active booking's window contains the minute: with-client
//  4. a booking adjacent to the minute (per the detector): on-break
//  5. otherwise: available
func DeriveRosterStatus(staff *model.StaffMember, entry *model.ScheduleEntry, bookings []*model.Booking, minute int, breaks BreakDetector) model.RosterInfo {
	info := model.RosterInfo{
		StaffID:   staff.ID,
		StaffName: staff.Name,
	}

	if entry == nil || entry.WorkStatus == model.WorkStatusLeave {
		info.Status = model.RosterOffDuty
		info.ScheduleText = "Off today"
		return info
	}

	info.ScheduleText = fmt.Sprintf("%s - %s",
		model.FormatMinute(entry.StartMinute), model.FormatMinute(entry.EndMinute))
	info.HoursToday = entry.ScheduledHours()

	if !entry.Window().Contains(minute) {
		info.Status = model.RosterOffDuty
		return info
	}

	for _, booking := range bookings {
		if booking.Window().Contains(minute) {
			info.Status = model.RosterWithClient
			info.CurrentClient = booking.CustomerName
			return info
		}
	}

	if breaks.InBreak(bookings, minute) {
		info.Status = model.RosterOnBreak
		info.BreakDetail = fmt.Sprintf("Back in %d minutes", breakNeighborhoodMinutes)
		return info
	}

	info.Status = model.RosterAvailable
	return info
}

// AdjacencyBreakDetector infers a break when a booking window intersects the
// ±Neighborhood minutes around the current time. This is an approximation of
// the real business rule; an explicit break schedule would replace it.
type AdjacencyBreakDetector struct {
	Neighborhood int
}

func (d AdjacencyBreakDetector) InBreak(bookings []*model.Booking, minute int) bool {
	for _, booking := range bookings {
		w := booking.Window()
		if w.StartMinute < minute+d.Neighborhood && w.EndMinute > minute-d.Neighborhood {
			return true
		}
	}
	return false
}
