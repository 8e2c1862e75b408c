package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/glowdesk/salon_backend/internal/model"
	"go.uber.org/zap"
)

// bookedStatuses is the inclusion policy for booked hours: confirmed and
// completed count, cancelled and no-show never do.
var bookedStatuses = []model.BookingStatus{
	model.BookingStatusConfirmed,
	model.BookingStatusCompleted,
}

// UtilizationService aggregates scheduled vs booked time over a date range.
type UtilizationService struct {
	staffStore    StaffStore
	scheduleStore ScheduleStore
	bookingStore  BookingStore
	logger        *zap.Logger
}

func NewUtilizationService(staffStore StaffStore, scheduleStore ScheduleStore, bookingStore BookingStore, logger *zap.Logger) *UtilizationService {
	return &UtilizationService{
		staffStore:    staffStore,
		scheduleStore: scheduleStore,
		bookingStore:  bookingStore,
		logger:        logger,
	}
}

// ScheduledHours sums declared working hours in range. staffID nil means all staff.
func (s *UtilizationService) ScheduledHours(ctx context.Context, staffID *int64, from, to time.Time) (float64, error) {
	entries, err := s.scheduleStore.GetRange(ctx, staffID, from, to)
	if err != nil {
		return 0, fmt.Errorf("get schedule range: %w", err)
	}

	total := 0.0
	for _, entry := range entries {
		total += entry.ScheduledHours()
	}
	return total, nil
}

// BookedHours sums quoted chair time of confirmed and completed bookings in
// range. staffID nil means all staff; otherwise only line items assigned to
// that staff member count.
func (s *UtilizationService) BookedHours(ctx context.Context, staffID *int64, from, to time.Time) (float64, error) {
	bookings, err := s.bookingStore.GetRange(ctx, staffID, from, to, bookedStatuses)
	if err != nil {
		return 0, fmt.Errorf("get bookings in range: %w", err)
	}
	return float64(bookedMinutes(bookings, staffID)) / 60, nil
}

// Utilization builds the full report: scheduled, booked, idle hours and rate,
// plus the per-staff breakdown ordered by utilization rate descending.
func (s *UtilizationService) Utilization(ctx context.Context, staffID *int64, from, to time.Time) (*model.UtilizationReport, error) {
	entries, err := s.scheduleStore.GetRange(ctx, staffID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get schedule range: %w", err)
	}
	bookings, err := s.bookingStore.GetRange(ctx, staffID, from, to, bookedStatuses)
	if err != nil {
		return nil, fmt.Errorf("get bookings in range: %w", err)
	}

	// Scoped reports resolve the staff member by ID so an inactive member's
	// history still gets a breakdown row; salon-wide reports list active staff.
	var members []*model.StaffMember
	if staffID != nil {
		staff, err := s.staffStore.GetByID(ctx, *staffID)
		if err != nil {
			return nil, fmt.Errorf("get staff: %w", err)
		}
		if staff == nil {
			return nil, ErrStaffNotFound
		}
		members = []*model.StaffMember{staff}
	} else {
		members, err = s.staffStore.GetActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("get active staff: %w", err)
		}
	}

	scheduledBy := make(map[int64]float64)
	for _, entry := range entries {
		scheduledBy[entry.StaffID] += entry.ScheduledHours()
	}

	bookedBy := make(map[int64]int)
	for _, booking := range bookings {
		for _, item := range booking.Items {
			if item.StaffID == nil {
				continue
			}
			bookedBy[*item.StaffID] += item.Minutes()
		}
	}

	report := &model.UtilizationReport{}
	for _, staff := range members {
		row := model.StaffUtilization{
			StaffID:        staff.ID,
			StaffName:      staff.Name,
			ScheduledHours: scheduledBy[staff.ID],
			BookedHours:    float64(bookedBy[staff.ID]) / 60,
		}
		row.IdleHours = idleHours(row.ScheduledHours, row.BookedHours)
		row.UtilizationRate = rate(row.ScheduledHours, row.BookedHours)
		report.PerStaff = append(report.PerStaff, row)
	}

	sort.Slice(report.PerStaff, func(i, j int) bool {
		a, b := report.PerStaff[i], report.PerStaff[j]
		if a.UtilizationRate != b.UtilizationRate {
			return a.UtilizationRate > b.UtilizationRate
		}
		return a.StaffName < b.StaffName
	})

	for _, entry := range entries {
		report.ScheduledHours += entry.ScheduledHours()
	}
	report.BookedHours = float64(bookedMinutes(bookings, staffID)) / 60
	report.IdleHours = idleHours(report.ScheduledHours, report.BookedHours)
	report.UtilizationRate = rate(report.ScheduledHours, report.BookedHours)

	return report, nil
}

// bookedMinutes counts quoted chair minutes; scoped to one staff member's
// assigned line items when staffID is set, all line items otherwise.
func bookedMinutes(bookings []*model.Booking, staffID *int64) int {
	total := 0
	for _, booking := range bookings {
		for _, item := range booking.Items {
			if staffID != nil && (item.StaffID == nil || *item.StaffID != *staffID) {
				continue
			}
			total += item.Minutes()
		}
	}
	return total
}

// idleHours is never negative even when walk-ins push booked past scheduled.
func idleHours(scheduled, booked float64) float64 {
	if booked > scheduled {
		return 0
	}
	return scheduled - booked
}

// rate is booked/scheduled as a percentage, 0 when nothing is scheduled.
func rate(scheduled, booked float64) float64 {
	if scheduled == 0 {
		return 0
	}
	return booked / scheduled * 100
}
