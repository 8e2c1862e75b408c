package service

import (
	"context"
	"fmt"
	"time"

	"github.com/glowdesk/salon_backend/internal/metrics"
	"github.com/glowdesk/salon_backend/internal/model"
	"go.uber.org/zap"
)

// AllocationService decides which staff member may take which time window.
// The conflict check and the commit run while a per-(staff, date) lock is
// held, so concurrent requests for the same staff member serialize and the
// loser fails cleanly instead of double-booking.
type AllocationService struct {
	staffStore    StaffStore
	serviceStore  ServiceStore
	scheduleStore ScheduleStore
	bookingStore  BookingStore
	locker        StaffDayLocker
	logger        *zap.Logger
}

func NewAllocationService(
	staffStore StaffStore,
	serviceStore ServiceStore,
	scheduleStore ScheduleStore,
	bookingStore BookingStore,
	locker StaffDayLocker,
	logger *zap.Logger,
) *AllocationService {
	return &AllocationService{
		staffStore:    staffStore,
		serviceStore:  serviceStore,
		scheduleStore: scheduleStore,
		bookingStore:  bookingStore,
		locker:        locker,
		logger:        logger,
	}
}

// AssignResult is returned to the caller of AssignStaff.
type AssignResult struct {
	StaffName *string `json:"staff_name"`
}

// AssignStaff assigns a staff member to a booking line item, or clears the
// assignment when staffID is nil. Unassigning always succeeds and is
// idempotent; assigning validates the staff member, eligibility and the
// absence of an overlapping booking before committing.
func (s *AllocationService) AssignStaff(ctx context.Context, actorID, itemID int64, staffID *int64) (*AssignResult, error) {
	item, err := s.bookingStore.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get line item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	// Unassign: no eligibility or conflict check.
	if staffID == nil {
		if err := s.bookingStore.SetItemStaff(ctx, itemID, nil); err != nil {
			return nil, fmt.Errorf("clear item staff: %w", err)
		}
		s.logger.Info("Staff unassigned from line item",
			zap.Int64("actor_id", actorID),
			zap.Int64("item_id", itemID),
		)
		return &AssignResult{}, nil
	}

	booking, err := s.bookingStore.GetByID(ctx, item.BookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	svc, err := s.serviceStore.GetByID(ctx, item.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	staff, err := s.staffStore.GetByID(ctx, *staffID)
	if err != nil {
		return nil, fmt.Errorf("get staff: %w", err)
	}
	if staff == nil {
		metrics.AssignmentsRejectedTotal.WithLabelValues("not_found").Inc()
		return nil, ErrStaffNotFound
	}
	if !staff.Active {
		metrics.AssignmentsRejectedTotal.WithLabelValues("inactive").Inc()
		return nil, ErrInactiveStaff
	}

	decision := model.EvaluateAssignment(staff.Role, svc.Category)
	if !decision.Allowed {
		metrics.AssignmentsRejectedTotal.WithLabelValues("role_mismatch").Inc()
		return nil, roleMismatchError(svc.Category)
	}

	window := booking.Window()

	release, err := s.locker.Acquire(ctx, *staffID, booking.Date)
	if err != nil {
		return nil, fmt.Errorf("acquire staff day lock: %w", err)
	}
	defer release()

	conflicts, err := s.bookingStore.GetOverlapping(ctx, *staffID, window, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("check conflicts: %w", err)
	}
	if len(conflicts) > 0 {
		metrics.AssignmentsRejectedTotal.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: busy %s", ErrStaffUnavailable, conflicts[0].Window)
	}

	if err := s.bookingStore.SetItemStaff(ctx, itemID, staffID); err != nil {
		return nil, fmt.Errorf("set item staff: %w", err)
	}

	if decision.OverrideUsed {
		metrics.OverridesTotal.Inc()
		s.logger.Warn("Eligibility override used",
			zap.Int64("actor_id", actorID),
			zap.Int64("item_id", itemID),
			zap.Int64("staff_id", *staffID),
			zap.String("staff_role", string(staff.Role)),
			zap.String("category", string(svc.Category)),
		)
	}

	metrics.AssignmentsTotal.Inc()
	s.logger.Info("Staff assigned to line item",
		zap.Int64("actor_id", actorID),
		zap.Int64("item_id", itemID),
		zap.Int64("booking_id", booking.ID),
		zap.Int64("staff_id", *staffID),
		zap.Bool("override", decision.OverrideUsed),
	)

	return &AssignResult{StaffName: &staff.Name}, nil
}

// Reschedule moves a booking to a new staff member and start time. The
// eligibility of the new staff member is re-validated for every line item, and
// the conflict check runs against the would-be window at the new start.
func (s *AllocationService) Reschedule(ctx context.Context, actorID, bookingID, staffID int64, startMinute int) error {
	if startMinute < 0 || startMinute >= 24*60 {
		return fmt.Errorf("%w: start minute %d out of range", ErrValidation, startMinute)
	}

	booking, err := s.bookingStore.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return ErrBookingNotFound
	}
	if booking.Status.Terminal() {
		return fmt.Errorf("%w: booking is %s", ErrValidation, booking.Status)
	}

	staff, err := s.staffStore.GetByID(ctx, staffID)
	if err != nil {
		return fmt.Errorf("get staff: %w", err)
	}
	if staff == nil {
		return ErrStaffNotFound
	}
	if !staff.Active {
		return ErrInactiveStaff
	}

	for _, item := range booking.Items {
		svc, err := s.serviceStore.GetByID(ctx, item.ServiceID)
		if err != nil {
			return fmt.Errorf("get service: %w", err)
		}
		if svc == nil {
			return ErrServiceNotFound
		}
		decision := model.EvaluateAssignment(staff.Role, svc.Category)
		if !decision.Allowed {
			return roleMismatchError(svc.Category)
		}
		if decision.OverrideUsed {
			metrics.OverridesTotal.Inc()
			s.logger.Warn("Eligibility override used on reschedule",
				zap.Int64("actor_id", actorID),
				zap.Int64("booking_id", bookingID),
				zap.Int64("item_id", item.ID),
				zap.String("staff_role", string(staff.Role)),
				zap.String("category", string(svc.Category)),
			)
		}
	}

	// Same total duration at the new start.
	window := model.TimeRange{
		Date:        booking.Date,
		StartMinute: startMinute,
		EndMinute:   startMinute + booking.TotalMinutes(),
	}

	release, err := s.locker.Acquire(ctx, staffID, booking.Date)
	if err != nil {
		return fmt.Errorf("acquire staff day lock: %w", err)
	}
	defer release()

	conflicts, err := s.bookingStore.GetOverlapping(ctx, staffID, window, bookingID)
	if err != nil {
		return fmt.Errorf("check conflicts: %w", err)
	}
	if len(conflicts) > 0 {
		return fmt.Errorf("%w: busy %s", ErrConflict, conflicts[0].Window)
	}

	if err := s.bookingStore.Reschedule(ctx, bookingID, staffID, startMinute); err != nil {
		return fmt.Errorf("reschedule booking: %w", err)
	}

	metrics.ReschedulesTotal.Inc()
	s.logger.Info("Booking rescheduled",
		zap.Int64("actor_id", actorID),
		zap.Int64("booking_id", bookingID),
		zap.Int64("staff_id", staffID),
		zap.String("window", window.String()),
	)

	return nil
}

// ListAvailableStaff returns active staff members who may perform the category,
// are scheduled to work through the window, and have no conflicting booking.
func (s *AllocationService) ListAvailableStaff(ctx context.Context, date time.Time, startMinute, durationMinutes int, category model.ServiceCategory) ([]*model.StaffMember, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrValidation)
	}

	window := model.TimeRange{
		Date:        model.DateOnly(date),
		StartMinute: startMinute,
		EndMinute:   startMinute + durationMinutes,
	}

	members, err := s.staffStore.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("get active staff: %w", err)
	}

	var available []*model.StaffMember
	for _, staff := range members {
		if !model.EvaluateAssignment(staff.Role, category).Allowed {
			continue
		}

		entry, err := s.scheduleStore.GetByStaffAndDate(ctx, staff.ID, date)
		if err != nil {
			return nil, fmt.Errorf("get schedule entry: %w", err)
		}
		if entry == nil || entry.WorkStatus != model.WorkStatusWorking {
			continue
		}
		if startMinute < entry.StartMinute || window.EndMinute > entry.EndMinute {
			continue
		}

		conflicts, err := s.bookingStore.GetOverlapping(ctx, staff.ID, window, 0)
		if err != nil {
			return nil, fmt.Errorf("check conflicts: %w", err)
		}
		if len(conflicts) == 0 {
			available = append(available, staff)
		}
	}

	return available, nil
}

func roleMismatchError(category model.ServiceCategory) error {
	roles := model.AllowedRoles(category)
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return fmt.Errorf("%w: category %q requires one of: %v", ErrRoleMismatch, category, names)
}
