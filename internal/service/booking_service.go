package service

import (
	"context"
	"fmt"
	"time"

	"github.com/glowdesk/salon_backend/internal/model"
	"go.uber.org/zap"
)

// BookingService handles booking creation and lifecycle transitions driven by
// staff action (completed, no-show) or admin cancellation.
type BookingService struct {
	bookingStore BookingStore
	serviceStore ServiceStore
	logger       *zap.Logger
}

func NewBookingService(bookingStore BookingStore, serviceStore ServiceStore, logger *zap.Logger) *BookingService {
	return &BookingService{
		bookingStore: bookingStore,
		serviceStore: serviceStore,
		logger:       logger,
	}
}

// Create validates and persists a new booking. Line items must carry unique
// sequence orders contiguous from 1; quoted fields missing on an item are
// snapshotted from the catalog service.
func (s *BookingService) Create(ctx context.Context, actorID int64, booking *model.Booking) error {
	if len(booking.Items) == 0 {
		return fmt.Errorf("%w: booking needs at least one line item", ErrValidation)
	}
	if booking.StartMinute < 0 || booking.StartMinute >= 24*60 {
		return fmt.Errorf("%w: start minute %d out of range", ErrValidation, booking.StartMinute)
	}

	seen := make(map[int]bool, len(booking.Items))
	for _, item := range booking.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item quantity must be positive", ErrValidation)
		}
		if item.SequenceOrder < 1 || item.SequenceOrder > len(booking.Items) || seen[item.SequenceOrder] {
			return fmt.Errorf("%w: sequence orders must be unique and contiguous from 1", ErrValidation)
		}
		seen[item.SequenceOrder] = true

		svc, err := s.serviceStore.GetByID(ctx, item.ServiceID)
		if err != nil {
			return fmt.Errorf("get service: %w", err)
		}
		if svc == nil {
			return ErrServiceNotFound
		}
		if item.QuotedDuration == 0 {
			item.QuotedDuration = svc.DurationMinutes
			item.QuotedCleanup = svc.CleanupMinutes
			item.QuotedPrice = svc.Price
		}
		if item.ServiceStatus == "" {
			item.ServiceStatus = model.BookingStatusConfirmed
		}
	}

	booking.Date = model.DateOnly(booking.Date)
	if booking.Status == "" {
		booking.Status = model.BookingStatusConfirmed
	}

	if err := s.bookingStore.Create(ctx, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info("Booking created",
		zap.Int64("actor_id", actorID),
		zap.Int64("booking_id", booking.ID),
		zap.String("window", booking.Window().String()),
		zap.Int("items", len(booking.Items)),
	)

	return nil
}

// GetByID fetches a booking with its line items.
func (s *BookingService) GetByID(ctx context.Context, bookingID int64) (*model.Booking, error) {
	booking, err := s.bookingStore.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// MarkInProgress moves a confirmed booking to in-progress.
func (s *BookingService) MarkInProgress(ctx context.Context, actorID, bookingID int64) error {
	return s.transition(ctx, actorID, bookingID, model.BookingStatusInProgress,
		model.BookingStatusConfirmed)
}

// MarkCompleted moves a confirmed or in-progress booking to completed.
func (s *BookingService) MarkCompleted(ctx context.Context, actorID, bookingID int64) error {
	return s.transition(ctx, actorID, bookingID, model.BookingStatusCompleted,
		model.BookingStatusConfirmed, model.BookingStatusInProgress)
}

// MarkNoShow marks a confirmed booking as a no-show.
func (s *BookingService) MarkNoShow(ctx context.Context, actorID, bookingID int64) error {
	return s.transition(ctx, actorID, bookingID, model.BookingStatusNoShow,
		model.BookingStatusConfirmed)
}

// Cancel cancels any non-terminal booking.
func (s *BookingService) Cancel(ctx context.Context, actorID, bookingID int64) error {
	return s.transition(ctx, actorID, bookingID, model.BookingStatusCancelled,
		model.BookingStatusConfirmed, model.BookingStatusInProgress, model.BookingStatusNoShow)
}

func (s *BookingService) transition(ctx context.Context, actorID, bookingID int64, to model.BookingStatus, from ...model.BookingStatus) error {
	booking, err := s.bookingStore.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return ErrBookingNotFound
	}

	allowed := false
	for _, status := range from {
		if booking.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: cannot move %s booking to %s", ErrValidation, booking.Status, to)
	}

	if err := s.bookingStore.UpdateStatus(ctx, bookingID, to); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	s.logger.Info("Booking status changed",
		zap.Int64("actor_id", actorID),
		zap.Int64("booking_id", bookingID),
		zap.String("from", string(booking.Status)),
		zap.String("to", string(to)),
	)

	return nil
}

// CompletePastBookings marks confirmed and in-progress bookings whose window
// has fully passed as completed. Called by the background sweep.
func (s *BookingService) CompletePastBookings(ctx context.Context, now time.Time) (int, error) {
	from := model.DateOnly(now).AddDate(0, 0, -14)
	bookings, err := s.bookingStore.GetRange(ctx, nil, from, now,
		[]model.BookingStatus{model.BookingStatusConfirmed, model.BookingStatusInProgress})
	if err != nil {
		return 0, fmt.Errorf("get past bookings: %w", err)
	}

	completed := 0
	today := model.DateOnly(now)
	minute := model.MinuteOf(now)
	for _, booking := range bookings {
		past := booking.Date.Before(today) ||
			(model.SameDate(booking.Date, today) && booking.FinishMinute() <= minute)
		if !past {
			continue
		}
		if err := s.bookingStore.UpdateStatus(ctx, booking.ID, model.BookingStatusCompleted); err != nil {
			return completed, fmt.Errorf("complete booking %d: %w", booking.ID, err)
		}
		completed++
	}

	return completed, nil
}
