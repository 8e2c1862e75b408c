package app

import (
	"context"
	"time"

	"github.com/glowdesk/salon_backend/internal/service"
	"go.uber.org/zap"
)

// Sweeper runs the periodic booking lifecycle sweep: confirmed bookings whose
// window has fully passed are marked completed so they stop occupying staff.
type Sweeper struct {
	bookingService *service.BookingService
	interval       time.Duration
	logger         *zap.Logger
	stopChan       chan struct{}
}

func NewSweeper(bookingService *service.BookingService, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Sweeper{
		bookingService: bookingService,
		interval:       interval,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting booking completion sweep", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

// Stop terminates the loop.
func (s *Sweeper) Stop() {
	s.logger.Info("Stopping booking completion sweep")
	close(s.stopChan)
}

func (s *Sweeper) run(ctx context.Context) {
	// First pass right away, then on the ticker.
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Booking completion sweep stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Booking completion sweep cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.bookingService.CompletePastBookings(ctx, time.Now())
	if err != nil {
		s.logger.Error("Booking completion sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Bookings auto-completed", zap.Int("count", n))
	}
}
