package service

import (
	"context"
	"testing"
	"time"

	"github.com/glowdesk/salon_backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bookingFixture struct {
	store    *fakeStore
	bookings *BookingService
	haircut  *model.Service
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	f := newFakeStore()
	haircut := f.addService(&model.Service{Name: "Cut", Category: model.CategoryHaircut, DurationMinutes: 60, CleanupMinutes: 10, Price: 4500, Active: true})
	svc := NewBookingService(fakeBookingStore{f}, fakeServiceStore{f}, zap.NewNop())
	return &bookingFixture{store: f, bookings: svc, haircut: haircut}
}

func TestCreateBookingSnapshotsQuotes(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	b := &model.Booking{
		CustomerID:   1,
		CustomerName: "Ann",
		Date:         june1,
		StartMinute:  600,
		Items: []*model.BookingItem{
			{ServiceID: fx.haircut.ID, Quantity: 1, SequenceOrder: 1},
		},
	}
	require.NoError(t, fx.bookings.Create(ctx, actorID, b))

	// Quotes snapshotted from the catalog at booking time.
	assert.Equal(t, 60, b.Items[0].QuotedDuration)
	assert.Equal(t, 10, b.Items[0].QuotedCleanup)
	assert.Equal(t, int64(4500), b.Items[0].QuotedPrice)
	assert.Equal(t, model.BookingStatusConfirmed, b.Status)
	assert.Equal(t, 670, b.FinishMinute())

	// Later catalog edits never alter the existing booking.
	fx.haircut.DurationMinutes = 90
	got, err := fx.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, got.Items[0].QuotedDuration)
}

func TestCreateBookingSequenceOrderInvariant(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	cases := map[string][]*model.BookingItem{
		"duplicate": {
			{ServiceID: fx.haircut.ID, Quantity: 1, SequenceOrder: 1},
			{ServiceID: fx.haircut.ID, Quantity: 1, SequenceOrder: 1},
		},
		"gap": {
			{ServiceID: fx.haircut.ID, Quantity: 1, SequenceOrder: 1},
			{ServiceID: fx.haircut.ID, Quantity: 1, SequenceOrder: 3},
		},
		"zero based": {
			{ServiceID: fx.haircut.ID, Quantity: 1, SequenceOrder: 0},
		},
		"empty": nil,
	}

	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			b := &model.Booking{CustomerName: "Ann", Date: june1, StartMinute: 600, Items: items}
			err := fx.bookings.Create(ctx, actorID, b)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestBookingTransitions(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	b := &model.Booking{
		CustomerName: "Ann", Date: june1, StartMinute: 600,
		Items: []*model.BookingItem{{ServiceID: fx.haircut.ID, Quantity: 1, SequenceOrder: 1}},
	}
	require.NoError(t, fx.bookings.Create(ctx, actorID, b))

	require.NoError(t, fx.bookings.MarkInProgress(ctx, actorID, b.ID))
	assert.Equal(t, model.BookingStatusInProgress, b.Status)

	// no-show only applies to confirmed bookings
	assert.ErrorIs(t, fx.bookings.MarkNoShow(ctx, actorID, b.ID), ErrValidation)

	require.NoError(t, fx.bookings.MarkCompleted(ctx, actorID, b.ID))
	assert.Equal(t, model.BookingStatusCompleted, b.Status)
	assert.Equal(t, model.BookingStatusCompleted, b.Items[0].ServiceStatus)

	// terminal bookings cannot be cancelled
	assert.ErrorIs(t, fx.bookings.Cancel(ctx, actorID, b.ID), ErrValidation)
}

func TestCompletePastBookings(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	past := &model.Booking{
		CustomerName: "Past", Date: june1, StartMinute: 600,
		Items: []*model.BookingItem{{ServiceID: fx.haircut.ID, Quantity: 1, SequenceOrder: 1}},
	}
	require.NoError(t, fx.bookings.Create(ctx, actorID, past))

	future := &model.Booking{
		CustomerName: "Future", Date: june1, StartMinute: 1020,
		Items: []*model.BookingItem{{ServiceID: fx.haircut.ID, Quantity: 1, SequenceOrder: 1}},
	}
	require.NoError(t, fx.bookings.Create(ctx, actorID, future))

	// Sweep at 12:00 on the same day: only the finished booking completes.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	n, err := fx.bookings.CompletePastBookings(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.BookingStatusCompleted, past.Status)
	assert.Equal(t, model.BookingStatusConfirmed, future.Status)
}
