package service

import (
	"context"
	"testing"
	"time"

	"github.com/glowdesk/salon_backend/internal/metrics"
	"github.com/glowdesk/salon_backend/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var june1 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

const actorID = int64(1)

type allocFixture struct {
	store *fakeStore
	alloc *AllocationService

	stylist    *model.StaffMember
	beautician *model.StaffMember
	nailTech   *model.StaffMember
	inactive   *model.StaffMember

	haircut      *model.Service
	facial       *model.Service
	consultation *model.Service
}

func newAllocFixture(t *testing.T) *allocFixture {
	t.Helper()
	f := newFakeStore()

	fx := &allocFixture{store: f}
	fx.stylist = f.addStaff(&model.StaffMember{Name: "Sam", Role: model.RoleHairStylist, Active: true})
	fx.beautician = f.addStaff(&model.StaffMember{Name: "Bea", Role: model.RoleBeautician, Active: true})
	fx.nailTech = f.addStaff(&model.StaffMember{Name: "Nia", Role: model.RoleNailTechnician, Active: true})
	fx.inactive = f.addStaff(&model.StaffMember{Name: "Gone", Role: model.RoleHairStylist, Active: false})

	fx.haircut = f.addService(&model.Service{Name: "Cut", Category: model.CategoryHaircut, DurationMinutes: 60, Active: true})
	fx.facial = f.addService(&model.Service{Name: "Glow", Category: model.CategoryFacial, DurationMinutes: 45, CleanupMinutes: 15, Active: true})
	fx.consultation = f.addService(&model.Service{Name: "Chat", Category: "consultation", DurationMinutes: 30, Active: true})

	fx.alloc = NewAllocationService(f, fakeServiceStore{f}, fakeScheduleStore{f}, fakeBookingStore{f}, &fakeLocker{}, zap.NewNop())
	return fx
}

// booking creates a confirmed booking with one line item for the service.
func (fx *allocFixture) booking(svc *model.Service, startMinute int) *model.Booking {
	return fx.store.addBooking(&model.Booking{
		CustomerID:   99,
		CustomerName: "Ann Client",
		Date:         june1,
		StartMinute:  startMinute,
		Status:       model.BookingStatusConfirmed,
		Items: []*model.BookingItem{{
			ServiceID:      svc.ID,
			QuotedDuration: svc.DurationMinutes,
			QuotedCleanup:  svc.CleanupMinutes,
			Quantity:       1,
			SequenceOrder:  1,
			ServiceStatus:  model.BookingStatusConfirmed,
		}},
	})
}

func TestAssignStaff(t *testing.T) {
	fx := newAllocFixture(t)
	ctx := context.Background()
	b := fx.booking(fx.haircut, 600)

	res, err := fx.alloc.AssignStaff(ctx, actorID, b.Items[0].ID, &fx.stylist.ID)
	require.NoError(t, err)
	require.NotNil(t, res.StaffName)
	assert.Equal(t, "Sam", *res.StaffName)
	assert.Equal(t, fx.stylist.ID, *b.Items[0].StaffID)
}

func TestAssignStaffNotFound(t *testing.T) {
	fx := newAllocFixture(t)
	ctx := context.Background()
	b := fx.booking(fx.haircut, 600)

	_, err := fx.alloc.AssignStaff(ctx, actorID, 424242, &fx.stylist.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, CodeNotFound, CodeOf(err))

	missing := int64(424242)
	_, err = fx.alloc.AssignStaff(ctx, actorID, b.Items[0].ID, &missing)
	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestAssignInactiveStaff(t *testing.T) {
	fx := newAllocFixture(t)
	b := fx.booking(fx.haircut, 600)

	_, err := fx.alloc.AssignStaff(context.Background(), actorID, b.Items[0].ID, &fx.inactive.ID)
	assert.ErrorIs(t, err, ErrInactiveStaff)
	assert.Equal(t, CodeInactiveStaff, CodeOf(err))
}

func TestAssignRoleMismatch(t *testing.T) {
	fx := newAllocFixture(t)
	b := fx.booking(fx.facial, 600)

	_, err := fx.alloc.AssignStaff(context.Background(), actorID, b.Items[0].ID, &fx.nailTech.ID)
	require.ErrorIs(t, err, ErrRoleMismatch)
	assert.Equal(t, CodeRoleMismatch, CodeOf(err))
	// the error names the allowed role
	assert.Contains(t, err.Error(), "beautician")
}

func TestAssignOverrideForUnconstrainedCategory(t *testing.T) {
	fx := newAllocFixture(t)
	b := fx.booking(fx.consultation, 600)

	// beautician has no mapping for "consultation" but the category is not
	// strictly claimed by any role, so the assignment goes through.
	res, err := fx.alloc.AssignStaff(context.Background(), actorID, b.Items[0].ID, &fx.beautician.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bea", *res.StaffName)
}

func TestAssignOverrideIsAudited(t *testing.T) {
	fx := newAllocFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)
	f := fx.store
	fx.alloc = NewAllocationService(f, fakeServiceStore{f}, fakeScheduleStore{f}, fakeBookingStore{f}, &fakeLocker{}, zap.New(core))
	b := fx.booking(fx.consultation, 600)

	before := testutil.ToFloat64(metrics.OverridesTotal)
	_, err := fx.alloc.AssignStaff(context.Background(), actorID, b.Items[0].ID, &fx.beautician.ID)
	require.NoError(t, err)

	// the override goes through, but never silently
	assert.InDelta(t, before+1, testutil.ToFloat64(metrics.OverridesTotal), 0.001)

	entries := logs.FilterMessage("Eligibility override used").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, actorID, fields["actor_id"])
	assert.Equal(t, fx.beautician.ID, fields["staff_id"])
	assert.Equal(t, "consultation", fields["category"])
}

func TestUnassignIdempotent(t *testing.T) {
	fx := newAllocFixture(t)
	ctx := context.Background()
	b := fx.booking(fx.haircut, 600)

	_, err := fx.alloc.AssignStaff(ctx, actorID, b.Items[0].ID, &fx.stylist.ID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		res, err := fx.alloc.AssignStaff(ctx, actorID, b.Items[0].ID, nil)
		require.NoError(t, err)
		assert.Nil(t, res.StaffName)
		assert.Nil(t, b.Items[0].StaffID)
	}
}

func TestAssignConflictAndTouchingBoundary(t *testing.T) {
	fx := newAllocFixture(t)
	ctx := context.Background()

	fx.store.addEntry(&model.ScheduleEntry{StaffID: fx.stylist.ID, Date: june1, StartMinute: 600, EndMinute: 1080, WorkStatus: model.WorkStatusWorking})

	// Booking A: 10:00-11:00 assigned to the stylist.
	a := fx.booking(fx.haircut, 600)
	_, err := fx.alloc.AssignStaff(ctx, actorID, a.Items[0].ID, &fx.stylist.ID)
	require.NoError(t, err)

	// Booking B: 10:30-11:30 overlaps, must be rejected.
	b := fx.booking(fx.haircut, 630)
	_, err = fx.alloc.AssignStaff(ctx, actorID, b.Items[0].ID, &fx.stylist.ID)
	require.ErrorIs(t, err, ErrStaffUnavailable)
	assert.Equal(t, CodeStaffUnavailable, CodeOf(err))
	assert.Nil(t, b.Items[0].StaffID)

	// Booking C: 11:00-11:30 touches A's end exactly, must commit.
	c := fx.store.addBooking(&model.Booking{
		CustomerName: "Touching",
		Date:         june1,
		StartMinute:  660,
		Status:       model.BookingStatusConfirmed,
		Items: []*model.BookingItem{{
			ServiceID:      fx.consultation.ID,
			QuotedDuration: 30,
			Quantity:       1,
			SequenceOrder:  1,
			ServiceStatus:  model.BookingStatusConfirmed,
		}},
	})
	_, err = fx.alloc.AssignStaff(ctx, actorID, c.Items[0].ID, &fx.stylist.ID)
	require.NoError(t, err)
}

func TestAssignIgnoresTerminalBookings(t *testing.T) {
	fx := newAllocFixture(t)
	ctx := context.Background()

	a := fx.booking(fx.haircut, 600)
	_, err := fx.alloc.AssignStaff(ctx, actorID, a.Items[0].ID, &fx.stylist.ID)
	require.NoError(t, err)
	require.NoError(t, fakeBookingStore{fx.store}.UpdateStatus(ctx, a.ID, model.BookingStatusCancelled))

	// Same window now commits: the cancelled booking no longer blocks.
	b := fx.booking(fx.haircut, 600)
	_, err = fx.alloc.AssignStaff(ctx, actorID, b.Items[0].ID, &fx.stylist.ID)
	require.NoError(t, err)
}

func TestNoDoubleBookingInvariant(t *testing.T) {
	fx := newAllocFixture(t)
	ctx := context.Background()

	// Try to assign many overlapping bookings; whatever commits must be
	// pairwise non-overlapping for the staff member on the day.
	for start := 540; start <= 720; start += 15 {
		b := fx.booking(fx.haircut, start)
		_, _ = fx.alloc.AssignStaff(ctx, actorID, b.Items[0].ID, &fx.stylist.ID)
	}

	var committed []*model.Booking
	for _, b := range fx.store.bookings {
		if !b.Status.Terminal() && b.AssignedTo(fx.stylist.ID) {
			committed = append(committed, b)
		}
	}
	require.NotEmpty(t, committed)
	for i := range committed {
		for j := i + 1; j < len(committed); j++ {
			assert.False(t, committed[i].Window().Overlaps(committed[j].Window()),
				"bookings %d and %d overlap", committed[i].ID, committed[j].ID)
		}
	}
}

func TestReschedule(t *testing.T) {
	fx := newAllocFixture(t)
	ctx := context.Background()

	a := fx.booking(fx.haircut, 600)
	_, err := fx.alloc.AssignStaff(ctx, actorID, a.Items[0].ID, &fx.stylist.ID)
	require.NoError(t, err)

	b := fx.booking(fx.haircut, 780)
	_, err = fx.alloc.AssignStaff(ctx, actorID, b.Items[0].ID, &fx.stylist.ID)
	require.NoError(t, err)

	// Moving B onto A's window conflicts.
	err = fx.alloc.Reschedule(ctx, actorID, b.ID, fx.stylist.ID, 630)
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, CodeConflict, CodeOf(err))
	assert.Equal(t, 780, b.StartMinute)

	// Touching A's end is fine.
	err = fx.alloc.Reschedule(ctx, actorID, b.ID, fx.stylist.ID, 660)
	require.NoError(t, err)
	assert.Equal(t, 660, b.StartMinute)
}

func TestRescheduleRevalidatesEligibility(t *testing.T) {
	fx := newAllocFixture(t)
	ctx := context.Background()

	a := fx.booking(fx.haircut, 600)
	_, err := fx.alloc.AssignStaff(ctx, actorID, a.Items[0].ID, &fx.stylist.ID)
	require.NoError(t, err)

	// Moving a haircut booking onto a nail technician is refused even though
	// the new slot itself is free.
	err = fx.alloc.Reschedule(ctx, actorID, a.ID, fx.nailTech.ID, 900)
	require.ErrorIs(t, err, ErrRoleMismatch)
	assert.Equal(t, 600, a.StartMinute)
}

func TestRescheduleValidation(t *testing.T) {
	fx := newAllocFixture(t)
	ctx := context.Background()

	err := fx.alloc.Reschedule(ctx, actorID, 424242, fx.stylist.ID, 600)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	a := fx.booking(fx.haircut, 600)
	err = fx.alloc.Reschedule(ctx, actorID, a.ID, fx.stylist.ID, -10)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, fakeBookingStore{fx.store}.UpdateStatus(ctx, a.ID, model.BookingStatusCompleted))
	err = fx.alloc.Reschedule(ctx, actorID, a.ID, fx.stylist.ID, 600)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListAvailableStaff(t *testing.T) {
	fx := newAllocFixture(t)
	ctx := context.Background()

	fx.store.addEntry(&model.ScheduleEntry{StaffID: fx.stylist.ID, Date: june1, StartMinute: 600, EndMinute: 1080, WorkStatus: model.WorkStatusWorking})
	fx.store.addEntry(&model.ScheduleEntry{StaffID: fx.beautician.ID, Date: june1, StartMinute: 600, EndMinute: 1080, WorkStatus: model.WorkStatusLeave})

	// 10:00-11:00 haircut: only the scheduled stylist qualifies.
	available, err := fx.alloc.ListAvailableStaff(ctx, june1, 600, 60, model.CategoryHaircut)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, fx.stylist.ID, available[0].ID)

	// Book the stylist solid; nobody is left.
	a := fx.booking(fx.haircut, 600)
	_, err = fx.alloc.AssignStaff(ctx, actorID, a.Items[0].ID, &fx.stylist.ID)
	require.NoError(t, err)

	available, err = fx.alloc.ListAvailableStaff(ctx, june1, 630, 30, model.CategoryHaircut)
	require.NoError(t, err)
	assert.Empty(t, available)
}
