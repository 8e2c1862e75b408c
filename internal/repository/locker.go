package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/glowdesk/salon_backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StaffDayLocker serializes assignment commits per (staff, date) with a
// Postgres advisory lock. The conflict read and the commit of a new
// assignment must both happen while the lock is held; competing writers for
// the same staff member and day queue on the lock, so a losing request sees
// the winner's booking and fails with a conflict instead of double-booking.
type StaffDayLocker struct {
	pool *pgxpool.Pool
}

func NewStaffDayLocker(pool *pgxpool.Pool) *StaffDayLocker {
	return &StaffDayLocker{pool: pool}
}

// Acquire blocks until the (staff, date) lock is held and returns the release
// function. The lock lives on a dedicated pooled connection so it survives
// across the statements run in between.
func (l *StaffDayLocker) Acquire(ctx context.Context, staffID int64, date time.Time) (func(), error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock connection: %w", err)
	}

	key1 := int32(staffID)
	key2 := int32(model.DateOnly(date).Unix() / 86400)

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1, $2)`, key1, key2); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire staff day lock: %w", err)
	}

	release := func() {
		// Unlock on a fresh context: the caller's may already be done.
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1, $2)`, key1, key2)
		conn.Release()
	}

	return release, nil
}
