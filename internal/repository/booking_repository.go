package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/glowdesk/salon_backend/internal/model"
	"github.com/glowdesk/salon_backend/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// itemMinutesExpr derives a booking's total chair time from its line items.
// Finish time is never stored; every query that needs it computes it this way.
const itemMinutesExpr = `COALESCE((
	SELECT SUM((i.quoted_duration + i.quoted_cleanup) * i.quantity)
	FROM booking_items i
	WHERE i.booking_id = b.id), 0)`

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Create inserts a booking together with its line items in one transaction.
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO bookings (customer_id, customer_name, booking_date, start_minute, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(
		ctx, query,
		booking.CustomerID,
		booking.CustomerName,
		model.DateOnly(booking.Date),
		booking.StartMinute,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	itemQuery := `
		INSERT INTO booking_items
			(booking_id, service_id, quoted_duration, quoted_cleanup, quoted_price, quantity, sequence_order, staff_id, service_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	for _, item := range booking.Items {
		item.BookingID = booking.ID
		err = tx.QueryRow(
			ctx, itemQuery,
			item.BookingID,
			item.ServiceID,
			item.QuotedDuration,
			item.QuotedCleanup,
			item.QuotedPrice,
			item.Quantity,
			item.SequenceOrder,
			item.StaffID,
			item.ServiceStatus,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("create booking item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID fetches a booking with its line items, nil if absent.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	query := `
		SELECT id, customer_id, customer_name, booking_date, start_minute, status, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var booking model.Booking
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.CustomerID,
		&booking.CustomerName,
		&booking.Date,
		&booking.StartMinute,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	booking.Items, err = r.getItems(ctx, r.pool, booking.ID)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

// GetItemByID fetches a single line item, nil if absent.
func (r *BookingRepository) GetItemByID(ctx context.Context, id int64) (*model.BookingItem, error) {
	query := `
		SELECT id, booking_id, service_id, quoted_duration, quoted_cleanup, quoted_price,
		       quantity, sequence_order, staff_id, service_status
		FROM booking_items
		WHERE id = $1
	`

	var item model.BookingItem
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.BookingID,
		&item.ServiceID,
		&item.QuotedDuration,
		&item.QuotedCleanup,
		&item.QuotedPrice,
		&item.Quantity,
		&item.SequenceOrder,
		&item.StaffID,
		&item.ServiceStatus,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking item by id: %w", err)
	}

	return &item, nil
}

// SetItemStaff sets or clears (nil) the staff reference of a line item.
func (r *BookingRepository) SetItemStaff(ctx context.Context, itemID int64, staffID *int64) error {
	query := `
		UPDATE booking_items
		SET staff_id = $1
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, staffID, itemID)
	if err != nil {
		return fmt.Errorf("set item staff: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking item not found")
	}

	return nil
}

// UpdateStatus moves a booking to a new status, mirrored onto its line items.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE bookings
		SET status = $1, updated_at = now()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}

	_, err = tx.Exec(ctx, `
		UPDATE booking_items
		SET service_status = $1
		WHERE booking_id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("update item statuses: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Reschedule atomically moves a booking to a new start time and reassigns
// every line item to the new staff member.
func (r *BookingRepository) Reschedule(ctx context.Context, bookingID, staffID int64, startMinute int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE bookings
		SET start_minute = $1, updated_at = now()
		WHERE id = $2
	`, startMinute, bookingID)
	if err != nil {
		return fmt.Errorf("update booking start: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}

	_, err = tx.Exec(ctx, `
		UPDATE booking_items
		SET staff_id = $1
		WHERE booking_id = $2
	`, staffID, bookingID)
	if err != nil {
		return fmt.Errorf("update item staff: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetOverlapping returns non-terminal bookings assigned to the staff member on
// the window's date whose derived conflict window overlaps it, excluding one
// booking ID (the booking being assigned or moved).
func (r *BookingRepository) GetOverlapping(ctx context.Context, staffID int64, window model.TimeRange, excludeBookingID int64) ([]*model.ConflictInfo, error) {
	query := `
		SELECT b.id, b.customer_name, b.booking_date, b.start_minute,
		       b.start_minute + ` + itemMinutesExpr + ` AS finish_minute
		FROM bookings b
		WHERE b.booking_date = $1
		  AND b.id <> $2
		  AND b.status NOT IN ('cancelled', 'completed')
		  AND EXISTS (
			SELECT 1 FROM booking_items i
			WHERE i.booking_id = b.id AND i.staff_id = $3
		  )
		  AND b.start_minute < $4
		  AND b.start_minute + ` + itemMinutesExpr + ` > $5
		ORDER BY b.start_minute
	`

	rows, err := r.pool.Query(ctx, query,
		model.DateOnly(window.Date),
		excludeBookingID,
		staffID,
		window.EndMinute,
		window.StartMinute,
	)
	if err != nil {
		return nil, fmt.Errorf("get overlapping bookings: %w", err)
	}
	defer rows.Close()

	var conflicts []*model.ConflictInfo
	for rows.Next() {
		var c model.ConflictInfo
		var finish int
		err := rows.Scan(&c.BookingID, &c.CustomerName, &c.Window.Date, &c.Window.StartMinute, &finish)
		if err != nil {
			return nil, fmt.Errorf("scan conflict: %w", err)
		}
		c.Window.EndMinute = finish
		conflicts = append(conflicts, &c)
	}

	return conflicts, nil
}

// GetByStaffAndDate returns bookings (with items) assigned to the staff member
// on the date, restricted to the given statuses.
func (r *BookingRepository) GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time, statuses []model.BookingStatus) ([]*model.Booking, error) {
	query := `
		SELECT b.id, b.customer_id, b.customer_name, b.booking_date, b.start_minute, b.status, b.created_at, b.updated_at
		FROM bookings b
		WHERE b.booking_date = $1
		  AND b.status = ANY($2)
		  AND EXISTS (
			SELECT 1 FROM booking_items i
			WHERE i.booking_id = b.id AND i.staff_id = $3
		  )
		ORDER BY b.start_minute
	`

	rows, err := r.pool.Query(ctx, query, model.DateOnly(date), statusStrings(statuses), staffID)
	if err != nil {
		return nil, fmt.Errorf("get bookings by staff and date: %w", err)
	}

	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, err
	}

	return r.attachItems(ctx, bookings)
}

// GetRange returns bookings (with items) between from and to inclusive,
// restricted to the given statuses. staffID nil means all staff.
func (r *BookingRepository) GetRange(ctx context.Context, staffID *int64, from, to time.Time, statuses []model.BookingStatus) ([]*model.Booking, error) {
	query := `
		SELECT b.id, b.customer_id, b.customer_name, b.booking_date, b.start_minute, b.status, b.created_at, b.updated_at
		FROM bookings b
		WHERE b.booking_date >= $1 AND b.booking_date <= $2
		  AND b.status = ANY($3)
		  AND ($4::bigint IS NULL OR EXISTS (
			SELECT 1 FROM booking_items i
			WHERE i.booking_id = b.id AND i.staff_id = $4
		  ))
		ORDER BY b.booking_date, b.start_minute
	`

	rows, err := r.pool.Query(ctx, query, model.DateOnly(from), model.DateOnly(to), statusStrings(statuses), staffID)
	if err != nil {
		return nil, fmt.Errorf("get bookings in range: %w", err)
	}

	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, err
	}

	return r.attachItems(ctx, bookings)
}

func (r *BookingRepository) getItems(ctx context.Context, db base.Querier, bookingID int64) ([]*model.BookingItem, error) {
	query := `
		SELECT id, booking_id, service_id, quoted_duration, quoted_cleanup, quoted_price,
		       quantity, sequence_order, staff_id, service_status
		FROM booking_items
		WHERE booking_id = $1
		ORDER BY sequence_order
	`

	rows, err := db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking items: %w", err)
	}
	defer rows.Close()

	var items []*model.BookingItem
	for rows.Next() {
		var item model.BookingItem
		err := rows.Scan(
			&item.ID,
			&item.BookingID,
			&item.ServiceID,
			&item.QuotedDuration,
			&item.QuotedCleanup,
			&item.QuotedPrice,
			&item.Quantity,
			&item.SequenceOrder,
			&item.StaffID,
			&item.ServiceStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking item: %w", err)
		}
		items = append(items, &item)
	}

	return items, nil
}

func (r *BookingRepository) attachItems(ctx context.Context, bookings []*model.Booking) ([]*model.Booking, error) {
	for _, booking := range bookings {
		items, err := r.getItems(ctx, r.pool, booking.ID)
		if err != nil {
			return nil, err
		}
		booking.Items = items
	}
	return bookings, nil
}

func scanBookings(rows pgx.Rows) ([]*model.Booking, error) {
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		var booking model.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.CustomerID,
			&booking.CustomerName,
			&booking.Date,
			&booking.StartMinute,
			&booking.Status,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

func statusStrings(statuses []model.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
