package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/glowdesk/salon_backend/internal/model"
	"github.com/glowdesk/salon_backend/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// Upsert creates or replaces the single schedule entry for (staff, date).
func (r *ScheduleRepository) Upsert(ctx context.Context, entry *model.ScheduleEntry) error {
	query := `
		INSERT INTO schedule_entries (staff_id, work_date, start_minute, end_minute, work_status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (staff_id, work_date) DO UPDATE
		SET start_minute = EXCLUDED.start_minute,
		    end_minute = EXCLUDED.end_minute,
		    work_status = EXCLUDED.work_status
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		entry.StaffID,
		model.DateOnly(entry.Date),
		entry.StartMinute,
		entry.EndMinute,
		entry.WorkStatus,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("upsert schedule entry: %w", err)
	}

	return nil
}

// GetByStaffAndDate fetches the entry for one staff member on one date, nil if absent.
func (r *ScheduleRepository) GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time) (*model.ScheduleEntry, error) {
	query := `
		SELECT id, staff_id, work_date, start_minute, end_minute, work_status, created_at
		FROM schedule_entries
		WHERE staff_id = $1 AND work_date = $2
	`

	var entry model.ScheduleEntry
	err := r.pool.QueryRow(ctx, query, staffID, model.DateOnly(date)).Scan(
		&entry.ID,
		&entry.StaffID,
		&entry.Date,
		&entry.StartMinute,
		&entry.EndMinute,
		&entry.WorkStatus,
		&entry.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get schedule entry: %w", err)
	}

	return &entry, nil
}

// GetRange fetches entries between from and to inclusive, optionally for one staff member.
func (r *ScheduleRepository) GetRange(ctx context.Context, staffID *int64, from, to time.Time) ([]*model.ScheduleEntry, error) {
	query := `
		SELECT id, staff_id, work_date, start_minute, end_minute, work_status, created_at
		FROM schedule_entries
		WHERE work_date >= $1 AND work_date <= $2
		  AND ($3::bigint IS NULL OR staff_id = $3)
		ORDER BY work_date, staff_id
	`

	rows, err := r.pool.Query(ctx, query, model.DateOnly(from), model.DateOnly(to), staffID)
	if err != nil {
		return nil, fmt.Errorf("get schedule range: %w", err)
	}
	defer rows.Close()

	var entries []*model.ScheduleEntry
	for rows.Next() {
		var entry model.ScheduleEntry
		err := rows.Scan(
			&entry.ID,
			&entry.StaffID,
			&entry.Date,
			&entry.StartMinute,
			&entry.EndMinute,
			&entry.WorkStatus,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan schedule entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

// Delete removes the entry for (staff, date).
func (r *ScheduleRepository) Delete(ctx context.Context, staffID int64, date time.Time) error {
	query := `DELETE FROM schedule_entries WHERE staff_id = $1 AND work_date = $2`

	result, err := r.pool.Exec(ctx, query, staffID, model.DateOnly(date))
	if err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("schedule entry not found")
	}

	return nil
}
