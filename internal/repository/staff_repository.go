package repository

import (
	"context"
	"fmt"

	"github.com/glowdesk/salon_backend/internal/model"
	"github.com/glowdesk/salon_backend/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StaffRepository struct {
	pool *pgxpool.Pool
}

func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

// Create inserts a staff member.
func (r *StaffRepository) Create(ctx context.Context, staff *model.StaffMember) error {
	query := `
		INSERT INTO staff_members (name, phone, role, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		staff.Name,
		staff.Phone,
		staff.Role,
		staff.Active,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create staff member: %w", err)
	}

	return nil
}

// GetByID fetches a staff member by ID, nil if absent.
func (r *StaffRepository) GetByID(ctx context.Context, id int64) (*model.StaffMember, error) {
	query := `
		SELECT id, name, phone, role, active, created_at, updated_at
		FROM staff_members
		WHERE id = $1
	`

	var staff model.StaffMember
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&staff.ID,
		&staff.Name,
		&staff.Phone,
		&staff.Role,
		&staff.Active,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get staff by id: %w", err)
	}

	return &staff, nil
}

// GetActive lists active staff members ordered by name.
func (r *StaffRepository) GetActive(ctx context.Context) ([]*model.StaffMember, error) {
	query := `
		SELECT id, name, phone, role, active, created_at, updated_at
		FROM staff_members
		WHERE active = true
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active staff: %w", err)
	}
	defer rows.Close()

	var members []*model.StaffMember
	for rows.Next() {
		var staff model.StaffMember
		err := rows.Scan(
			&staff.ID,
			&staff.Name,
			&staff.Phone,
			&staff.Role,
			&staff.Active,
			&staff.CreatedAt,
			&staff.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan staff member: %w", err)
		}
		members = append(members, &staff)
	}

	return members, nil
}

// SetActive flips the active flag.
func (r *StaffRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `
		UPDATE staff_members
		SET active = $1, updated_at = now()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("set staff active: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("staff member not found")
	}

	return nil
}
