package repository

import (
	"context"
	"fmt"

	"github.com/glowdesk/salon_backend/internal/model"
	"github.com/glowdesk/salon_backend/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ServiceRepository struct {
	pool *pgxpool.Pool
}

func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

// Create inserts a catalog service.
func (r *ServiceRepository) Create(ctx context.Context, svc *model.Service) error {
	query := `
		INSERT INTO services (name, category, duration_minutes, cleanup_minutes, price, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		svc.Name,
		svc.Category,
		svc.DurationMinutes,
		svc.CleanupMinutes,
		svc.Price,
		svc.Active,
	).Scan(&svc.ID, &svc.CreatedAt)

	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	return nil
}

// GetByID fetches a service by ID, nil if absent.
func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*model.Service, error) {
	query := `
		SELECT id, name, category, duration_minutes, cleanup_minutes, price, active, created_at
		FROM services
		WHERE id = $1
	`

	var svc model.Service
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.Name,
		&svc.Category,
		&svc.DurationMinutes,
		&svc.CleanupMinutes,
		&svc.Price,
		&svc.Active,
		&svc.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service by id: %w", err)
	}

	return &svc, nil
}

// GetActive lists active catalog services ordered by category and name.
func (r *ServiceRepository) GetActive(ctx context.Context) ([]*model.Service, error) {
	query := `
		SELECT id, name, category, duration_minutes, cleanup_minutes, price, active, created_at
		FROM services
		WHERE active = true
		ORDER BY category, name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active services: %w", err)
	}
	defer rows.Close()

	var services []*model.Service
	for rows.Next() {
		var svc model.Service
		err := rows.Scan(
			&svc.ID,
			&svc.Name,
			&svc.Category,
			&svc.DurationMinutes,
			&svc.CleanupMinutes,
			&svc.Price,
			&svc.Active,
			&svc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, &svc)
	}

	return services, nil
}
