package model

import "time"

type ServiceCategory string

const (
	CategoryHaircut  ServiceCategory = "haircut"
	CategoryHair     ServiceCategory = "hair"
	CategoryFacial   ServiceCategory = "facial"
	CategoryManicure ServiceCategory = "manicure"
	CategoryNail     ServiceCategory = "nail"
	CategoryMassage  ServiceCategory = "massage"
)

// Service is a catalog entry. The engine reads it only to resolve the category
// and the base duration/cleanup/price snapshotted into booking line items.
type Service struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Category        ServiceCategory `json:"category"`
	DurationMinutes int             `json:"duration_minutes"`
	CleanupMinutes  int             `json:"cleanup_minutes"`
	Price           int64           `json:"price"` // minor currency units
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
}
