package repository

import (
	"context"
	"time"

	"courier/internal/domain"
)

// DriverRepository defines the persistence operations for driver presence.
type DriverRepository interface {
	// Create adds a new driver presence record.
	Create(ctx context.Context, driver *domain.DriverPresence) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.DriverPresence, error)

	// GetByPhone retrieves a driver by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.DriverPresence, error)

	// GetAll retrieves all drivers.
	GetAll(ctx context.Context) ([]*domain.DriverPresence, error)

	// UpdateLocation records the driver's current position, last write wins.
	UpdateLocation(ctx context.Context, id string, lat, lng float64, at time.Time) error

	// SetAvailability flips the driver's availability flag.
	SetAvailability(ctx context.Context, id string, available bool) error

	// RecordCompletion increments the driver's completed-trip count and
	// folds earnings into the running total.
	RecordCompletion(ctx context.Context, id string, earnings int64) error

	// ApplyRating folds a 1..5 rating into the driver's rolling average.
	ApplyRating(ctx context.Context, id string, rating int) error
}
