package repository

import (
	"context"
	"time"

	"courier/internal/domain"
)

// DeliveryRepository defines the persistence operations for deliveries.
type DeliveryRepository interface {
	// Create persists a new delivery.
	Create(ctx context.Context, delivery *domain.Delivery) error

	// GetByID retrieves a delivery by ID.
	GetByID(ctx context.Context, id string) (*domain.Delivery, error)

	// GetAll retrieves recent deliveries, newest first.
	GetAll(ctx context.Context) ([]*domain.Delivery, error)

	// GetByCustomerID retrieves a customer's deliveries, newest first.
	GetByCustomerID(ctx context.Context, customerID string) ([]*domain.Delivery, error)

	// GetPendingUnassigned retrieves pending deliveries with no driver,
	// newest first, up to limit.
	GetPendingUnassigned(ctx context.Context, limit int) ([]*domain.Delivery, error)

	// GetActiveByDriverID retrieves the driver's in-flight deliveries
	// (accepted, picked_up, in_transit).
	GetActiveByDriverID(ctx context.Context, driverID string) ([]*domain.Delivery, error)

	// GetHistoryByDriverID retrieves the driver's finished deliveries
	// (delivered, cancelled), newest first, up to limit.
	GetHistoryByDriverID(ctx context.Context, driverID string, limit int) ([]*domain.Delivery, error)

	// Claim atomically assigns a driver to a pending, unassigned
	// delivery and moves it to accepted, stamping accepted_at. It is a
	// compare-and-set: if the delivery is no longer pending or already
	// has a driver it returns ErrConflict and changes nothing.
	Claim(ctx context.Context, id, driverID string, at time.Time) error

	// AdvanceStatus moves a delivery to the given status if and only if
	// its current status is one of from, stamping the matching
	// timestamp column. Returns ErrConflict when the guard fails.
	AdvanceStatus(ctx context.Context, id string, from []domain.DeliveryStatus, to domain.DeliveryStatus, at time.Time) error

	// SetRating records the customer rating on a delivered, not yet
	// rated delivery. Returns ErrConflict otherwise.
	SetRating(ctx context.Context, id string, rating int, review string) error
}
