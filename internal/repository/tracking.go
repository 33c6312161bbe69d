package repository

import (
	"context"

	"courier/internal/domain"
)

// TrackingRepository defines the persistence operations for tracking samples.
// Samples are append-only; there is no update or delete.
type TrackingRepository interface {
	// Append durably stores one position sample.
	Append(ctx context.Context, sample *domain.TrackingSample) error

	// ListByDeliveryID retrieves all samples for a delivery ordered by
	// creation time, oldest first.
	ListByDeliveryID(ctx context.Context, deliveryID string) ([]*domain.TrackingSample, error)
}
