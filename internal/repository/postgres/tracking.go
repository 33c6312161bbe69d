package postgres

import (
	"context"
	"database/sql"

	"courier/internal/domain"
)

// TrackingRepository is a PostgreSQL implementation of repository.TrackingRepository.
type TrackingRepository struct {
	q Querier
}

// NewTrackingRepository creates a new PostgreSQL tracking repository.
func NewTrackingRepository(db *sql.DB) *TrackingRepository {
	return &TrackingRepository{q: db}
}

// Append durably stores one position sample.
func (r *TrackingRepository) Append(ctx context.Context, s *domain.TrackingSample) error {
	query := `
		INSERT INTO delivery_tracking (id, delivery_id, driver_id, lat, lng, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query, s.ID, s.DeliveryID, s.DriverID, s.Lat, s.Lng, s.CreatedAt)
	return err
}

// ListByDeliveryID retrieves a delivery's samples, oldest first.
func (r *TrackingRepository) ListByDeliveryID(ctx context.Context, deliveryID string) ([]*domain.TrackingSample, error) {
	query := `
		SELECT id, delivery_id, driver_id, lat, lng, created_at
		FROM delivery_tracking
		WHERE delivery_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, deliveryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*domain.TrackingSample
	for rows.Next() {
		var s domain.TrackingSample
		if err := rows.Scan(&s.ID, &s.DeliveryID, &s.DriverID, &s.Lat, &s.Lng, &s.CreatedAt); err != nil {
			return nil, err
		}
		samples = append(samples, &s)
	}
	return samples, rows.Err()
}
