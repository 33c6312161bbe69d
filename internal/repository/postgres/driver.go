package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"courier/internal/domain"
	"courier/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `
	id, COALESCE(name, ''), COALESCE(phone, ''), is_available,
	current_lat, current_lng, located_at,
	rating, rating_count, completed_trips, total_earnings`

// Create adds a new driver presence record.
func (r *DriverRepository) Create(ctx context.Context, d *domain.DriverPresence) error {
	query := `
		INSERT INTO drivers (id, name, phone, is_available, rating, rating_count, completed_trips, total_earnings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.ExecContext(ctx, query,
		d.ID, d.Name, d.Phone, d.Available, d.Rating, d.RatingCount, d.CompletedTrips, d.TotalEarnings)
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.DriverPresence, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a driver by phone number.
func (r *DriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.DriverPresence, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE phone = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, phone))
}

// GetAll retrieves all drivers.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.DriverPresence, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.DriverPresence
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

// UpdateLocation records the driver's current position, last write wins.
func (r *DriverRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64, at time.Time) error {
	query := `UPDATE drivers SET current_lat = $2, current_lng = $3, located_at = $4 WHERE id = $1`
	return r.execOnDriver(ctx, query, id, lat, lng, at)
}

// SetAvailability flips the driver's availability flag.
func (r *DriverRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	query := `UPDATE drivers SET is_available = $2 WHERE id = $1`
	return r.execOnDriver(ctx, query, id, available)
}

// RecordCompletion increments the completed-trip count and earnings total.
func (r *DriverRepository) RecordCompletion(ctx context.Context, id string, earnings int64) error {
	query := `
		UPDATE drivers
		SET completed_trips = completed_trips + 1, total_earnings = total_earnings + $2
		WHERE id = $1
	`
	return r.execOnDriver(ctx, query, id, earnings)
}

// ApplyRating folds a rating into the driver's rolling average.
func (r *DriverRepository) ApplyRating(ctx context.Context, id string, rating int) error {
	query := `
		UPDATE drivers
		SET rating = (rating * rating_count + $2) / (rating_count + 1),
		    rating_count = rating_count + 1
		WHERE id = $1
	`
	return r.execOnDriver(ctx, query, id, float64(rating))
}

func (r *DriverRepository) execOnDriver(ctx context.Context, query, id string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *DriverRepository) scanOne(row *sql.Row) (*domain.DriverPresence, error) {
	d, err := scanDriver(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func scanDriver(row rowScanner) (*domain.DriverPresence, error) {
	var d domain.DriverPresence
	var (
		lat       sql.NullFloat64
		lng       sql.NullFloat64
		locatedAt sql.NullTime
	)

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Phone,
		&d.Available,
		&lat,
		&lng,
		&locatedAt,
		&d.Rating,
		&d.RatingCount,
		&d.CompletedTrips,
		&d.TotalEarnings,
	)
	if err != nil {
		return nil, err
	}

	if locatedAt.Valid {
		d.CurrentLat = lat.Float64
		d.CurrentLng = lng.Float64
		d.LocatedAt = locatedAt.Time
	}

	return &d, nil
}
