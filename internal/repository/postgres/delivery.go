package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"courier/internal/domain"
	"courier/internal/repository"
)

// DeliveryRepository is a PostgreSQL implementation of repository.DeliveryRepository.
type DeliveryRepository struct {
	q Querier
}

// NewDeliveryRepository creates a new PostgreSQL delivery repository.
func NewDeliveryRepository(db *sql.DB) *DeliveryRepository {
	return &DeliveryRepository{q: db}
}

// NewDeliveryRepositoryWithTx creates a delivery repository using a transaction.
func NewDeliveryRepositoryWithTx(tx *sql.Tx) *DeliveryRepository {
	return &DeliveryRepository{q: tx}
}

const deliveryColumns = `
	id, customer_id, driver_id,
	pickup_address, pickup_lat, pickup_lng, pickup_contact_name, pickup_contact_phone, pickup_notes,
	delivery_address, delivery_lat, delivery_lng, delivery_contact_name, delivery_contact_phone, delivery_notes,
	item_description, item_weight_kg, package_size,
	distance_km, base_fee, distance_fee, total_fee, driver_fee, platform_fee,
	status, customer_rating, customer_review,
	created_at, accepted_at, picked_up_at, delivered_at, cancelled_at`

// Create persists a new delivery.
func (r *DeliveryRepository) Create(ctx context.Context, d *domain.Delivery) error {
	query := `
		INSERT INTO deliveries (` + deliveryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
	`

	_, err := r.q.ExecContext(ctx, query,
		d.ID,
		d.CustomerID,
		nullString(d.DriverID),
		d.PickupAddress,
		d.PickupLat,
		d.PickupLng,
		d.PickupContactName,
		d.PickupContactPhone,
		nullString(d.PickupNotes),
		d.DeliveryAddress,
		d.DeliveryLat,
		d.DeliveryLng,
		d.DeliveryContactName,
		d.DeliveryContactPhone,
		nullString(d.DeliveryNotes),
		nullString(d.ItemDescription),
		d.ItemWeightKg,
		nullString(d.PackageSize),
		d.DistanceKm,
		d.BaseFee,
		d.DistanceFee,
		d.TotalFee,
		d.DriverFee,
		d.PlatformFee,
		d.Status,
		nullInt(d.CustomerRating),
		nullString(d.CustomerReview),
		d.CreatedAt,
		nullTime(d.AcceptedAt),
		nullTime(d.PickedUpAt),
		nullTime(d.DeliveredAt),
		nullTime(d.CancelledAt),
	)

	return err
}

// GetByID retrieves a delivery by ID.
func (r *DeliveryRepository) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`

	d, err := scanDelivery(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return d, nil
}

// GetAll retrieves recent deliveries, newest first.
func (r *DeliveryRepository) GetAll(ctx context.Context) ([]*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries ORDER BY created_at DESC LIMIT 100`
	return r.queryDeliveries(ctx, query)
}

// GetByCustomerID retrieves a customer's deliveries, newest first.
func (r *DeliveryRepository) GetByCustomerID(ctx context.Context, customerID string) ([]*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE customer_id = $1 ORDER BY created_at DESC`
	return r.queryDeliveries(ctx, query, customerID)
}

// GetPendingUnassigned retrieves claimable deliveries, newest first.
func (r *DeliveryRepository) GetPendingUnassigned(ctx context.Context, limit int) ([]*domain.Delivery, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM deliveries
		WHERE status = 'pending' AND driver_id IS NULL
		ORDER BY created_at DESC LIMIT $1
	`
	return r.queryDeliveries(ctx, query, limit)
}

// GetActiveByDriverID retrieves the driver's in-flight deliveries.
func (r *DeliveryRepository) GetActiveByDriverID(ctx context.Context, driverID string) ([]*domain.Delivery, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM deliveries
		WHERE driver_id = $1 AND status IN ('accepted', 'picked_up', 'in_transit')
		ORDER BY accepted_at DESC
	`
	return r.queryDeliveries(ctx, query, driverID)
}

// GetHistoryByDriverID retrieves the driver's finished deliveries, newest first.
func (r *DeliveryRepository) GetHistoryByDriverID(ctx context.Context, driverID string, limit int) ([]*domain.Delivery, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM deliveries
		WHERE driver_id = $1 AND status IN ('delivered', 'cancelled')
		ORDER BY created_at DESC LIMIT $2
	`
	return r.queryDeliveries(ctx, query, driverID, limit)
}

// Claim performs the atomic compare-and-set assignment. The WHERE clause
// is the whole guarantee: only a pending, unassigned row can match, so
// under concurrent claimers at most one UPDATE reports an affected row.
func (r *DeliveryRepository) Claim(ctx context.Context, id, driverID string, at time.Time) error {
	query := `
		UPDATE deliveries
		SET driver_id = $2, status = 'accepted', accepted_at = $3
		WHERE id = $1 AND status = 'pending' AND driver_id IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, id, driverID, at)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return r.conflictOrNotFound(ctx, id)
	}

	return nil
}

// AdvanceStatus applies a guarded status transition, stamping the
// timestamp column that belongs to the target status. in_transit has no
// timestamp of its own.
func (r *DeliveryRepository) AdvanceStatus(ctx context.Context, id string, from []domain.DeliveryStatus, to domain.DeliveryStatus, at time.Time) error {
	guard := make([]string, len(from))
	for i, s := range from {
		guard[i] = string(s)
	}

	var tsColumn string
	switch to {
	case domain.DeliveryStatusAccepted:
		tsColumn = "accepted_at"
	case domain.DeliveryStatusPickedUp:
		tsColumn = "picked_up_at"
	case domain.DeliveryStatusDelivered:
		tsColumn = "delivered_at"
	case domain.DeliveryStatusCancelled:
		tsColumn = "cancelled_at"
	}

	var (
		result sql.Result
		err    error
	)
	if tsColumn == "" {
		query := `UPDATE deliveries SET status = $1 WHERE id = $2 AND status = ANY($3)`
		result, err = r.q.ExecContext(ctx, query, to, id, pq.Array(guard))
	} else {
		query := fmt.Sprintf(`UPDATE deliveries SET status = $1, %s = $2 WHERE id = $3 AND status = ANY($4)`, tsColumn)
		result, err = r.q.ExecContext(ctx, query, to, at, id, pq.Array(guard))
	}
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return r.conflictOrNotFound(ctx, id)
	}

	return nil
}

// SetRating records the customer rating exactly once, after delivery.
func (r *DeliveryRepository) SetRating(ctx context.Context, id string, rating int, review string) error {
	query := `
		UPDATE deliveries
		SET customer_rating = $2, customer_review = $3
		WHERE id = $1 AND status = 'delivered' AND customer_rating IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, id, rating, nullString(review))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return r.conflictOrNotFound(ctx, id)
	}

	return nil
}

// conflictOrNotFound distinguishes a failed guard from a missing row.
func (r *DeliveryRepository) conflictOrNotFound(ctx context.Context, id string) error {
	var exists bool
	err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM deliveries WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

func (r *DeliveryRepository) queryDeliveries(ctx context.Context, query string, args ...any) ([]*domain.Delivery, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []*domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelivery(row rowScanner) (*domain.Delivery, error) {
	var d domain.Delivery
	var (
		driverID        sql.NullString
		pickupNotes     sql.NullString
		deliveryNotes   sql.NullString
		itemDescription sql.NullString
		packageSize     sql.NullString
		customerRating  sql.NullInt64
		customerReview  sql.NullString
		acceptedAt      sql.NullTime
		pickedUpAt      sql.NullTime
		deliveredAt     sql.NullTime
		cancelledAt     sql.NullTime
	)

	err := row.Scan(
		&d.ID,
		&d.CustomerID,
		&driverID,
		&d.PickupAddress,
		&d.PickupLat,
		&d.PickupLng,
		&d.PickupContactName,
		&d.PickupContactPhone,
		&pickupNotes,
		&d.DeliveryAddress,
		&d.DeliveryLat,
		&d.DeliveryLng,
		&d.DeliveryContactName,
		&d.DeliveryContactPhone,
		&deliveryNotes,
		&itemDescription,
		&d.ItemWeightKg,
		&packageSize,
		&d.DistanceKm,
		&d.BaseFee,
		&d.DistanceFee,
		&d.TotalFee,
		&d.DriverFee,
		&d.PlatformFee,
		&d.Status,
		&customerRating,
		&customerReview,
		&d.CreatedAt,
		&acceptedAt,
		&pickedUpAt,
		&deliveredAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	d.DriverID = driverID.String
	d.PickupNotes = pickupNotes.String
	d.DeliveryNotes = deliveryNotes.String
	d.ItemDescription = itemDescription.String
	d.PackageSize = packageSize.String
	d.CustomerRating = int(customerRating.Int64)
	d.CustomerReview = customerReview.String
	if acceptedAt.Valid {
		d.AcceptedAt = acceptedAt.Time
	}
	if pickedUpAt.Valid {
		d.PickedUpAt = pickedUpAt.Time
	}
	if deliveredAt.Valid {
		d.DeliveredAt = deliveredAt.Time
	}
	if cancelledAt.Valid {
		d.CancelledAt = cancelledAt.Time
	}

	return &d, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
