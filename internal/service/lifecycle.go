package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"courier/internal/domain"
	"courier/internal/observability"
	"courier/internal/repository"
	"courier/internal/repository/postgres"
)

// LifecycleService validates and applies delivery status transitions,
// stamping server-side timestamps. Completion also settles the driver's
// trip count and earnings.
type LifecycleService struct {
	db           *sql.DB
	deliveryRepo repository.DeliveryRepository
	driverRepo   repository.DriverRepository
	notifier     *NotificationService
}

// NewLifecycleService creates a new LifecycleService. db may be nil in
// tests; completion then falls back to sequential repository calls.
func NewLifecycleService(
	db *sql.DB,
	deliveryRepo repository.DeliveryRepository,
	driverRepo repository.DriverRepository,
	notifier *NotificationService,
) *LifecycleService {
	return &LifecycleService{
		db:           db,
		deliveryRepo: deliveryRepo,
		driverRepo:   driverRepo,
		notifier:     notifier,
	}
}

// Advance moves a delivery to next on behalf of its assigned driver.
// Valid targets are picked_up, in_transit and delivered; in_transit is
// optional and may be skipped. Any move not in the transition table
// fails with ErrInvalidTransition and changes nothing.
func (s *LifecycleService) Advance(ctx context.Context, deliveryID, driverID string, next domain.DeliveryStatus) (*domain.Delivery, error) {
	if deliveryID == "" {
		return nil, ErrInvalidDeliveryID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	switch next {
	case domain.DeliveryStatusPickedUp, domain.DeliveryStatusInTransit, domain.DeliveryStatusDelivered:
	default:
		return nil, ErrInvalidTransition
	}

	delivery, err := s.deliveryRepo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if delivery.DriverID != driverID {
		return nil, ErrDriverNotAssigned
	}

	if !delivery.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()

	if next == domain.DeliveryStatusDelivered {
		err = s.complete(ctx, delivery, now)
	} else {
		err = s.deliveryRepo.AdvanceStatus(ctx, deliveryID, []domain.DeliveryStatus{delivery.Status}, next, now)
	}
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// The status moved underneath us; the client's view is stale.
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	observability.StatusTransitionsTotal.WithLabelValues(string(next)).Inc()

	updated, err := s.deliveryRepo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyStatusChanged(ctx, updated)
	}

	return updated, nil
}

// complete marks the delivery delivered and credits the driver's
// completed-trip count and driver fee in a single transaction.
func (s *LifecycleService) complete(ctx context.Context, delivery *domain.Delivery, now time.Time) error {
	from := []domain.DeliveryStatus{domain.DeliveryStatusPickedUp, domain.DeliveryStatusInTransit}

	if s.db == nil {
		if err := s.deliveryRepo.AdvanceStatus(ctx, delivery.ID, from, domain.DeliveryStatusDelivered, now); err != nil {
			return err
		}
		return s.driverRepo.RecordCompletion(ctx, delivery.DriverID, delivery.DriverFee)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txDeliveryRepo := postgres.NewDeliveryRepositoryWithTx(tx)
	txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)

	if err = txDeliveryRepo.AdvanceStatus(ctx, delivery.ID, from, domain.DeliveryStatusDelivered, now); err != nil {
		return err
	}

	if err = txDriverRepo.RecordCompletion(ctx, delivery.DriverID, delivery.DriverFee); err != nil {
		return err
	}

	return tx.Commit()
}

// Cancel moves a pending or accepted delivery to cancelled. Fees are
// not refunded here; settlement is an external concern.
func (s *LifecycleService) Cancel(ctx context.Context, deliveryID, cancelledBy string) (*domain.Delivery, error) {
	if deliveryID == "" {
		return nil, ErrInvalidDeliveryID
	}

	from := []domain.DeliveryStatus{domain.DeliveryStatusPending, domain.DeliveryStatusAccepted}

	err := s.deliveryRepo.AdvanceStatus(ctx, deliveryID, from, domain.DeliveryStatusCancelled, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	observability.StatusTransitionsTotal.WithLabelValues(string(domain.DeliveryStatusCancelled)).Inc()

	delivery, err := s.deliveryRepo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyDeliveryCancelled(ctx, delivery, cancelledBy)
	}

	return delivery, nil
}

// Rate records the customer's rating on a delivered delivery and folds
// it into the driver's rolling average.
func (s *LifecycleService) Rate(ctx context.Context, deliveryID string, rating int, review string) (*domain.Delivery, error) {
	if deliveryID == "" {
		return nil, ErrInvalidDeliveryID
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	err := s.deliveryRepo.SetRating(ctx, deliveryID, rating, review)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			delivery, getErr := s.deliveryRepo.GetByID(ctx, deliveryID)
			if getErr != nil {
				return nil, getErr
			}
			if delivery.Status != domain.DeliveryStatusDelivered {
				return nil, ErrNotDelivered
			}
			return nil, ErrAlreadyRated
		}
		return nil, err
	}

	delivery, err := s.deliveryRepo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if delivery.DriverID != "" {
		if err := s.driverRepo.ApplyRating(ctx, delivery.DriverID, rating); err != nil {
			return nil, err
		}
	}

	return delivery, nil
}
