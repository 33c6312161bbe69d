package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"courier/internal/domain"
	"courier/internal/service"
)

func newLifecycleService(deliveryRepo *MockDeliveryRepository, driverRepo *MockDriverRepository) *service.LifecycleService {
	// nil db: completion settles through sequential repository calls.
	return service.NewLifecycleService(nil, deliveryRepo, driverRepo, nil)
}

func acceptedDelivery(id, driverID string) *domain.Delivery {
	return &domain.Delivery{
		ID:         id,
		CustomerID: "customer-1",
		DriverID:   driverID,
		Status:     domain.DeliveryStatusAccepted,
		DriverFee:  2550,
		CreatedAt:  time.Now().UTC(),
		AcceptedAt: time.Now().UTC(),
	}
}

func TestAdvance_Pickup(t *testing.T) {
	ctx := context.Background()
	deliveryRepo := NewMockDeliveryRepository()
	driverRepo := NewMockDriverRepository()
	svc := newLifecycleService(deliveryRepo, driverRepo)

	deliveryRepo.AddDelivery(acceptedDelivery("delivery-1", "driver-1"))
	driverRepo.AddDriver(&domain.DriverPresence{ID: "driver-1"})

	delivery, err := svc.Advance(ctx, "delivery-1", "driver-1", domain.DeliveryStatusPickedUp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivery.Status != domain.DeliveryStatusPickedUp {
		t.Errorf("expected picked_up, got %s", delivery.Status)
	}
	if delivery.PickedUpAt.IsZero() {
		t.Error("expected picked_up_at to be stamped")
	}
}

func TestAdvance_TransitLegIsOptional(t *testing.T) {
	ctx := context.Background()
	deliveryRepo := NewMockDeliveryRepository()
	driverRepo := NewMockDriverRepository()
	svc := newLifecycleService(deliveryRepo, driverRepo)

	d := acceptedDelivery("delivery-1", "driver-1")
	d.Status = domain.DeliveryStatusPickedUp
	deliveryRepo.AddDelivery(d)
	driverRepo.AddDriver(&domain.DriverPresence{ID: "driver-1"})

	// Straight from picked_up to delivered, skipping in_transit.
	delivery, err := svc.Advance(ctx, "delivery-1", "driver-1", domain.DeliveryStatusDelivered)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivery.Status != domain.DeliveryStatusDelivered {
		t.Errorf("expected delivered, got %s", delivery.Status)
	}
	if delivery.DeliveredAt.IsZero() {
		t.Error("expected delivered_at to be stamped")
	}
}

func TestAdvance_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	deliveryRepo := NewMockDeliveryRepository()
	driverRepo := NewMockDriverRepository()
	svc := newLifecycleService(deliveryRepo, driverRepo)

	deliveryRepo.AddDelivery(acceptedDelivery("delivery-1", "driver-1"))
	driverRepo.AddDriver(&domain.DriverPresence{ID: "driver-1"})

	steps := []domain.DeliveryStatus{
		domain.DeliveryStatusPickedUp,
		domain.DeliveryStatusInTransit,
		domain.DeliveryStatusDelivered,
	}
	for _, next := range steps {
		if _, err := svc.Advance(ctx, "delivery-1", "driver-1", next); err != nil {
			t.Fatalf("advance to %s failed: %v", next, err)
		}
	}

	final := deliveryRepo.GetDelivery("delivery-1")
	if final.Status != domain.DeliveryStatusDelivered {
		t.Errorf("expected delivered, got %s", final.Status)
	}
}

func TestAdvance_CompletionCreditsDriver(t *testing.T) {
	ctx := context.Background()
	deliveryRepo := NewMockDeliveryRepository()
	driverRepo := NewMockDriverRepository()
	svc := newLifecycleService(deliveryRepo, driverRepo)

	d := acceptedDelivery("delivery-1", "driver-1")
	d.Status = domain.DeliveryStatusPickedUp
	d.DriverFee = 4200
	deliveryRepo.AddDelivery(d)
	driverRepo.AddDriver(&domain.DriverPresence{ID: "driver-1", CompletedTrips: 3, TotalEarnings: 10000})

	if _, err := svc.Advance(ctx, "delivery-1", "driver-1", domain.DeliveryStatusDelivered); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	driver := driverRepo.GetDriver("driver-1")
	if driver.CompletedTrips != 4 {
		t.Errorf("expected 4 completed trips, got %d", driver.CompletedTrips)
	}
	if driver.TotalEarnings != 14200 {
		t.Errorf("expected earnings 14200, got %d", driver.TotalEarnings)
	}
}

func TestAdvance_WrongDriver(t *testing.T) {
	ctx := context.Background()
	deliveryRepo := NewMockDeliveryRepository()
	driverRepo := NewMockDriverRepository()
	svc := newLifecycleService(deliveryRepo, driverRepo)

	deliveryRepo.AddDelivery(acceptedDelivery("delivery-1", "driver-1"))

	_, err := svc.Advance(ctx, "delivery-1", "driver-2", domain.DeliveryStatusPickedUp)
	if !errors.Is(err, service.ErrDriverNotAssigned) {
		t.Errorf("expected ErrDriverNotAssigned, got %v", err)
	}
	if got := deliveryRepo.GetDelivery("delivery-1").Status; got != domain.DeliveryStatusAccepted {
		t.Errorf("rejected advance must not change status, got %s", got)
	}
}

func TestAdvance_InvalidTransitionsRejectedWithoutSideEffects(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		from domain.DeliveryStatus
		to   domain.DeliveryStatus
	}{
		{"pending to picked_up", domain.DeliveryStatusPending, domain.DeliveryStatusPickedUp},
		{"pending to delivered", domain.DeliveryStatusPending, domain.DeliveryStatusDelivered},
		{"accepted to delivered", domain.DeliveryStatusAccepted, domain.DeliveryStatusDelivered},
		{"delivered to picked_up", domain.DeliveryStatusDelivered, domain.DeliveryStatusPickedUp},
		{"cancelled to picked_up", domain.DeliveryStatusCancelled, domain.DeliveryStatusPickedUp},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deliveryRepo := NewMockDeliveryRepository()
			driverRepo := NewMockDriverRepository()
			svc := newLifecycleService(deliveryRepo, driverRepo)

			d := acceptedDelivery("delivery-1", "driver-1")
			d.Status = tc.from
			deliveryRepo.AddDelivery(d)
			driverRepo.AddDriver(&domain.DriverPresence{ID: "driver-1"})

			_, err := svc.Advance(ctx, "delivery-1", "driver-1", tc.to)
			if !errors.Is(err, service.ErrInvalidTransition) {
				t.Errorf("expected ErrInvalidTransition, got %v", err)
			}
			if got := deliveryRepo.GetDelivery("delivery-1").Status; got != tc.from {
				t.Errorf("rejected advance must not change status, got %s", got)
			}
		})
	}
}

func TestAdvance_RejectsNonForwardTargets(t *testing.T) {
	ctx := context.Background()
	deliveryRepo := NewMockDeliveryRepository()
	svc := newLifecycleService(deliveryRepo, NewMockDriverRepository())

	deliveryRepo.AddDelivery(acceptedDelivery("delivery-1", "driver-1"))

	for _, target := range []domain.DeliveryStatus{domain.DeliveryStatusPending, domain.DeliveryStatusAccepted, domain.DeliveryStatusCancelled} {
		if _, err := svc.Advance(ctx, "delivery-1", "driver-1", target); !errors.Is(err, service.ErrInvalidTransition) {
			t.Errorf("target %s: expected ErrInvalidTransition, got %v", target, err)
		}
	}
}

func TestCancel_PendingAndAccepted(t *testing.T) {
	ctx := context.Background()

	for _, from := range []domain.DeliveryStatus{domain.DeliveryStatusPending, domain.DeliveryStatusAccepted} {
		deliveryRepo := NewMockDeliveryRepository()
		svc := newLifecycleService(deliveryRepo, NewMockDriverRepository())

		d := acceptedDelivery("delivery-1", "driver-1")
		d.Status = from
		deliveryRepo.AddDelivery(d)

		delivery, err := svc.Cancel(ctx, "delivery-1", "customer-1")
		if err != nil {
			t.Fatalf("cancel from %s failed: %v", from, err)
		}
		if delivery.Status != domain.DeliveryStatusCancelled {
			t.Errorf("expected cancelled, got %s", delivery.Status)
		}
		if delivery.CancelledAt.IsZero() {
			t.Error("expected cancelled_at to be stamped")
		}
	}
}

func TestCancel_RejectedOnceUnderway(t *testing.T) {
	ctx := context.Background()

	for _, from := range []domain.DeliveryStatus{domain.DeliveryStatusPickedUp, domain.DeliveryStatusInTransit, domain.DeliveryStatusDelivered} {
		deliveryRepo := NewMockDeliveryRepository()
		svc := newLifecycleService(deliveryRepo, NewMockDriverRepository())

		d := acceptedDelivery("delivery-1", "driver-1")
		d.Status = from
		deliveryRepo.AddDelivery(d)

		if _, err := svc.Cancel(ctx, "delivery-1", "customer-1"); !errors.Is(err, service.ErrInvalidTransition) {
			t.Errorf("cancel from %s: expected ErrInvalidTransition, got %v", from, err)
		}
		if got := deliveryRepo.GetDelivery("delivery-1").Status; got != from {
			t.Errorf("rejected cancel must not change status, got %s", got)
		}
	}
}

func TestRate_Success(t *testing.T) {
	ctx := context.Background()
	deliveryRepo := NewMockDeliveryRepository()
	driverRepo := NewMockDriverRepository()
	svc := newLifecycleService(deliveryRepo, driverRepo)

	d := acceptedDelivery("delivery-1", "driver-1")
	d.Status = domain.DeliveryStatusDelivered
	deliveryRepo.AddDelivery(d)
	driverRepo.AddDriver(&domain.DriverPresence{ID: "driver-1", Rating: 4.0, RatingCount: 1})

	delivery, err := svc.Rate(ctx, "delivery-1", 5, "fast and careful")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivery.CustomerRating != 5 {
		t.Errorf("expected rating 5, got %d", delivery.CustomerRating)
	}

	driver := driverRepo.GetDriver("driver-1")
	if driver.RatingCount != 2 {
		t.Errorf("expected rating count 2, got %d", driver.RatingCount)
	}
	if driver.Rating != 4.5 {
		t.Errorf("expected rolling average 4.5, got %v", driver.Rating)
	}
}

func TestRate_RejectsOutOfRange(t *testing.T) {
	ctx := context.Background()
	svc := newLifecycleService(NewMockDeliveryRepository(), NewMockDriverRepository())

	for _, rating := range []int{0, -1, 6} {
		if _, err := svc.Rate(ctx, "delivery-1", rating, ""); !errors.Is(err, service.ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
}

func TestRate_NotDelivered(t *testing.T) {
	ctx := context.Background()
	deliveryRepo := NewMockDeliveryRepository()
	svc := newLifecycleService(deliveryRepo, NewMockDriverRepository())

	deliveryRepo.AddDelivery(acceptedDelivery("delivery-1", "driver-1"))

	if _, err := svc.Rate(ctx, "delivery-1", 4, ""); !errors.Is(err, service.ErrNotDelivered) {
		t.Errorf("expected ErrNotDelivered, got %v", err)
	}
}

func TestRate_OnlyOnce(t *testing.T) {
	ctx := context.Background()
	deliveryRepo := NewMockDeliveryRepository()
	driverRepo := NewMockDriverRepository()
	svc := newLifecycleService(deliveryRepo, driverRepo)

	d := acceptedDelivery("delivery-1", "driver-1")
	d.Status = domain.DeliveryStatusDelivered
	deliveryRepo.AddDelivery(d)
	driverRepo.AddDriver(&domain.DriverPresence{ID: "driver-1"})

	if _, err := svc.Rate(ctx, "delivery-1", 5, ""); err != nil {
		t.Fatalf("first rating failed: %v", err)
	}
	if _, err := svc.Rate(ctx, "delivery-1", 1, ""); !errors.Is(err, service.ErrAlreadyRated) {
		t.Errorf("expected ErrAlreadyRated, got %v", err)
	}
	if got := deliveryRepo.GetDelivery("delivery-1").CustomerRating; got != 5 {
		t.Errorf("second rating must not overwrite the first, got %d", got)
	}
}
