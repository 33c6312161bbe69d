package tests

import (
	"context"
	"errors"
	"testing"

	"courier/internal/config"
	"courier/internal/domain"
	"courier/internal/fare"
	"courier/internal/geo"
	"courier/internal/service"
)

func newDispatchService(deliveryRepo *MockDeliveryRepository, driverRepo *MockDriverRepository, lockStore *MockLockStore) *service.DispatchService {
	cfg := config.DispatchConfig{SearchRadiusKm: 10.0, NearbyLimit: 5, BrowseLimit: 20}
	if lockStore == nil {
		return service.NewDispatchService(deliveryRepo, driverRepo, nil, nil, nil, fare.DefaultSchedule(), cfg)
	}
	return service.NewDispatchService(deliveryRepo, driverRepo, lockStore, nil, nil, fare.DefaultSchedule(), cfg)
}

func validCreateRequest() service.CreateDeliveryRequest {
	return service.CreateDeliveryRequest{
		CustomerID:           "customer-1",
		PickupAddress:        "12 Sejong-daero, Jung-gu",
		PickupLat:            37.5665,
		PickupLng:            126.9780,
		PickupContactName:    "Sender Kim",
		PickupContactPhone:   "010-1111-2222",
		DeliveryAddress:      "396 Gangnam-daero, Gangnam-gu",
		DeliveryLat:          37.5012,
		DeliveryLng:          127.0396,
		DeliveryContactName:  "Receiver Lee",
		DeliveryContactPhone: "010-3333-4444",
		ItemDescription:      "documents",
		ItemWeightKg:         0.5,
		PackageSize:          "small",
	}
}

func TestCreateDelivery_Success(t *testing.T) {
	ctx := context.Background()
	deliveryRepo := NewMockDeliveryRepository()
	svc := newDispatchService(deliveryRepo, NewMockDriverRepository(), nil)

	delivery, err := svc.CreateDelivery(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if delivery.ID == "" {
		t.Error("expected an ID to be assigned")
	}
	if delivery.Status != domain.DeliveryStatusPending {
		t.Errorf("expected pending status, got %s", delivery.Status)
	}
	if delivery.DriverID != "" {
		t.Errorf("expected no driver, got %s", delivery.DriverID)
	}
	if delivery.DistanceKm <= 0 {
		t.Errorf("expected positive distance, got %v", delivery.DistanceKm)
	}
	if delivery.CreatedAt.IsZero() {
		t.Error("expected created_at to be stamped")
	}
	if deliveryRepo.CountDeliveries() != 1 {
		t.Errorf("expected 1 persisted delivery, got %d", deliveryRepo.CountDeliveries())
	}
}

func TestCreateDelivery_FareComponentsConsistent(t *testing.T) {
	ctx := context.Background()
	svc := newDispatchService(NewMockDeliveryRepository(), NewMockDriverRepository(), nil)

	delivery, err := svc.CreateDelivery(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if delivery.TotalFee != delivery.BaseFee+delivery.DistanceFee {
		t.Errorf("total %d != base %d + distance %d", delivery.TotalFee, delivery.BaseFee, delivery.DistanceFee)
	}
	if delivery.TotalFee != delivery.DriverFee+delivery.PlatformFee {
		t.Errorf("total %d != driver %d + platform %d", delivery.TotalFee, delivery.DriverFee, delivery.PlatformFee)
	}
	if delivery.TotalFee < delivery.BaseFee {
		t.Errorf("total %d below base fee floor %d", delivery.TotalFee, delivery.BaseFee)
	}
}

func TestCreateDelivery_SamePointDifferentAddresses(t *testing.T) {
	ctx := context.Background()
	svc := newDispatchService(NewMockDeliveryRepository(), NewMockDriverRepository(), nil)

	// Two units in the same building: identical coordinates are fine.
	req := validCreateRequest()
	req.DeliveryLat = req.PickupLat
	req.DeliveryLng = req.PickupLng

	delivery, err := svc.CreateDelivery(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivery.DistanceKm != 0 {
		t.Errorf("expected zero distance, got %v", delivery.DistanceKm)
	}
	if delivery.TotalFee != delivery.BaseFee {
		t.Errorf("expected base fee floor %d, got %d", delivery.BaseFee, delivery.TotalFee)
	}
}

func TestCreateDelivery_RejectsSameAddress(t *testing.T) {
	ctx := context.Background()
	svc := newDispatchService(NewMockDeliveryRepository(), NewMockDriverRepository(), nil)

	req := validCreateRequest()
	req.DeliveryAddress = req.PickupAddress

	if _, err := svc.CreateDelivery(ctx, req); !errors.Is(err, service.ErrSameAddress) {
		t.Errorf("expected ErrSameAddress, got %v", err)
	}
}

func TestCreateDelivery_Validation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*service.CreateDeliveryRequest)
		wantErr error
	}{
		{"missing customer", func(r *service.CreateDeliveryRequest) { r.CustomerID = "" }, service.ErrInvalidCustomerID},
		{"missing pickup address", func(r *service.CreateDeliveryRequest) { r.PickupAddress = "" }, service.ErrMissingAddress},
		{"missing delivery address", func(r *service.CreateDeliveryRequest) { r.DeliveryAddress = "" }, service.ErrMissingAddress},
		{"missing pickup contact", func(r *service.CreateDeliveryRequest) { r.PickupContactName = "" }, service.ErrMissingContact},
		{"missing delivery phone", func(r *service.CreateDeliveryRequest) { r.DeliveryContactPhone = "" }, service.ErrMissingContact},
		{"negative weight", func(r *service.CreateDeliveryRequest) { r.ItemWeightKg = -1 }, service.ErrInvalidWeight},
		{"bad pickup latitude", func(r *service.CreateDeliveryRequest) { r.PickupLat = 91 }, geo.ErrInvalidCoordinate},
		{"bad delivery longitude", func(r *service.CreateDeliveryRequest) { r.DeliveryLng = -181 }, geo.ErrInvalidCoordinate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deliveryRepo := NewMockDeliveryRepository()
			svc := newDispatchService(deliveryRepo, NewMockDriverRepository(), nil)

			req := validCreateRequest()
			tc.mutate(&req)

			if _, err := svc.CreateDelivery(ctx, req); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if deliveryRepo.CountDeliveries() != 0 {
				t.Error("invalid request must not persist a delivery")
			}
		})
	}
}

// failingLocator always errors, standing in for a broken geo index.
type failingLocator struct{}

func (failingLocator) FindNearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]service.Candidate, error) {
	return nil, ErrMockTimeout
}

func TestCreateDelivery_FanOutFailureDoesNotFailCreation(t *testing.T) {
	ctx := context.Background()
	deliveryRepo := NewMockDeliveryRepository()
	cfg := config.DispatchConfig{SearchRadiusKm: 10.0, NearbyLimit: 5, BrowseLimit: 20}
	notifier := service.NewNotificationService(config.KafkaConfig{Enabled: false})
	svc := service.NewDispatchService(deliveryRepo, NewMockDriverRepository(), nil, failingLocator{}, notifier, fare.DefaultSchedule(), cfg)

	delivery, err := svc.CreateDelivery(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivery.Status != domain.DeliveryStatusPending {
		t.Errorf("expected pending, got %s", delivery.Status)
	}
}

func TestCreateDelivery_RepositoryErrorPropagates(t *testing.T) {
	ctx := context.Background()
	deliveryRepo := NewMockDeliveryRepository()
	deliveryRepo.CreateError = ErrMockDBConstraint
	svc := newDispatchService(deliveryRepo, NewMockDriverRepository(), nil)

	if _, err := svc.CreateDelivery(ctx, validCreateRequest()); !errors.Is(err, ErrMockDBConstraint) {
		t.Errorf("expected mock constraint error, got %v", err)
	}
}
