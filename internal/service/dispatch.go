package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"courier/internal/config"
	"courier/internal/domain"
	"courier/internal/fare"
	"courier/internal/geo"
	"courier/internal/observability"
	"courier/internal/redis"
	"courier/internal/repository"
)

const (
	claimLockTTL  = 10 * time.Second
	fanOutTimeout = 5 * time.Second
)

// LocatorInterface defines the locator contract used for fan-out.
// This interface allows for testing with mock implementations.
type LocatorInterface interface {
	FindNearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]Candidate, error)
}

// DispatchService owns delivery records: it creates them with their
// computed economics and resolves the claim race between drivers.
type DispatchService struct {
	deliveryRepo repository.DeliveryRepository
	driverRepo   repository.DriverRepository
	lockStore    redis.LockStoreInterface
	locator      LocatorInterface
	notifier     *NotificationService
	schedule     fare.Schedule
	dispatchCfg  config.DispatchConfig
}

// NewDispatchService creates a new DispatchService.
func NewDispatchService(
	deliveryRepo repository.DeliveryRepository,
	driverRepo repository.DriverRepository,
	lockStore redis.LockStoreInterface,
	locator LocatorInterface,
	notifier *NotificationService,
	schedule fare.Schedule,
	dispatchCfg config.DispatchConfig,
) *DispatchService {
	return &DispatchService{
		deliveryRepo: deliveryRepo,
		driverRepo:   driverRepo,
		lockStore:    lockStore,
		locator:      locator,
		notifier:     notifier,
		schedule:     schedule,
		dispatchCfg:  dispatchCfg,
	}
}

// CreateDeliveryRequest contains the parameters for creating a delivery.
type CreateDeliveryRequest struct {
	CustomerID string

	PickupAddress      string
	PickupLat          float64
	PickupLng          float64
	PickupContactName  string
	PickupContactPhone string
	PickupNotes        string

	DeliveryAddress      string
	DeliveryLat          float64
	DeliveryLng          float64
	DeliveryContactName  string
	DeliveryContactPhone string
	DeliveryNotes        string

	ItemDescription string
	ItemWeightKg    float64
	PackageSize     string
}

// CreateDelivery validates the request, computes distance and fare, and
// persists the delivery as pending with no driver. Notification fan-out
// to nearby drivers happens in the background and can never fail the
// creation.
func (s *DispatchService) CreateDelivery(ctx context.Context, req CreateDeliveryRequest) (*domain.Delivery, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	distanceKm, err := geo.DistanceKm(req.PickupLat, req.PickupLng, req.DeliveryLat, req.DeliveryLng)
	if err != nil {
		return nil, err
	}

	quote, err := s.schedule.Quote(distanceKm)
	if err != nil {
		return nil, err
	}

	delivery := &domain.Delivery{
		ID:         uuid.New().String(),
		CustomerID: req.CustomerID,

		PickupAddress:      req.PickupAddress,
		PickupLat:          req.PickupLat,
		PickupLng:          req.PickupLng,
		PickupContactName:  req.PickupContactName,
		PickupContactPhone: req.PickupContactPhone,
		PickupNotes:        req.PickupNotes,

		DeliveryAddress:      req.DeliveryAddress,
		DeliveryLat:          req.DeliveryLat,
		DeliveryLng:          req.DeliveryLng,
		DeliveryContactName:  req.DeliveryContactName,
		DeliveryContactPhone: req.DeliveryContactPhone,
		DeliveryNotes:        req.DeliveryNotes,

		ItemDescription: req.ItemDescription,
		ItemWeightKg:    req.ItemWeightKg,
		PackageSize:     req.PackageSize,

		DistanceKm:  distanceKm,
		BaseFee:     quote.BaseFee,
		DistanceFee: quote.DistanceFee,
		TotalFee:    quote.TotalFee,
		DriverFee:   quote.DriverFee,
		PlatformFee: quote.PlatformFee,

		Status:    domain.DeliveryStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.deliveryRepo.Create(ctx, delivery); err != nil {
		return nil, err
	}

	observability.DeliveriesCreatedTotal.Inc()

	s.fanOut(delivery)

	return delivery, nil
}

// fanOut notifies drivers near the pickup point, fire and forget.
func (s *DispatchService) fanOut(delivery *domain.Delivery) {
	if s.locator == nil || s.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fanOutTimeout)
		defer cancel()

		candidates, err := s.locator.FindNearby(ctx,
			delivery.PickupLat, delivery.PickupLng,
			s.dispatchCfg.SearchRadiusKm, s.dispatchCfg.NearbyLimit)
		if err != nil || len(candidates) == 0 {
			return
		}

		driverIDs := make([]string, len(candidates))
		for i, c := range candidates {
			driverIDs[i] = c.DriverID
		}

		_ = s.notifier.NotifyDeliveryRequested(ctx, delivery, driverIDs)
	}()
}

// Claim assigns the delivery to the driver if and only if it is still
// pending and unassigned. Exactly one concurrent claimer can win; the
// rest get ErrAlreadyClaimed. The Redis lock is only a fast path that
// sheds duplicates before they hit the database.
func (s *DispatchService) Claim(ctx context.Context, deliveryID, driverID string) (*domain.Delivery, error) {
	if deliveryID == "" {
		return nil, ErrInvalidDeliveryID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireClaimLock(ctx, deliveryID, claimLockTTL)
		if err == nil && !locked {
			observability.ClaimsTotal.WithLabelValues("lost").Inc()
			return nil, ErrAlreadyClaimed
		}
		// A lock error is not fatal: the conditional update below still
		// guarantees a single winner.
	}

	now := time.Now().UTC()
	if err := s.deliveryRepo.Claim(ctx, deliveryID, driverID, now); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			observability.ClaimsTotal.WithLabelValues("lost").Inc()
			if s.lockStore != nil {
				_ = s.lockStore.ReleaseClaimLock(ctx, deliveryID)
			}
			return nil, ErrAlreadyClaimed
		}
		return nil, err
	}

	observability.ClaimsTotal.WithLabelValues("won").Inc()

	// Read back through the repository so the winner immediately sees
	// the accepted state it just wrote.
	delivery, err := s.deliveryRepo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyDeliveryClaimed(ctx, delivery)
	}

	// The claim lock expires via TTL; the row itself is no longer claimable.
	return delivery, nil
}

func (s *DispatchService) validateCreateRequest(req CreateDeliveryRequest) error {
	if req.CustomerID == "" {
		return ErrInvalidCustomerID
	}
	if req.PickupAddress == "" || req.DeliveryAddress == "" {
		return ErrMissingAddress
	}
	if req.PickupAddress == req.DeliveryAddress {
		return ErrSameAddress
	}
	if req.PickupContactName == "" || req.PickupContactPhone == "" ||
		req.DeliveryContactName == "" || req.DeliveryContactPhone == "" {
		return ErrMissingContact
	}
	if req.ItemWeightKg < 0 {
		return ErrInvalidWeight
	}
	if err := geo.ValidatePoint(req.PickupLat, req.PickupLng); err != nil {
		return err
	}
	return geo.ValidatePoint(req.DeliveryLat, req.DeliveryLng)
}
