package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"courier/internal/domain"
	"courier/internal/geo"
	"courier/internal/observability"
	"courier/internal/redis"
	"courier/internal/repository"
)

// TrackingService appends position samples for active deliveries and
// keeps the driver's presence location current as a side effect.
type TrackingService struct {
	deliveryRepo  repository.DeliveryRepository
	trackingRepo  repository.TrackingRepository
	driverRepo    repository.DriverRepository
	locationStore redis.LocationStoreInterface
	cacheStore    *redis.CacheStore
}

// NewTrackingService creates a new TrackingService.
func NewTrackingService(
	deliveryRepo repository.DeliveryRepository,
	trackingRepo repository.TrackingRepository,
	driverRepo repository.DriverRepository,
	locationStore redis.LocationStoreInterface,
	cacheStore *redis.CacheStore,
) *TrackingService {
	return &TrackingService{
		deliveryRepo:  deliveryRepo,
		trackingRepo:  trackingRepo,
		driverRepo:    driverRepo,
		locationStore: locationStore,
		cacheStore:    cacheStore,
	}
}

// Append stores one position sample for an active delivery. Only the
// assigned driver may report, and only while the delivery is accepted,
// picked_up or in_transit. The presence update afterwards is best
// effort: its failure never undoes the appended sample.
func (s *TrackingService) Append(ctx context.Context, deliveryID, driverID string, lat, lng float64) (*domain.TrackingSample, error) {
	if deliveryID == "" {
		return nil, ErrInvalidDeliveryID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if err := geo.ValidatePoint(lat, lng); err != nil {
		return nil, err
	}

	delivery, err := s.deliveryRepo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if delivery.DriverID != driverID || !delivery.Status.Active() {
		return nil, ErrTrackingNotAllowed
	}

	sample := &domain.TrackingSample{
		ID:         uuid.New().String(),
		DeliveryID: deliveryID,
		DriverID:   driverID,
		Lat:        lat,
		Lng:        lng,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.trackingRepo.Append(ctx, sample); err != nil {
		return nil, err
	}

	observability.TrackingSamplesTotal.Inc()

	s.updatePresence(ctx, driverID, lat, lng, sample.CreatedAt)

	return sample, nil
}

// updatePresence moves the driver's current location, last write wins.
func (s *TrackingService) updatePresence(ctx context.Context, driverID string, lat, lng float64, at time.Time) {
	if err := s.driverRepo.UpdateLocation(ctx, driverID, lat, lng, at); err != nil {
		log.Printf("tracking: presence update failed for driver %s: %v", driverID, err)
	}

	if s.locationStore != nil {
		if err := s.locationStore.UpdateLocation(ctx, driverID, lat, lng); err != nil {
			log.Printf("tracking: geo index update failed for driver %s: %v", driverID, err)
		}
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateDriver(ctx, driverID)
	}
}

// Route returns every sample for a delivery in arrival order, for
// after-the-fact route reconstruction.
func (s *TrackingService) Route(ctx context.Context, deliveryID string) ([]*domain.TrackingSample, error) {
	if deliveryID == "" {
		return nil, ErrInvalidDeliveryID
	}

	if _, err := s.deliveryRepo.GetByID(ctx, deliveryID); err != nil {
		return nil, err
	}

	return s.trackingRepo.ListByDeliveryID(ctx, deliveryID)
}
