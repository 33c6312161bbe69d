package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"courier/internal/domain"
	"courier/internal/geo"
	"courier/internal/redis"
	"courier/internal/repository"
)

// DriverService handles driver presence: registration, availability and
// standalone location pushes.
type DriverService struct {
	locationStore redis.LocationStoreInterface
	cacheStore    *redis.CacheStore
	driverRepo    repository.DriverRepository
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	locationStore redis.LocationStoreInterface,
	cacheStore *redis.CacheStore,
	driverRepo repository.DriverRepository,
) *DriverService {
	return &DriverService{
		locationStore: locationStore,
		cacheStore:    cacheStore,
		driverRepo:    driverRepo,
	}
}

// Register creates a driver presence record. Drivers start unavailable
// and with no known location.
func (s *DriverService) Register(ctx context.Context, name, phone string) (*domain.DriverPresence, error) {
	if name == "" || phone == "" {
		return nil, ErrMissingContact
	}

	existing, err := s.driverRepo.GetByPhone(ctx, phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDriverAlreadyRegistered
	}

	driver := &domain.DriverPresence{
		ID:    uuid.New().String(),
		Name:  name,
		Phone: phone,
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	return driver, nil
}

// UpdateLocation records a driver's position outside of any delivery.
// The geo index and the presence record both move, last write wins.
func (s *DriverService) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if err := geo.ValidatePoint(lat, lng); err != nil {
		return err
	}

	if err := s.driverRepo.UpdateLocation(ctx, driverID, lat, lng, time.Now().UTC()); err != nil {
		return err
	}

	if s.locationStore != nil {
		if err := s.locationStore.UpdateLocation(ctx, driverID, lat, lng); err != nil {
			return err
		}
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateDriver(ctx, driverID)
	}

	return nil
}

// SetAvailability flips the driver's availability. An unavailable
// driver is dropped from the geo index so the locator never offers
// them; coming back with a known location re-enters the index.
func (s *DriverService) SetAvailability(ctx context.Context, driverID string, available bool) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	if err := s.driverRepo.SetAvailability(ctx, driverID, available); err != nil {
		return err
	}

	if s.locationStore != nil {
		if available {
			driver, err := s.driverRepo.GetByID(ctx, driverID)
			if err == nil && driver.HasLocation() {
				_ = s.locationStore.UpdateLocation(ctx, driverID, driver.CurrentLat, driver.CurrentLng)
			}
		} else {
			_ = s.locationStore.RemoveLocation(ctx, driverID)
		}
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateDriver(ctx, driverID)
	}

	return nil
}
