package service

import (
	"context"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"courier/internal/config"
	"courier/internal/domain"
	"courier/internal/geo"
	"courier/internal/observability"
	"courier/internal/redis"
	"courier/internal/repository"
)

// browseScanWindow bounds how many pending deliveries are pulled before
// radius filtering during a driver browse.
const browseScanWindow = 200

// Candidate is one available driver near a pickup point. Appearing in a
// candidate list reserves nothing; it only seeds the notification fan-out.
type Candidate struct {
	DriverID   string
	Name       string
	Lat        float64
	Lng        float64
	DistanceKm float64
	Rating     float64
}

// LocatorService finds available drivers near a pickup point and
// claimable deliveries near a driver.
type LocatorService struct {
	locationStore redis.LocationStoreInterface
	cacheStore    *redis.CacheStore
	driverRepo    repository.DriverRepository
	deliveryRepo  repository.DeliveryRepository
	dispatchCfg   config.DispatchConfig
}

// Ensure LocatorService satisfies the fan-out contract.
var _ LocatorInterface = (*LocatorService)(nil)

// NewLocatorService creates a new LocatorService.
func NewLocatorService(
	locationStore redis.LocationStoreInterface,
	cacheStore *redis.CacheStore,
	driverRepo repository.DriverRepository,
	deliveryRepo repository.DeliveryRepository,
	dispatchCfg config.DispatchConfig,
) *LocatorService {
	return &LocatorService{
		locationStore: locationStore,
		cacheStore:    cacheStore,
		driverRepo:    driverRepo,
		deliveryRepo:  deliveryRepo,
		dispatchCfg:   dispatchCfg,
	}
}

// FindNearby returns available drivers within radiusKm of the point,
// closest first, ties broken by driver id, truncated to limit. Drivers
// with no known location are not in the geo index and never appear.
func (s *LocatorService) FindNearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]Candidate, error) {
	if err := geo.ValidatePoint(lat, lng); err != nil {
		return nil, err
	}

	if radiusKm <= 0 {
		radiusKm = s.dispatchCfg.SearchRadiusKm
	}
	if limit <= 0 {
		limit = s.dispatchCfg.NearbyLimit
	}

	timer := prometheus.NewTimer(observability.NearbySearchDuration)
	defer timer.ObserveDuration()

	locations, err := s.locationStore.FindNearbyDrivers(ctx, lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}

	if len(locations) == 0 {
		return nil, nil
	}

	driverIDs := make([]string, len(locations))
	for i, loc := range locations {
		driverIDs[i] = loc.DriverID
	}

	cached, missing := s.lookupDriversBatch(ctx, driverIDs)

	candidates := make([]Candidate, 0, len(locations))
	for _, loc := range locations {
		driver, ok := cached[loc.DriverID]
		if !ok {
			driver, ok = missing[loc.DriverID]
		}
		if !ok || !driver.Available {
			continue
		}

		candidates = append(candidates, Candidate{
			DriverID:   loc.DriverID,
			Name:       driver.Name,
			Lat:        loc.Lat,
			Lng:        loc.Lng,
			DistanceKm: loc.DistanceKm,
			Rating:     driver.Rating,
		})
	}

	// The geo index already sorts by distance; re-sort with an id
	// tie-break so equal distances come out deterministically.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return candidates[i].DriverID < candidates[j].DriverID
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

// lookupDriversBatch resolves driver presence through the cache, then
// the database for misses, refilling the cache as it goes.
func (s *LocatorService) lookupDriversBatch(ctx context.Context, driverIDs []string) (map[string]*redis.CachedDriver, map[string]*redis.CachedDriver) {
	var hits map[string]*redis.CachedDriver
	missingIDs := driverIDs

	if s.cacheStore != nil {
		var err error
		hits, missingIDs, err = s.cacheStore.GetDriversBatch(ctx, driverIDs)
		if err != nil {
			hits = make(map[string]*redis.CachedDriver)
			missingIDs = driverIDs
		}
	} else {
		hits = make(map[string]*redis.CachedDriver)
	}

	fromDB := make(map[string]*redis.CachedDriver, len(missingIDs))
	for _, id := range missingIDs {
		driver, err := s.driverRepo.GetByID(ctx, id)
		if err != nil {
			continue
		}
		cached := &redis.CachedDriver{
			ID:        driver.ID,
			Name:      driver.Name,
			Available: driver.Available,
			Rating:    driver.Rating,
		}
		fromDB[id] = cached
		if s.cacheStore != nil {
			_ = s.cacheStore.SetDriver(ctx, cached)
		}
	}

	return hits, fromDB
}

// AvailableDeliveries returns claimable deliveries for a driver, newest
// first. With a known driver location only pickups within the search
// radius are returned; without one every pending delivery is visible.
func (s *LocatorService) AvailableDeliveries(ctx context.Context, driverID string) ([]*domain.Delivery, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	limit := s.dispatchCfg.BrowseLimit

	if !driver.HasLocation() {
		return s.deliveryRepo.GetPendingUnassigned(ctx, limit)
	}

	pending, err := s.deliveryRepo.GetPendingUnassigned(ctx, browseScanWindow)
	if err != nil {
		return nil, err
	}

	nearby := make([]*domain.Delivery, 0, limit)
	for _, delivery := range pending {
		dist, err := geo.DistanceKm(driver.CurrentLat, driver.CurrentLng, delivery.PickupLat, delivery.PickupLng)
		if err != nil || dist > s.dispatchCfg.SearchRadiusKm {
			continue
		}
		nearby = append(nearby, delivery)
		if len(nearby) == limit {
			break
		}
	}

	return nearby, nil
}
