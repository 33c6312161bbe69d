package tests

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"courier/internal/domain"
	"courier/internal/redis"
	"courier/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DELIVERY REPOSITORY
// ──────────────────────────────────────────────

// MockDeliveryRepository is a mock implementation of DeliveryRepository.
// Claim and AdvanceStatus are guarded under the mutex, so the
// compare-and-set semantics hold under concurrent callers.
type MockDeliveryRepository struct {
	mu         sync.RWMutex
	deliveries map[string]*domain.Delivery

	// Counters for verification
	CreateCallCount  int32
	ClaimCallCount   int32
	AdvanceCallCount int32

	// Error injection
	CreateError  error
	ClaimError   error
	AdvanceError error
}

// NewMockDeliveryRepository creates a new mock delivery repository.
func NewMockDeliveryRepository() *MockDeliveryRepository {
	return &MockDeliveryRepository{
		deliveries: make(map[string]*domain.Delivery),
	}
}

// AddDelivery adds a delivery to the mock repository.
func (m *MockDeliveryRepository) AddDelivery(delivery *domain.Delivery) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[delivery.ID] = delivery
}

func (m *MockDeliveryRepository) Create(ctx context.Context, delivery *domain.Delivery) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[delivery.ID] = delivery
	return nil
}

func (m *MockDeliveryRepository) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	delivery, ok := m.deliveries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *delivery
	return &copy, nil
}

func (m *MockDeliveryRepository) GetAll(ctx context.Context) ([]*domain.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Delivery, 0, len(m.deliveries))
	for _, d := range m.deliveries {
		copy := *d
		result = append(result, &copy)
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *MockDeliveryRepository) GetByCustomerID(ctx context.Context, customerID string) ([]*domain.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Delivery, 0)
	for _, d := range m.deliveries {
		if d.CustomerID == customerID {
			copy := *d
			result = append(result, &copy)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *MockDeliveryRepository) GetPendingUnassigned(ctx context.Context, limit int) ([]*domain.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Delivery, 0)
	for _, d := range m.deliveries {
		if d.Status == domain.DeliveryStatusPending && d.DriverID == "" {
			copy := *d
			result = append(result, &copy)
		}
	}
	sortNewestFirst(result)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockDeliveryRepository) GetActiveByDriverID(ctx context.Context, driverID string) ([]*domain.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Delivery, 0)
	for _, d := range m.deliveries {
		if d.DriverID == driverID && d.Status.Active() {
			copy := *d
			result = append(result, &copy)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *MockDeliveryRepository) GetHistoryByDriverID(ctx context.Context, driverID string, limit int) ([]*domain.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Delivery, 0)
	for _, d := range m.deliveries {
		if d.DriverID == driverID && d.Status.Terminal() {
			copy := *d
			result = append(result, &copy)
		}
	}
	sortNewestFirst(result)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockDeliveryRepository) Claim(ctx context.Context, id, driverID string, at time.Time) error {
	atomic.AddInt32(&m.ClaimCallCount, 1)
	if m.ClaimError != nil {
		return m.ClaimError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delivery, ok := m.deliveries[id]
	if !ok {
		return repository.ErrNotFound
	}
	if delivery.Status != domain.DeliveryStatusPending || delivery.DriverID != "" {
		return repository.ErrConflict
	}
	delivery.DriverID = driverID
	delivery.Status = domain.DeliveryStatusAccepted
	delivery.AcceptedAt = at
	return nil
}

func (m *MockDeliveryRepository) AdvanceStatus(ctx context.Context, id string, from []domain.DeliveryStatus, to domain.DeliveryStatus, at time.Time) error {
	atomic.AddInt32(&m.AdvanceCallCount, 1)
	if m.AdvanceError != nil {
		return m.AdvanceError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delivery, ok := m.deliveries[id]
	if !ok {
		return repository.ErrNotFound
	}
	guarded := false
	for _, s := range from {
		if delivery.Status == s {
			guarded = true
			break
		}
	}
	if !guarded {
		return repository.ErrConflict
	}
	delivery.Status = to
	switch to {
	case domain.DeliveryStatusAccepted:
		delivery.AcceptedAt = at
	case domain.DeliveryStatusPickedUp:
		delivery.PickedUpAt = at
	case domain.DeliveryStatusDelivered:
		delivery.DeliveredAt = at
	case domain.DeliveryStatusCancelled:
		delivery.CancelledAt = at
	}
	return nil
}

func (m *MockDeliveryRepository) SetRating(ctx context.Context, id string, rating int, review string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delivery, ok := m.deliveries[id]
	if !ok {
		return repository.ErrNotFound
	}
	if delivery.Status != domain.DeliveryStatusDelivered || delivery.CustomerRating != 0 {
		return repository.ErrConflict
	}
	delivery.CustomerRating = rating
	delivery.CustomerReview = review
	return nil
}

// GetDelivery returns the delivery by ID (for test assertions).
func (m *MockDeliveryRepository) GetDelivery(id string) *domain.Delivery {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deliveries[id]
}

// CountDeliveries returns the number of deliveries.
func (m *MockDeliveryRepository) CountDeliveries() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.deliveries)
}

func sortNewestFirst(deliveries []*domain.Delivery) {
	sort.SliceStable(deliveries, func(i, j int) bool {
		return deliveries[i].CreatedAt.After(deliveries[j].CreatedAt)
	})
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.DriverPresence

	// Counters for verification
	CreateCallCount           int32
	UpdateLocationCallCount   int32
	RecordCompletionCallCount int32

	// Error injection
	CreateError           error
	UpdateLocationError   error
	RecordCompletionError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.DriverPresence),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.DriverPresence) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.DriverPresence) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.DriverPresence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.DriverPresence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.DriverPresence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.DriverPresence, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockDriverRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64, at time.Time) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.CurrentLat = lat
	driver.CurrentLng = lng
	driver.LocatedAt = at
	return nil
}

func (m *MockDriverRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Available = available
	return nil
}

func (m *MockDriverRepository) RecordCompletion(ctx context.Context, id string, earnings int64) error {
	atomic.AddInt32(&m.RecordCompletionCallCount, 1)
	if m.RecordCompletionError != nil {
		return m.RecordCompletionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.CompletedTrips++
	driver.TotalEarnings += earnings
	return nil
}

func (m *MockDriverRepository) ApplyRating(ctx context.Context, id string, rating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Rating = (driver.Rating*float64(driver.RatingCount) + float64(rating)) / float64(driver.RatingCount+1)
	driver.RatingCount++
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.DriverPresence {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK TRACKING REPOSITORY
// ──────────────────────────────────────────────

// MockTrackingRepository is a mock implementation of TrackingRepository.
type MockTrackingRepository struct {
	mu      sync.RWMutex
	samples []*domain.TrackingSample

	// Counters
	AppendCallCount int32

	// Error injection
	AppendError error
}

// NewMockTrackingRepository creates a new mock tracking repository.
func NewMockTrackingRepository() *MockTrackingRepository {
	return &MockTrackingRepository{
		samples: make([]*domain.TrackingSample, 0),
	}
}

func (m *MockTrackingRepository) Append(ctx context.Context, sample *domain.TrackingSample) error {
	atomic.AddInt32(&m.AppendCallCount, 1)
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, sample)
	return nil
}

func (m *MockTrackingRepository) ListByDeliveryID(ctx context.Context, deliveryID string) ([]*domain.TrackingSample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.TrackingSample, 0)
	for _, s := range m.samples {
		if s.DeliveryID == deliveryID {
			copy := *s
			result = append(result, &copy)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// CountSamples returns the number of stored samples.
func (m *MockTrackingRepository) CountSamples() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.samples)
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStore.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations []redis.DriverLocation

	// Counters
	UpdateLocationCallCount int32

	// Error injection
	UpdateLocationError    error
	FindNearbyDriversError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make([]redis.DriverLocation, 0),
	}
}

// AddDriverLocation adds a driver location to the mock store.
func (m *MockLocationStore) AddDriverLocation(loc redis.DriverLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = append(m.locations, loc)
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Update existing or add new.
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations[i].Lat = lat
			m.locations[i].Lng = lng
			return nil
		}
	}
	m.locations = append(m.locations, redis.DriverLocation{
		DriverID: driverID,
		Lat:      lat,
		Lng:      lng,
	})
	return nil
}

func (m *MockLocationStore) FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]redis.DriverLocation, error) {
	if m.FindNearbyDriversError != nil {
		return nil, m.FindNearbyDriversError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Return all locations (mock doesn't do real geo filtering).
	result := make([]redis.DriverLocation, len(m.locations))
	copy(result, m.locations)
	return result, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations = append(m.locations[:i], m.locations[i+1:]...)
			return nil
		}
	}
	return nil
}

// HasLocation checks if a driver location exists.
func (m *MockLocationStore) HasLocation(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loc := range m.locations {
		if loc.DriverID == driverID {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireClaimLock(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:delivery:" + deliveryID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseClaimLock(ctx context.Context, deliveryID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:delivery:"+deliveryID)
	return nil
}

// IsLocked checks if a delivery is locked (for test assertions).
func (m *MockLockStore) IsLocked(deliveryID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:delivery:"+deliveryID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
