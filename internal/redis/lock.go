package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis. Claim locks are a
// fast path that sheds duplicate claim attempts before they reach the
// database; the conditional UPDATE remains the correctness authority.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireClaimLock attempts to acquire the claim lock for a delivery.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireClaimLock(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:delivery:%s", deliveryID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseClaimLock releases the claim lock for a delivery.
func (s *LockStore) ReleaseClaimLock(ctx context.Context, deliveryID string) error {
	key := fmt.Sprintf("lock:delivery:%s", deliveryID)

	return s.client.Del(ctx, key).Err()
}
