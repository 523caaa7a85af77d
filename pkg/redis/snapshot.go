package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotStorage is a thin key-value wrapper over a Redis client with TTL
// semantics, used as the write queue's crash-recovery mirror. It satisfies
// writequeue.SnapshotStore.
type SnapshotStorage struct {
	db redis.UniversalClient
}

// NewSnapshotStorage wraps an existing Redis client.
func NewSnapshotStorage(client redis.UniversalClient) *SnapshotStorage {
	return &SnapshotStorage{db: client}
}

// Set stores the value under the key with the given expiry. A zero ttl
// means no expiration.
func (s *SnapshotStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" || len(value) == 0 {
		return nil
	}
	return s.db.Set(ctx, key, value, ttl).Err()
}

// Get returns the value stored under the key. A missing key yields
// (nil, nil), never an error.
func (s *SnapshotStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := s.db.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

// Delete removes a key. Empty keys are ignored.
func (s *SnapshotStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.db.Del(ctx, key).Err()
}
