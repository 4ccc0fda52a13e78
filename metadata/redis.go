package metadata

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis.
//
// Each partition's metadata is stored as a JSON string under
// "<prefix><partitionPath>". Create-if-absent uses SET NX, which is atomic
// on the server: of any number of concurrent writers racing on a fresh
// partition, exactly one persists its default layout and every caller
// loads the same resulting version.
//
// Example:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := metadata.NewRedisStore(client, "lake:hashing:")
//	meta, err := store.LoadOrCreate(ctx, "2024/06/01", 8)
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore creates a new Redis-backed metadata store.
//
// Parameters:
//   - client: Redis client (Cmdable covers single node, Sentinel and Cluster)
//   - prefix: key prefix, e.g. "myapp:hashing:" (may be empty)
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// LoadOrCreate returns the partition's metadata, creating the default
// layout atomically if the partition has never been written.
func (s *RedisStore) LoadOrCreate(ctx context.Context, partitionPath string, defaultBucketCount int) (*Metadata, error) {
	key := s.prefix + partitionPath

	m, err := NewDefault(partitionPath, defaultBucketCount)
	if err != nil {
		return nil, err
	}
	data, err := m.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	// SET NX either installs our default or leaves the winner's version
	// in place. Reading the key back afterwards returns the same bytes
	// for every racing caller.
	if err := s.client.SetNX(ctx, key, data, 0).Err(); err != nil {
		return nil, fmt.Errorf("create metadata for %q: %w", partitionPath, err)
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("load metadata for %q: %w", partitionPath, err)
	}
	return FromJSON(raw)
}

// Save unconditionally replaces the partition's metadata with a new
// version, as written by reorganization tooling after a replace commit.
func (s *RedisStore) Save(ctx context.Context, m *Metadata) error {
	data, err := m.ToJSON()
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+m.PartitionPath, data, 0).Err(); err != nil {
		return fmt.Errorf("save metadata for %q: %w", m.PartitionPath, err)
	}
	return nil
}

// Compile-time check
var _ Store = (*RedisStore)(nil)
