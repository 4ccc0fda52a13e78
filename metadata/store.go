package metadata

import (
	"context"
	"fmt"
	"sync"
)

// Store persists hashing metadata keyed by partition path.
// Implementations must be safe for concurrent use across goroutines and,
// for the production backends, across process instances.
type Store interface {
	// LoadOrCreate returns the current hashing metadata for a partition.
	//
	// If no metadata exists yet, it synthesizes a default layout with
	// defaultBucketCount evenly spaced nodes, persists it atomically
	// (create-if-absent) and returns it. If another writer won the race,
	// the already persisted version is loaded and returned unchanged, so
	// all concurrent callers observe the same node set.
	//
	// Persisted content that fails to decode is reported as ErrCorrupt,
	// never replaced with a default.
	LoadOrCreate(ctx context.Context, partitionPath string, defaultBucketCount int) (*Metadata, error)
}

// MemoryStore is an in-process metadata store for tests and embedded use.
//
// It keeps metadata in its serialized form so the load path exercises the
// same decode step the production stores do.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore creates a new in-process metadata store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// LoadOrCreate returns the partition's metadata, creating the default
// layout if the partition has never been written.
func (s *MemoryStore) LoadOrCreate(ctx context.Context, partitionPath string, defaultBucketCount int) (*Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.data[partitionPath]
	if !ok {
		m, err := NewDefault(partitionPath, defaultBucketCount)
		if err != nil {
			return nil, err
		}
		data, err := m.ToJSON()
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		s.data[partitionPath] = data
		return m, nil
	}
	return FromJSON(raw)
}

// Save unconditionally replaces the partition's metadata with a new
// version. Reorganization tooling uses this to install the layout a
// replace commit produced; the routing path never calls it.
func (s *MemoryStore) Save(ctx context.Context, m *Metadata) error {
	data, err := m.ToJSON()
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[m.PartitionPath] = data
	return nil
}

// Put seeds raw persisted bytes for a partition, bypassing serialization.
// Intended for tests that need to exercise the corrupt-metadata path.
func (s *MemoryStore) Put(partitionPath string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[partitionPath] = raw
}

// Compile-time check
var _ Store = (*MemoryStore)(nil)
