package bucketindex

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/rbaliyan/bucketindex/metadata"
	"github.com/rbaliyan/bucketindex/ring"
)

const otelName = "bucketindex"

// BucketIndex maps records to stable file group assignments.
//
// Implementations:
//   - ConsistentHashingBucketIndex: hash-range ring per partition, supports
//     non-disruptive bucket count changes via reorganization commits
//   - SimpleBucketIndex: fixed modulo over a static bucket count
type BucketIndex interface {
	// TagBatch resolves and attaches the target location of every record
	// in the batch. Records are tagged independently of each other; any
	// failure aborts the batch.
	TagBatch(ctx context.Context, records []*Record) error

	// RequiresTagging reports whether the given write operation needs
	// location tagging at all. Callers must consult it before TagBatch:
	// tagging unconditionally forces unnecessary metadata loads.
	RequiresTagging(op WriteOperation) bool

	// IsGlobal reports whether the index enforces key uniqueness across
	// partitions. Bucket indexes never do: identical keys in different
	// partitions resolve independently.
	IsGlobal() bool

	// CanIndexLogFiles reports whether the index supports incremental
	// log-structured files.
	CanIndexLogFiles() bool

	// IsImplicitWithStorage reports whether the index is implied by the
	// storage layout, with no separate index persistence beyond the
	// hashing metadata itself.
	IsImplicitWithStorage() bool
}

// requiresTagging is the shared operation classification of bucket indexes.
func requiresTagging(op WriteOperation) bool {
	switch op {
	case OpInsert, OpInsertOverwrite, OpUpsert, OpDelete:
		return true
	default:
		return false
	}
}

// ConsistentHashingBucketIndex routes records through per-partition
// consistent hash rings backed by persisted hashing metadata.
//
// Tagging a batch first loads (or lazily creates) the hashing metadata of
// every touched partition, batching metadata I/O ahead of the per-record
// hot loop, then resolves each record against its partition's ring.
//
// Example:
//
//	store := metadata.NewMemoryStore()
//	idx, err := bucketindex.NewConsistentHashingBucketIndex(store,
//	    bucketindex.WithNumBuckets(8),
//	    bucketindex.WithIndexKeyFields("user_id"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if idx.RequiresTagging(bucketindex.OpUpsert) {
//	    err = idx.TagBatch(ctx, records)
//	}
type ConsistentHashingBucketIndex struct {
	store metadata.Store
	cfg   *config
}

// NewConsistentHashingBucketIndex creates a consistent hashing index over
// the given metadata store.
//
// Returns ErrInvalidConfig for a non-positive bucket count or a malformed
// index field list.
func NewConsistentHashingBucketIndex(store metadata.Store, opts ...Option) (*ConsistentHashingBucketIndex, error) {
	cfg := newConfig("bucketindex.consistent")
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.logger.Info("using consistent hashing bucket index",
		"num_buckets", cfg.numBuckets, "index_key_fields", cfg.indexKeyFields)
	return &ConsistentHashingBucketIndex{store: store, cfg: cfg}, nil
}

// TagBatch resolves and attaches the target location of every record.
func (idx *ConsistentHashingBucketIndex) TagBatch(ctx context.Context, records []*Record) error {
	partitions := distinctPartitions(records)

	if idx.cfg.tracingEnabled {
		tracer := otel.Tracer(otelName)
		var span trace.Span
		ctx, span = tracer.Start(ctx, "bucketindex.tag",
			trace.WithAttributes(
				attribute.Int("records", len(records)),
				attribute.Int("partitions", len(partitions))))
		defer span.End()
	}

	// Load metadata for every touched partition before the per-record
	// loop; cache misses are the only blocking path.
	rings, err := idx.buildRings(ctx, partitions)
	if err != nil {
		return err
	}

	for _, rec := range records {
		rg := rings[rec.Key.PartitionPath]
		node := rg.ResolveByHash(FoldHash(HashKeys(rec.Key, idx.cfg.indexKeyFields)) & metadata.MaxHashValue)
		rec.Location = &Location{
			InstantTime: rg.Metadata().InstantTime,
			FileID:      node.FileID(),
		}
	}

	if idx.cfg.metricsEnabled {
		meter := otel.Meter(otelName)
		tagged, _ := meter.Int64Counter("bucketindex.tagged",
			metric.WithDescription("Total number of records tagged with a location"))
		tagged.Add(ctx, int64(len(records)))
	}
	return nil
}

// buildRings loads or creates hashing metadata for the given partitions
// and builds one ring per partition.
func (idx *ConsistentHashingBucketIndex) buildRings(ctx context.Context, partitions []string) (map[string]*ring.Ring, error) {
	rings := make(map[string]*ring.Ring, len(partitions))
	for _, p := range partitions {
		meta, err := idx.store.LoadOrCreate(ctx, p, idx.cfg.numBuckets)
		if err != nil {
			return nil, fmt.Errorf("load hashing metadata for partition %q: %w", p, err)
		}
		if meta == nil {
			return nil, fmt.Errorf("%w: no metadata for partition %q", ErrCorruptMetadata, p)
		}
		rg, err := ring.New(meta)
		if err != nil {
			return nil, err
		}
		rings[p] = rg
	}
	return rings, nil
}

// RequiresTagging reports whether the operation needs location tagging.
func (idx *ConsistentHashingBucketIndex) RequiresTagging(op WriteOperation) bool {
	return requiresTagging(op)
}

// IsGlobal always returns false for bucket indexes.
func (idx *ConsistentHashingBucketIndex) IsGlobal() bool { return false }

// CanIndexLogFiles always returns true for bucket indexes.
func (idx *ConsistentHashingBucketIndex) CanIndexLogFiles() bool { return true }

// IsImplicitWithStorage always returns true for bucket indexes.
func (idx *ConsistentHashingBucketIndex) IsImplicitWithStorage() bool { return true }

// SimpleBucketIndex routes records with a fixed modulo over a static
// bucket count. It needs no persisted metadata and no cache, but changing
// the bucket count redistributes nearly every key; prefer
// ConsistentHashingBucketIndex when resharding matters.
type SimpleBucketIndex struct {
	cfg *config
}

// locationInstantUnknown marks locations whose layout has no versioned
// metadata behind it.
const locationInstantUnknown = "U"

// NewSimpleBucketIndex creates a fixed-modulo index.
//
// Returns ErrInvalidConfig for a non-positive bucket count or a malformed
// index field list.
func NewSimpleBucketIndex(opts ...Option) (*SimpleBucketIndex, error) {
	cfg := newConfig("bucketindex.simple")
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.logger.Info("using simple bucket index",
		"num_buckets", cfg.numBuckets, "index_key_fields", cfg.indexKeyFields)
	return &SimpleBucketIndex{cfg: cfg}, nil
}

// TagBatch resolves and attaches the target location of every record.
func (idx *SimpleBucketIndex) TagBatch(ctx context.Context, records []*Record) error {
	for _, rec := range records {
		hash := FoldHash(HashKeys(rec.Key, idx.cfg.indexKeyFields)) & metadata.MaxHashValue
		bucket := int(hash % uint32(idx.cfg.numBuckets))
		rec.Location = &Location{
			InstantTime: locationInstantUnknown,
			FileID:      BucketFileID(bucket),
		}
	}
	return nil
}

// RequiresTagging reports whether the operation needs location tagging.
func (idx *SimpleBucketIndex) RequiresTagging(op WriteOperation) bool {
	return requiresTagging(op)
}

// IsGlobal always returns false for bucket indexes.
func (idx *SimpleBucketIndex) IsGlobal() bool { return false }

// CanIndexLogFiles always returns true for bucket indexes.
func (idx *SimpleBucketIndex) CanIndexLogFiles() bool { return true }

// IsImplicitWithStorage always returns true for bucket indexes.
func (idx *SimpleBucketIndex) IsImplicitWithStorage() bool { return true }

// distinctPartitions returns the distinct partition paths touched by a
// batch, in first-seen order.
func distinctPartitions(records []*Record) []string {
	seen := make(map[string]struct{}, len(records))
	var partitions []string
	for _, rec := range records {
		if _, ok := seen[rec.Key.PartitionPath]; !ok {
			seen[rec.Key.PartitionPath] = struct{}{}
			partitions = append(partitions, rec.Key.PartitionPath)
		}
	}
	return partitions
}

// Compile-time checks
var (
	_ BucketIndex = (*ConsistentHashingBucketIndex)(nil)
	_ BucketIndex = (*SimpleBucketIndex)(nil)
)
