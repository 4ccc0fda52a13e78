// Package router provides the sink-side partitioner of a bucket-indexed
// write pipeline: it decides which parallel write task each record's target
// file group is routed to, and keeps its per-partition ring cache coherent
// with background reorganization commits.
//
// A Router is owned by exactly one writer instance. Caches are never
// shared across instances, so staleness is bounded per instance: a ring
// stays cached from the moment a partition is first touched until a
// checkpoint-completion notification observes a newer replace commit on
// the table timeline, at which point every cached ring is dropped
// atomically and rebuilt on demand from the replaced metadata.
//
// Example:
//
//	r, err := router.New(store,
//	    func(ctx context.Context) (timeline.Timeline, error) {
//	        return openTableTimeline(ctx, tablePath)
//	    },
//	    router.WithNumBuckets(8))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close(ctx)
//
//	// per record, on the hot path:
//	task, err := r.Partition(ctx, key, numTasks)
//
//	// from the host engine, after each durable checkpoint:
//	err = r.OnCheckpointComplete(ctx, checkpointID)
package router

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/rbaliyan/bucketindex"
	"github.com/rbaliyan/bucketindex/metadata"
	"github.com/rbaliyan/bucketindex/ring"
	"github.com/rbaliyan/bucketindex/timeline"
)

const otelName = "bucketindex.router"

// Connector lazily establishes the connection to the table's commit
// timeline. It is invoked once, on the first partition lookup.
type Connector func(ctx context.Context) (timeline.Timeline, error)

// Router assigns records to parallel write tasks.
//
// All records destined for the same file group of the same partition are
// assigned the same task, which downstream relies on for
// single-writer-per-file-group semantics.
type Router struct {
	store   metadata.Store
	connect Connector
	cfg     *config

	cache *ringCache

	// mu guards the lazily established timeline handle and the last
	// validated instant. Checkpoint notifications are effectively
	// serialized with routing by the host, but the router does not
	// depend on that.
	mu                 sync.Mutex
	timeline           timeline.Timeline
	lastRefreshInstant string
}

// New creates a router over the given metadata store and timeline
// connector.
//
// Returns bucketindex.ErrInvalidConfig for a non-positive bucket count or
// a malformed index field list.
func New(store metadata.Store, connect Connector, opts ...Option) (*Router, error) {
	cfg := newRouterConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Router{
		store:              store,
		connect:            connect,
		cfg:                cfg,
		cache:              newRingCache(),
		lastRefreshInstant: metadata.InitInstant,
	}, nil
}

// Partition returns the destination task index, in [0, numPartitions), for
// the record identified by key.
//
// The record's target file group is resolved through the cached ring of
// its partition; a cache hit never touches the timeline or storage. The
// task index is a fold-hash of the file group prefix concatenated with the
// partition path, masked and reduced modulo numPartitions, so it is a pure
// function of the current cache state.
func (r *Router) Partition(ctx context.Context, key bucketindex.Key, numPartitions int) (int, error) {
	if numPartitions <= 0 {
		return 0, fmt.Errorf("%w: task count must be positive, got %d",
			bucketindex.ErrInvalidConfig, numPartitions)
	}

	rg, err := r.ringFor(ctx, key.PartitionPath)
	if err != nil {
		return 0, err
	}

	hash := bucketindex.FoldHash(bucketindex.HashKeys(key, r.cfg.indexKeyFields))
	node := rg.ResolveByHash(hash & metadata.MaxHashValue)

	global := bucketindex.FoldHash([]string{node.FileIDPfx + key.PartitionPath})
	return int((global & metadata.MaxHashValue) % uint32(numPartitions)), nil
}

// ringFor returns the partition's cached ring, loading metadata and
// building the ring on a miss.
func (r *Router) ringFor(ctx context.Context, partition string) (*ring.Ring, error) {
	// First lookup establishes the timeline connection so checkpoint
	// notifications arriving later have a handle to query.
	if err := r.ensureTimeline(ctx); err != nil {
		return nil, err
	}

	return r.cache.getOrBuild(partition, func() (*ring.Ring, error) {
		if r.cfg.tracingEnabled {
			tracer := otel.Tracer(otelName)
			var span trace.Span
			ctx, span = tracer.Start(ctx, "bucketindex.load_metadata")
			defer span.End()
		}
		meta, err := r.store.LoadOrCreate(ctx, partition, r.cfg.numBuckets)
		if err != nil {
			return nil, fmt.Errorf("load hashing metadata for partition %q: %w", partition, err)
		}
		if meta == nil {
			return nil, fmt.Errorf("%w: no metadata for partition %q",
				bucketindex.ErrCorruptMetadata, partition)
		}
		rg, err := ring.New(meta)
		if err != nil {
			return nil, err
		}
		r.cfg.logger.Info("built hashing ring",
			"partition", partition, "num_buckets", rg.NumBuckets(), "instant", meta.InstantTime)
		if r.cfg.metricsEnabled {
			meter := otel.Meter(otelName)
			built, _ := meter.Int64Counter("bucketindex.router.rings_built",
				metric.WithDescription("Total number of hashing rings built on cache miss"))
			built.Add(ctx, 1)
		}
		return rg, nil
	})
}

func (r *Router) ensureTimeline(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timeline != nil {
		return nil
	}
	tl, err := r.connect(ctx)
	if err != nil {
		return fmt.Errorf("connect timeline: %w", err)
	}
	r.timeline = tl
	return nil
}

// OnCheckpointComplete is invoked by the host engine after a checkpoint is
// durably committed. It queries the timeline for the latest completed
// replace commit and, if one newer than the last validated instant exists,
// drops every cached ring so subsequent lookups rebuild from the replaced
// metadata.
//
// Checkpoints are frequent and reorganizations rare; when no newer replace
// commit exists this is a cheap idempotent no-op. A timeline failure is
// reported as bucketindex.ErrTimelineUnavailable and leaves the cache
// untouched: routing keeps working against the last known layout and the
// host decides whether the checkpoint fails.
func (r *Router) OnCheckpointComplete(ctx context.Context, checkpointID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timeline == nil {
		// Nothing routed yet, nothing cached.
		return nil
	}

	if err := r.timeline.ReloadActiveView(ctx); err != nil {
		return fmt.Errorf("%w: reload active view: %v", bucketindex.ErrTimelineUnavailable, err)
	}
	inst, err := r.timeline.LatestCompletedInstant(ctx, timeline.ActionReplaceCommit)
	if err != nil {
		return fmt.Errorf("%w: query latest replace commit: %v", bucketindex.ErrTimelineUnavailable, err)
	}
	if inst == nil || inst.Timestamp <= r.lastRefreshInstant {
		return nil
	}

	r.cfg.logger.Info("clearing cached hashing rings, new replace commit spotted",
		"instant", inst.Timestamp, "checkpoint_id", checkpointID)
	r.cache.clear()
	r.lastRefreshInstant = inst.Timestamp

	if r.cfg.metricsEnabled {
		meter := otel.Meter(otelName)
		invalidated, _ := meter.Int64Counter("bucketindex.router.invalidations",
			metric.WithDescription("Total number of checkpoint-driven cache invalidations"))
		invalidated.Add(ctx, 1)
	}
	return nil
}

// Close releases the router's resources: the ring cache is dropped and the
// timeline handle is closed if it supports closing. The host invokes it at
// writer shutdown.
func (r *Router) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.clear()
	if c, ok := r.timeline.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close timeline: %w", err)
		}
	}
	r.timeline = nil
	return nil
}
