// Package bucketindex implements the consistent-hashing bucket index of a
// transactional data-lake table: it maps each incoming record to a stable,
// bounded set of physical file groups per partition and stays correct
// across non-disruptive bucket count changes committed by background
// reorganization.
//
// Architecture:
//   - metadata: versioned per-partition hashing layouts and their
//     persistence (Memory, Redis, MongoDB stores with atomic
//     create-if-absent semantics)
//   - ring: the immutable consistent hash ring derived from one metadata
//     version, with successor-or-wrap hash lookup and file-group lookup
//   - bucketindex (this package): record model, fold-hash, and the
//     BucketIndex routing abstraction with consistent-hashing and
//     fixed-modulo strategies
//   - timeline: the commit timeline collaborator interface used to detect
//     reorganization (replace) commits
//   - router: the sink-side partitioner that assigns records to parallel
//     write tasks and invalidates its ring cache at checkpoint boundaries
//
// Basic tagging example:
//
//	store := metadata.NewMemoryStore()
//	idx, err := bucketindex.NewConsistentHashingBucketIndex(store,
//	    bucketindex.WithNumBuckets(8))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	records := []*bucketindex.Record{
//	    {Key: bucketindex.Key{RecordKey: "user-1", PartitionPath: "2024/06/01"}},
//	}
//	if idx.RequiresTagging(bucketindex.OpUpsert) {
//	    if err := idx.TagBatch(ctx, records); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	// records[0].Location.FileID is the target file group
//
// Routing contract: the record's routing key (the configured index fields,
// possibly a proper subset of the primary key) is hashed with a seed-chained
// xxHash32 fold, masked to [0, metadata.MaxHashValue], and resolved against
// the partition's ring. For a fixed metadata version the assignment is fully
// deterministic; a reorganization commit replaces the metadata and every
// ring built from it, never mutates them.
package bucketindex
