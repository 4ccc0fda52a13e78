// Package ring provides the in-memory consistent hash ring derived from one
// hashing metadata version.
//
// A Ring is built once from a metadata snapshot and never mutated: any
// layout change arrives as a new metadata version and produces a brand-new
// Ring, so a built Ring is safe to share read-only across concurrent
// lookups. Rebuilding is the only way to reflect new metadata.
package ring

import (
	"fmt"
	"sort"

	"github.com/rbaliyan/bucketindex/metadata"
)

// Ring answers "which node owns hash value H" and "which node owns file
// group F" for one metadata version.
//
// Lookups by hash are successor-or-wrap: the owning node is the one with
// the smallest boundary >= H; a hash beyond the largest boundary wraps to
// the node with the smallest boundary. Together the nodes partition the
// whole range [0, metadata.MaxHashValue] with no gaps and no overlaps.
type Ring struct {
	meta       *metadata.Metadata
	boundaries []uint32        // sorted ascending
	nodes      []metadata.Node // parallel to boundaries
	byFileID   map[string]metadata.Node
}

// New builds a ring from one metadata snapshot.
//
// Construction is O(n log n) and validates the layout invariant that
// boundaries are unique; a duplicate boundary or an empty node list is
// reported as metadata.ErrCorrupt rather than resolved by guessing.
func New(meta *metadata.Metadata) (*Ring, error) {
	if meta == nil || len(meta.Nodes) == 0 {
		return nil, fmt.Errorf("%w: empty node list", metadata.ErrCorrupt)
	}

	nodes := make([]metadata.Node, len(meta.Nodes))
	copy(nodes, meta.Nodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Value < nodes[j].Value })

	r := &Ring{
		meta:       meta,
		boundaries: make([]uint32, len(nodes)),
		nodes:      nodes,
		byFileID:   make(map[string]metadata.Node, len(nodes)),
	}
	for i, n := range nodes {
		if i > 0 && n.Value == nodes[i-1].Value {
			return nil, fmt.Errorf("%w: duplicate boundary %d in partition %q",
				metadata.ErrCorrupt, n.Value, meta.PartitionPath)
		}
		r.boundaries[i] = n.Value
		r.byFileID[n.FileID()] = n
	}
	return r, nil
}

// ResolveByHash returns the node owning the given hash value.
//
// The caller is expected to have masked the hash with metadata.MaxHashValue;
// any larger value still resolves, via wraparound, to the smallest-boundary
// node. O(log n).
func (r *Ring) ResolveByHash(hash uint32) metadata.Node {
	idx := sort.Search(len(r.boundaries), func(i int) bool {
		return r.boundaries[i] >= hash
	})
	if idx == len(r.boundaries) {
		idx = 0
	}
	return r.nodes[idx]
}

// ResolveByFileGroup returns the node owning an existing file group id,
// or false if the file group does not belong to this layout version.
func (r *Ring) ResolveByFileGroup(fileID string) (metadata.Node, bool) {
	n, ok := r.byFileID[fileID]
	return n, ok
}

// Nodes returns the ring's nodes in boundary order.
// The returned slice must not be modified.
func (r *Ring) Nodes() []metadata.Node {
	return r.nodes
}

// NumBuckets returns the number of buckets (nodes) in this layout.
func (r *Ring) NumBuckets() int {
	return len(r.nodes)
}

// Metadata returns the metadata snapshot this ring was built from.
func (r *Ring) Metadata() *metadata.Metadata {
	return r.meta
}
