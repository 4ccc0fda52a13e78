// Package metadata models the per-partition consistent hashing layout of a
// bucket-indexed table and its persistence.
//
// Each partition of the table carries one Metadata version: an ordered set
// of ring nodes produced either lazily on first write (an evenly spaced
// default layout) or by a background reorganization commit that replaces
// the previous version. Metadata is immutable once read; a new version is
// a new object, never an in-place mutation.
//
// Store implementations persist metadata keyed by partition path with
// atomic create-if-absent semantics, so concurrent writers racing on a
// brand-new partition all observe the same resulting layout:
//   - MemoryStore: in-process store for tests and embedded use
//   - RedisStore: production store built on SET NX
//   - MongoStore: production store built on unique-_id inserts
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// MaxHashValue is the largest hash value representable in a hashing
// layout. Record hashes are masked with it (bitwise AND) before ring
// lookup; the mask must match the one used when the layout's boundaries
// were generated or routing silently diverges from written data.
const MaxHashValue uint32 = math.MaxInt32

// InitInstant is the instant time assigned to lazily created default
// layouts. It sorts before any real commit timestamp.
const InitInstant = "00000000000000"

// ErrCorrupt reports persisted hashing metadata that exists but is not
// well formed: undecodable content, duplicate boundaries, or a missing
// node list where one is required. It is never silently repaired; callers
// must surface it rather than substitute a default layout.
var ErrCorrupt = errors.New("corrupt hashing metadata")

// Metadata is one version of a partition's hashing layout.
//
// The node list is ordered by boundary and partitions the whole hash range
// [0, MaxHashValue] with wraparound: the node with the smallest boundary
// also owns every hash greater than the largest boundary.
type Metadata struct {
	// PartitionPath identifies the table partition this layout belongs to.
	PartitionPath string `json:"partitionPath" bson:"_id"`

	// InstantTime is the monotonically comparable timestamp of the commit
	// that produced this layout. Lazily created defaults use InitInstant.
	InstantTime string `json:"instantTime" bson:"instantTime"`

	// Nodes is the ordered set of ring boundaries.
	Nodes []Node `json:"nodes" bson:"nodes"`
}

// NewDefault synthesizes the initial single-version layout for a partition
// that has never been written: numBuckets evenly spaced boundaries spanning
// [0, MaxHashValue], each assigned a fresh file group prefix.
func NewDefault(partitionPath string, numBuckets int) (*Metadata, error) {
	if numBuckets <= 0 {
		return nil, fmt.Errorf("bucket count must be positive, got %d", numBuckets)
	}
	step := (uint64(MaxHashValue) + 1) / uint64(numBuckets)
	nodes := make([]Node, numBuckets)
	for i := range nodes {
		boundary := uint32(step*uint64(i+1)) - 1
		if i == numBuckets-1 {
			// Integer division may leave a remainder; the last node
			// always closes the range.
			boundary = MaxHashValue
		}
		nodes[i] = Node{Value: boundary, FileIDPfx: uuid.NewString()}
	}
	return &Metadata{
		PartitionPath: partitionPath,
		InstantTime:   InitInstant,
		Nodes:         nodes,
	}, nil
}

// ToJSON serializes the metadata to its persisted textual form.
func (m *Metadata) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// FromJSON deserializes one metadata version from its persisted textual
// form. Unknown fields are ignored for forward compatibility.
// Undecodable content is reported as ErrCorrupt.
func FromJSON(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode metadata: %v", ErrCorrupt, err)
	}
	return &m, nil
}
