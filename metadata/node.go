package metadata

import (
	"encoding/json"
	"fmt"
)

// Node is a single boundary on the consistent hash ring: the inclusive
// upper bound of the hash range it owns, and the stable file group prefix
// the range is assigned to. Nodes are immutable values; a layout change
// always produces a new node list under a new metadata version.
//
// The JSON field names are part of the persisted layout format and must
// not change, or previously written tables become unreadable.
type Node struct {
	// Value is the inclusive upper bound of the owned hash range,
	// within [0, MaxHashValue].
	Value uint32 `json:"value" bson:"value"`

	// FileIDPfx is the stable prefix the physical file group id is
	// derived from. One file group per node.
	FileIDPfx string `json:"fileIdPfx" bson:"fileIdPfx"`
}

// FileID returns the concrete file group id for this node.
// Each node owns exactly one file group, so the slice index is fixed at 0.
func (n Node) FileID() string {
	return n.FileIDPfx + "-0"
}

// String returns a human-readable representation for logging.
func (n Node) String() string {
	return fmt.Sprintf("Node{value=%d, fileIdPfx=%s}", n.Value, n.FileIDPfx)
}

// NodesToJSON serializes a node list to its persisted textual form.
func NodesToJSON(nodes []Node) ([]byte, error) {
	return json.MarshalIndent(nodes, "", "  ")
}

// NodesFromJSON deserializes a node list from its persisted textual form.
//
// Empty or absent content deserializes to an empty node list, not an
// error. Unknown fields are ignored for forward compatibility: newer
// writers may attach extra attributes to a node.
// Malformed content is reported as ErrCorrupt.
func NodesFromJSON(data []byte) ([]Node, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var nodes []Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("%w: decode node list: %v", ErrCorrupt, err)
	}
	return nodes, nil
}
