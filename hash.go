package bucketindex

import (
	"fmt"
	"strings"

	"github.com/OneOfOne/xxhash"
)

// FoldHash computes the 32-bit routing hash of an ordered list of values.
//
// The hash is a fold, not an independent hash per value: each value is
// hashed with xxHash32 seeded by the previous value's hash. Value order and
// the exact string representation of each value are therefore part of the
// persisted layout contract; changing either silently diverges from data
// already written under existing hashing metadata.
//
// The result is unmasked. Callers mask it with metadata.MaxHashValue
// before ring lookup.
func FoldHash(values []string) uint32 {
	var h uint32
	for _, v := range values {
		h = xxhash.Checksum32S([]byte(v), h)
	}
	return h
}

// HashKeys extracts the ordered routing-key values from a record key.
//
// Plain record keys hash as a single value. Composite record keys of the
// form "field1:value1,field2:value2,..." hash only the values of the
// configured index fields, in configured order, so the routing key may be
// a proper subset of the primary key: two records that agree on the index
// fields route identically even when the full keys differ.
//
// With no index fields configured, composite keys hash all their values in
// key order.
func HashKeys(key Key, indexKeyFields []string) []string {
	if !strings.Contains(key.RecordKey, ":") {
		return []string{key.RecordKey}
	}

	pairs := strings.Split(key.RecordKey, ",")
	if len(indexKeyFields) == 0 {
		values := make([]string, 0, len(pairs))
		for _, p := range pairs {
			values = append(values, valueOfPair(p))
		}
		return values
	}

	byField := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if i := strings.Index(p, ":"); i >= 0 {
			byField[p[:i]] = p[i+1:]
		}
	}
	values := make([]string, len(indexKeyFields))
	for i, f := range indexKeyFields {
		values[i] = byField[f]
	}
	return values
}

func valueOfPair(pair string) string {
	if i := strings.Index(pair, ":"); i >= 0 {
		return pair[i+1:]
	}
	return pair
}

// BucketFileID returns the file group id of a fixed-modulo bucket number.
// Bucket numbers are zero-padded so file listings sort naturally.
func BucketFileID(bucket int) string {
	return fmt.Sprintf("%08d-0", bucket)
}
