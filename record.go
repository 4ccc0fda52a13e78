package bucketindex

import "fmt"

// Key identifies a record within the table: the record key plus the
// relative path of the partition the record belongs to.
type Key struct {
	RecordKey     string
	PartitionPath string
}

// String returns a human-readable representation for logging.
func (k Key) String() string {
	return fmt.Sprintf("Key{recordKey=%s, partitionPath=%s}", k.RecordKey, k.PartitionPath)
}

// Location is the physical placement resolved for a record: the file group
// it must be written to and the instant time of the layout version the
// assignment was computed against.
type Location struct {
	InstantTime string
	FileID      string
}

// Record is one incoming record as seen by the index: its key, the payload
// (opaque to routing) and the location tagging attaches.
type Record struct {
	Key      Key
	Data     any
	Location *Location
}

// WriteOperation classifies the write a batch of records belongs to.
// The classification decides whether location tagging is required at all;
// callers must consult BucketIndex.RequiresTagging before tagging, since
// tagging unconditionally would force unnecessary metadata loads.
type WriteOperation int

const (
	// OpInsert inserts new records.
	OpInsert WriteOperation = iota
	// OpInsertOverwrite inserts records, overwriting matching file groups.
	OpInsertOverwrite
	// OpUpsert inserts or updates records by key.
	OpUpsert
	// OpDelete deletes records by key.
	OpDelete
	// OpBulkInsert loads records in bulk; locations are assigned by the
	// bulk layout writer, not by the index.
	OpBulkInsert
	// OpCompact rewrites existing file groups; records already carry
	// locations.
	OpCompact
)

// String returns the operation name.
func (op WriteOperation) String() string {
	switch op {
	case OpInsert:
		return "insert"
	case OpInsertOverwrite:
		return "insert_overwrite"
	case OpUpsert:
		return "upsert"
	case OpDelete:
		return "delete"
	case OpBulkInsert:
		return "bulk_insert"
	case OpCompact:
		return "compact"
	default:
		return fmt.Sprintf("unknown(%d)", int(op))
	}
}
