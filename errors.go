package bucketindex

import (
	"errors"

	"github.com/rbaliyan/bucketindex/metadata"
)

// Failure taxonomy of the bucket index.
// Use errors.Is() to check for these errors as they are wrapped with
// additional context at the point of failure.
var (
	// ErrInvalidConfig reports a malformed index configuration: an empty
	// index field name or a non-positive bucket count. Construction fails
	// fast; this error is never recovered at runtime.
	ErrInvalidConfig = errors.New("invalid bucket index configuration")

	// ErrCorruptMetadata reports persisted hashing metadata that exists
	// but is not well formed. It is fatal to the batch or record being
	// routed and is never silently replaced with a default layout.
	ErrCorruptMetadata = metadata.ErrCorrupt

	// ErrTimelineUnavailable reports that a checkpoint-driven timeline
	// query could not be served. It propagates out of the checkpoint
	// hook; the in-memory ring cache is left untouched so routing keeps
	// working against the last known layout.
	ErrTimelineUnavailable = errors.New("timeline unavailable")
)
