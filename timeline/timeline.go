// Package timeline defines the table commit timeline collaborator consumed
// by the routing layer.
//
// The timeline is the table format's append-only log of completed
// operations. The bucket index never walks it; the only question asked is
// "what is the latest completed commit of a given action kind", used by the
// checkpoint-driven cache invalidation protocol to detect that a background
// reorganization (replace commit) has happened.
package timeline

import "context"

// Action is the kind of a timeline commit.
type Action string

const (
	// ActionCommit is a regular write commit.
	ActionCommit Action = "commit"
	// ActionDeltaCommit is an incremental (log file) write commit.
	ActionDeltaCommit Action = "deltacommit"
	// ActionReplaceCommit is a reorganization commit that atomically
	// replaces file groups, including bucket resharding.
	ActionReplaceCommit Action = "replacecommit"
)

// Instant is one completed entry on the timeline.
type Instant struct {
	// Timestamp is the commit time. Timestamps are monotonically
	// comparable as strings.
	Timestamp string
	// Action is the commit kind.
	Action Action
}

// Timeline is the read-side view of the table's commit log.
// Implementations must be safe for concurrent use.
type Timeline interface {
	// ReloadActiveView forces a fresh read of the timeline. It must be
	// called before LatestCompletedInstant when acting on a potentially
	// stale snapshot, e.g. at checkpoint boundaries.
	ReloadActiveView(ctx context.Context) error

	// LatestCompletedInstant returns the most recent completed instant of
	// the given action kind, or nil if none exists.
	LatestCompletedInstant(ctx context.Context, action Action) (*Instant, error)
}
