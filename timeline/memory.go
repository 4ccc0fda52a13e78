package timeline

import (
	"context"
	"sync"
)

// MemoryTimeline is an in-process timeline for tests and embedded use.
//
// Commits recorded with Record land on the backing log but are not visible
// to LatestCompletedInstant until ReloadActiveView is called, mirroring the
// snapshot semantics of a real timeline client: readers act on the view
// they last loaded.
type MemoryTimeline struct {
	mu     sync.Mutex
	log    []Instant
	active []Instant
}

// NewMemoryTimeline creates a new in-process timeline.
func NewMemoryTimeline() *MemoryTimeline {
	return &MemoryTimeline{}
}

// Record appends a completed instant to the backing log.
// It becomes visible to readers on their next ReloadActiveView.
func (t *MemoryTimeline) Record(action Action, timestamp string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = append(t.log, Instant{Timestamp: timestamp, Action: action})
}

// ReloadActiveView refreshes the visible snapshot from the backing log.
func (t *MemoryTimeline) ReloadActiveView(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = append(t.active[:0], t.log...)
	return nil
}

// LatestCompletedInstant returns the most recent visible instant of the
// given action kind, or nil if none exists.
func (t *MemoryTimeline) LatestCompletedInstant(ctx context.Context, action Action) (*Instant, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.active) - 1; i >= 0; i-- {
		if t.active[i].Action == action {
			inst := t.active[i]
			return &inst, nil
		}
	}
	return nil, nil
}

// Compile-time check
var _ Timeline = (*MemoryTimeline)(nil)
