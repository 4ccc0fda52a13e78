package timeline

import (
	"context"
	"testing"
)

func TestMemoryTimelineSnapshot(t *testing.T) {
	ctx := context.Background()
	tl := NewMemoryTimeline()

	// Nothing recorded, nothing visible.
	inst, err := tl.LatestCompletedInstant(ctx, ActionReplaceCommit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst != nil {
		t.Fatalf("expected no instant, got %v", inst)
	}

	// Recorded commits stay invisible until the view is reloaded.
	tl.Record(ActionReplaceCommit, "20240601120000")
	inst, err = tl.LatestCompletedInstant(ctx, ActionReplaceCommit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst != nil {
		t.Errorf("expected stale view to hide new commit, got %v", inst)
	}

	if err := tl.ReloadActiveView(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inst, err = tl.LatestCompletedInstant(ctx, ActionReplaceCommit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst == nil || inst.Timestamp != "20240601120000" {
		t.Errorf("expected replace commit visible after reload, got %v", inst)
	}
}

func TestMemoryTimelineLatestByAction(t *testing.T) {
	ctx := context.Background()
	tl := NewMemoryTimeline()

	tl.Record(ActionCommit, "20240601100000")
	tl.Record(ActionReplaceCommit, "20240601110000")
	tl.Record(ActionCommit, "20240601120000")
	tl.Record(ActionReplaceCommit, "20240601130000")
	if err := tl.ReloadActiveView(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst, err := tl.LatestCompletedInstant(ctx, ActionReplaceCommit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst == nil || inst.Timestamp != "20240601130000" {
		t.Errorf("expected latest replace commit 20240601130000, got %v", inst)
	}

	inst, err = tl.LatestCompletedInstant(ctx, ActionDeltaCommit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst != nil {
		t.Errorf("expected no delta commit, got %v", inst)
	}
}
