package bucketindex

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFoldHashDeterministic(t *testing.T) {
	values := []string{"alice", "2024-06-01", "eu-west"}
	first := FoldHash(values)
	for i := 0; i < 10; i++ {
		if got := FoldHash(values); got != first {
			t.Fatalf("fold hash not deterministic: %d != %d", got, first)
		}
	}
}

func TestFoldHashOrderSensitive(t *testing.T) {
	a := FoldHash([]string{"x", "y"})
	b := FoldHash([]string{"y", "x"})
	if a == b {
		t.Error("expected value order to change the fold hash")
	}
}

func TestFoldHashIsSeedChained(t *testing.T) {
	// The fold differs from hashing the concatenation: each value is a
	// separate xxHash32 call seeded with the previous output.
	folded := FoldHash([]string{"ab", "cd"})
	concat := FoldHash([]string{"abcd"})
	if folded == concat {
		t.Error("expected seed-chained fold to differ from concatenated hash")
	}

	single := FoldHash([]string{"cd"})
	if folded == single {
		t.Error("expected first value to seed the second hash")
	}
}

func TestFoldHashEmpty(t *testing.T) {
	if FoldHash(nil) != 0 {
		t.Error("expected zero hash for empty value list")
	}
}

func TestHashKeysPlainKey(t *testing.T) {
	key := Key{RecordKey: "user-42", PartitionPath: "p"}
	got := HashKeys(key, []string{"user_id"})
	if diff := cmp.Diff([]string{"user-42"}, got); diff != "" {
		t.Errorf("plain key mismatch (-want +got):\n%s", diff)
	}
}

func TestHashKeysCompositeSubset(t *testing.T) {
	key := Key{RecordKey: "user_id:42,ts:2024-06-01T12:00:00", PartitionPath: "p"}

	got := HashKeys(key, []string{"user_id"})
	if diff := cmp.Diff([]string{"42"}, got); diff != "" {
		t.Errorf("subset extraction mismatch (-want +got):\n%s", diff)
	}

	// Field order in the configuration, not in the key, drives the fold.
	got = HashKeys(key, []string{"ts", "user_id"})
	if diff := cmp.Diff([]string{"2024-06-01T12:00:00", "42"}, got); diff != "" {
		t.Errorf("ordered extraction mismatch (-want +got):\n%s", diff)
	}
}

func TestHashKeysCompositeAllValues(t *testing.T) {
	key := Key{RecordKey: "a:1,b:2", PartitionPath: "p"}
	got := HashKeys(key, nil)
	if diff := cmp.Diff([]string{"1", "2"}, got); diff != "" {
		t.Errorf("all-values extraction mismatch (-want +got):\n%s", diff)
	}
}

func TestHashKeysSubsetContract(t *testing.T) {
	// Two records with identical index field values but different full
	// keys must produce the same routing key, and so the same fold hash.
	a := Key{RecordKey: "user_id:42,order_id:1001", PartitionPath: "p"}
	b := Key{RecordKey: "user_id:42,order_id:2002", PartitionPath: "p"}

	fields := []string{"user_id"}
	ha := FoldHash(HashKeys(a, fields))
	hb := FoldHash(HashKeys(b, fields))
	if ha != hb {
		t.Errorf("expected identical fold hashes for identical index fields, got %d and %d", ha, hb)
	}
}

func TestBucketFileID(t *testing.T) {
	if got := BucketFileID(7); got != "00000007-0" {
		t.Errorf("expected 00000007-0, got %s", got)
	}
	if got := BucketFileID(12345678); got != "12345678-0" {
		t.Errorf("expected 12345678-0, got %s", got)
	}
}
