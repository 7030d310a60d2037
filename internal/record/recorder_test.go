package record

import (
	"path/filepath"
	"testing"
)

func TestRecordAndForPeer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.db")
	r, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	if err := r.Record(1, "peer1", KindFullSnapshot, []byte{1, 2, 3}, 1000); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := r.Record(2, "peer1", KindDeltaSnapshot, []byte{4, 5}, 1001); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := r.Record(1, "peer2", KindFullSnapshot, []byte{9}, 1000); err != nil {
		t.Fatalf("record: %v", err)
	}

	frames, err := r.ForPeer("peer1")
	if err != nil {
		t.Fatalf("forPeer: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames for peer1, got %d", len(frames))
	}
	if frames[0].Kind != KindFullSnapshot || frames[1].Kind != KindDeltaSnapshot {
		t.Fatalf("unexpected kinds: %+v", frames)
	}
}
