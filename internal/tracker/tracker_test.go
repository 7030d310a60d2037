package tracker

import (
	"testing"

	"github.com/snapnet/replicore/internal/history"
	"github.com/snapnet/replicore/internal/snapshot"
)

func TestAcknowledgeCollapsesRange(t *testing.T) {
	tr := NewClientTracker()
	tr.Associate(1, 10)
	tr.Associate(2, 0) // no-input snapshot
	tr.Associate(3, 11)

	if !tr.HasNoInput() {
		t.Fatal("expected no-input flag set before ack")
	}

	tr.Acknowledge(3)
	if tr.NonAckedCount() != 0 {
		t.Fatalf("expected 0 unacked after collapsing through 3, got %d", tr.NonAckedCount())
	}
	if tr.HasNoInput() {
		t.Fatal("expected no-input flag cleared after ack collapsed the no-input entry")
	}
	if tr.LastAckSnap() != 3 {
		t.Fatalf("expected lastAckSnap=3, got %d", tr.LastAckSnap())
	}
}

func TestAcknowledgeHandlesGaps(t *testing.T) {
	tr := NewClientTracker()
	tr.Associate(5, 1)
	tr.Acknowledge(5) // nothing registered for 1-4, should not panic or misbehave
	if tr.LastAckSnap() != 5 {
		t.Fatalf("expected lastAckSnap=5, got %d", tr.LastAckSnap())
	}
}

func TestOutboundPolicySkipsNotReadyClient(t *testing.T) {
	tr := NewClientTracker()
	hist := history.NewServerHistory(10)
	hist.Add(snapshot.NewSnapshot(0, 0))

	if d := tr.OutboundPolicy(5, hist); !d.Skip {
		t.Fatal("expected not-ready client skipped")
	}
	tr.SetReady(true)
	if d := tr.OutboundPolicy(5, hist); d.Skip {
		t.Fatal("expected ready client not skipped")
	}
}

func TestOutboundPolicyForcesFullOverThreshold(t *testing.T) {
	// Four unacknowledged snapshots against a threshold of three: the next
	// outbound frame must be a full snapshot even though a delta reference
	// is sitting right there in history.
	tr := NewClientTracker()
	tr.SetReady(true)
	tr.Associate(1, 1)
	tr.Associate(2, 2)
	tr.Associate(3, 3)
	tr.Associate(4, 4)

	hist := history.NewServerHistory(10)
	hist.Add(snapshot.NewSnapshot(0, 0))

	d := tr.OutboundPolicy(3, hist)
	if d.Skip || !d.SendFull {
		t.Fatalf("expected full snapshot forced when non-acked count exceeds threshold, got %+v", d)
	}
}

func TestOutboundPolicyFullWhenReferenceMissing(t *testing.T) {
	tr := NewClientTracker()
	tr.SetReady(true)
	hist := history.NewServerHistory(10)
	// lastAckSnap defaults to 0 but history has nothing for signature 0
	d := tr.OutboundPolicy(5, hist)
	if !d.SendFull {
		t.Fatal("expected full snapshot when reference snapshot is missing from history")
	}
}

func TestOutboundPolicyDeltaWhenReferenceAvailable(t *testing.T) {
	tr := NewClientTracker()
	tr.SetReady(true)
	hist := history.NewServerHistory(10)
	hist.Add(snapshot.NewSnapshot(0, 0))

	d := tr.OutboundPolicy(5, hist)
	if d.SendFull {
		t.Fatal("expected delta when under threshold and reference is available")
	}
	if d.Reference == nil || d.Reference.Signature != 0 {
		t.Fatalf("expected reference signature 0, got %+v", d.Reference)
	}
}

func TestRecordInputNeverRegresses(t *testing.T) {
	tr := NewClientTracker()
	tr.RecordInput(5)
	tr.RecordInput(3) // out-of-order arrival
	if tr.LastInputSig() != 5 {
		t.Fatalf("expected last input signature 5, got %d", tr.LastInputSig())
	}
}
