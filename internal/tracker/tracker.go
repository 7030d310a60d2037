// Package tracker holds per-client replication state: which input
// signature produced which outbound snapshot, how many snapshots remain
// unacknowledged, and the full-vs-delta decision that state drives.
package tracker

import (
	"sync"

	"github.com/snapnet/replicore/internal/history"
	"github.com/snapnet/replicore/internal/snapshot"
)

// ClientTracker is one connected player's replication bookkeeping: the
// snapshot-signature-to-input-signature map used to collapse
// acknowledgements, the last fully-acknowledged snapshot signature, and a
// running count of unacknowledged snapshots built with no input at all
// (reported by HasNoInput).
type ClientTracker struct {
	mu sync.Mutex

	snapToInput  map[uint32]uint32
	lastAckSnap  uint32
	noInputCount int
	lastInputSig uint32
	ready        bool
}

// NewClientTracker returns a fresh tracker for a newly connected player.
func NewClientTracker() *ClientTracker {
	return &ClientTracker{snapToInput: make(map[uint32]uint32)}
}

// Associate records which input signature a newly built outbound snapshot
// was produced from. An input signature of 0 means the snapshot carried no
// real input for this player, so the no-input counter increments.
func (t *ClientTracker) Associate(snapSig, inputSig uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapToInput[snapSig] = inputSig
	if inputSig == 0 {
		t.noInputCount++
	}
}

// Acknowledge collapses every entry from the last acknowledged signature
// (exclusive) up to and including snapSig: each is erased from the
// tracking map, decrementing the no-input counter for any that were
// no-input snapshots, and the last-acknowledged marker advances to snapSig
// unconditionally — even if some signatures in that range were never
// associated (a gap is not an error here, just nothing to erase). An
// acknowledgement at or below the last-acknowledged signature changes
// nothing, so the marker never moves backwards.
func (t *ClientTracker) Acknowledge(snapSig uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if snapSig <= t.lastAckSnap {
		return
	}
	for sig := t.lastAckSnap + 1; sig <= snapSig; sig++ {
		isig, ok := t.snapToInput[sig]
		if !ok {
			continue
		}
		delete(t.snapToInput, sig)
		if isig == 0 {
			t.noInputCount--
		}
	}
	t.lastAckSnap = snapSig
}

// NonAckedCount reports how many outbound snapshots are still waiting on
// acknowledgement.
func (t *ClientTracker) NonAckedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.snapToInput)
}

// HasNoInput reports whether any unacknowledged snapshot was built with no
// real input for this player.
func (t *ClientTracker) HasNoInput() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.noInputCount > 0
}

// LastAckSnap returns the most recently acknowledged snapshot signature.
func (t *ClientTracker) LastAckSnap() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastAckSnap
}

// SetReady marks the client ready (or not) to receive outbound snapshots.
// A client that has not finished its handshake is skipped entirely by the
// outbound policy rather than sent frames it cannot decode yet.
func (t *ClientTracker) SetReady(ready bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ready = ready
}

// IsReady reports whether outbound snapshots should be sent to this client.
func (t *ClientTracker) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ready
}

// RecordInput notes the newest input signature received from this client.
// Out-of-order arrivals never move the marker backwards.
func (t *ClientTracker) RecordInput(inputSig uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if inputSig > t.lastInputSig {
		t.lastInputSig = inputSig
	}
}

// LastInputSig returns the newest input signature received from this
// client.
func (t *ClientTracker) LastInputSig() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastInputSig
}

// Decision is the outcome of OutboundPolicy: whether this client gets a
// frame at all, whether it is a full snapshot, and — when a delta will do —
// the reference snapshot to encode the delta against.
type Decision struct {
	Skip      bool
	SendFull  bool
	Reference *snapshot.Snapshot
}

// OutboundPolicy decides what the next outbound frame for this client is.
// A client that is not ready is skipped. A full snapshot is forced when too
// many snapshots are still unacknowledged (the client has fallen far enough
// behind that continuing to build deltas would only deepen the backlog), or
// when the reference snapshot it would need has already aged out of server
// history. Otherwise a delta against that reference is used.
func (t *ClientTracker) OutboundPolicy(fullSnapThreshold int, hist *history.ServerHistory) Decision {
	if !t.IsReady() {
		return Decision{Skip: true}
	}
	if t.NonAckedCount() > fullSnapThreshold {
		return Decision{SendFull: true}
	}
	ref, ok := hist.BySignature(t.LastAckSnap())
	if !ok {
		return Decision{SendFull: true}
	}
	return Decision{SendFull: false, Reference: ref}
}
