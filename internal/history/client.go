package history

import (
	"github.com/snapnet/replicore/internal/replicate"
	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/snapshot"
)

// ClientHistory is the ordered set of locally predicted snapshots a client
// keeps around until the server's authoritative reply for the inputs that
// produced them arrives. It also holds the most recent authoritative
// snapshot (the delta base every incoming delta frame is decoded against).
type ClientHistory struct {
	maxSize int

	order []uint32 // signatures, oldest first
	bySig map[uint32]*snapshot.Snapshot

	serverState *snapshot.Snapshot
}

// NewClientHistory returns an empty client history bounded to maxSize
// predicted snapshots; 0 or negative means unbounded.
func NewClientHistory(maxSize int) *ClientHistory {
	return &ClientHistory{
		maxSize: maxSize,
		bySig:   make(map[uint32]*snapshot.Snapshot),
	}
}

// Add records a newly predicted local snapshot, evicting the oldest entry
// when the history is at capacity.
func (h *ClientHistory) Add(s *snapshot.Snapshot) {
	h.order = append(h.order, s.Signature)
	h.bySig[s.Signature] = s
	for h.maxSize > 0 && len(h.order) > h.maxSize {
		h.popFront()
	}
}

func (h *ClientHistory) popFront() *snapshot.Snapshot {
	if len(h.order) == 0 {
		return nil
	}
	sig := h.order[0]
	h.order = h.order[1:]
	s := h.bySig[sig]
	delete(h.bySig, sig)
	return s
}

// ServerState returns the last authoritative snapshot accepted by
// Reconcile — the reference an incoming delta frame must be decoded
// against — or nil before the first authoritative frame arrives.
func (h *ClientHistory) ServerState() *snapshot.Snapshot { return h.serverState }

// SetServerState replaces the stored authoritative reference directly, for
// the initial full snapshot a client receives before it has any
// predictions to reconcile.
func (h *ClientHistory) SetServerState(s *snapshot.Snapshot) { h.serverState = s }

// Snapshots returns every retained predicted snapshot, oldest first.
func (h *ClientHistory) Snapshots() []*snapshot.Snapshot {
	out := make([]*snapshot.Snapshot, 0, len(h.order))
	for _, sig := range h.order {
		out = append(out, h.bySig[sig])
	}
	return out
}

// Len reports how many predicted snapshots are retained.
func (h *ClientHistory) Len() int { return len(h.order) }

// patchOp is one correction found while comparing the local predicted
// snapshot against the authoritative one.
type patchOp struct {
	typeName  string
	et        *schema.EntityType
	uid       uint32
	classHash uint32
	remove    bool
	values    []any // full authoritative field set (correction or spawn)
}

// Reconcile applies one authoritative snapshot to the predicted timeline:
//
// A frame whose input signature is older than the oldest retained
// prediction is reported as ErrStaleFrame and changes nothing — a newer
// authoritative frame already superseded it.
//
// Otherwise every prediction built from an input the authoritative frame
// has consumed (input signature at or below the frame's) is popped from the
// front; the last popped one is the prediction the server's state should be
// compared against. A frame carrying no input compares against the newest
// prediction instead, without popping anything.
//
// Each entity is then diffed field-by-field through its type's comparers.
// Corrections and spawns take the authoritative values; entities the
// authoritative frame no longer contains are despawned. Every resulting
// patch is applied to ALL remaining predictions, not just one — each was
// built on top of the now-known-wrong baseline and carries the same error
// forward until overwritten here.
//
// Finally the authoritative snapshot becomes the stored server state.
// Applying the same frame twice is harmless: the second apply either
// reports stale or finds nothing left to correct.
func (h *ClientHistory) Reconcile(authoritative *snapshot.Snapshot, types []*schema.EntityType) error {
	isig := authoritative.InputSignature

	if isig > 0 && len(h.order) > 0 {
		oldest := h.bySig[h.order[0]]
		if isig < oldest.InputSignature {
			return ErrStaleFrame
		}
	}

	var local *snapshot.Snapshot
	if isig > 0 {
		for len(h.order) > 0 {
			head := h.bySig[h.order[0]]
			if head.InputSignature > isig {
				break
			}
			local = h.popFront()
		}
	} else if len(h.order) > 0 {
		local = h.bySig[h.order[len(h.order)-1]]
	}

	var ops []patchOp
	for _, et := range types {
		localByUID := make(map[uint32]*snapshot.EntityState)
		if local != nil {
			for _, e := range local.Entities(et.Name) {
				localByUID[e.UID] = e
			}
		}

		for _, ae := range authoritative.Entities(et.Name) {
			le, predicted := localByUID[ae.UID]
			if !predicted {
				ops = append(ops, spawnOp(et, ae))
				continue
			}
			delete(localByUID, ae.UID)
			if replicate.ComputeChangeMask(et, le, ae) != 0 {
				ops = append(ops, spawnOp(et, ae))
			}
		}
		for uid := range localByUID {
			ops = append(ops, patchOp{typeName: et.Name, et: et, uid: uid, remove: true})
		}
	}

	if len(ops) > 0 {
		for _, sig := range h.order {
			applyPatch(h.bySig[sig], ops)
		}
	}

	h.serverState = authoritative
	return nil
}

// spawnOp clones an authoritative entity into a patch, used both for
// corrections of mispredicted entities and for entities the client never
// predicted at all.
func spawnOp(et *schema.EntityType, ae *snapshot.EntityState) patchOp {
	values := make([]any, len(ae.Values))
	copy(values, ae.Values)
	return patchOp{typeName: et.Name, et: et, uid: ae.UID, classHash: ae.ClassHash, values: values}
}

func applyPatch(s *snapshot.Snapshot, ops []patchOp) {
	if s == nil {
		return
	}
	for _, op := range ops {
		if op.remove {
			s.RemoveEntity(op.typeName, op.uid)
			continue
		}
		if existing, ok := s.GetEntity(op.typeName, op.uid); ok {
			existing.ClassHash = op.classHash
			copy(existing.Values, op.values)
			continue
		}
		values := make([]any, len(op.values))
		copy(values, op.values)
		s.AddEntity(op.typeName, &snapshot.EntityState{
			UID:       op.uid,
			ClassHash: op.classHash,
			Type:      op.et,
			Values:    values,
		})
	}
}
