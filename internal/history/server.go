package history

import "github.com/snapnet/replicore/internal/snapshot"

// ServerHistory is a FIFO-bounded ring of recently built snapshots, indexed
// both by signature (the outbound full/delta policy's reference lookup) and
// by input signature (ByInputSignature finds "the snapshot built from this
// input" independent of tick signature).
type ServerHistory struct {
	maxSize int

	order      []uint32 // signatures, oldest first
	bySig      map[uint32]*snapshot.Snapshot
	byInputSig map[uint32]*snapshot.Snapshot
}

// NormalizeHistorySize raises a configured history size up to
// fullSnapThreshold+1 when it is too small to hold enough snapshots for the
// full/delta policy to ever find a usable reference.
func NormalizeHistorySize(historySize, fullSnapThreshold int) int {
	if historySize < fullSnapThreshold+1 {
		return fullSnapThreshold + 1
	}
	return historySize
}

// NewServerHistory returns an empty history bounded to maxSize snapshots.
func NewServerHistory(maxSize int) *ServerHistory {
	return &ServerHistory{
		maxSize:    maxSize,
		bySig:      make(map[uint32]*snapshot.Snapshot),
		byInputSig: make(map[uint32]*snapshot.Snapshot),
	}
}

// Add inserts a newly built snapshot, evicting the oldest entry if the
// history is already at capacity.
func (h *ServerHistory) Add(s *snapshot.Snapshot) {
	h.order = append(h.order, s.Signature)
	h.bySig[s.Signature] = s
	h.byInputSig[s.InputSignature] = s

	for len(h.order) > h.maxSize {
		oldest := h.order[0]
		h.order = h.order[1:]
		if old, ok := h.bySig[oldest]; ok {
			delete(h.bySig, oldest)
			if h.byInputSig[old.InputSignature] == old {
				delete(h.byInputSig, old.InputSignature)
			}
		}
	}
}

// BySignature looks up a stored snapshot by its tick signature.
func (h *ServerHistory) BySignature(sig uint32) (*snapshot.Snapshot, bool) {
	s, ok := h.bySig[sig]
	return s, ok
}

// ByInputSignature looks up a stored snapshot by the input signature it was
// built from.
func (h *ServerHistory) ByInputSignature(isig uint32) (*snapshot.Snapshot, bool) {
	s, ok := h.byInputSig[isig]
	return s, ok
}

// Len reports how many snapshots are currently retained.
func (h *ServerHistory) Len() int { return len(h.order) }
