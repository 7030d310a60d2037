// Package snapshot holds the per-tick entity state model: entity values,
// and the ordered, uid-indexed snapshot that groups them by entity type.
package snapshot

import "github.com/snapnet/replicore/internal/schema"

// EntityState is one entity's field values at a point in time, in the same
// order as its EntityType's registered fields. ClassHash is meaningful only
// for types registered with the class hash slot enabled; it is ignored (and
// never encoded) otherwise.
type EntityState struct {
	UID       uint32
	ClassHash uint32
	Type      *schema.EntityType
	Values    []any
}

// Clone returns a copy of the entity state with a new Values slice, so
// replacing a value in the clone never affects the original. Elements are
// copied shallowly: array field values ([]uint8, []int32, []float32) share
// their backing arrays with the original; every other field value is a
// plain value.
func (e *EntityState) Clone() *EntityState {
	values := make([]any, len(e.Values))
	copy(values, e.Values)
	return &EntityState{UID: e.UID, ClassHash: e.ClassHash, Type: e.Type, Values: values}
}

// typeCollection is the ordered sequence plus uid index for one entity type
// within a snapshot.
type typeCollection struct {
	order []uint32
	byUID map[uint32]*EntityState
}

func newTypeCollection() *typeCollection {
	return &typeCollection{byUID: make(map[uint32]*EntityState)}
}

// Snapshot is one tick's full set of entity states, grouped by entity type,
// plus the signature pair that identifies it in history and reconciliation.
type Snapshot struct {
	Signature      uint32
	InputSignature uint32

	types map[string]*typeCollection
}

// NewSnapshot returns an empty snapshot stamped with the given signatures.
func NewSnapshot(signature, inputSignature uint32) *Snapshot {
	return &Snapshot{
		Signature:      signature,
		InputSignature: inputSignature,
		types:          make(map[string]*typeCollection),
	}
}

// EnsureType creates an empty collection for a type if none exists yet, so
// a freshly started tick already holds every registered type and a decoder
// never has to invent one.
func (s *Snapshot) EnsureType(typeName string) {
	if _, ok := s.types[typeName]; !ok {
		s.types[typeName] = newTypeCollection()
	}
}

// TypeNames returns the entity type names present in this snapshot, in no
// particular order.
func (s *Snapshot) TypeNames() []string {
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	return names
}

// Entities returns a type's entities in registration-insertion order.
func (s *Snapshot) Entities(typeName string) []*EntityState {
	tc, ok := s.types[typeName]
	if !ok {
		return nil
	}
	out := make([]*EntityState, 0, len(tc.order))
	for _, uid := range tc.order {
		out = append(out, tc.byUID[uid])
	}
	return out
}

// GetEntity looks up one entity by type name and uid.
func (s *Snapshot) GetEntity(typeName string, uid uint32) (*EntityState, bool) {
	tc, ok := s.types[typeName]
	if !ok {
		return nil, false
	}
	es, ok := tc.byUID[uid]
	return es, ok
}

// AddEntity inserts or replaces an entity state within its type's
// collection. Adding a uid already present overwrites its values in place
// without disturbing its position in the type's insertion order, so
// re-adding an entity mid-tick never duplicates it.
func (s *Snapshot) AddEntity(typeName string, es *EntityState) {
	tc, ok := s.types[typeName]
	if !ok {
		tc = newTypeCollection()
		s.types[typeName] = tc
	}
	if _, exists := tc.byUID[es.UID]; !exists {
		tc.order = append(tc.order, es.UID)
	}
	tc.byUID[es.UID] = es
}

// RemoveEntity deletes an entity from its type's collection, if present.
func (s *Snapshot) RemoveEntity(typeName string, uid uint32) {
	tc, ok := s.types[typeName]
	if !ok {
		return
	}
	if _, exists := tc.byUID[uid]; !exists {
		return
	}
	delete(tc.byUID, uid)
	for i, u := range tc.order {
		if u == uid {
			tc.order = append(tc.order[:i], tc.order[i+1:]...)
			break
		}
	}
}

// Clone deep-copies the snapshot, including every entity state, so history
// and reconciliation can hand out independent copies of a stored tick.
func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot(s.Signature, s.InputSignature)
	for typeName, tc := range s.types {
		newTC := newTypeCollection()
		newTC.order = append(newTC.order, tc.order...)
		for uid, es := range tc.byUID {
			newTC.byUID[uid] = es.Clone()
		}
		out.types[typeName] = newTC
	}
	return out
}
