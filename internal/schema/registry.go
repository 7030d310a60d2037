package schema

import (
	"hash/fnv"
	"sync"
)

// FieldDescriptor names one replicable field: its position in the
// registration-fixed field order is what the change mask's bits index into,
// not the name, so renaming a field is safe but reordering registration
// calls is not.
type FieldDescriptor struct {
	Name     string
	Type     FieldType
	Comparer Comparer
}

// EntityType is a registered, immutable description of one kind of
// replicable entity: a stable name hash, the reserved uid and (optional)
// class hash slots, and its fields in the exact order they were registered.
//
// Mask bit layout: bit 0 belongs to uid; a field comparison never sets it
// and decoders ignore it (an entity's uid is written explicitly in every
// record, full or delta), though FullChangeMask sets it with every other bit. When the type carries
// a class hash, bit 1 belongs to it; replicable fields occupy the bits that
// follow, in registration order.
type EntityType struct {
	Name     string
	NameHash uint32
	// HasClassHash reports whether entities of this type carry the class
	// hash sub-type discriminator. Disabling it saves four bytes per full
	// entity record.
	HasClassHash bool
	Fields       []FieldDescriptor
	// MaskWidth is the number of bytes the change mask for this type is
	// encoded in: 1 for up to 8 mask bits, 2 for up to 16, 4 for up to 32.
	MaskWidth int
}

func (t *EntityType) reservedBits() int {
	if t.HasClassHash {
		return 2
	}
	return 1
}

// BitCount is the total number of mask bits this type occupies, reserved
// slots included.
func (t *EntityType) BitCount() int { return len(t.Fields) + t.reservedBits() }

// FieldBit returns the change-mask bit of the field at registration index i.
func (t *EntityType) FieldBit(i int) uint32 {
	return 1 << uint(i+t.reservedBits())
}

// ClassHashBit returns the change-mask bit reserved for the class hash, or
// 0 when this type has it disabled.
func (t *EntityType) ClassHashBit() uint32 {
	if !t.HasClassHash {
		return 0
	}
	return 1 << 1
}

// FullChangeMask returns the change mask with every bit of the mask's width
// set, used when encoding an entity that has no reference to delta against.
func (t *EntityType) FullChangeMask() uint32 {
	switch t.MaskWidth {
	case 1:
		return 0xFF
	case 2:
		return 0xFFFF
	default:
		return 0xFFFFFFFF
	}
}

// FieldIndex returns the registration-order index of a field by name, or
// -1 if the type has no such field.
func (t *EntityType) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func maskWidthFor(bitCount int) (int, error) {
	switch {
	case bitCount <= 8:
		return 1, nil
	case bitCount <= 16:
		return 2, nil
	case bitCount <= 32:
		return 4, nil
	default:
		return 0, ErrTooManyFields
	}
}

func nameHash(name string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return h.Sum32()
}

// Registry holds every registered EntityType in registration order, indexed
// by both name and name hash so decoders that only have the wire-encoded
// hash can still resolve the full descriptor. Registration order is the
// order every snapshot codec walks types in — both ends of a connection
// must register the same types in the same order.
type Registry struct {
	mu     sync.RWMutex
	order  []*EntityType
	byName map[string]*EntityType
	byHash map[uint32]*EntityType
}

// NewRegistry returns an empty entity type registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*EntityType),
		byHash: make(map[uint32]*EntityType),
	}
}

// Register fixes a new entity type's field order and computes its change
// mask width, with the class hash slot disabled. More mask bits than 32
// returns ErrTooManyFields; re-registering an existing name returns
// ErrDuplicateType.
func (r *Registry) Register(name string, fields []FieldDescriptor) (*EntityType, error) {
	return r.register(name, fields, false)
}

// RegisterWithClassHash is Register with the class hash slot enabled: every
// entity of this type carries a class hash, and the mask reserves a bit for
// it so a sub-type migration can be expressed in a delta.
func (r *Registry) RegisterWithClassHash(name string, fields []FieldDescriptor) (*EntityType, error) {
	return r.register(name, fields, true)
}

func (r *Registry) register(name string, fields []FieldDescriptor, classHash bool) (*EntityType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return nil, ErrDuplicateType
	}
	for _, f := range fields {
		if !f.Type.Valid() {
			return nil, ErrUnknownFieldType
		}
	}

	et := &EntityType{
		Name:         name,
		NameHash:     nameHash(name),
		HasClassHash: classHash,
		Fields:       append([]FieldDescriptor(nil), fields...),
	}
	width, err := maskWidthFor(et.BitCount())
	if err != nil {
		return nil, err
	}
	et.MaskWidth = width

	r.order = append(r.order, et)
	r.byName[name] = et
	r.byHash[et.NameHash] = et
	return et, nil
}

// Types returns every registered entity type, in registration order.
func (r *Registry) Types() []*EntityType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*EntityType, len(r.order))
	copy(out, r.order)
	return out
}

// ByName looks up an entity type by its registered name.
func (r *Registry) ByName(name string) (*EntityType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	et, ok := r.byName[name]
	if !ok {
		return nil, ErrUnknownType
	}
	return et, nil
}

// ByHash looks up an entity type by its wire-encoded name hash.
func (r *Registry) ByHash(hash uint32) (*EntityType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	et, ok := r.byHash[hash]
	if !ok {
		return nil, ErrUnknownType
	}
	return et, nil
}
