package customprop

import (
	"reflect"
	"sync"

	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/wire"
)

func typeOf(t schema.FieldType) (reflect.Type, error) {
	switch t {
	case schema.Bool:
		return reflect.TypeOf(bool(false)), nil
	case schema.Int:
		return reflect.TypeOf(int32(0)), nil
	case schema.Float:
		return reflect.TypeOf(float32(0)), nil
	case schema.Vector2:
		return reflect.TypeOf(wire.Vector2{}), nil
	case schema.Rect2:
		return reflect.TypeOf(wire.Rect2{}), nil
	case schema.Quat:
		return reflect.TypeOf(wire.Quat{}), nil
	case schema.Color:
		return reflect.TypeOf(wire.Color{}), nil
	case schema.Vector3:
		return reflect.TypeOf(wire.Vector3{}), nil
	case schema.UInt:
		return reflect.TypeOf(uint32(0)), nil
	case schema.Byte:
		return reflect.TypeOf(uint8(0)), nil
	case schema.UShort:
		return reflect.TypeOf(uint16(0)), nil
	case schema.String:
		return reflect.TypeOf(""), nil
	case schema.ByteArray:
		return reflect.TypeOf([]uint8(nil)), nil
	case schema.IntArray:
		return reflect.TypeOf([]int32(nil)), nil
	case schema.FloatArray:
		return reflect.TypeOf([]float32(nil)), nil
	default:
		return nil, schema.ErrUnknownFieldType
	}
}

// PlayerProps holds one player's live custom property values, seeded from
// a Registry's declared defaults, and tracks which have changed since the
// last flush.
type PlayerProps struct {
	mu     sync.Mutex
	reg    *Registry
	values map[string]any
	dirty  map[string]bool
}

// NewPlayerProps returns a PlayerProps seeded with every property currently
// declared in reg, at its default value.
func NewPlayerProps(reg *Registry) *PlayerProps {
	p := &PlayerProps{
		reg:    reg,
		values: make(map[string]any),
		dirty:  make(map[string]bool),
	}
	for _, d := range reg.Declared() {
		p.values[d.Name] = d.Default
	}
	return p
}

// Set assigns a new value to a declared property, marking it dirty for the
// next flush. The value's Go type must match the property's declared
// FieldType.
func (p *PlayerProps) Set(name string, value any) error {
	d, err := p.reg.ByName(name)
	if err != nil {
		return err
	}
	if !sameType(d.Type, value) {
		return ErrTypeMismatch
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[name] = value
	p.dirty[name] = true
	return nil
}

// Get returns a property's current value, or defval if the property was
// never declared.
func (p *PlayerProps) Get(name string, defval any) any {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.values[name]; ok {
		return v
	}
	if d, err := p.reg.ByName(name); err == nil {
		return d.Default
	}
	return defval
}

// TakeDirty returns every property changed since the last TakeDirty call
// and clears the dirty set.
func (p *PlayerProps) TakeDirty() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.dirty) == 0 {
		return nil
	}
	out := make(map[string]any, len(p.dirty))
	for name := range p.dirty {
		out[name] = p.values[name]
	}
	p.dirty = make(map[string]bool)
	return out
}
