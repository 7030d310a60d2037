package inputsync

import (
	"errors"

	"github.com/snapnet/replicore/internal/wire"
)

// ErrTooManySlots is returned when an analog, boolean, or custom-vector
// group has more than 32 entries — the largest mask width the codec
// supports.
var ErrTooManySlots = errors.New("inputsync: group has more than 32 entries")

func groupMaskWidth(count int) (int, error) {
	switch {
	case count <= 8:
		return 1, nil
	case count <= 16:
		return 2, nil
	case count <= 32:
		return 4, nil
	default:
		return 0, ErrTooManySlots
	}
}

func writeGroupMask(b *wire.Buffer, width int, mask uint32) int {
	switch width {
	case 1:
		return b.WriteByte(uint8(mask))
	case 2:
		return b.WriteUint16(uint16(mask))
	default:
		return b.WriteUint32(mask)
	}
}

func readGroupMask(b *wire.Buffer, width int) (uint32, error) {
	switch width {
	case 1:
		v, err := b.ReadByte()
		return uint32(v), err
	case 2:
		v, err := b.ReadUint16()
		return uint32(v), err
	default:
		return b.ReadUint32()
	}
}

// EncodeTo writes one input frame: signature, has-input flag, and — only
// when has-input is set — the optional mouse vectors followed by the
// analog, boolean, and custom-vector groups. The boolean group packs every
// value directly into its mask bits (a bool needs no body). The analog and
// custom-vector groups instead use their mask to mark which entries are
// non-default and therefore carry a body; since that mask can only be
// known after walking every entry, its slot is written as a placeholder
// and patched at the captured offset once the group's loop finishes — the
// same back-patch rule the snapshot codec uses, never a hardcoded offset.
func (r *Registry) EncodeTo(b *wire.Buffer, d *Data) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b.WriteUint32(d.Signature)
	b.WriteBool(d.HasInput)
	if !d.HasInput {
		return nil
	}

	if r.useMouseRelative {
		b.WriteVector2(d.MouseRelative)
	}
	if r.useMouseSpeed {
		b.WriteVector2(d.MouseSpeed)
	}

	analog := r.enabledAnalogActions()
	analogWidth, err := groupMaskWidth(len(analog))
	if err != nil {
		return err
	}
	analogMaskAt := writeGroupMask(b, analogWidth, 0)
	var analogMask uint32
	for i, a := range analog {
		v := d.Analog[a.name]
		if v == 0 {
			continue
		}
		analogMask |= 1 << uint(i)
		if r.quantizeAnalog {
			b.WriteByte(uint8(wire.QuantizeFloat(v, 0, 1, 8)))
		} else {
			b.WriteFloat32(v)
		}
	}
	if err := rewriteGroupMask(b, analogMaskAt, analogWidth, analogMask); err != nil {
		return err
	}

	boolActions := r.enabledBoolActions()
	boolWidth, err := groupMaskWidth(len(boolActions))
	if err != nil {
		return err
	}
	var boolMask uint32
	for i, a := range boolActions {
		if d.Boolean[a.name] {
			boolMask |= 1 << uint(i)
		}
	}
	writeGroupMask(b, boolWidth, boolMask)

	vec2Width, err := groupMaskWidth(len(r.customVec2))
	if err != nil {
		return err
	}
	vec2MaskAt := writeGroupMask(b, vec2Width, 0)
	var vec2Mask uint32
	for i, name := range r.customVec2 {
		v := d.CustomVec2[name]
		if v.X == 0 && v.Y == 0 {
			continue
		}
		vec2Mask |= 1 << uint(i)
		b.WriteVector2(v)
	}
	if err := rewriteGroupMask(b, vec2MaskAt, vec2Width, vec2Mask); err != nil {
		return err
	}

	vec3Width, err := groupMaskWidth(len(r.customVec3))
	if err != nil {
		return err
	}
	vec3MaskAt := writeGroupMask(b, vec3Width, 0)
	var vec3Mask uint32
	for i, name := range r.customVec3 {
		v := d.CustomVec3[name]
		if v.X == 0 && v.Y == 0 && v.Z == 0 {
			continue
		}
		vec3Mask |= 1 << uint(i)
		b.WriteVector3(v)
	}
	return rewriteGroupMask(b, vec3MaskAt, vec3Width, vec3Mask)
}

func rewriteGroupMask(b *wire.Buffer, at, width int, mask uint32) error {
	switch width {
	case 1:
		return b.RewriteByte(at, uint8(mask))
	case 2:
		return b.RewriteUint16(at, uint16(mask))
	default:
		return b.RewriteUint32(at, mask)
	}
}

// DecodeFrom is EncodeTo's inverse.
func (r *Registry) DecodeFrom(b *wire.Buffer) (*Data, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sig, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}
	hasInput, err := b.ReadBool()
	if err != nil {
		return nil, err
	}
	d := &Data{
		Signature:  sig,
		HasInput:   hasInput,
		Analog:     make(map[string]float32),
		Boolean:    make(map[string]bool),
		CustomVec2: make(map[string]wire.Vector2),
		CustomVec3: make(map[string]wire.Vector3),
	}
	if !hasInput {
		return d, nil
	}

	if r.useMouseRelative {
		if d.MouseRelative, err = b.ReadVector2(); err != nil {
			return nil, err
		}
	}
	if r.useMouseSpeed {
		if d.MouseSpeed, err = b.ReadVector2(); err != nil {
			return nil, err
		}
	}

	analog := r.enabledAnalogActions()
	analogWidth, err := groupMaskWidth(len(analog))
	if err != nil {
		return nil, err
	}
	analogMask, err := readGroupMask(b, analogWidth)
	if err != nil {
		return nil, err
	}
	for i, a := range analog {
		if analogMask&(1<<uint(i)) == 0 {
			d.Analog[a.name] = 0
			continue
		}
		if r.quantizeAnalog {
			q, err := b.ReadByte()
			if err != nil {
				return nil, err
			}
			d.Analog[a.name] = wire.RestoreFloat(uint32(q), 0, 1, 8)
		} else {
			v, err := b.ReadFloat32()
			if err != nil {
				return nil, err
			}
			d.Analog[a.name] = v
		}
	}

	boolActions := r.enabledBoolActions()
	boolWidth, err := groupMaskWidth(len(boolActions))
	if err != nil {
		return nil, err
	}
	boolMask, err := readGroupMask(b, boolWidth)
	if err != nil {
		return nil, err
	}
	for i, a := range boolActions {
		d.Boolean[a.name] = boolMask&(1<<uint(i)) != 0
	}

	vec2Width, err := groupMaskWidth(len(r.customVec2))
	if err != nil {
		return nil, err
	}
	vec2Mask, err := readGroupMask(b, vec2Width)
	if err != nil {
		return nil, err
	}
	for i, name := range r.customVec2 {
		if vec2Mask&(1<<uint(i)) == 0 {
			d.CustomVec2[name] = wire.Vector2{}
			continue
		}
		v, err := b.ReadVector2()
		if err != nil {
			return nil, err
		}
		d.CustomVec2[name] = v
	}

	vec3Width, err := groupMaskWidth(len(r.customVec3))
	if err != nil {
		return nil, err
	}
	vec3Mask, err := readGroupMask(b, vec3Width)
	if err != nil {
		return nil, err
	}
	for i, name := range r.customVec3 {
		if vec3Mask&(1<<uint(i)) == 0 {
			d.CustomVec3[name] = wire.Vector3{}
			continue
		}
		v, err := b.ReadVector3()
		if err != nil {
			return nil, err
		}
		d.CustomVec3[name] = v
	}

	return d, nil
}
