package events

import (
	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/wire"
)

// Event is one queued or decoded occurrence: a registered code and its
// parameter values in registration order.
type Event struct {
	Code   uint16
	Params []any
}

// writeParam and readParam mirror replicate's field dispatch, kept
// independent here since an event parameter is never a mask-gated entity
// field — there is no change mask to interact with.
func writeParam(b *wire.Buffer, t schema.FieldType, v any) error {
	switch t {
	case schema.Bool:
		b.WriteBool(v.(bool))
	case schema.Int:
		b.WriteInt32(v.(int32))
	case schema.Float:
		b.WriteFloat32(v.(float32))
	case schema.Vector2:
		b.WriteVector2(v.(wire.Vector2))
	case schema.Rect2:
		b.WriteRect2(v.(wire.Rect2))
	case schema.Quat:
		b.WriteQuat(v.(wire.Quat))
	case schema.Color:
		b.WriteColor(v.(wire.Color))
	case schema.Vector3:
		b.WriteVector3(v.(wire.Vector3))
	case schema.UInt:
		b.WriteUint32(v.(uint32))
	case schema.Byte:
		b.WriteByte(v.(uint8))
	case schema.UShort:
		b.WriteUint16(v.(uint16))
	case schema.String:
		b.WriteString(v.(string))
	case schema.ByteArray:
		if _, err := b.WriteByteArray(v.([]uint8)); err != nil {
			return err
		}
	case schema.IntArray:
		if _, err := b.WriteIntArray(v.([]int32)); err != nil {
			return err
		}
	case schema.FloatArray:
		if _, err := b.WriteFloatArray(v.([]float32)); err != nil {
			return err
		}
	default:
		return schema.ErrUnknownFieldType
	}
	return nil
}

func readParam(b *wire.Buffer, t schema.FieldType) (any, error) {
	switch t {
	case schema.Bool:
		return b.ReadBool()
	case schema.Int:
		return b.ReadInt32()
	case schema.Float:
		return b.ReadFloat32()
	case schema.Vector2:
		return b.ReadVector2()
	case schema.Rect2:
		return b.ReadRect2()
	case schema.Quat:
		return b.ReadQuat()
	case schema.Color:
		return b.ReadColor()
	case schema.Vector3:
		return b.ReadVector3()
	case schema.UInt:
		return b.ReadUint32()
	case schema.Byte:
		return b.ReadByte()
	case schema.UShort:
		return b.ReadUint16()
	case schema.String:
		return b.ReadString()
	case schema.ByteArray:
		return b.ReadByteArray()
	case schema.IntArray:
		return b.ReadIntArray()
	case schema.FloatArray:
		return b.ReadFloatArray()
	default:
		return nil, schema.ErrUnknownFieldType
	}
}

// EncodeEvent writes one event's code followed by its parameters in
// registration order.
func EncodeEvent(b *wire.Buffer, reg *Registry, e Event) error {
	d, err := reg.ByCode(e.Code)
	if err != nil {
		return err
	}
	b.WriteUint16(e.Code)
	for i, t := range d.Params {
		if err := writeParam(b, t, e.Params[i]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeEvent is EncodeEvent's inverse.
func DecodeEvent(b *wire.Buffer, reg *Registry) (Event, error) {
	code, err := b.ReadUint16()
	if err != nil {
		return Event{}, err
	}
	d, err := reg.ByCode(code)
	if err != nil {
		return Event{}, err
	}
	params := make([]any, len(d.Params))
	for i, t := range d.Params {
		v, err := readParam(b, t)
		if err != nil {
			return Event{}, err
		}
		params[i] = v
	}
	return Event{Code: code, Params: params}, nil
}

// EncodeBatch writes a u16 count followed by each event in order — the
// shape used when flushing a tick's whole queue at once.
func EncodeBatch(b *wire.Buffer, reg *Registry, evts []Event) error {
	b.WriteUint16(uint16(len(evts)))
	for _, e := range evts {
		if err := EncodeEvent(b, reg, e); err != nil {
			return err
		}
	}
	return nil
}

// DecodeBatch is EncodeBatch's inverse.
func DecodeBatch(b *wire.Buffer, reg *Registry) ([]Event, error) {
	count, err := b.ReadUint16()
	if err != nil {
		return nil, err
	}
	out := make([]Event, count)
	for i := range out {
		e, err := DecodeEvent(b, reg)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}
