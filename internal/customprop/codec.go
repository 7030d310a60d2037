package customprop

import (
	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/wire"
)

func writeValue(b *wire.Buffer, t schema.FieldType, v any) error {
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

func readValue(b *wire.Buffer, t schema.FieldType) (any, error) {
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

// EncodeBatch writes one player's changed-property batch: the owning
// player's id, a placeholder count byte, each property's name and value,
// and then the true count back-patched at the offset captured before the
// placeholder was written. The count is never assumed to sit at a fixed
// byte offset — it is whatever offset WriteByte happened to return for
// this particular call, which is the only offset RewriteByte is ever
// given. A batch of more than 255 properties cannot be represented and
// aborts the encode.
func EncodeBatch(b *wire.Buffer, reg *Registry, playerID uint32, changed map[string]any) error {
	b.WriteUint32(playerID)
	countAt := b.WriteByte(0)
	count := 0
	for name, value := range changed {
		d, err := reg.ByName(name)
		if err != nil {
			continue
		}
		if count == 255 {
			return ErrBatchTooLarge
		}
		b.WriteString(name)
		if err := writeValue(b, d.Type, value); err != nil {
			return err
		}
		count++
	}
	return b.RewriteByte(countAt, uint8(count))
}

// DecodeBatch is EncodeBatch's inverse, returning the owning player's id
// alongside the decoded properties.
func DecodeBatch(b *wire.Buffer, reg *Registry) (uint32, map[string]any, error) {
	playerID, err := b.ReadUint32()
	if err != nil {
		return 0, nil, err
	}
	count, err := b.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	out := make(map[string]any, count)
	for i := 0; i < int(count); i++ {
		name, err := b.ReadString()
		if err != nil {
			return 0, nil, err
		}
		d, err := reg.ByName(name)
		if err != nil {
			return 0, nil, err
		}
		v, err := readValue(b, d.Type)
		if err != nil {
			return 0, nil, err
		}
		out[name] = v
	}
	return playerID, out, nil
}
