package replicate

import (
	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/wire"
)

// writeField dispatches one field value to its type's wire writer. Each
// case is independent and terminates on its own; the three array types in
// particular must never share a code path, since their element widths
// differ.
func writeField(b *wire.Buffer, t schema.FieldType, v any) error {
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

// readField is writeField's inverse: one independent, self-terminating
// case per FieldType.
func readField(b *wire.Buffer, t schema.FieldType) (any, error) {
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
