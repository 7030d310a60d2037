package schema

// FieldType is the accepted set of property types a replicable field,
// event parameter, or custom property may hold.
type FieldType int

const (
	Bool FieldType = iota
	Int
	Float
	Vector2
	Rect2
	Quat
	Color
	Vector3
	UInt
	Byte
	UShort
	String
	ByteArray
	IntArray
	FloatArray
)

// Valid reports whether t is one of the accepted property types.
func (t FieldType) Valid() bool {
	return t >= Bool && t <= FloatArray
}

func (t FieldType) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Vector2:
		return "vector2"
	case Rect2:
		return "rect2"
	case Quat:
		return "quat"
	case Color:
		return "color"
	case Vector3:
		return "vector3"
	case UInt:
		return "uint"
	case Byte:
		return "byte"
	case UShort:
		return "ushort"
	case String:
		return "string"
	case ByteArray:
		return "byte_array"
	case IntArray:
		return "int_array"
	case FloatArray:
		return "float_array"
	default:
		return "unknown"
	}
}
