package schema

import (
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/snapnet/replicore/internal/wire"
)

// epsilon is the default relative tolerance used by the "auto" comparers.
// The comparison scales it by the magnitude of the first operand, with
// epsilon itself as the floor so values near zero still compare sanely.
const epsilon = 1e-5

// Comparer reports whether two field values are equal for change-mask
// purposes. Implementations are shared (interned) by name so every field
// using the same comparison rule reuses one instance.
type Comparer interface {
	Equal(a, b any) bool
	Name() string
}

var (
	internMu sync.Mutex
	interned = map[string]Comparer{}
)

func intern(c Comparer) Comparer {
	internMu.Lock()
	defer internMu.Unlock()
	if existing, ok := interned[c.Name()]; ok {
		return existing
	}
	interned[c.Name()] = c
	return c
}

// GenericComparer returns the exact-equality comparer used for any field
// type with no approximate-equality specialization.
func GenericComparer() Comparer { return intern(genericComparer{}) }

type genericComparer struct{}

func (genericComparer) Name() string { return "generic" }
func (genericComparer) Equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// FloatAutoComparer returns the shared float comparer using the default
// small relative tolerance.
func FloatAutoComparer() Comparer { return intern(floatComparer{tolerance: -1}) }

// FloatCustomComparer returns (interning) a float comparer using an
// explicit absolute tolerance.
func FloatCustomComparer(tolerance float32) Comparer {
	return intern(floatComparer{tolerance: tolerance})
}

type floatComparer struct{ tolerance float32 }

func (c floatComparer) Name() string {
	if c.tolerance < 0 {
		return "float_auto"
	}
	return fmt.Sprintf("float_custom_%f", c.tolerance)
}

func (c floatComparer) Equal(a, b any) bool {
	af, aok := a.(float32)
	bf, bok := b.(float32)
	if !aok || !bok {
		return reflect.DeepEqual(a, b)
	}
	if c.tolerance < 0 {
		return isEqualApprox(af, bf)
	}
	return absf(af-bf) < c.tolerance
}

// Vector2AutoComparer returns the shared Vector2 comparer using the default
// small relative tolerance, component-wise.
func Vector2AutoComparer() Comparer { return intern(vector2Comparer{tolerance: -1}) }

// Vector2CustomComparer returns (interning) a Vector2 comparer using an
// explicit absolute tolerance, component-wise.
func Vector2CustomComparer(tolerance float32) Comparer {
	return intern(vector2Comparer{tolerance: tolerance})
}

type vector2Comparer struct{ tolerance float32 }

func (c vector2Comparer) Name() string {
	if c.tolerance < 0 {
		return "vector2_auto"
	}
	return fmt.Sprintf("vector2_custom_%f", c.tolerance)
}

func (c vector2Comparer) Equal(a, b any) bool {
	av, aok := a.(wire.Vector2)
	bv, bok := b.(wire.Vector2)
	if !aok || !bok {
		return reflect.DeepEqual(a, b)
	}
	if c.tolerance < 0 {
		return isEqualApprox(av.X, bv.X) && isEqualApprox(av.Y, bv.Y)
	}
	return absf(av.X-bv.X) < c.tolerance && absf(av.Y-bv.Y) < c.tolerance
}

// Vector3AutoComparer returns the shared Vector3 comparer using the default
// small relative tolerance, component-wise.
func Vector3AutoComparer() Comparer { return intern(vector3Comparer{tolerance: -1}) }

// Vector3CustomComparer returns (interning) a Vector3 comparer using an
// explicit absolute tolerance, component-wise.
func Vector3CustomComparer(tolerance float32) Comparer {
	return intern(vector3Comparer{tolerance: tolerance})
}

type vector3Comparer struct{ tolerance float32 }

func (c vector3Comparer) Name() string {
	if c.tolerance < 0 {
		return "vector3_auto"
	}
	return fmt.Sprintf("vector3_custom_%f", c.tolerance)
}

func (c vector3Comparer) Equal(a, b any) bool {
	av, aok := a.(wire.Vector3)
	bv, bok := b.(wire.Vector3)
	if !aok || !bok {
		return reflect.DeepEqual(a, b)
	}
	if c.tolerance < 0 {
		return isEqualApprox(av.X, bv.X) && isEqualApprox(av.Y, bv.Y) && isEqualApprox(av.Z, bv.Z)
	}
	return absf(av.X-bv.X) < c.tolerance && absf(av.Y-bv.Y) < c.tolerance && absf(av.Z-bv.Z) < c.tolerance
}

// Rect2AutoComparer returns the shared Rect2 comparer using the default
// tolerance on all four components.
func Rect2AutoComparer() Comparer { return intern(rect2Comparer{tolerance: -1}) }

// Rect2CustomComparer returns (interning) a Rect2 comparer using an
// explicit absolute tolerance, component-wise.
func Rect2CustomComparer(tolerance float32) Comparer {
	return intern(rect2Comparer{tolerance: tolerance})
}

type rect2Comparer struct{ tolerance float32 }

func (c rect2Comparer) Name() string {
	if c.tolerance < 0 {
		return "rect2_auto"
	}
	return fmt.Sprintf("rect2_custom_%f", c.tolerance)
}

func (c rect2Comparer) Equal(a, b any) bool {
	av, aok := a.(wire.Rect2)
	bv, bok := b.(wire.Rect2)
	if !aok || !bok {
		return reflect.DeepEqual(a, b)
	}
	pos := vector2Comparer{tolerance: c.tolerance}
	return pos.Equal(av.Position, bv.Position) && pos.Equal(av.Size, bv.Size)
}

// QuatAutoComparer returns the shared quaternion comparer using the default
// tolerance on all four components.
func QuatAutoComparer() Comparer { return intern(quatComparer{tolerance: -1}) }

// QuatCustomComparer returns (interning) a quaternion comparer using an
// explicit absolute tolerance, component-wise.
func QuatCustomComparer(tolerance float32) Comparer {
	return intern(quatComparer{tolerance: tolerance})
}

type quatComparer struct{ tolerance float32 }

func (c quatComparer) Name() string {
	if c.tolerance < 0 {
		return "quat_auto"
	}
	return fmt.Sprintf("quat_custom_%f", c.tolerance)
}

func (c quatComparer) Equal(a, b any) bool {
	av, aok := a.(wire.Quat)
	bv, bok := b.(wire.Quat)
	if !aok || !bok {
		return reflect.DeepEqual(a, b)
	}
	if c.tolerance < 0 {
		return isEqualApprox(av.X, bv.X) && isEqualApprox(av.Y, bv.Y) &&
			isEqualApprox(av.Z, bv.Z) && isEqualApprox(av.W, bv.W)
	}
	return absf(av.X-bv.X) < c.tolerance && absf(av.Y-bv.Y) < c.tolerance &&
		absf(av.Z-bv.Z) < c.tolerance && absf(av.W-bv.W) < c.tolerance
}

// ColorAutoComparer returns the shared color comparer using the default
// tolerance on all four channels.
func ColorAutoComparer() Comparer { return intern(colorComparer{tolerance: -1}) }

// ColorCustomComparer returns (interning) a color comparer using an
// explicit absolute tolerance, channel-wise.
func ColorCustomComparer(tolerance float32) Comparer {
	return intern(colorComparer{tolerance: tolerance})
}

type colorComparer struct{ tolerance float32 }

func (c colorComparer) Name() string {
	if c.tolerance < 0 {
		return "color_auto"
	}
	return fmt.Sprintf("color_custom_%f", c.tolerance)
}

func (c colorComparer) Equal(a, b any) bool {
	av, aok := a.(wire.Color)
	bv, bok := b.(wire.Color)
	if !aok || !bok {
		return reflect.DeepEqual(a, b)
	}
	if c.tolerance < 0 {
		return isEqualApprox(av.R, bv.R) && isEqualApprox(av.G, bv.G) &&
			isEqualApprox(av.B, bv.B) && isEqualApprox(av.A, bv.A)
	}
	return absf(av.R-bv.R) < c.tolerance && absf(av.G-bv.G) < c.tolerance &&
		absf(av.B-bv.B) < c.tolerance && absf(av.A-bv.A) < c.tolerance
}

// ComparerFor picks the default comparer for a field type: the approximate
// comparer for the float-carrying types, exact equality for everything
// else. Fields wanting an explicit tolerance use the *CustomComparer
// constructors instead.
func ComparerFor(t FieldType) Comparer {
	switch t {
	case Float:
		return FloatAutoComparer()
	case Vector2:
		return Vector2AutoComparer()
	case Vector3:
		return Vector3AutoComparer()
	case Rect2:
		return Rect2AutoComparer()
	case Quat:
		return QuatAutoComparer()
	case Color:
		return ColorAutoComparer()
	default:
		return GenericComparer()
	}
}

func isEqualApprox(a, b float32) bool {
	if a == b {
		return true
	}
	tol := epsilon * absf(a)
	if tol < epsilon {
		tol = epsilon
	}
	return absf(a-b) < float32(tol)
}

func absf(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
