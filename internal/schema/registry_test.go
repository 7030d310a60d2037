package schema

import "testing"

func TestRegisterComputesMaskWidth(t *testing.T) {
	// One mask bit is always reserved for uid, so the widths step one field
	// earlier than the raw 8/16/32 bit boundaries.
	cases := []struct {
		fields int
		width  int
	}{
		{1, 1}, {7, 1}, {8, 2}, {15, 2}, {16, 4}, {31, 4},
	}
	for _, c := range cases {
		r := NewRegistry()
		fields := make([]FieldDescriptor, c.fields)
		for i := range fields {
			fields[i] = FieldDescriptor{Name: "f", Type: Bool, Comparer: GenericComparer()}
		}
		et, err := r.Register("t", fields)
		if err != nil {
			t.Fatalf("unexpected error for %d fields: %v", c.fields, err)
		}
		if et.MaskWidth != c.width {
			t.Errorf("fields=%d: want width %d, got %d", c.fields, c.width, et.MaskWidth)
		}
	}
}

func TestRegisterWithClassHashReservesExtraBit(t *testing.T) {
	r := NewRegistry()
	fields := make([]FieldDescriptor, 7)
	for i := range fields {
		fields[i] = FieldDescriptor{Name: "f", Type: Bool, Comparer: GenericComparer()}
	}
	// uid + class hash + 7 fields = 9 bits, so the mask needs two bytes.
	et, err := r.RegisterWithClassHash("t", fields)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !et.HasClassHash || et.MaskWidth != 2 {
		t.Fatalf("expected class hash enabled with width 2, got %+v", et)
	}
	if et.ClassHashBit() != 1<<1 {
		t.Fatalf("expected class hash bit 1, got %#x", et.ClassHashBit())
	}
	if et.FieldBit(0) != 1<<2 {
		t.Fatalf("expected first field at bit 2, got %#x", et.FieldBit(0))
	}
}

func TestFieldBitWithoutClassHash(t *testing.T) {
	r := NewRegistry()
	et, err := r.Register("t", []FieldDescriptor{
		{Name: "hp", Type: Int, Comparer: GenericComparer()},
		{Name: "pos", Type: Vector3, Comparer: Vector3AutoComparer()},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if et.ClassHashBit() != 0 {
		t.Fatalf("expected no class hash bit, got %#x", et.ClassHashBit())
	}
	if et.FieldBit(0) != 1<<1 || et.FieldBit(1) != 1<<2 {
		t.Fatalf("unexpected field bits: %#x %#x", et.FieldBit(0), et.FieldBit(1))
	}
}

func TestRegisterTooManyFields(t *testing.T) {
	r := NewRegistry()
	fields := make([]FieldDescriptor, 32) // +1 reserved uid bit pushes past 32
	for i := range fields {
		fields[i] = FieldDescriptor{Name: "f", Type: Bool}
	}
	if _, err := r.Register("t", fields); err != ErrTooManyFields {
		t.Fatalf("expected ErrTooManyFields, got %v", err)
	}
}

func TestRegisterRejectsUnsupportedFieldType(t *testing.T) {
	r := NewRegistry()
	fields := []FieldDescriptor{{Name: "x", Type: FieldType(99)}}
	if _, err := r.Register("t", fields); err != ErrUnknownFieldType {
		t.Fatalf("expected ErrUnknownFieldType, got %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	fields := []FieldDescriptor{{Name: "x", Type: Int}}
	if _, err := r.Register("t", fields); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, err := r.Register("t", fields); err != ErrDuplicateType {
		t.Fatalf("expected ErrDuplicateType, got %v", err)
	}
}

func TestTypesReturnsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("zed", []FieldDescriptor{{Name: "x", Type: Int}})
	r.Register("alpha", []FieldDescriptor{{Name: "x", Type: Int}})
	r.Register("mid", []FieldDescriptor{{Name: "x", Type: Int}})

	types := r.Types()
	if len(types) != 3 || types[0].Name != "zed" || types[1].Name != "alpha" || types[2].Name != "mid" {
		t.Fatalf("expected registration order preserved, got %+v", types)
	}
}

func TestByNameAndHash(t *testing.T) {
	r := NewRegistry()
	et, _ := r.Register("player", []FieldDescriptor{{Name: "hp", Type: Int}})

	byName, err := r.ByName("player")
	if err != nil || byName != et {
		t.Fatalf("ByName mismatch: %v %v", byName, err)
	}
	byHash, err := r.ByHash(et.NameHash)
	if err != nil || byHash != et {
		t.Fatalf("ByHash mismatch: %v %v", byHash, err)
	}
	if _, err := r.ByName("missing"); err != ErrUnknownType {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestComparerInterning(t *testing.T) {
	a := FloatAutoComparer()
	b := FloatAutoComparer()
	if a != b {
		t.Fatal("expected FloatAutoComparer to be interned to the same instance")
	}
	c := FloatCustomComparer(0.01)
	d := FloatCustomComparer(0.01)
	if c != d {
		t.Fatal("expected FloatCustomComparer(0.01) to be interned to the same instance")
	}
	if QuatAutoComparer() != QuatAutoComparer() {
		t.Fatal("expected QuatAutoComparer to be interned to the same instance")
	}
}

func TestComparerForPicksApproximateForFloatTypes(t *testing.T) {
	if ComparerFor(Float) != FloatAutoComparer() {
		t.Fatal("expected float auto comparer")
	}
	if ComparerFor(Color) != ColorAutoComparer() {
		t.Fatal("expected color auto comparer")
	}
	if ComparerFor(Int) != GenericComparer() {
		t.Fatal("expected generic comparer for int")
	}
}
