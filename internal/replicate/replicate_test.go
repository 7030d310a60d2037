package replicate

import (
	"testing"

	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/snapshot"
	"github.com/snapnet/replicore/internal/wire"
)

func unitRegistry(t *testing.T) (*schema.Registry, *schema.EntityType) {
	t.Helper()
	reg := schema.NewRegistry()
	et, err := reg.Register("unit", []schema.FieldDescriptor{
		{Name: "hp", Type: schema.Int, Comparer: schema.GenericComparer()},
		{Name: "pos", Type: schema.Vector3, Comparer: schema.Vector3AutoComparer()},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg, et
}

func TestEncodeDecodeFullEntity(t *testing.T) {
	_, et := unitRegistry(t)
	es := &snapshot.EntityState{UID: 5, Type: et, Values: []any{int32(100), wire.Vector3{X: 1, Y: 2, Z: 3}}}

	b := wire.NewBuffer()
	if err := EncodeFullEntity(b, et, es); err != nil {
		t.Fatalf("encode: %v", err)
	}

	r := wire.NewBufferFrom(b.Bytes())
	got, err := DecodeFullEntity(r, et)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.UID != 5 || got.Values[0].(int32) != 100 || got.Values[1].(wire.Vector3) != (wire.Vector3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("mismatch: %+v", got)
	}
	if r.HasData() {
		t.Fatal("expected full entity decode to consume the whole record")
	}
}

func TestEncodeDecodeFullEntityWithClassHash(t *testing.T) {
	reg := schema.NewRegistry()
	et, err := reg.RegisterWithClassHash("actor", []schema.FieldDescriptor{
		{Name: "hp", Type: schema.Int, Comparer: schema.GenericComparer()},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	es := &snapshot.EntityState{UID: 7, ClassHash: 0xDEADBEEF, Type: et, Values: []any{int32(3)}}

	b := wire.NewBuffer()
	if err := EncodeFullEntity(b, et, es); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeFullEntity(wire.NewBufferFrom(b.Bytes()), et)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ClassHash != 0xDEADBEEF || got.Values[0].(int32) != 3 {
		t.Fatalf("mismatch: %+v", got)
	}
}

func TestDeltaEntityRemovalMarker(t *testing.T) {
	_, et := unitRegistry(t)
	es := &snapshot.EntityState{UID: 9, Type: et, Values: []any{int32(1), wire.Vector3{}}}

	b := wire.NewBuffer()
	if err := EncodeDeltaEntity(b, et, es, 0); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if b.Len() != 5 { // uid + one mask byte, nothing else
		t.Fatalf("expected 5-byte removal marker, got %d", b.Len())
	}
	de, err := DecodeDeltaEntity(wire.NewBufferFrom(b.Bytes()), et)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !de.IsRemoval || de.UID != 9 {
		t.Fatalf("expected removal marker for uid 9, got %+v", de)
	}
}

func TestDeltaEntityPartialFields(t *testing.T) {
	_, et := unitRegistry(t)
	es := &snapshot.EntityState{UID: 1, Type: et, Values: []any{int32(50), wire.Vector3{X: 3, Y: 4, Z: 5}}}
	mask := et.FieldBit(0) // only hp changed

	b := wire.NewBuffer()
	if err := EncodeDeltaEntity(b, et, es, mask); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if b.Len() != 9 { // uid(4) + mask(1) + hp(4); no bytes for pos
		t.Fatalf("expected 9-byte partial record, got %d", b.Len())
	}
	de, err := DecodeDeltaEntity(wire.NewBufferFrom(b.Bytes()), et)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if de.IsRemoval || de.Mask != mask || de.Values[0].(int32) != 50 {
		t.Fatalf("unexpected delta: %+v", de)
	}
	if de.Values[1] != nil {
		t.Fatalf("expected unset field to stay nil, got %v", de.Values[1])
	}
}

func TestDeltaEntityClassHashMigration(t *testing.T) {
	reg := schema.NewRegistry()
	et, _ := reg.RegisterWithClassHash("actor", []schema.FieldDescriptor{
		{Name: "hp", Type: schema.Int, Comparer: schema.GenericComparer()},
	})

	from := &snapshot.EntityState{UID: 1, ClassHash: 100, Type: et, Values: []any{int32(5)}}
	to := &snapshot.EntityState{UID: 1, ClassHash: 200, Type: et, Values: []any{int32(5)}}

	mask := ComputeChangeMask(et, from, to)
	if mask != et.ClassHashBit() {
		t.Fatalf("expected mask with only the class hash bit, got %#x", mask)
	}

	b := wire.NewBuffer()
	if err := EncodeDeltaEntity(b, et, to, mask); err != nil {
		t.Fatalf("encode: %v", err)
	}
	de, err := DecodeDeltaEntity(wire.NewBufferFrom(b.Bytes()), et)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if de.ClassHash != 200 {
		t.Fatalf("expected migrated class hash 200, got %d", de.ClassHash)
	}
}

func TestComputeChangeMaskSingleField(t *testing.T) {
	_, et := unitRegistry(t)
	a := &snapshot.EntityState{UID: 1, Type: et, Values: []any{int32(100), wire.Vector3{X: 1, Y: 2, Z: 3}}}
	b := &snapshot.EntityState{UID: 1, Type: et, Values: []any{int32(90), wire.Vector3{X: 1, Y: 2, Z: 3}}}

	if mask := ComputeChangeMask(et, a, a); mask != 0 {
		t.Fatalf("expected zero mask against self, got %#x", mask)
	}
	if mask := ComputeChangeMask(et, a, b); mask != et.FieldBit(0) {
		t.Fatalf("expected only hp bit set, got %#x", mask)
	}
	if mask := ComputeChangeMask(et, nil, b); mask != et.FullChangeMask() {
		t.Fatalf("expected full mask with no reference, got %#x", mask)
	}
}

func TestFullSnapshotRoundTrip(t *testing.T) {
	reg, et := unitRegistry(t)

	s := snapshot.NewSnapshot(7, 0)
	s.AddEntity("unit", &snapshot.EntityState{UID: 42, Type: et, Values: []any{int32(100), wire.Vector3{X: 1, Y: 2, Z: 3}}})

	b := wire.NewBuffer()
	if err := EncodeFullSnapshot(b, s, reg.Types()); err != nil {
		t.Fatalf("encode: %v", err)
	}

	r := wire.NewBufferFrom(b.Bytes())
	got, err := DecodeFullSnapshot(r, reg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Signature != 7 || got.InputSignature != 0 {
		t.Fatalf("signature mismatch: %+v", got)
	}
	e, ok := got.GetEntity("unit", 42)
	if !ok || e.Values[0].(int32) != 100 || e.Values[1].(wire.Vector3) != (wire.Vector3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("entity mismatch: %+v ok=%v", e, ok)
	}
	if r.HasData() {
		t.Fatal("expected decode to consume the whole frame")
	}
}

func TestFullSnapshotSkipsEmptyTypes(t *testing.T) {
	reg := schema.NewRegistry()
	reg.Register("empty", []schema.FieldDescriptor{{Name: "x", Type: schema.Int, Comparer: schema.GenericComparer()}})
	et, _ := reg.Register("unit", []schema.FieldDescriptor{{Name: "hp", Type: schema.Int, Comparer: schema.GenericComparer()}})

	s := snapshot.NewSnapshot(1, 0)
	s.AddEntity("unit", &snapshot.EntityState{UID: 1, Type: et, Values: []any{int32(10)}})

	b := wire.NewBuffer()
	if err := EncodeFullSnapshot(b, s, reg.Types()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	// sig + isig + one type block (hash + count + one 8-byte entity)
	if b.Len() != 4+4+4+4+8 {
		t.Fatalf("expected empty type to contribute no bytes, frame is %d bytes", b.Len())
	}
	got, err := DecodeFullSnapshot(wire.NewBufferFrom(b.Bytes()), reg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Entities("empty")) != 0 || len(got.Entities("unit")) != 1 {
		t.Fatalf("unexpected decode: %+v", got)
	}
}

func TestDecodeFullSnapshotUnknownTypeAborts(t *testing.T) {
	reg, et := unitRegistry(t)
	s := snapshot.NewSnapshot(1, 0)
	s.AddEntity("unit", &snapshot.EntityState{UID: 1, Type: et, Values: []any{int32(1), wire.Vector3{}}})

	b := wire.NewBuffer()
	if err := EncodeFullSnapshot(b, s, reg.Types()); err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := DecodeFullSnapshot(wire.NewBufferFrom(b.Bytes()), schema.NewRegistry()); err != schema.ErrUnknownType {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestDeltaSnapshotSingleChangedField(t *testing.T) {
	reg, et := unitRegistry(t)

	ref := snapshot.NewSnapshot(7, 0)
	ref.AddEntity("unit", &snapshot.EntityState{UID: 42, Type: et, Values: []any{int32(100), wire.Vector3{X: 1, Y: 2, Z: 3}}})

	next := snapshot.NewSnapshot(8, 0)
	next.AddEntity("unit", &snapshot.EntityState{UID: 42, Type: et, Values: []any{int32(90), wire.Vector3{X: 1, Y: 2, Z: 3}}})

	b := wire.NewBuffer()
	hasChanges, err := EncodeDeltaSnapshot(b, next, ref, reg.Types())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !hasChanges {
		t.Fatal("expected hasChanges true")
	}
	// sig(4) isig(4) flag(1) hash(4) count(4) uid(4) mask(1) hp(4): the
	// unchanged pos contributes nothing.
	if b.Len() != 26 {
		t.Fatalf("expected 26-byte frame with pos omitted, got %d", b.Len())
	}

	got, err := DecodeDeltaSnapshot(wire.NewBufferFrom(b.Bytes()), ref, reg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	e, ok := got.GetEntity("unit", 42)
	if !ok || e.Values[0].(int32) != 90 || e.Values[1].(wire.Vector3) != (wire.Vector3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("expected hp=90 with pos carried from reference, got %+v ok=%v", e, ok)
	}
}

func TestDeltaSnapshotRoundTripWithAddChangeRemove(t *testing.T) {
	reg, et := unitRegistry(t)

	ref := snapshot.NewSnapshot(1, 1)
	ref.AddEntity("unit", &snapshot.EntityState{UID: 1, Type: et, Values: []any{int32(100), wire.Vector3{}}})
	ref.AddEntity("unit", &snapshot.EntityState{UID: 2, Type: et, Values: []any{int32(50), wire.Vector3{}}})

	next := snapshot.NewSnapshot(2, 2)
	next.AddEntity("unit", &snapshot.EntityState{UID: 1, Type: et, Values: []any{int32(90), wire.Vector3{}}}) // changed
	next.AddEntity("unit", &snapshot.EntityState{UID: 3, Type: et, Values: []any{int32(5), wire.Vector3{}}})  // new
	// uid 2 removed (absent from next)

	b := wire.NewBuffer()
	hasChanges, err := EncodeDeltaSnapshot(b, next, ref, reg.Types())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !hasChanges {
		t.Fatal("expected hasChanges true")
	}

	got, err := DecodeDeltaSnapshot(wire.NewBufferFrom(b.Bytes()), ref, reg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	e1, ok := got.GetEntity("unit", 1)
	if !ok || e1.Values[0].(int32) != 90 {
		t.Fatalf("uid1 expected hp=90, got %+v ok=%v", e1, ok)
	}
	if _, ok := got.GetEntity("unit", 2); ok {
		t.Fatal("expected uid2 removed")
	}
	e3, ok := got.GetEntity("unit", 3)
	if !ok || e3.Values[0].(int32) != 5 {
		t.Fatalf("uid3 expected hp=5, got %+v ok=%v", e3, ok)
	}
}

func TestDeltaSnapshotNoChangesFlag(t *testing.T) {
	reg, et := unitRegistry(t)
	ref := snapshot.NewSnapshot(1, 1)
	ref.AddEntity("unit", &snapshot.EntityState{UID: 1, Type: et, Values: []any{int32(100), wire.Vector3{}}})
	next := ref.Clone()
	next.Signature = 2

	b := wire.NewBuffer()
	hasChanges, err := EncodeDeltaSnapshot(b, next, ref, reg.Types())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if hasChanges {
		t.Fatal("expected hasChanges false when nothing changed")
	}
	if b.Len() != 9 { // sig + isig + flag, no type blocks at all
		t.Fatalf("expected 9-byte frame, got %d", b.Len())
	}

	got, err := DecodeDeltaSnapshot(wire.NewBufferFrom(b.Bytes()), ref, reg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Signature != 2 {
		t.Fatalf("expected signature updated to 2, got %d", got.Signature)
	}
	e, ok := got.GetEntity("unit", 1)
	if !ok || e.Values[0].(int32) != 100 {
		t.Fatalf("expected uid1 cloned from reference, got %+v ok=%v", e, ok)
	}
}
