package wire

import "testing"

func TestWriteReadRoundTrip(t *testing.T) {
	b := NewBuffer()
	b.WriteBool(true)
	b.WriteByte(0xAB)
	b.WriteUint16(1234)
	b.WriteInt32(-42)
	b.WriteFloat32(3.5)
	b.WriteString("hello")

	r := NewBufferFrom(b.Bytes())
	if v, err := r.ReadBool(); err != nil || v != true {
		t.Fatalf("ReadBool: %v %v", v, err)
	}
	if v, err := r.ReadByte(); err != nil || v != 0xAB {
		t.Fatalf("ReadByte: %v %v", v, err)
	}
	if v, err := r.ReadUint16(); err != nil || v != 1234 {
		t.Fatalf("ReadUint16: %v %v", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != -42 {
		t.Fatalf("ReadInt32: %v %v", v, err)
	}
	if v, err := r.ReadFloat32(); err != nil || v != 3.5 {
		t.Fatalf("ReadFloat32: %v %v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "hello" {
		t.Fatalf("ReadString: %v %v", v, err)
	}
	if r.HasData() {
		t.Fatalf("expected cursor at end after full round trip, pos=%d len=%d", r.Pos(), r.Len())
	}
	if r.Pos() != r.Len() {
		t.Fatalf("cursor/size mismatch: pos=%d len=%d", r.Pos(), r.Len())
	}
}

func TestRewriteBackPatch(t *testing.T) {
	b := NewBuffer()
	countAt := b.WriteByte(0) // placeholder, captured offset
	b.WriteUint16(111)
	b.WriteUint16(222)
	if err := b.RewriteByte(countAt, 2); err != nil {
		t.Fatalf("RewriteByte: %v", err)
	}

	r := NewBufferFrom(b.Bytes())
	n, _ := r.ReadByte()
	if n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}
}

func TestRewriteOutOfRange(t *testing.T) {
	b := NewBuffer()
	b.WriteByte(1)
	if err := b.RewriteUint32(0, 5); err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestReadOutOfRange(t *testing.T) {
	r := NewBufferFrom([]byte{1, 2})
	if _, err := r.ReadUint32(); err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestVector3RoundTrip(t *testing.T) {
	b := NewBuffer()
	b.WriteVector3(Vector3{X: 1, Y: 2, Z: 3})
	r := NewBufferFrom(b.Bytes())
	v, err := r.ReadVector3()
	if err != nil {
		t.Fatalf("ReadVector3: %v", err)
	}
	if v.X != 1 || v.Y != 2 || v.Z != 3 {
		t.Fatalf("Vector3 round trip mismatch: %+v", v)
	}
}

func TestByteArrayBounds(t *testing.T) {
	b := NewBuffer()
	big := make([]uint8, MaxArraySize+1)
	if _, err := b.WriteByteArray(big); err != ErrArrayTooLong {
		t.Fatalf("expected ErrArrayTooLong for oversized array, got %v", err)
	}
}

func TestIntFloatArrayRoundTrip(t *testing.T) {
	b := NewBuffer()
	b.WriteIntArray([]int32{1, -2, 3})
	b.WriteFloatArray([]float32{1.5, -2.5})

	r := NewBufferFrom(b.Bytes())
	ints, err := r.ReadIntArray()
	if err != nil || len(ints) != 3 || ints[1] != -2 {
		t.Fatalf("ReadIntArray: %v %v", ints, err)
	}
	floats, err := r.ReadFloatArray()
	if err != nil || len(floats) != 2 || floats[1] != -2.5 {
		t.Fatalf("ReadFloatArray: %v %v", floats, err)
	}
}
