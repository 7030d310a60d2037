package wire

// Vector2, Vector3, Quat, Color and Rect2 are the compound property types
// accepted by the entity/custom-property schema, encoded as back-to-back
// float32 components with no length prefix.

type Vector2 struct{ X, Y float32 }

type Vector3 struct{ X, Y, Z float32 }

type Quat struct{ X, Y, Z, W float32 }

type Color struct{ R, G, B, A float32 }

type Rect2 struct {
	Position Vector2
	Size     Vector2
}

func (b *Buffer) WriteVector2(v Vector2) int {
	at := b.WriteFloat32(v.X)
	b.WriteFloat32(v.Y)
	return at
}

func (b *Buffer) ReadVector2() (Vector2, error) {
	aux := [2]float32{}
	for i := range aux {
		v, err := b.ReadFloat32()
		if err != nil {
			return Vector2{}, err
		}
		aux[i] = v
	}
	return Vector2{X: aux[0], Y: aux[1]}, nil
}

func (b *Buffer) WriteVector3(v Vector3) int {
	at := b.WriteFloat32(v.X)
	b.WriteFloat32(v.Y)
	b.WriteFloat32(v.Z)
	return at
}

// ReadVector3 reads three packed floats; the decoded Z is always the third
// component read, matching what WriteVector3 wrote.
func (b *Buffer) ReadVector3() (Vector3, error) {
	aux := [3]float32{}
	for i := range aux {
		v, err := b.ReadFloat32()
		if err != nil {
			return Vector3{}, err
		}
		aux[i] = v
	}
	return Vector3{X: aux[0], Y: aux[1], Z: aux[2]}, nil
}

func (b *Buffer) WriteQuat(q Quat) int {
	at := b.WriteFloat32(q.X)
	b.WriteFloat32(q.Y)
	b.WriteFloat32(q.Z)
	b.WriteFloat32(q.W)
	return at
}

func (b *Buffer) ReadQuat() (Quat, error) {
	aux := [4]float32{}
	for i := range aux {
		v, err := b.ReadFloat32()
		if err != nil {
			return Quat{}, err
		}
		aux[i] = v
	}
	return Quat{X: aux[0], Y: aux[1], Z: aux[2], W: aux[3]}, nil
}

func (b *Buffer) WriteColor(c Color) int {
	at := b.WriteFloat32(c.R)
	b.WriteFloat32(c.G)
	b.WriteFloat32(c.B)
	b.WriteFloat32(c.A)
	return at
}

func (b *Buffer) ReadColor() (Color, error) {
	aux := [4]float32{}
	for i := range aux {
		v, err := b.ReadFloat32()
		if err != nil {
			return Color{}, err
		}
		aux[i] = v
	}
	return Color{R: aux[0], G: aux[1], B: aux[2], A: aux[3]}, nil
}

func (b *Buffer) WriteRect2(r Rect2) int {
	at := b.WriteVector2(r.Position)
	b.WriteVector2(r.Size)
	return at
}

func (b *Buffer) ReadRect2() (Rect2, error) {
	pos, err := b.ReadVector2()
	if err != nil {
		return Rect2{}, err
	}
	size, err := b.ReadVector2()
	if err != nil {
		return Rect2{}, err
	}
	return Rect2{Position: pos, Size: size}, nil
}

// WriteByteArray / WriteIntArray / WriteFloatArray write a one-byte length
// prefix (bounded by MaxArraySize) followed by the elements in order.

func (b *Buffer) WriteByteArray(v []uint8) (int, error) {
	if len(v) > MaxArraySize {
		return 0, ErrArrayTooLong
	}
	at := b.WriteByte(uint8(len(v)))
	b.appendAt(v)
	return at, nil
}

func (b *Buffer) ReadByteArray() ([]uint8, error) {
	n, err := b.ReadByte()
	if err != nil {
		return nil, err
	}
	return b.ReadBytes(int(n))
}

func (b *Buffer) WriteIntArray(v []int32) (int, error) {
	if len(v) > MaxArraySize {
		return 0, ErrArrayTooLong
	}
	at := b.WriteByte(uint8(len(v)))
	for _, e := range v {
		b.WriteInt32(e)
	}
	return at, nil
}

func (b *Buffer) ReadIntArray() ([]int32, error) {
	n, err := b.ReadByte()
	if err != nil {
		return nil, err
	}
	out := make([]int32, n)
	for i := range out {
		v, err := b.ReadInt32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (b *Buffer) WriteFloatArray(v []float32) (int, error) {
	if len(v) > MaxArraySize {
		return 0, ErrArrayTooLong
	}
	at := b.WriteByte(uint8(len(v)))
	for _, e := range v {
		b.WriteFloat32(e)
	}
	return at, nil
}

func (b *Buffer) ReadFloatArray() ([]float32, error) {
	n, err := b.ReadByte()
	if err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := range out {
		v, err := b.ReadFloat32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
