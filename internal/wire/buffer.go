package wire

import "encoding/binary"

// Kind identifies a fixed-width primitive the buffer knows how to
// read/write/rewrite. Composite types (Vector2, Vector3, Quat, Color, Rect2)
// are built out of Float writes and are not listed here since they have no
// single fixed width of their own in the rewrite sense.
type Kind int

const (
	KindBool Kind = iota
	KindByte
	KindUShort
	KindShort
	KindUInt
	KindInt
	KindFloat
)

// widthOf is the fixed-width table: every Kind maps to the number of bytes
// it occupies on the wire. String and array payloads are variable-length and
// deliberately excluded — they are never rewritable.
var widthOf = map[Kind]int{
	KindBool:   1,
	KindByte:   1,
	KindUShort: 2,
	KindShort:  2,
	KindUInt:   4,
	KindInt:    4,
	KindFloat:  4,
}

// WidthOf reports the wire width of a fixed-width Kind, or ErrUnknownType if
// k names no entry in the table.
func WidthOf(k Kind) (int, error) {
	w, ok := widthOf[k]
	if !ok {
		return 0, ErrUnknownType
	}
	return w, nil
}

// MaxArraySize bounds every length-prefixed array payload's element count;
// the prefix is a single byte. Strings carry a u32 length prefix and are not
// bounded by it.
const MaxArraySize = 255

// Buffer is a growable, cursor-based byte buffer for little-endian encoding.
// All multi-byte primitives are written/read in little-endian order
// regardless of host architecture, so a frame produced by one build is
// readable by any other.
type Buffer struct {
	data []byte
	pos  int
}

// NewBuffer returns an empty buffer ready for writing.
func NewBuffer() *Buffer {
	return &Buffer{data: make([]byte, 0, 64)}
}

// NewBufferFrom wraps existing bytes for reading. The returned buffer's
// cursor starts at 0.
func NewBufferFrom(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the buffer's full backing slice, independent of cursor
// position.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the number of bytes currently held.
func (b *Buffer) Len() int { return len(b.data) }

// Pos returns the current cursor offset.
func (b *Buffer) Pos() int { return b.pos }

// Reset empties the buffer for reuse, keeping its backing storage — the
// dispatch loop encodes every client's frame through one buffer, resetting
// between clients.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.pos = 0
}

// Seek repositions the read/write cursor. It does not grow the buffer.
func (b *Buffer) Seek(pos int) error {
	if pos < 0 || pos > len(b.data) {
		return ErrOutOfRange
	}
	b.pos = pos
	return nil
}

// Remaining reports how many bytes are left to read from the cursor.
func (b *Buffer) Remaining() int { return len(b.data) - b.pos }

// HasData reports whether the cursor still has bytes ahead of it.
func (b *Buffer) HasData() bool { return b.pos < len(b.data) }

func (b *Buffer) grow(n int) {
	if cap(b.data)-len(b.data) < n {
		grown := make([]byte, len(b.data), 2*(len(b.data)+n)+16)
		copy(grown, b.data)
		b.data = grown
	}
}

// appendAt writes raw bytes at the cursor, extending the buffer if the
// cursor sits at or beyond its end, and returns the offset the write began
// at — the "captured offset" callers back-patch through Rewrite* later.
func (b *Buffer) appendAt(raw []byte) int {
	at := b.pos
	b.grow(len(raw))
	if at+len(raw) > len(b.data) {
		b.data = b.data[:at+len(raw)]
	}
	copy(b.data[at:at+len(raw)], raw)
	b.pos = at + len(raw)
	return at
}

// WriteBool appends a one-byte bool and returns the offset it was written
// at, for later RewriteBool back-patching.
func (b *Buffer) WriteBool(v bool) int {
	var raw byte
	if v {
		raw = 1
	}
	return b.appendAt([]byte{raw})
}

// WriteByte appends a single byte and returns its offset.
func (b *Buffer) WriteByte(v uint8) int {
	return b.appendAt([]byte{v})
}

// WriteUint16 appends a little-endian uint16 and returns its offset.
func (b *Buffer) WriteUint16(v uint16) int {
	var raw [2]byte
	binary.LittleEndian.PutUint16(raw[:], v)
	return b.appendAt(raw[:])
}

// WriteInt16 appends a little-endian int16 and returns its offset.
func (b *Buffer) WriteInt16(v int16) int {
	return b.WriteUint16(uint16(v))
}

// WriteUint32 appends a little-endian uint32 and returns its offset.
func (b *Buffer) WriteUint32(v uint32) int {
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], v)
	return b.appendAt(raw[:])
}

// WriteInt32 appends a little-endian int32 and returns its offset.
func (b *Buffer) WriteInt32(v int32) int {
	return b.WriteUint32(uint32(v))
}

// WriteFloat32 appends a little-endian IEEE-754 float32 and returns its
// offset.
func (b *Buffer) WriteFloat32(v float32) int {
	return b.WriteUint32(f32bits(v))
}

// WriteBytes copies raw bytes verbatim, with no length prefix.
func (b *Buffer) WriteBytes(raw []byte) int {
	return b.appendAt(raw)
}

// WriteString writes a u32 length prefix followed by the UTF-8 bytes of s.
// Strings are not rewritable — there is no RewriteString.
func (b *Buffer) WriteString(s string) int {
	at := b.WriteUint32(uint32(len(s)))
	b.appendAt([]byte(s))
	return at
}

func need(b *Buffer, n int) error {
	if b.pos+n > len(b.data) {
		return ErrOutOfRange
	}
	return nil
}

// ReadBool reads one byte and reports it as a bool.
func (b *Buffer) ReadBool() (bool, error) {
	if err := need(b, 1); err != nil {
		return false, err
	}
	v := b.data[b.pos] != 0
	b.pos++
	return v, nil
}

// ReadByte reads one raw byte.
func (b *Buffer) ReadByte() (uint8, error) {
	if err := need(b, 1); err != nil {
		return 0, err
	}
	v := b.data[b.pos]
	b.pos++
	return v, nil
}

// ReadUint16 reads a little-endian uint16.
func (b *Buffer) ReadUint16() (uint16, error) {
	if err := need(b, 2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(b.data[b.pos:])
	b.pos += 2
	return v, nil
}

// ReadInt16 reads a little-endian int16.
func (b *Buffer) ReadInt16() (int16, error) {
	v, err := b.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a little-endian uint32.
func (b *Buffer) ReadUint32() (uint32, error) {
	if err := need(b, 4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(b.data[b.pos:])
	b.pos += 4
	return v, nil
}

// ReadInt32 reads a little-endian int32.
func (b *Buffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

// ReadFloat32 reads a little-endian IEEE-754 float32.
func (b *Buffer) ReadFloat32() (float32, error) {
	v, err := b.ReadUint32()
	if err != nil {
		return 0, err
	}
	return f32frombits(v), nil
}

// ReadBytes reads n raw bytes.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if err := need(b, n); err != nil {
		return nil, err
	}
	v := make([]byte, n)
	copy(v, b.data[b.pos:b.pos+n])
	b.pos += n
	return v, nil
}

// ReadString reads a u32 length prefix followed by that many UTF-8 bytes.
func (b *Buffer) ReadString() (string, error) {
	n, err := b.ReadUint32()
	if err != nil {
		return "", err
	}
	raw, err := b.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// rewriteCheck validates that width bytes starting at "at" lie within the
// buffer as it currently stands; a rewrite never grows the buffer.
func rewriteCheck(b *Buffer, at, width int) error {
	if at < 0 || at+width > len(b.data) {
		return ErrOutOfRange
	}
	return nil
}

// RewriteBool overwrites a bool previously written at offset "at", captured
// from that WriteBool's return value.
func (b *Buffer) RewriteBool(at int, v bool) error {
	if err := rewriteCheck(b, at, 1); err != nil {
		return err
	}
	if v {
		b.data[at] = 1
	} else {
		b.data[at] = 0
	}
	return nil
}

// RewriteByte overwrites a byte previously written at "at".
func (b *Buffer) RewriteByte(at int, v uint8) error {
	if err := rewriteCheck(b, at, 1); err != nil {
		return err
	}
	b.data[at] = v
	return nil
}

// RewriteUint16 overwrites a uint16 previously written at "at".
func (b *Buffer) RewriteUint16(at int, v uint16) error {
	if err := rewriteCheck(b, at, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b.data[at:], v)
	return nil
}

// RewriteUint32 overwrites a uint32 previously written at "at".
func (b *Buffer) RewriteUint32(at int, v uint32) error {
	if err := rewriteCheck(b, at, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b.data[at:], v)
	return nil
}

// RewriteFloat32 overwrites a float32 previously written at "at".
func (b *Buffer) RewriteFloat32(at int, v float32) error {
	return b.RewriteUint32(at, f32bits(v))
}
