package replicate

import (
	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/snapshot"
	"github.com/snapnet/replicore/internal/wire"
)

// writeMask writes a change mask at the width its entity type's field count
// demands, returning the captured offset in case a caller needs it (entity
// masks themselves are never back-patched, but the helper stays consistent
// with every other Write* in the codec).
func writeMask(b *wire.Buffer, width int, mask uint32) (int, error) {
	switch width {
	case 1:
		return b.WriteByte(uint8(mask)), nil
	case 2:
		return b.WriteUint16(uint16(mask)), nil
	case 4:
		return b.WriteUint32(mask), nil
	default:
		return 0, ErrUnknownMaskWidth
	}
}

func readMask(b *wire.Buffer, width int) (uint32, error) {
	switch width {
	case 1:
		v, err := b.ReadByte()
		return uint32(v), err
	case 2:
		v, err := b.ReadUint16()
		return uint32(v), err
	case 4:
		return b.ReadUint32()
	default:
		return 0, ErrUnknownMaskWidth
	}
}

// ComputeChangeMask compares two entity states of the same type and sets
// the mask bit of every slot where they differ: each field via its own
// comparer, plus the class hash slot (exact compare) when the type carries
// one. The comparison never sets the uid bit; a uid never changes, it
// identifies. A nil "from" (no reference entity) returns the type's full
// change mask, which has every bit of the mask width set, uid bit included.
func ComputeChangeMask(et *schema.EntityType, from, to *snapshot.EntityState) uint32 {
	if from == nil {
		return et.FullChangeMask()
	}
	var mask uint32
	if et.HasClassHash && from.ClassHash != to.ClassHash {
		mask |= et.ClassHashBit()
	}
	for i, f := range et.Fields {
		cmp := f.Comparer
		if cmp == nil {
			cmp = schema.ComparerFor(f.Type)
		}
		if !cmp.Equal(from.Values[i], to.Values[i]) {
			mask |= et.FieldBit(i)
		}
	}
	return mask
}
