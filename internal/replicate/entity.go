package replicate

import (
	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/snapshot"
	"github.com/snapnet/replicore/internal/wire"
)

// EncodeFullEntity writes an entity's uid, its class hash when the type
// carries one, and then every registered field in registration order.
func EncodeFullEntity(b *wire.Buffer, et *schema.EntityType, es *snapshot.EntityState) error {
	b.WriteUint32(es.UID)
	if et.HasClassHash {
		b.WriteUint32(es.ClassHash)
	}
	for i, f := range et.Fields {
		if err := writeField(b, f.Type, es.Values[i]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeFullEntity is EncodeFullEntity's inverse.
func DecodeFullEntity(b *wire.Buffer, et *schema.EntityType) (*snapshot.EntityState, error) {
	uid, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}
	es := &snapshot.EntityState{UID: uid, Type: et}
	if et.HasClassHash {
		if es.ClassHash, err = b.ReadUint32(); err != nil {
			return nil, err
		}
	}
	es.Values = make([]any, len(et.Fields))
	for i, f := range et.Fields {
		v, err := readField(b, f.Type)
		if err != nil {
			return nil, err
		}
		es.Values[i] = v
	}
	return es, nil
}

// EncodeDeltaEntity writes an entity's uid, its change mask, and then only
// what the mask marks as changed: the class hash if its bit is set, then
// each changed field in registration order. A zero mask encodes a removal
// marker: uid and mask only, no bodies, and the decoder must treat that as
// "this entity no longer exists" rather than "no fields changed".
func EncodeDeltaEntity(b *wire.Buffer, et *schema.EntityType, es *snapshot.EntityState, mask uint32) error {
	b.WriteUint32(es.UID)
	if _, err := writeMask(b, et.MaskWidth, mask); err != nil {
		return err
	}
	if mask == 0 {
		return nil
	}
	if et.HasClassHash && mask&et.ClassHashBit() != 0 {
		b.WriteUint32(es.ClassHash)
	}
	for i, f := range et.Fields {
		if mask&et.FieldBit(i) == 0 {
			continue
		}
		if err := writeField(b, f.Type, es.Values[i]); err != nil {
			return err
		}
	}
	return nil
}

// DeltaEntity is one decoded delta-entity record: its uid, its change mask,
// the class hash when the mask carried it, and the changed field values
// indexed by their registration-order position (only indices whose mask bit
// is set are populated). IsRemoval is true when the encoded mask was zero.
type DeltaEntity struct {
	UID       uint32
	Mask      uint32
	ClassHash uint32
	Values    []any // len == len(et.Fields); only changed indices are meaningful
	IsRemoval bool
}

// DecodeDeltaEntity is EncodeDeltaEntity's inverse.
func DecodeDeltaEntity(b *wire.Buffer, et *schema.EntityType) (*DeltaEntity, error) {
	uid, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}
	mask, err := readMask(b, et.MaskWidth)
	if err != nil {
		return nil, err
	}
	de := &DeltaEntity{UID: uid, Mask: mask}
	if mask == 0 {
		de.IsRemoval = true
		return de, nil
	}
	if et.HasClassHash && mask&et.ClassHashBit() != 0 {
		if de.ClassHash, err = b.ReadUint32(); err != nil {
			return nil, err
		}
	}
	de.Values = make([]any, len(et.Fields))
	for i, f := range et.Fields {
		if mask&et.FieldBit(i) == 0 {
			continue
		}
		v, err := readField(b, f.Type)
		if err != nil {
			return nil, err
		}
		de.Values[i] = v
	}
	return de, nil
}
