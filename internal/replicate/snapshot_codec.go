package replicate

import (
	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/snapshot"
	"github.com/snapnet/replicore/internal/wire"
)

// EncodeFullSnapshot writes the signature pair and then, for every type
// that has at least one entity, the type's hash, its entity count, and
// every entity in full. Types with no entities write nothing at all; the
// decoder just stops at the end of the buffer. The types slice must be in
// registration order — the decoder relies on the registry alone, but both
// ends walking the same order is what keeps repeated encodes byte-stable.
func EncodeFullSnapshot(b *wire.Buffer, snap *snapshot.Snapshot, types []*schema.EntityType) error {
	b.WriteUint32(snap.Signature)
	b.WriteUint32(snap.InputSignature)
	for _, et := range types {
		entities := snap.Entities(et.Name)
		if len(entities) == 0 {
			continue
		}
		b.WriteUint32(et.NameHash)
		b.WriteUint32(uint32(len(entities)))
		for _, es := range entities {
			if err := EncodeFullEntity(b, et, es); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeFullSnapshot is EncodeFullSnapshot's inverse, consuming type blocks
// until the buffer is exhausted. An unrecognized type hash aborts the whole
// frame — there is no way to skip an unknown type's bytes, and an unknown
// hash means the two ends disagree on the registered types anyway.
func DecodeFullSnapshot(b *wire.Buffer, reg *schema.Registry) (*snapshot.Snapshot, error) {
	sig, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}
	inputSig, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}

	out := snapshot.NewSnapshot(sig, inputSig)
	for _, et := range reg.Types() {
		out.EnsureType(et.Name)
	}
	for b.HasData() {
		hash, err := b.ReadUint32()
		if err != nil {
			return nil, err
		}
		et, err := reg.ByHash(hash)
		if err != nil {
			return nil, err
		}
		count, err := b.ReadUint32()
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < count; j++ {
			es, err := DecodeFullEntity(b, et)
			if err != nil {
				return nil, err
			}
			out.AddEntity(et.Name, es)
		}
	}
	return out, nil
}

// EncodeDeltaSnapshot writes only what changed between reference and snap.
// The has-changes flag immediately follows the signature pair and is
// back-patched once the whole body is known to contain (or not contain)
// any entity record — callers decide whether a snapshot with no changes is
// even worth sending by checking the returned bool. A type's hash and
// entity count are written only once its first record is produced, with the
// count as a placeholder that is rewritten at the captured offset after the
// type's loop finishes; a type with no changed, added, or removed entities
// contributes no bytes at all. The count is never patched through a literal
// offset, only through the offset its own write returned.
func EncodeDeltaSnapshot(b *wire.Buffer, snap, reference *snapshot.Snapshot, types []*schema.EntityType) (hasChanges bool, err error) {
	b.WriteUint32(snap.Signature)
	b.WriteUint32(snap.InputSignature)
	hasChangesAt := b.WriteBool(false)

	for _, et := range types {
		countAt := -1
		count := uint32(0)
		beginType := func() {
			if countAt < 0 {
				b.WriteUint32(et.NameHash)
				countAt = b.WriteUint32(0)
			}
		}

		current := snap.Entities(et.Name)
		seen := make(map[uint32]bool, len(current))
		for _, es := range current {
			seen[es.UID] = true
			refEntity, hadRef := reference.GetEntity(et.Name, es.UID)
			var mask uint32
			if !hadRef {
				mask = et.FullChangeMask()
			} else {
				mask = ComputeChangeMask(et, refEntity, es)
			}
			if mask == 0 {
				continue
			}
			beginType()
			if err = EncodeDeltaEntity(b, et, es, mask); err != nil {
				return false, err
			}
			count++
		}

		for _, refEntity := range reference.Entities(et.Name) {
			if seen[refEntity.UID] {
				continue
			}
			beginType()
			if err = EncodeDeltaEntity(b, et, refEntity, 0); err != nil {
				return false, err
			}
			count++
		}

		if countAt >= 0 {
			if err = b.RewriteUint32(countAt, count); err != nil {
				return false, err
			}
			hasChanges = true
		}
	}

	if err = b.RewriteBool(hasChangesAt, hasChanges); err != nil {
		return false, err
	}
	return hasChanges, nil
}

// DecodeDeltaSnapshot clones the reference snapshot and applies every
// encoded record on top of it: a non-removal record overwrites the matching
// entity's changed fields — and its class hash when the mask carried one —
// or inserts a brand new entity when no prior one existed, and a removal
// record deletes the entity from the clone. Entities the wire never
// mentions keep their reference-snapshot values untouched, which is exactly
// the "fill unchanged fields from the delta base" contract.
func DecodeDeltaSnapshot(b *wire.Buffer, reference *snapshot.Snapshot, reg *schema.Registry) (*snapshot.Snapshot, error) {
	sig, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}
	inputSig, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}
	hasChanges, err := b.ReadBool()
	if err != nil {
		return nil, err
	}

	out := reference.Clone()
	out.Signature = sig
	out.InputSignature = inputSig
	if !hasChanges {
		return out, nil
	}

	for b.HasData() {
		hash, err := b.ReadUint32()
		if err != nil {
			return nil, err
		}
		et, err := reg.ByHash(hash)
		if err != nil {
			return nil, err
		}
		count, err := b.ReadUint32()
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < count; i++ {
			de, err := DecodeDeltaEntity(b, et)
			if err != nil {
				return nil, err
			}
			if de.IsRemoval {
				out.RemoveEntity(et.Name, de.UID)
				continue
			}
			existing, had := out.GetEntity(et.Name, de.UID)
			if !had {
				values := make([]any, len(et.Fields))
				copy(values, de.Values)
				out.AddEntity(et.Name, &snapshot.EntityState{
					UID:       de.UID,
					ClassHash: de.ClassHash,
					Type:      et,
					Values:    values,
				})
				continue
			}
			if et.HasClassHash && de.Mask&et.ClassHashBit() != 0 {
				existing.ClassHash = de.ClassHash
			}
			for idx := range et.Fields {
				if de.Mask&et.FieldBit(idx) != 0 {
					existing.Values[idx] = de.Values[idx]
				}
			}
		}
	}
	return out, nil
}
