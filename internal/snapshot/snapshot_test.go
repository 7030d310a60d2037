package snapshot

import (
	"testing"

	"github.com/snapnet/replicore/internal/schema"
)

func testType() *schema.EntityType {
	et, _ := schema.NewRegistry().Register("unit", []schema.FieldDescriptor{
		{Name: "hp", Type: schema.Int, Comparer: schema.GenericComparer()},
	})
	return et
}

func TestAddEntityIdempotentByUID(t *testing.T) {
	et := testType()
	s := NewSnapshot(1, 0)
	s.AddEntity("unit", &EntityState{UID: 7, Type: et, Values: []any{int32(10)}})
	s.AddEntity("unit", &EntityState{UID: 7, Type: et, Values: []any{int32(20)}})

	entities := s.Entities("unit")
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(entities))
	}
	if entities[0].Values[0].(int32) != 20 {
		t.Fatalf("expected updated value 20, got %v", entities[0].Values[0])
	}
}

func TestAddEntityPreservesOrder(t *testing.T) {
	et := testType()
	s := NewSnapshot(1, 0)
	s.AddEntity("unit", &EntityState{UID: 3, Type: et, Values: []any{int32(1)}})
	s.AddEntity("unit", &EntityState{UID: 1, Type: et, Values: []any{int32(2)}})
	s.AddEntity("unit", &EntityState{UID: 3, Type: et, Values: []any{int32(3)}})

	entities := s.Entities("unit")
	if len(entities) != 2 || entities[0].UID != 3 || entities[1].UID != 1 {
		t.Fatalf("unexpected order: %+v", entities)
	}
}

func TestRemoveEntity(t *testing.T) {
	et := testType()
	s := NewSnapshot(1, 0)
	s.AddEntity("unit", &EntityState{UID: 1, Type: et, Values: []any{int32(1)}})
	s.RemoveEntity("unit", 1)
	if _, ok := s.GetEntity("unit", 1); ok {
		t.Fatal("expected entity removed")
	}
	if len(s.Entities("unit")) != 0 {
		t.Fatal("expected empty order after removal")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	et := testType()
	s := NewSnapshot(5, 9)
	s.AddEntity("unit", &EntityState{UID: 1, Type: et, Values: []any{int32(42)}})

	clone := s.Clone()
	clone.Entities("unit")[0].Values[0] = int32(99)

	orig, _ := s.GetEntity("unit", 1)
	if orig.Values[0].(int32) != 42 {
		t.Fatalf("mutating clone affected original: %v", orig.Values[0])
	}
	if clone.Signature != 5 || clone.InputSignature != 9 {
		t.Fatalf("clone lost signatures: %+v", clone)
	}
}
