package inputsync

import (
	"testing"

	"github.com/snapnet/replicore/internal/wire"
)

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.RegisterAction("move", true)
	r.RegisterAction("jump", false)
	r.RegisterAction("fire", false)
	r.RegisterCustomVec2("aim")
	r.RegisterCustomVec3("lean")
	return r
}

func TestEncodeDecodeNoInput(t *testing.T) {
	r := newTestRegistry()
	d := &Data{Signature: 5, HasInput: false}

	b := wire.NewBuffer()
	if err := r.EncodeTo(b, d); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := r.DecodeFrom(wire.NewBufferFrom(b.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Signature != 5 || got.HasInput {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestEncodeDecodeWithValues(t *testing.T) {
	r := newTestRegistry()
	d := &Data{
		Signature: 10,
		HasInput:  true,
		Analog:    map[string]float32{"move": 0.75},
		Boolean:   map[string]bool{"jump": true, "fire": false},
		CustomVec2: map[string]wire.Vector2{
			"aim": {X: 1, Y: 2},
		},
		CustomVec3: map[string]wire.Vector3{
			"lean": {X: 0, Y: 0, Z: 0}, // default, should not round-trip as present
		},
	}

	b := wire.NewBuffer()
	if err := r.EncodeTo(b, d); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := r.DecodeFrom(wire.NewBufferFrom(b.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Analog["move"] < 0.7 || got.Analog["move"] > 0.8 {
		t.Fatalf("expected move ~0.75, got %v", got.Analog["move"])
	}
	if !got.Boolean["jump"] || got.Boolean["fire"] {
		t.Fatalf("unexpected boolean decode: %+v", got.Boolean)
	}
	if got.CustomVec2["aim"].X != 1 || got.CustomVec2["aim"].Y != 2 {
		t.Fatalf("unexpected vec2 decode: %+v", got.CustomVec2["aim"])
	}
	if got.CustomVec3["lean"] != (wire.Vector3{}) {
		t.Fatalf("expected default lean vector, got %+v", got.CustomVec3["lean"])
	}
}

func TestMakeEmptyPopulatesAllRegistered(t *testing.T) {
	r := newTestRegistry()
	d := r.MakeEmpty(1)
	if _, ok := d.Analog["move"]; !ok {
		t.Fatal("expected analog 'move' present in empty input")
	}
	if _, ok := d.Boolean["jump"]; !ok {
		t.Fatal("expected boolean 'jump' present in empty input")
	}
	if _, ok := d.CustomVec2["aim"]; !ok {
		t.Fatal("expected custom vec2 'aim' present in empty input")
	}
}

func TestServerBufferTakeNextAdvancesOnMiss(t *testing.T) {
	buf := NewServerBuffer()
	buf.Store(&Data{Signature: 2})

	empty := &Data{Signature: 0}
	got1 := buf.TakeNext(empty) // signature 1 missing -> empty, cursor still advances
	if got1 != empty {
		t.Fatalf("expected empty substitute for missing signature 1, got %+v", got1)
	}
	got2 := buf.TakeNext(empty) // signature 2 present now
	if got2.Signature != 2 {
		t.Fatalf("expected signature 2, got %+v", got2)
	}
}

func TestServerBufferDiscardsConsumedSignatures(t *testing.T) {
	buf := NewServerBuffer()
	empty := &Data{}
	buf.TakeNext(empty) // cursor now past signature 1

	buf.Store(&Data{Signature: 1}) // late duplicate of a consumed slot
	buf.Store(&Data{Signature: 2})

	if got := buf.TakeNext(empty); got.Signature != 2 {
		t.Fatalf("expected signature 2 next, got %+v", got)
	}
}

func TestHasAnyInput(t *testing.T) {
	d := &Data{
		Analog:     map[string]float32{"move": 0},
		Boolean:    map[string]bool{"jump": false},
		CustomVec2: map[string]wire.Vector2{},
		CustomVec3: map[string]wire.Vector3{},
	}
	if d.HasAnyInput() {
		t.Fatal("expected neutral frame to report no input")
	}
	d.Boolean["jump"] = true
	if !d.HasAnyInput() {
		t.Fatal("expected pressed boolean to count as input")
	}
	d.Boolean["jump"] = false
	d.MouseRelative = wire.Vector2{X: 0.5}
	if !d.HasAnyInput() {
		t.Fatal("expected mouse delta to count as input")
	}
}

func TestClientQueuePruneUpTo(t *testing.T) {
	q := NewClientQueue()
	q.Push(&Data{Signature: 1})
	q.Push(&Data{Signature: 2})
	q.Push(&Data{Signature: 3})
	q.PruneUpTo(2)
	if q.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", q.Len())
	}
	if _, ok := q.Get(3); !ok {
		t.Fatal("expected signature 3 retained")
	}
}
