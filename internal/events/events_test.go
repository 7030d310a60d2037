package events

import (
	"testing"

	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/wire"
)

func TestEncodeDecodeEvent(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Register(1, []schema.FieldType{schema.String, schema.Int}); err != nil {
		t.Fatalf("register: %v", err)
	}

	e := Event{Code: 1, Params: []any{"hit", int32(42)}}
	b := wire.NewBuffer()
	if err := EncodeEvent(b, reg, e); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeEvent(wire.NewBufferFrom(b.Bytes()), reg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Code != 1 || got.Params[0].(string) != "hit" || got.Params[1].(int32) != 42 {
		t.Fatalf("mismatch: %+v", got)
	}
}

func TestEncodeDecodeBatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register(1, []schema.FieldType{schema.Int})
	reg.Register(2, []schema.FieldType{schema.Bool})

	batch := []Event{
		{Code: 1, Params: []any{int32(5)}},
		{Code: 2, Params: []any{true}},
	}
	b := wire.NewBuffer()
	if err := EncodeBatch(b, reg, batch); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeBatch(wire.NewBufferFrom(b.Bytes()), reg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].Params[0].(int32) != 5 || got[1].Params[0].(bool) != true {
		t.Fatalf("mismatch: %+v", got)
	}
}

func TestDispatcherFlush(t *testing.T) {
	reg := NewRegistry()
	reg.Register(1, []schema.FieldType{schema.Int})

	var flushed []Event
	d := NewDispatcher(reg, func(e []Event) error {
		flushed = e
		return nil
	})

	if err := d.Push(1, []any{int32(1)}); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := d.Push(1, []any{int32(2)}); err != nil {
		t.Fatalf("push: %v", err)
	}
	if d.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", d.Pending())
	}
	if err := d.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(flushed) != 2 {
		t.Fatalf("expected 2 flushed events, got %d", len(flushed))
	}
	if d.Pending() != 0 {
		t.Fatal("expected queue cleared after flush")
	}
}

func TestDispatcherParamCountMismatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register(1, []schema.FieldType{schema.Int, schema.Bool})
	d := NewDispatcher(reg, nil)
	if err := d.Push(1, []any{int32(1)}); err != ErrParamCountMismatch {
		t.Fatalf("expected ErrParamCountMismatch, got %v", err)
	}
}
