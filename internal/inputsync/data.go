package inputsync

import "github.com/snapnet/replicore/internal/wire"

// Data is one tick's worth of a single player's input. HasInput false means
// the player produced nothing this tick (e.g. paused, or not yet connected)
// and the codec writes nothing beyond the signature and that flag.
type Data struct {
	Signature uint32
	HasInput  bool

	MouseRelative wire.Vector2
	MouseSpeed    wire.Vector2

	Analog     map[string]float32
	Boolean    map[string]bool
	CustomVec2 map[string]wire.Vector2
	CustomVec3 map[string]wire.Vector3
}

// HasAnyInput reports whether the frame carries anything worth encoding: a
// non-zero analog value, a pressed boolean, a non-zero custom vector, or a
// non-zero mouse delta. Callers set HasInput from this after polling so an
// idle frame costs one flag byte on the wire.
func (d *Data) HasAnyInput() bool {
	if d.MouseRelative != (wire.Vector2{}) || d.MouseSpeed != (wire.Vector2{}) {
		return true
	}
	for _, v := range d.Analog {
		if v != 0 {
			return true
		}
	}
	for _, pressed := range d.Boolean {
		if pressed {
			return true
		}
	}
	for _, v := range d.CustomVec2 {
		if v != (wire.Vector2{}) {
			return true
		}
	}
	for _, v := range d.CustomVec3 {
		if v != (wire.Vector3{}) {
			return true
		}
	}
	return false
}

// MakeEmpty returns a neutral input frame for every action and custom slot
// currently registered, so a missing input never forces a decoder or a
// simulation step to special-case an absent key — a tick with no input for
// a player still has somewhere to read from.
func (r *Registry) MakeEmpty(signature uint32) *Data {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := &Data{
		Signature:  signature,
		HasInput:   false,
		Analog:     make(map[string]float32),
		Boolean:    make(map[string]bool),
		CustomVec2: make(map[string]wire.Vector2),
		CustomVec3: make(map[string]wire.Vector3),
	}
	for _, a := range r.actions {
		if a.isAnalog {
			d.Analog[a.name] = 0
		} else {
			d.Boolean[a.name] = false
		}
	}
	for _, name := range r.customVec2 {
		d.CustomVec2[name] = wire.Vector2{}
	}
	for _, name := range r.customVec3 {
		d.CustomVec3[name] = wire.Vector3{}
	}
	return d
}
