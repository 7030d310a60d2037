// Package inputsync implements per-player input registration, the wire
// codec for one tick's input frame, and the server/client input buffers
// that hand inputs to simulation in signature order.
package inputsync

import "sync"

type actionDescriptor struct {
	name     string
	isAnalog bool
	enabled  bool
	custom   bool
}

// Registry holds the fixed, ordered list of actions and custom vector
// inputs a player's input frame carries, plus the global mouse/quantization
// toggles that change how the codec shapes the wire frame. Like the entity
// type registry, field order here is fixed by registration order — it
// indexes every mask bit the codec writes.
type Registry struct {
	mu sync.Mutex

	actions    []actionDescriptor
	customVec2 []string
	customVec3 []string

	useMouseRelative bool
	useMouseSpeed    bool
	quantizeAnalog   bool
}

// NewRegistry returns an empty input registration set. Analog values are
// quantized to 8 bits by default, matching the codec's default mode.
func NewRegistry() *Registry {
	return &Registry{quantizeAnalog: true}
}

// RegisterAction adds a boolean or analog action. Re-registering an
// existing name updates its analog-ness in place rather than duplicating
// the entry.
func (r *Registry) RegisterAction(name string, isAnalog bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.actions {
		if a.name == name {
			r.actions[i].isAnalog = isAnalog
			return
		}
	}
	r.actions = append(r.actions, actionDescriptor{name: name, isAnalog: isAnalog, enabled: true})
}

// RegisterCustomAction is RegisterAction with the custom flag set, for
// actions a game defines beyond the built-in movement/analog set.
func (r *Registry) RegisterCustomAction(name string, isAnalog bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.actions {
		if a.name == name {
			r.actions[i].isAnalog = isAnalog
			r.actions[i].custom = true
			return
		}
	}
	r.actions = append(r.actions, actionDescriptor{name: name, isAnalog: isAnalog, enabled: true, custom: true})
}

// RegisterCustomVec2 declares a named custom Vector2 input slot.
func (r *Registry) RegisterCustomVec2(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customVec2 = append(r.customVec2, name)
}

// RegisterCustomVec3 declares a named custom Vector3 input slot.
func (r *Registry) RegisterCustomVec3(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customVec3 = append(r.customVec3, name)
}

// SetActionEnabled toggles whether a registered action is included in the
// wire frame. Disabling an action removes its slot from the mask entirely
// for subsequent encodes, not just zeroes its value.
func (r *Registry) SetActionEnabled(name string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.actions {
		if a.name == name {
			r.actions[i].enabled = enabled
			return
		}
	}
}

// SetUseMouseRelative toggles whether the frame carries a relative-mouse
// Vector2 ahead of the analog group.
func (r *Registry) SetUseMouseRelative(use bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.useMouseRelative = use
}

// SetUseMouseSpeed toggles whether the frame carries a mouse-speed Vector2.
func (r *Registry) SetUseMouseSpeed(use bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.useMouseSpeed = use
}

// SetQuantizeAnalog toggles whether analog values are quantized to a single
// byte (true, the default) or written as a raw float32.
func (r *Registry) SetQuantizeAnalog(quantize bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quantizeAnalog = quantize
}

// ResetRegistrations clears every registered action and custom vector slot
// and turns both mouse toggles off. The analog quantization setting is left
// as it is.
func (r *Registry) ResetRegistrations() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
	r.customVec2 = nil
	r.customVec3 = nil
	r.useMouseRelative = false
	r.useMouseSpeed = false
}

func (r *Registry) enabledBoolActions() []actionDescriptor {
	var out []actionDescriptor
	for _, a := range r.actions {
		if !a.isAnalog && a.enabled {
			out = append(out, a)
		}
	}
	return out
}

func (r *Registry) enabledAnalogActions() []actionDescriptor {
	var out []actionDescriptor
	for _, a := range r.actions {
		if a.isAnalog && a.enabled {
			out = append(out, a)
		}
	}
	return out
}
