package customprop

import (
	"reflect"
	"sync"

	"github.com/snapnet/replicore/internal/schema"
)

// ReplicationMode controls which peers besides the server receive a custom
// property's updates.
type ReplicationMode int

const (
	// ServerOnly properties never leave the server.
	ServerOnly ReplicationMode = iota
	// OwnerOnly properties replicate to the owning player only.
	OwnerOnly
	// Broadcast properties replicate to every connected player.
	Broadcast
)

// Descriptor is one declared custom property: its type, default value, and
// replication mode.
type Descriptor struct {
	Name    string
	Type    schema.FieldType
	Default any
	Mode    ReplicationMode
}

// Registry holds every declared custom property, in declaration order —
// new players are given every declared property with its default value,
// same as every existing player gets a newly declared one.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]*Descriptor
}

// NewRegistry returns an empty custom property registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Descriptor)}
}

// Declare adds a new property. Re-declaring an existing name returns
// ErrDuplicateProperty.
func (r *Registry) Declare(name string, t schema.FieldType, def any, mode ReplicationMode) (*Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return nil, ErrDuplicateProperty
	}
	if !t.Valid() {
		return nil, schema.ErrUnknownFieldType
	}
	d := &Descriptor{Name: name, Type: t, Default: def, Mode: mode}
	r.byName[name] = d
	r.order = append(r.order, name)
	return d, nil
}

// ByName looks up a declared property's descriptor.
func (r *Registry) ByName(name string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	if !ok {
		return nil, ErrUnknownProperty
	}
	return d, nil
}

// Declared returns every declared property's descriptor, in declaration
// order.
func (r *Registry) Declared() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

func sameType(declared schema.FieldType, value any) bool {
	t, err := typeOf(declared)
	if err != nil {
		return false
	}
	return reflect.TypeOf(value) == t
}
