package events

import (
	"sync"

	"github.com/snapnet/replicore/internal/schema"
)

// Descriptor is one registered event's fixed, ordered parameter schema.
type Descriptor struct {
	Code   uint16
	Params []schema.FieldType
}

// Registry holds every registered event descriptor, indexed by code.
type Registry struct {
	mu     sync.RWMutex
	byCode map[uint16]*Descriptor
}

// NewRegistry returns an empty event registry.
func NewRegistry() *Registry {
	return &Registry{byCode: make(map[uint16]*Descriptor)}
}

// Register fixes a new event code's parameter list. Every parameter type
// must be from the accepted property type set.
func (r *Registry) Register(code uint16, params []schema.FieldType) (*Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byCode[code]; exists {
		return nil, ErrDuplicateCode
	}
	for _, p := range params {
		if !p.Valid() {
			return nil, schema.ErrUnknownFieldType
		}
	}
	d := &Descriptor{Code: code, Params: append([]schema.FieldType(nil), params...)}
	r.byCode[code] = d
	return d, nil
}

// ByCode looks up a registered event's descriptor.
func (r *Registry) ByCode(code uint16) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byCode[code]
	if !ok {
		return nil, ErrUnknownCode
	}
	return d, nil
}
