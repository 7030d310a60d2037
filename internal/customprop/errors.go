// Package customprop implements named, typed per-player properties with a
// replication mode controlling who besides the owner receives updates, and
// the batched wire codec for flushing changed properties.
package customprop

import "errors"

// ErrUnknownProperty is returned by Set and by Registry.ByName for a
// property that was never declared.
var ErrUnknownProperty = errors.New("customprop: unknown property")

// ErrDuplicateProperty is returned when declaring a name that already has
// a descriptor.
var ErrDuplicateProperty = errors.New("customprop: property already declared")

// ErrTypeMismatch is returned when Set is called with a value whose type
// does not match the property's declared type.
var ErrTypeMismatch = errors.New("customprop: value type does not match declared type")

// ErrBatchTooLarge is returned when more than 255 changed properties are
// flushed in one batch — the wire count is a single byte.
var ErrBatchTooLarge = errors.New("customprop: more than 255 properties in one batch")
