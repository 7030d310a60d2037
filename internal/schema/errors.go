// Package schema defines replicable field types, value comparers, and the
// entity type registry that assigns every entity type a stable name hash
// and a fixed field order.
package schema

import "errors"

// ErrTooManyFields is returned when an entity type registers more fields
// than the largest supported change-mask width (32) can address.
var ErrTooManyFields = errors.New("schema: entity type needs more than 32 change-mask bits")

// ErrDuplicateType is returned when registering an entity type name that
// already exists in the registry.
var ErrDuplicateType = errors.New("schema: entity type already registered")

// ErrUnknownType is returned when looking up an entity type or name hash
// that has no registered entry.
var ErrUnknownType = errors.New("schema: unknown entity type")

// ErrUnknownFieldType is returned when a field descriptor names a FieldType
// the codec has no handler for.
var ErrUnknownFieldType = errors.New("schema: unknown field type")
