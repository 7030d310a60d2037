// Package events implements registered one-shot replicated messages: a
// fixed code-to-parameter-list schema, a per-tick queue, and the wire codec
// for flushing that queue.
package events

import "errors"

// ErrUnknownCode is returned when encoding, decoding, or pushing an event
// whose code has no registered descriptor.
var ErrUnknownCode = errors.New("events: unknown event code")

// ErrDuplicateCode is returned when registering a code that already has a
// descriptor.
var ErrDuplicateCode = errors.New("events: event code already registered")

// ErrParamCountMismatch is returned when pushing an event with a parameter
// count that does not match its registered descriptor.
var ErrParamCountMismatch = errors.New("events: parameter count does not match registration")
