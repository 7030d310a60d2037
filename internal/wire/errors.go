// Package wire implements the binary encode/decode buffer and float/rotation
// quantizers that every other replicore package builds on.
package wire

import "errors"

// ErrOutOfRange is returned when a read, seek, or rewrite would touch bytes
// outside the buffer's current bounds. Writes grow the buffer instead.
var ErrOutOfRange = errors.New("wire: offset out of range")

// ErrUnknownType is returned when a width request (WidthOf) names a type
// the buffer has no fixed-width entry for.
var ErrUnknownType = errors.New("wire: unknown fixed-width type")

// ErrArrayTooLong is returned when an array payload exceeds MaxArraySize
// elements. The encode is aborted; callers must truncate upstream.
var ErrArrayTooLong = errors.New("wire: array longer than 255 elements")
