// Package replicate implements the full and delta entity/snapshot wire
// codec: the change-mask computation, the per-entity and per-snapshot
// encode/decode pair, and the back-patch placement for fields whose final
// value is only known after the body that follows them has been written.
package replicate

import "errors"

// ErrUnknownMaskWidth is returned when a change mask's byte width is
// anything other than 1, 2, or 4.
var ErrUnknownMaskWidth = errors.New("replicate: unknown change mask width")
