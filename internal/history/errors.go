// Package history implements the server-side bounded snapshot history and
// the client-side predicted-state history with its authoritative
// reconciliation pass.
package history

import "errors"

// ErrNotFound is returned when a lookup by signature or input signature
// finds no matching snapshot.
var ErrNotFound = errors.New("history: snapshot not found")

// ErrStaleFrame is reported when an authoritative snapshot's input
// signature precedes the oldest retained prediction — a later frame has
// already superseded it, so it must be dropped without touching state.
var ErrStaleFrame = errors.New("history: authoritative frame is stale")
