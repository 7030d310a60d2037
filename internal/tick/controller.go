// Package tick implements the per-tick lifecycle that starts a new
// snapshot, lets the game populate it, and on finish runs the
// custom-property sync, snapshot-finished, and event-dispatch hooks in that
// fixed order.
package tick

import (
	"errors"
	"sync"

	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/snapshot"
)

// ErrAlreadyBuilding is returned by StartTick when a tick is already open.
var ErrAlreadyBuilding = errors.New("tick: a tick is already being built")

// ErrNotBuilding is returned by AddEntity/FinishTick when no tick is open.
var ErrNotBuilding = errors.New("tick: no tick is currently being built")

// Controller drives one authoritative side's tick lifecycle: StartTick
// opens a new snapshot, the caller populates it via AddEntity, and
// FinishTick runs the three injected hooks in order — custom-property sync
// first (so any property change this tick is visible to the snapshot hook
// and to dispatched events), then the snapshot-finished hook (receives the
// completed snapshot, typically to hand to history and transport), then the
// event-dispatch hook (flushes whatever was queued via PushEvent this
// tick). Hooks are optional; a nil hook is simply skipped.
type Controller struct {
	mu sync.Mutex

	registry  *schema.Registry
	signature uint32
	building  bool
	current   *snapshot.Snapshot

	customPropHook func() error
	snapFinished   func(*snapshot.Snapshot) error
	eventDispatch  func() error
	eventQueue     func(code uint16, params []any) error
}

// NewController returns a controller with its signature counter at zero;
// the first StartTick produces signature 1. A non-nil registry makes every
// started snapshot pre-hold an empty collection per registered type, so a
// tick that adds no entities of some type still produces a snapshot whose
// shape matches what a decoder builds.
func NewController(registry *schema.Registry) *Controller {
	return &Controller{registry: registry}
}

// SetCustomPropHook sets the hook run first on FinishTick.
func (c *Controller) SetCustomPropHook(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customPropHook = fn
}

// SetSnapshotFinishedHook sets the hook run second on FinishTick, receiving
// the completed snapshot.
func (c *Controller) SetSnapshotFinishedHook(fn func(*snapshot.Snapshot) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapFinished = fn
}

// SetEventDispatchHook sets the hook run last on FinishTick.
func (c *Controller) SetEventDispatchHook(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventDispatch = fn
}

// SetEventQueue sets where PushEvent sends queued events — typically an
// events.Dispatcher's Push. Events pushed with no queue configured are
// dropped.
func (c *Controller) SetEventQueue(fn func(code uint16, params []any) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventQueue = fn
}

// PushEvent queues a replicated event for dispatch when the current tick
// finishes. Events may only be pushed while a tick is open, so their flush
// order relative to the tick's snapshot is well defined.
func (c *Controller) PushEvent(code uint16, params []any) error {
	c.mu.Lock()
	queue := c.eventQueue
	building := c.building
	c.mu.Unlock()
	if !building {
		return ErrNotBuilding
	}
	if queue == nil {
		return nil
	}
	return queue(code, params)
}

// IsBuilding reports whether a tick is currently open.
func (c *Controller) IsBuilding() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.building
}

// StartTick opens a new empty snapshot stamped with the next signature and
// the given input signature.
func (c *Controller) StartTick(inputSignature uint32) (*snapshot.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.building {
		return nil, ErrAlreadyBuilding
	}
	c.signature++
	c.current = snapshot.NewSnapshot(c.signature, inputSignature)
	if c.registry != nil {
		for _, et := range c.registry.Types() {
			c.current.EnsureType(et.Name)
		}
	}
	c.building = true
	return c.current, nil
}

// AddEntity adds or replaces an entity in the tick currently being built.
func (c *Controller) AddEntity(typeName string, es *snapshot.EntityState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.building {
		return ErrNotBuilding
	}
	c.current.AddEntity(typeName, es)
	return nil
}

// FinishTick runs the custom-property, snapshot-finished, and
// event-dispatch hooks in that fixed order, then closes the tick. The
// completed snapshot is returned regardless of whether a
// snapshot-finished hook was set.
func (c *Controller) FinishTick() (*snapshot.Snapshot, error) {
	c.mu.Lock()
	if !c.building {
		c.mu.Unlock()
		return nil, ErrNotBuilding
	}
	snap := c.current
	customPropHook := c.customPropHook
	snapFinished := c.snapFinished
	eventDispatch := c.eventDispatch
	c.mu.Unlock()

	if customPropHook != nil {
		if err := customPropHook(); err != nil {
			return nil, err
		}
	}
	if snapFinished != nil {
		if err := snapFinished(snap); err != nil {
			return nil, err
		}
	}
	if eventDispatch != nil {
		if err := eventDispatch(); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	c.current = nil
	c.building = false
	c.mu.Unlock()
	return snap, nil
}
