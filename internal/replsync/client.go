package replsync

import (
	"errors"

	"github.com/snapnet/replicore/internal/history"
	"github.com/snapnet/replicore/internal/inputsync"
	"github.com/snapnet/replicore/internal/logger"
	"github.com/snapnet/replicore/internal/replicate"
	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/snapshot"
	"github.com/snapnet/replicore/internal/wire"
)

// ErrNoDeltaBase is returned when a delta frame arrives before any
// authoritative snapshot has established the reference to apply it against.
var ErrNoDeltaBase = errors.New("replsync: delta frame with no reference snapshot")

// Client drives the inbound half of replication: it keeps the predicted
// snapshot history and the locally cached input queue, and applies
// authoritative frames as they arrive. Like Server, it is single-threaded;
// transport callbacks hop onto the simulation goroutine first.
type Client struct {
	reg    *schema.Registry
	hist   *history.ClientHistory
	inputs *inputsync.ClientQueue
}

// NewClient builds a client bounded to maxHistory retained predictions.
func NewClient(reg *schema.Registry, maxHistory int) *Client {
	return &Client{
		reg:    reg,
		hist:   history.NewClientHistory(maxHistory),
		inputs: inputsync.NewClientQueue(),
	}
}

// History exposes the prediction history.
func (c *Client) History() *history.ClientHistory { return c.hist }

// Inputs exposes the locally cached input queue.
func (c *Client) Inputs() *inputsync.ClientQueue { return c.inputs }

// RecordPrediction stores a locally simulated snapshot until the server's
// authoritative version of that tick arrives.
func (c *Client) RecordPrediction(s *snapshot.Snapshot) { c.hist.Add(s) }

// HandleFullSnapshot decodes and applies an authoritative full snapshot.
// A stale frame is dropped silently — a newer frame already superseded it.
func (c *Client) HandleFullSnapshot(data []byte) error {
	snap, err := replicate.DecodeFullSnapshot(wire.NewBufferFrom(data), c.reg)
	if err != nil {
		return err
	}
	return c.apply(snap)
}

// HandleDeltaSnapshot decodes an authoritative delta against the stored
// reference and applies it. A delta arriving before any reference exists
// cannot be interpreted and is rejected; the server's full-snapshot escape
// hatch recovers the situation on its own.
func (c *Client) HandleDeltaSnapshot(data []byte) error {
	ref := c.hist.ServerState()
	if ref == nil {
		return ErrNoDeltaBase
	}
	snap, err := replicate.DecodeDeltaSnapshot(wire.NewBufferFrom(data), ref, c.reg)
	if err != nil {
		return err
	}
	return c.apply(snap)
}

func (c *Client) apply(snap *snapshot.Snapshot) error {
	err := c.hist.Reconcile(snap, c.reg.Types())
	if errors.Is(err, history.ErrStaleFrame) {
		logger.Debug("stale authoritative frame dropped", "signature", snap.Signature, "input_signature", snap.InputSignature)
		return nil
	}
	if err != nil {
		return err
	}
	if snap.InputSignature > 0 {
		c.inputs.PruneUpTo(snap.InputSignature)
	}
	return nil
}
