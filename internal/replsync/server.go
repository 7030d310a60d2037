// Package replsync wires the per-tick replication flow around the core
// codec, history, tracker, and input packages: the server side decides
// full-vs-delta per client, encodes, and hands frames to the transport;
// the client side ingests authoritative frames, reconciles its
// predictions, and prunes its cached inputs.
package replsync

import (
	"context"
	"time"

	"github.com/snapnet/replicore/internal/bwlimit"
	"github.com/snapnet/replicore/internal/history"
	"github.com/snapnet/replicore/internal/inputsync"
	"github.com/snapnet/replicore/internal/logger"
	"github.com/snapnet/replicore/internal/netconfig"
	"github.com/snapnet/replicore/internal/record"
	"github.com/snapnet/replicore/internal/replicate"
	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/snapshot"
	"github.com/snapnet/replicore/internal/tracker"
	"github.com/snapnet/replicore/internal/wire"
)

// Outbound is what the server hands encoded frames to. Snapshot frames go
// over the unreliable channel; which of the two shapes a payload carries is
// signalled out of band (a channel or message tag in the transport
// adapter), never inside the payload itself.
type Outbound interface {
	SendFullSnapshot(peerID string, payload []byte) error
	SendDeltaSnapshot(peerID string, payload []byte) error
}

// clientState bundles one connected player's tracker and input buffer with
// the signature of the input consumed for the current tick (0 when the
// tick ran on a neutral substitute).
type clientState struct {
	tracker   *tracker.ClientTracker
	inputs    *inputsync.ServerBuffer
	usedInput uint32
}

// Server drives the outbound half of replication: it owns the snapshot
// history, one tracker and input buffer per client, and the single encode
// buffer reused (reset) across clients within a tick. All methods must be
// called from the one goroutine that runs the tick loop; transport
// callbacks hop onto it before touching the server.
type Server struct {
	reg       *schema.Registry
	inputReg  *inputsync.Registry
	hist      *history.ServerHistory
	threshold int

	order   []string
	clients map[string]*clientState

	buf  *wire.Buffer
	out  Outbound
	gate *bwlimit.Limiter
	rec  *record.Recorder
}

// NewServer builds a server from the registered entity types, the input
// registration set, and the loaded configuration. The history bound is
// normalized against the full-snapshot threshold so a reference snapshot
// can always outlive the backlog that would force a full anyway.
func NewServer(reg *schema.Registry, inputReg *inputsync.Registry, cfg netconfig.Config, out Outbound) *Server {
	maxHist := history.NormalizeHistorySize(cfg.MaxHistorySize, cfg.FullSnapThreshold)
	return &Server{
		reg:       reg,
		inputReg:  inputReg,
		hist:      history.NewServerHistory(maxHist),
		threshold: cfg.FullSnapThreshold,
		clients:   make(map[string]*clientState),
		buf:       wire.NewBuffer(),
		out:       out,
	}
}

// SetBandwidthGate installs a per-peer byte budget the dispatch loop waits
// on before handing each frame to the transport. Nil disables gating.
func (s *Server) SetBandwidthGate(g *bwlimit.Limiter) { s.gate = g }

// SetRecorder installs a passive frame recorder. Nil disables recording.
func (s *Server) SetRecorder(r *record.Recorder) { s.rec = r }

// History exposes the snapshot history, mainly so adapters can answer
// reference-availability questions of their own.
func (s *Server) History() *history.ServerHistory { return s.hist }

// AddClient starts tracking a newly connected player. The client is not
// ready until MarkReady; it receives nothing before that.
func (s *Server) AddClient(peerID string) {
	if _, exists := s.clients[peerID]; exists {
		return
	}
	s.clients[peerID] = &clientState{
		tracker: tracker.NewClientTracker(),
		inputs:  inputsync.NewServerBuffer(),
	}
	s.order = append(s.order, peerID)
}

// RemoveClient drops every piece of per-client state for a disconnected
// player. The server keeps ticking with whoever remains.
func (s *Server) RemoveClient(peerID string) {
	if _, exists := s.clients[peerID]; !exists {
		return
	}
	delete(s.clients, peerID)
	for i, id := range s.order {
		if id == peerID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.gate != nil {
		s.gate.Forget(peerID)
	}
}

// MarkReady flags a client as able to receive outbound snapshots.
func (s *Server) MarkReady(peerID string) {
	if cs, ok := s.clients[peerID]; ok {
		cs.tracker.SetReady(true)
	}
}

// Peers returns the tracked client ids in join order.
func (s *Server) Peers() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Tracker returns a client's tracker, or nil for an unknown peer.
func (s *Server) Tracker(peerID string) *tracker.ClientTracker {
	if cs, ok := s.clients[peerID]; ok {
		return cs.tracker
	}
	return nil
}

// HandleInputPacket ingests one input packet (a u16 count followed by that
// many input records) from a client. Decode errors drop the remainder of
// the packet; whatever records decoded before the error are kept.
func (s *Server) HandleInputPacket(peerID string, data []byte) error {
	cs, ok := s.clients[peerID]
	if !ok {
		return nil
	}
	b := wire.NewBufferFrom(data)
	count, err := b.ReadUint16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		d, err := s.inputReg.DecodeFrom(b)
		if err != nil {
			return err
		}
		cs.inputs.Store(d)
		cs.tracker.RecordInput(d.Signature)
	}
	return nil
}

// TakeInput hands the next input in signature order to the simulation step
// for one player, substituting a neutral frame when the next signature
// never arrived. The signature consumed here is what this tick's outbound
// snapshot for the player will carry — zero when the substitute was used,
// which is what the tracker's no-input accounting keys on.
func (s *Server) TakeInput(peerID string) *inputsync.Data {
	cs, ok := s.clients[peerID]
	if !ok {
		return s.inputReg.MakeEmpty(0)
	}
	empty := s.inputReg.MakeEmpty(0)
	d := cs.inputs.TakeNext(empty)
	if d == empty {
		cs.usedInput = 0
	} else {
		cs.usedInput = d.Signature
	}
	return d
}

// HandleAck collapses a client's snapshot acknowledgement.
func (s *Server) HandleAck(peerID string, snapSig uint32) {
	if cs, ok := s.clients[peerID]; ok {
		cs.tracker.Acknowledge(snapSig)
	}
}

// DispatchSnapshot appends a finished tick's snapshot to history, then
// walks the clients in join order: each ready client gets either a full
// snapshot or a delta against its last acknowledged reference, encoded
// with the input signature consumed for that client this tick, gated on
// its bandwidth budget, sent best-effort, and recorded. A send failure
// for one client is logged and does not stop the walk — the next tick's
// frame subsumes the lost one.
func (s *Server) DispatchSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	s.hist.Add(snap)
	types := s.reg.Types()

	origInputSig := snap.InputSignature
	defer func() { snap.InputSignature = origInputSig }()

	for _, peerID := range s.order {
		cs := s.clients[peerID]
		if !cs.tracker.IsReady() {
			continue
		}
		cs.tracker.Associate(snap.Signature, cs.usedInput)
		decision := cs.tracker.OutboundPolicy(s.threshold, s.hist)
		if decision.Skip {
			continue
		}
		snap.InputSignature = cs.usedInput

		s.buf.Reset()
		kind := record.KindDeltaSnapshot
		if decision.SendFull {
			kind = record.KindFullSnapshot
			if err := replicate.EncodeFullSnapshot(s.buf, snap, types); err != nil {
				return err
			}
		} else {
			if _, err := replicate.EncodeDeltaSnapshot(s.buf, snap, decision.Reference, types); err != nil {
				return err
			}
		}
		payload := append([]byte(nil), s.buf.Bytes()...)

		if s.gate != nil {
			if err := s.gate.Wait(ctx, peerID, len(payload)); err != nil {
				return err
			}
		}

		var sendErr error
		if decision.SendFull {
			sendErr = s.out.SendFullSnapshot(peerID, payload)
		} else {
			sendErr = s.out.SendDeltaSnapshot(peerID, payload)
		}
		if sendErr != nil {
			logger.Warn("snapshot send failed", "peer", peerID, "signature", snap.Signature, "err", sendErr)
			continue
		}

		if s.rec != nil {
			if err := s.rec.Record(snap.Signature, peerID, kind, payload, time.Now().Unix()); err != nil {
				logger.Warn("frame recording failed", "peer", peerID, "err", err)
			}
		}
	}
	return nil
}
