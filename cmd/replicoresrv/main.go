// Command replicoresrv runs a minimal authoritative replication host: it
// loads the YAML config (hot-reloading on change), opens the frame
// recorder, accepts WebRTC peer connections over a signaling HTTP
// endpoint, and drives the tick loop end to end — consuming client inputs,
// simulating one avatar per connected peer, and dispatching full or delta
// snapshots each tick.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapnet/replicore/internal/bwlimit"
	"github.com/snapnet/replicore/internal/inputsync"
	"github.com/snapnet/replicore/internal/logger"
	"github.com/snapnet/replicore/internal/netconfig"
	"github.com/snapnet/replicore/internal/record"
	"github.com/snapnet/replicore/internal/replsync"
	"github.com/snapnet/replicore/internal/schema"
	"github.com/snapnet/replicore/internal/snapshot"
	"github.com/snapnet/replicore/internal/tick"
	"github.com/snapnet/replicore/internal/transport"
	"github.com/snapnet/replicore/internal/wire"
)

// Message tags for the unreliable channel's envelope. The core's wire
// formats carry no self-description, so the transport adapter prefixes one
// byte saying which decoder a payload belongs to.
const (
	msgFullSnapshot  byte = 0x01
	msgDeltaSnapshot byte = 0x02
	msgInput         byte = 0x03
	msgAck           byte = 0x04
)

func main() {
	root := &cobra.Command{
		Use:   "replicoresrv",
		Short: "authoritative replication host",
		RunE:  run,
	}

	root.Flags().String("addr", ":8090", "signaling listen address")
	root.Flags().String("config", "replicore.yaml", "path to config file")
	root.Flags().String("db", "replicore.db", "frame recording database path")
	root.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	configPath, _ := cmd.Flags().GetString("config")
	dbPath, _ := cmd.Flags().GetString("db")
	logLevel, _ := cmd.Flags().GetString("log-level")

	if err := logger.Init(logLevel, ""); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	cfgMgr, err := netconfig.NewManager(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defer cfgMgr.Close()
	cfgMgr.OnLoad(func(cfg netconfig.Config) {
		logger.Info("config reloaded", "tick_rate", cfg.TickRate, "full_snap_threshold", cfg.FullSnapThreshold)
	})
	cfg := cfgMgr.Current()

	rec, err := record.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open recorder: %w", err)
	}
	defer rec.Close()

	reg := schema.NewRegistry()
	avatarType, err := reg.Register("avatar", []schema.FieldDescriptor{
		{Name: "pos", Type: schema.Vector2, Comparer: schema.Vector2AutoComparer()},
		{Name: "hp", Type: schema.Int, Comparer: schema.GenericComparer()},
	})
	if err != nil {
		return fmt.Errorf("register avatar type: %w", err)
	}

	inputReg := inputsync.NewRegistry()
	inputReg.RegisterAction("move_x", true)
	inputReg.RegisterAction("move_y", true)
	inputReg.RegisterAction("jump", false)
	inputReg.SetQuantizeAnalog(cfg.QuantizeAnalog)
	inputReg.SetUseMouseRelative(cfg.UseMouseRelative)
	inputReg.SetUseMouseSpeed(cfg.UseMouseSpeed)

	mgr := transport.NewManager(nil)
	srv := replsync.NewServer(reg, inputReg, cfg, &peerOutbound{mgr: mgr})
	srv.SetRecorder(rec)
	srv.SetBandwidthGate(bwlimit.NewLimiter(cfg.BandwidthBytesPerSec, cfg.BandwidthBurst))

	ctrl := tick.NewController(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctrl.SetSnapshotFinishedHook(func(s *snapshot.Snapshot) error {
		return srv.DispatchSnapshot(ctx, s)
	})

	// Every transport callback is queued onto the tick goroutine; nothing
	// in the core runs anywhere else.
	loopCh := make(chan func(), 256)
	enqueue := func(fn func()) {
		select {
		case loopCh <- fn:
		default:
			logger.Warn("tick loop backlog full, dropping transport callback")
		}
	}

	mgr.OnPeerConnected(func(peerID string) {
		enqueue(func() {
			logger.Info("peer connected", "peer", peerID)
			srv.AddClient(peerID)
			srv.MarkReady(peerID)
		})
	})
	mgr.OnPeerDisconnected(func(peerID string) {
		enqueue(func() {
			logger.Info("peer disconnected", "peer", peerID)
			srv.RemoveClient(peerID)
		})
	})
	mgr.OnBytes(func(peerID string, ch transport.Channel, data []byte) {
		if len(data) == 0 {
			return
		}
		tag, payload := data[0], data[1:]
		enqueue(func() {
			switch tag {
			case msgInput:
				if err := srv.HandleInputPacket(peerID, payload); err != nil {
					logger.Warn("input packet dropped", "peer", peerID, "err", err)
				}
			case msgAck:
				b := wire.NewBufferFrom(payload)
				sig, err := b.ReadUint32()
				if err != nil {
					logger.Warn("ack dropped", "peer", peerID, "err", err)
					return
				}
				srv.HandleAck(peerID, sig)
			default:
				logger.Debug("unhandled message", "peer", peerID, "tag", tag, "channel", ch.String())
			}
		})
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/signal/offer", signalOfferHandler(mgr))

	httpSrv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("replicoresrv listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	go tickLoop(ctx, cfg, ctrl, srv, avatarType, loopCh)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return httpSrv.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// avatar is the whole of this reference server's "game": one movable
// entity per connected peer, steered by that peer's analog inputs.
type avatar struct {
	uid uint32
	pos wire.Vector2
	hp  int32
}

func tickLoop(ctx context.Context, cfg netconfig.Config, ctrl *tick.Controller, srv *replsync.Server, avatarType *schema.EntityType, loopCh <-chan func()) {
	interval := time.Second / time.Duration(cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	avatars := make(map[string]*avatar)
	var nextUID uint32

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-loopCh:
			fn()
		case <-ticker.C:
			snap, err := ctrl.StartTick(0)
			if err != nil {
				logger.Error("start tick failed", "err", err)
				continue
			}
			for peerID := range avatars {
				if srv.Tracker(peerID) == nil {
					delete(avatars, peerID)
				}
			}
			for _, peerID := range srv.Peers() {
				av, ok := avatars[peerID]
				if !ok {
					nextUID++
					av = &avatar{uid: nextUID, hp: 100}
					avatars[peerID] = av
				}
				in := srv.TakeInput(peerID)
				av.pos.X += in.Analog["move_x"] * 5
				av.pos.Y += in.Analog["move_y"] * 5
				if err := ctrl.AddEntity(avatarType.Name, &snapshot.EntityState{
					UID:    av.uid,
					Type:   avatarType,
					Values: []any{av.pos, av.hp},
				}); err != nil {
					logger.Error("add entity failed", "peer", peerID, "err", err)
				}
			}
			if _, err := ctrl.FinishTick(); err != nil {
				logger.Error("finish tick failed", "signature", snap.Signature, "err", err)
			}
		}
	}
}

// peerOutbound adapts the transport manager to replsync's Outbound: both
// snapshot shapes go over the unreliable channel with the one-byte tag the
// receiving side demultiplexes on.
type peerOutbound struct {
	mgr *transport.Manager
}

func (o *peerOutbound) SendFullSnapshot(peerID string, payload []byte) error {
	return o.send(peerID, msgFullSnapshot, payload)
}

func (o *peerOutbound) SendDeltaSnapshot(peerID string, payload []byte) error {
	return o.send(peerID, msgDeltaSnapshot, payload)
}

func (o *peerOutbound) send(peerID string, tag byte, payload []byte) error {
	p, ok := o.mgr.Peer(peerID)
	if !ok {
		return fmt.Errorf("unknown peer %s", peerID)
	}
	framed := make([]byte, 0, len(payload)+1)
	framed = append(framed, tag)
	framed = append(framed, payload...)
	return p.Send(transport.Unreliable, framed)
}

// signalOfferHandler is the bare-minimum signaling endpoint: a peer posts
// an Offer with its chosen id and gets the corresponding Answer back.
// Trickled ICE candidates are expected over a companion endpoint a real
// deployment would add; this reference server only demonstrates the
// handshake itself.
func signalOfferHandler(mgr *transport.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		peerID := r.URL.Query().Get("peer")
		if peerID == "" {
			http.Error(w, "missing peer query param", http.StatusBadRequest)
			return
		}

		var offer transport.Offer
		if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
			http.Error(w, "bad offer: "+err.Error(), http.StatusBadRequest)
			return
		}

		_, answer, err := mgr.Accept(peerID, offer)
		if err != nil {
			http.Error(w, "accept failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(answer)
	}
}
