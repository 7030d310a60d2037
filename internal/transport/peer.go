// Package transport is the reference WebRTC adapter satisfying the
// send_unreliable/send_reliable contract: one peer connection per remote
// player, each carrying an unordered no-retransmit data channel for
// replicated frames and an ordered, reliable one for events and
// custom-property batches.
package transport

import (
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
)

// Channel names which of a peer's two data channels a message travels on.
type Channel int

const (
	// Unreliable carries snapshot and input frames: unordered, no
	// retransmission, so a stale frame is simply dropped rather than
	// delaying everything behind it.
	Unreliable Channel = iota
	// Reliable carries events and custom-property batches, which must
	// arrive exactly once and in order.
	Reliable
)

func (c Channel) String() string {
	if c == Reliable {
		return "reliable"
	}
	return "unreliable"
}

// Peer wraps one webrtc.PeerConnection and its two data channels for a
// single remote player.
type Peer struct {
	ID string

	pc         *webrtc.PeerConnection
	reliable   *webrtc.DataChannel
	unreliable *webrtc.DataChannel
}

// Send writes bytes to the named channel. Sending on a channel that has
// not yet opened returns the underlying pion error.
func (p *Peer) Send(ch Channel, data []byte) error {
	var dc *webrtc.DataChannel
	if ch == Reliable {
		dc = p.reliable
	} else {
		dc = p.unreliable
	}
	if dc == nil {
		return fmt.Errorf("transport: %s channel not yet open for peer %s", ch, p.ID)
	}
	return dc.Send(data)
}

// Close tears down the peer connection and both data channels.
func (p *Peer) Close() error {
	return p.pc.Close()
}

// BytesHandler receives every message arriving on either data channel.
type BytesHandler func(peerID string, ch Channel, data []byte)

// Manager tracks every connected Peer and the shared ICE server list new
// connections are configured with.
type Manager struct {
	mu         sync.Mutex
	peers      map[string]*Peer
	iceServers []webrtc.ICEServer

	onBytes        BytesHandler
	onConnected    func(peerID string)
	onDisconnected func(peerID string)
}

// NewManager returns a Manager configured with the given ICE servers (nil
// for a loopback/local-network-only setup, as used in tests).
func NewManager(iceServers []webrtc.ICEServer) *Manager {
	return &Manager{
		peers:      make(map[string]*Peer),
		iceServers: iceServers,
	}
}

// OnBytes registers the handler invoked for every inbound message on
// either channel.
func (m *Manager) OnBytes(fn BytesHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onBytes = fn
}

// OnPeerConnected registers a callback fired once both data channels for a
// peer have opened.
func (m *Manager) OnPeerConnected(fn func(peerID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConnected = fn
}

// OnPeerDisconnected registers a callback fired when a peer connection
// closes.
func (m *Manager) OnPeerDisconnected(fn func(peerID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisconnected = fn
}

// Peer returns a previously created/accepted peer by id.
func (m *Manager) Peer(id string) (*Peer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.peers[id]
	return p, ok
}

func (m *Manager) newPeerConnection() (*webrtc.PeerConnection, error) {
	return webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: m.iceServers})
}
