package transport

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"
)

// falseVal is shared by every unreliable data channel's Ordered field; pion
// takes a *bool so a reusable pointer avoids an allocation per peer.
var falseVal = false

// zeroRetransmits configures a data channel that drops rather than resends
// a lost frame — the defining property of the unreliable channel.
var zeroRetransmits uint16 = 0

// Offer is the SDP an initiating side sends to the signaling channel to
// start a connection; ICE candidates are trickled separately through
// AddICECandidate.
type Offer struct {
	SDP webrtc.SessionDescription `json:"sdp"`
}

// Answer is the remote side's response to an Offer.
type Answer struct {
	SDP webrtc.SessionDescription `json:"sdp"`
}

// Connect creates a new Peer as the offering side: it opens both data
// channels locally and returns the offer SDP for out-of-band signaling
// (e.g. a lobby server websocket) to the remote peer. Call SetAnswer with
// the remote's response once it arrives.
func (m *Manager) Connect(peerID string) (*Peer, Offer, error) {
	pc, err := m.newPeerConnection()
	if err != nil {
		return nil, Offer{}, fmt.Errorf("transport: new peer connection: %w", err)
	}

	p := &Peer{ID: peerID, pc: pc}
	m.wireConnectionState(p)

	reliable, err := pc.CreateDataChannel("reliable", nil)
	if err != nil {
		pc.Close()
		return nil, Offer{}, fmt.Errorf("transport: create reliable channel: %w", err)
	}
	p.reliable = reliable
	m.wireDataChannel(p, Reliable, reliable)

	unreliable, err := pc.CreateDataChannel("unreliable", &webrtc.DataChannelInit{
		Ordered:        &falseVal,
		MaxRetransmits: &zeroRetransmits,
	})
	if err != nil {
		pc.Close()
		return nil, Offer{}, fmt.Errorf("transport: create unreliable channel: %w", err)
	}
	p.unreliable = unreliable
	m.wireDataChannel(p, Unreliable, unreliable)

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		pc.Close()
		return nil, Offer{}, fmt.Errorf("transport: create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		pc.Close()
		return nil, Offer{}, fmt.Errorf("transport: set local description: %w", err)
	}

	m.mu.Lock()
	m.peers[peerID] = p
	m.mu.Unlock()

	return p, Offer{SDP: offer}, nil
}

// Accept creates a new Peer as the answering side in response to a
// received Offer. Both data channels are learned via OnDataChannel since
// the remote side created them.
func (m *Manager) Accept(peerID string, offer Offer) (*Peer, Answer, error) {
	pc, err := m.newPeerConnection()
	if err != nil {
		return nil, Answer{}, fmt.Errorf("transport: new peer connection: %w", err)
	}

	p := &Peer{ID: peerID, pc: pc}
	m.wireConnectionState(p)

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		switch dc.Label() {
		case "reliable":
			p.reliable = dc
			m.wireDataChannel(p, Reliable, dc)
		case "unreliable":
			p.unreliable = dc
			m.wireDataChannel(p, Unreliable, dc)
		}
	})

	if err := pc.SetRemoteDescription(offer.SDP); err != nil {
		pc.Close()
		return nil, Answer{}, fmt.Errorf("transport: set remote description: %w", err)
	}
	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		pc.Close()
		return nil, Answer{}, fmt.Errorf("transport: create answer: %w", err)
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		pc.Close()
		return nil, Answer{}, fmt.Errorf("transport: set local description: %w", err)
	}

	m.mu.Lock()
	m.peers[peerID] = p
	m.mu.Unlock()

	return p, Answer{SDP: answer}, nil
}

// SetAnswer completes the offering side's handshake once the remote's
// Answer has arrived over the signaling channel.
func (m *Manager) SetAnswer(peerID string, answer Answer) error {
	p, ok := m.Peer(peerID)
	if !ok {
		return fmt.Errorf("transport: unknown peer %s", peerID)
	}
	return p.pc.SetRemoteDescription(answer.SDP)
}

// AddICECandidate forwards a trickled candidate to the named peer.
func (m *Manager) AddICECandidate(peerID string, candidate webrtc.ICECandidateInit) error {
	p, ok := m.Peer(peerID)
	if !ok {
		return fmt.Errorf("transport: unknown peer %s", peerID)
	}
	return p.pc.AddICECandidate(candidate)
}

func (m *Manager) wireConnectionState(p *Peer) {
	p.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		switch s {
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed, webrtc.PeerConnectionStateDisconnected:
			m.mu.Lock()
			delete(m.peers, p.ID)
			cb := m.onDisconnected
			m.mu.Unlock()
			if cb != nil {
				cb(p.ID)
			}
		}
	})
}

func (m *Manager) wireDataChannel(p *Peer, ch Channel, dc *webrtc.DataChannel) {
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		m.mu.Lock()
		cb := m.onBytes
		m.mu.Unlock()
		if cb != nil {
			cb(p.ID, ch, msg.Data)
		}
	})
	dc.OnOpen(func() {
		if p.reliable == nil || p.unreliable == nil {
			return
		}
		if p.reliable.ReadyState() != webrtc.DataChannelStateOpen {
			return
		}
		if p.unreliable.ReadyState() != webrtc.DataChannelStateOpen {
			return
		}
		m.mu.Lock()
		cb := m.onConnected
		m.mu.Unlock()
		if cb != nil {
			cb(p.ID)
		}
	})
}

// MarshalOffer and MarshalAnswer exist purely so a signaling transport
// that only speaks bytes (a websocket relay, say) can round-trip these
// values without depending on this package's types directly.
func MarshalOffer(o Offer) ([]byte, error)  { return json.Marshal(o) }
func UnmarshalOffer(b []byte) (Offer, error) {
	var o Offer
	err := json.Unmarshal(b, &o)
	return o, err
}
func MarshalAnswer(a Answer) ([]byte, error) { return json.Marshal(a) }
func UnmarshalAnswer(b []byte) (Answer, error) {
	var a Answer
	err := json.Unmarshal(b, &a)
	return a, err
}
