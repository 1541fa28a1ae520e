package coach

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	pion "github.com/pion/webrtc/v3"

	"github.com/lenscoach/lenscoach/pkg/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type wsMessage struct {
	T       string          `json:"t"` // offer | answer | ice | error
	Payload json.RawMessage `json:"payload,omitempty"`
}

// handleSignalWs is the trickle variant of signaling: the answer goes
// back right away and candidates flow both ways as they are gathered.
// The socket carries signaling only, an established session outlives it.
func (h *Hub) handleSignalWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("ws upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	// gorilla allows one concurrent writer only
	var wmu sync.Mutex
	send := func(m wsMessage) {
		wmu.Lock()
		defer wmu.Unlock()
		if err := conn.WriteJSON(m); err != nil {
			h.log.Debug().Err(err).Msg("ws send failed")
		}
	}
	fail := func(reason string) {
		payload, _ := json.Marshal(reason)
		send(wsMessage{T: "error", Payload: payload})
	}

	var (
		peer *pion.PeerConnection
		s    *session.Session
	)
	defer func() {
		if s != nil && s.State() != session.Connected {
			// signaling died before the handshake finished,
			// this peer will never connect
			s.Close()
		}
	}()

	for {
		var m wsMessage
		if err := conn.ReadJSON(&m); err != nil {
			return
		}
		switch m.T {
		case "offer":
			if peer != nil {
				fail("already negotiating")
				continue
			}
			var offer pion.SessionDescription
			if err := json.Unmarshal(m.Payload, &offer); err != nil || offer.Type != pion.SDPTypeOffer {
				fail("malformed offer")
				continue
			}
			peer, s, err = h.connect()
			if err != nil {
				h.log.Error().Err(err).Msg("peer init failed")
				fail("negotiation failed")
				return
			}
			peer.OnICECandidate(func(c *pion.ICECandidate) {
				if c == nil {
					return
				}
				payload, _ := json.Marshal(c.ToJSON())
				send(wsMessage{T: "ice", Payload: payload})
			})
			answer, err := h.answerTrickle(peer, offer)
			if err != nil {
				negotiationFailures.Inc()
				h.log.Error().Err(err).Msg("signaling failed")
				s.Close()
				fail("negotiation failed")
				return
			}
			if err = h.register(s); err != nil {
				h.log.Debug().Err(err).Msg("signaling failed")
				fail("negotiation failed")
				return
			}
			payload, _ := json.Marshal(answer)
			send(wsMessage{T: "answer", Payload: payload})
		case "ice":
			if peer == nil {
				continue
			}
			var cand pion.ICECandidateInit
			if err := json.Unmarshal(m.Payload, &cand); err != nil {
				fail("malformed candidate")
				continue
			}
			if err := peer.AddICECandidate(cand); err != nil {
				h.log.Debug().Err(err).Msg("candidate rejected")
			}
		default:
			fail("unknown message")
		}
	}
}

func (h *Hub) answerTrickle(peer *pion.PeerConnection, offer pion.SessionDescription) (*pion.SessionDescription, error) {
	if err := peer.SetRemoteDescription(offer); err != nil {
		return nil, err
	}
	answer, err := peer.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}
	if err = peer.SetLocalDescription(answer); err != nil {
		return nil, err
	}
	return peer.LocalDescription(), nil
}
