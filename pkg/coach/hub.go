package coach

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	pion "github.com/pion/webrtc/v3"

	"github.com/lenscoach/lenscoach/pkg/analyze"
	"github.com/lenscoach/lenscoach/pkg/config"
	"github.com/lenscoach/lenscoach/pkg/decoder/vpx"
	"github.com/lenscoach/lenscoach/pkg/logger"
	"github.com/lenscoach/lenscoach/pkg/media"
	"github.com/lenscoach/lenscoach/pkg/session"
	"github.com/lenscoach/lenscoach/pkg/webrtc"
)

var ErrNegotiation = errors.New("negotiation failed")

// Hub turns signaling requests into live sessions. It owns no session
// state itself, the registry does.
type Hub struct {
	conf     atomic.Pointer[config.Coach]
	api      *webrtc.ApiFactory
	analyzer *analyze.Analyzer
	sessions *session.Registry
	log      *logger.Logger
}

func NewHub(conf config.Coach, api *webrtc.ApiFactory, analyzer *analyze.Analyzer, sessions *session.Registry, log *logger.Logger) *Hub {
	h := &Hub{api: api, analyzer: analyzer, sessions: sessions, log: log}
	h.conf.Store(&conf)
	return h
}

// Tune swaps the settings for sessions created from now on.
func (h *Hub) Tune(conf config.Coach) { h.conf.Store(&conf) }

// connect builds a fresh peer connection wrapped into a session and
// wires the track, channel and state callbacks. The caller still has
// to negotiate and register it.
func (h *Hub) connect() (*pion.PeerConnection, *session.Session, error) {
	conf := *h.conf.Load()
	peer, err := h.api.NewPeer()
	if err != nil {
		return nil, nil, err
	}
	s := session.New(peer, h.analyzer, conf.AdvisoryInterval, h.log)
	ctx, cancel := context.WithCancel(context.Background())
	s.OnClose(func(s *session.Session) {
		cancel()
		h.sessions.Remove(s)
	})
	log := h.log.Wrap(h.log.With().Str("sid", s.Id().Short()))

	peer.OnTrack(func(track *pion.TrackRemote, _ *pion.RTPReceiver) {
		if track.Kind() != pion.RTPCodecTypeVideo {
			log.Debug().Msgf("draining %v track", track.Kind())
			for {
				if _, _, err := track.ReadRTP(); err != nil {
					return
				}
			}
		}
		dec, err := vpx.NewDecoder()
		if err != nil {
			log.Error().Err(err).Msg("decoder init failed")
			s.Close()
			return
		}
		if err := s.StartAnalysis(media.NewReceiver(track, dec, log)); err != nil {
			log.Warn().Err(err).Msgf("video track [%v] rejected", track.ID())
			_ = dec.Close()
			return
		}
		media.RequestKeyFrames(ctx, peer, uint32(track.SSRC()), conf.PliInterval, log)
		log.Info().Msgf("video track [%v] bound, %v", track.ID(), track.Codec().MimeType)
	})
	peer.OnDataChannel(func(dc *pion.DataChannel) {
		if dc.Label() != conf.FeedbackLabel {
			log.Debug().Msgf("unexpected channel [%v] ignored", dc.Label())
			return
		}
		dc.OnOpen(func() { s.AttachFeedback(dc) })
	})
	peer.OnConnectionStateChange(func(state pion.PeerConnectionState) {
		log.Debug().Msgf("peer connection state: %v", state)
		switch state {
		case pion.PeerConnectionStateConnected:
			s.SetConnected()
		case pion.PeerConnectionStateDisconnected,
			pion.PeerConnectionStateFailed,
			pion.PeerConnectionStateClosed:
			s.Close()
		}
	})
	return peer, s, nil
}

// handleOffer runs the non-trickle exchange: the answer returned here
// already carries every gathered candidate, so a single HTTP
// round-trip is enough for signaling.
func (h *Hub) handleOffer(offer pion.SessionDescription) (*pion.SessionDescription, error) {
	peer, s, err := h.connect()
	if err != nil {
		return nil, err
	}
	answer, err := negotiate(peer, offer)
	if err != nil {
		negotiationFailures.Inc()
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrNegotiation, err)
	}
	if err = h.register(s); err != nil {
		return nil, err
	}
	return answer, nil
}

// register puts the session into the registry. The peer may die while
// the answer is still in flight, firing its close callback before the
// session is registered; re-checking the state after the insert makes
// sure such a session never stays behind in the map.
func (h *Hub) register(s *session.Session) error {
	h.sessions.Add(s)
	if s.State() == session.Closed {
		h.sessions.Remove(s)
		return fmt.Errorf("%w: peer closed during negotiation", ErrNegotiation)
	}
	return nil
}

func negotiate(peer *pion.PeerConnection, offer pion.SessionDescription) (*pion.SessionDescription, error) {
	if err := peer.SetRemoteDescription(offer); err != nil {
		return nil, err
	}
	answer, err := peer.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}
	gathered := pion.GatheringCompletePromise(peer)
	if err = peer.SetLocalDescription(answer); err != nil {
		return nil, err
	}
	<-gathered
	return peer.LocalDescription(), nil
}
