package session

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lenscoach/lenscoach/pkg/analyze"
	"github.com/lenscoach/lenscoach/pkg/com"
	"github.com/lenscoach/lenscoach/pkg/frame"
	"github.com/lenscoach/lenscoach/pkg/logger"
	"github.com/lenscoach/lenscoach/pkg/throttle"
)

type State int32

const (
	Negotiating State = iota
	Connected
	Closed
)

func (s State) String() string {
	switch s {
	case Negotiating:
		return "negotiating"
	case Connected:
		return "connected"
	case Closed:
		return "closed"
	}
	return "unknown"
}

var (
	ErrTrackTaken = errors.New("video track already attached")
	ErrClosed     = errors.New("session is closed")
)

// FrameSource delivers decoded frames for one video track.
type FrameSource interface {
	NextFrame() (*frame.Video, error)
	Close() error
}

// Sender is the outgoing side channel for advisories.
// *webrtc.DataChannel satisfies it.
type Sender interface {
	Label() string
	Send(data []byte) error
}

// Session owns one negotiated peer connection end to end: its video
// track, its feedback channel, and the single analysis loop between them.
type Session struct {
	id       com.Uid
	conn     io.Closer
	analyzer *analyze.Analyzer
	limit    *throttle.Limiter
	log      *logger.Logger

	mu         sync.Mutex
	feedback   Sender
	trackBound bool

	state     atomic.Int32
	closeOnce sync.Once
	done      chan struct{}
	onClose   func(*Session)
}

// New creates a Session in the Negotiating state. The conn param is
// closed together with the session and may be nil.
func New(conn io.Closer, analyzer *analyze.Analyzer, interval time.Duration, log *logger.Logger) *Session {
	id := com.NewUid()
	return &Session{
		id:       id,
		conn:     conn,
		analyzer: analyzer,
		limit:    throttle.NewLimiter(interval),
		done:     make(chan struct{}),
		log:      log.Wrap(log.With().Str("sid", id.Short())),
	}
}

func (s *Session) Id() com.Uid           { return s.id }
func (s *Session) State() State          { return State(s.state.Load()) }
func (s *Session) Done() <-chan struct{} { return s.done }

// SetConnected marks the handshake as complete.
// It has no effect on a closed session.
func (s *Session) SetConnected() {
	s.state.CompareAndSwap(int32(Negotiating), int32(Connected))
}

// Tune updates the advisory interval of the live session.
func (s *Session) Tune(interval time.Duration) { s.limit.SetInterval(interval) }

// OnClose sets the callback fired exactly once during close.
func (s *Session) OnClose(fn func(*Session)) { s.onClose = fn }

// StartAnalysis binds the one video source of the session and spawns
// its analysis loop. A second call is rejected, a session has exactly
// one track and one loop.
func (s *Session) StartAnalysis(src FrameSource) error {
	s.mu.Lock()
	if s.trackBound {
		s.mu.Unlock()
		return ErrTrackTaken
	}
	if s.State() == Closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.trackBound = true
	s.mu.Unlock()

	go s.loop(src)
	return nil
}

// AttachFeedback records the side channel for outgoing advisories.
// Until it is called, computed advisories are silently dropped.
// A session routes through one channel only, later attaches are ignored.
func (s *Session) AttachFeedback(ch Sender) {
	s.mu.Lock()
	if s.feedback != nil {
		s.mu.Unlock()
		s.log.Debug().Msgf("extra feedback channel [%v] ignored", ch.Label())
		return
	}
	s.feedback = ch
	s.mu.Unlock()
	s.log.Debug().Msgf("feedback channel [%v] attached", ch.Label())
}

// loop is the per-session hot path: wait for a frame, analyze, offer
// the result to the throttle. It exits on session close or when the
// source ends, whichever comes first.
func (s *Session) loop(src FrameSource) {
	defer func() { _ = src.Close() }()
	s.log.Debug().Msg("analysis loop started")
	for {
		select {
		case <-s.done:
			return
		default:
		}
		f, err := src.NextFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Debug().Err(err).Msg("track ended")
			}
			s.Close()
			return
		}
		start := time.Now()
		res, err := s.analyzer.Analyze(f)
		if err != nil {
			// one bad frame never aborts the loop
			framesDropped.Inc()
			continue
		}
		analysisDuration.Observe(time.Since(start).Seconds())
		framesAnalyzed.Inc()
		s.dispatch(res)
	}
}

// dispatch sends at most one advisory per throttle interval and drops
// everything else. Best effort, no buffering, no retries.
func (s *Session) dispatch(r analyze.Result) {
	s.mu.Lock()
	ch := s.feedback
	s.mu.Unlock()
	if ch == nil || !s.limit.Allow() {
		advisoriesDropped.Inc()
		return
	}
	payload, err := newAdvisory(r).Encode()
	if err != nil {
		advisoriesDropped.Inc()
		return
	}
	if err = ch.Send(payload); err != nil {
		// a failed send is just a lost advisory, the connection
		// state callback decides if the session itself is dead
		s.log.Debug().Err(err).Msg("advisory dropped")
		advisoriesDropped.Inc()
		return
	}
	advisoriesSent.Inc()
}

// Close tears the session down exactly once. Safe to call from
// multiple goroutines and multiple triggers, later calls are no-ops.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(Closed))
		close(s.done)
		s.mu.Lock()
		s.feedback = nil
		s.mu.Unlock()
		if s.conn != nil {
			_ = s.conn.Close()
		}
		if s.onClose != nil {
			s.onClose(s)
		}
		s.log.Debug().Msg("session closed")
	})
}
