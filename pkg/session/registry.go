package session

import (
	"github.com/lenscoach/lenscoach/pkg/com"
	"github.com/lenscoach/lenscoach/pkg/logger"
)

// Registry tracks the active sessions. It is the only structure
// shared between concurrent session tasks, all mutation goes through
// the map lock.
type Registry struct {
	sessions *com.Map[com.Uid, *Session]
	log      *logger.Logger
}

func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{sessions: com.NewMap[com.Uid, *Session](), log: log}
}

func (r *Registry) Add(s *Session) {
	r.sessions.Put(s.Id(), s)
	activeSessions.Inc()
	r.log.Info().Msgf("session %v registered (%v active)", s.Id().Short(), r.sessions.Len())
}

// Remove deregisters the session. It is driven by Session.Close and
// therefore runs at most once per session.
func (r *Registry) Remove(s *Session) {
	if !r.sessions.Has(s.Id()) {
		return
	}
	r.sessions.RemoveByKey(s.Id())
	activeSessions.Dec()
	r.log.Info().Msgf("session %v removed (%v active)", s.Id().Short(), r.sessions.Len())
}

func (r *Registry) Len() int { return r.sessions.Len() }

// ForEach runs fn over every active session.
func (r *Registry) ForEach(fn func(*Session)) { r.sessions.ForEach(fn) }

// CloseAll closes every active session, used on shutdown.
func (r *Registry) CloseAll() {
	var list []*Session
	r.sessions.ForEach(func(s *Session) { list = append(list, s) })
	for _, s := range list {
		s.Close()
	}
}
