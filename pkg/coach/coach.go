package coach

import (
	"context"

	"github.com/lenscoach/lenscoach/pkg/analyze"
	"github.com/lenscoach/lenscoach/pkg/config"
	"github.com/lenscoach/lenscoach/pkg/logger"
	"github.com/lenscoach/lenscoach/pkg/monitoring"
	"github.com/lenscoach/lenscoach/pkg/network/httpx"
	"github.com/lenscoach/lenscoach/pkg/service"
	"github.com/lenscoach/lenscoach/pkg/session"
	"github.com/lenscoach/lenscoach/pkg/webrtc"
)

// Coach is the application service: the HTTP front, the signaling hub
// and the session registry glued together.
type Coach struct {
	conf     config.Config
	log      *logger.Logger
	analyzer *analyze.Analyzer
	hub      *Hub
	sessions *session.Registry
	services service.Group
	watcher  *config.Watcher
}

func New(conf config.Config, log *logger.Logger) (*Coach, error) {
	analyzer := analyze.New(conf.Coach)
	sessions := session.NewRegistry(log)
	api, err := webrtc.NewApiFactory(conf.Webrtc, log, nil)
	if err != nil {
		return nil, err
	}
	hub := NewHub(conf.Coach, api, analyzer, sessions, log)

	address := conf.Server.Address
	if conf.Server.Https {
		address = conf.Server.Tls.Address
	}
	server, err := httpx.NewServer(
		address,
		func(*httpx.Server) httpx.Handler {
			h := httpx.NewServeMux("")
			h.Handle("/", index(conf.Coach, log))
			h.Handle("/static/", static("./web"))
			h.HandleFunc("/signal", hub.handleSignal)
			h.HandleFunc("/signal/ws", hub.handleSignalWs)
			return h
		},
		httpx.WithServerConfig(conf.Server),
		httpx.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	c := &Coach{conf: conf, log: log, analyzer: analyzer, hub: hub, sessions: sessions}
	c.services.Add(server)
	c.services.AddIf(conf.Monitoring.IsEnabled(), monitoring.New(conf.Monitoring, "coach", log))
	return c, nil
}

func (c *Coach) Run() {
	c.services.Start()
	w, err := config.NewWatcher("", c.log, func(tuning config.Coach) {
		c.analyzer.Tune(tuning)
		c.hub.Tune(tuning)
		c.sessions.ForEach(func(s *session.Session) { s.Tune(tuning.AdvisoryInterval) })
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("live tuning is off")
		return
	}
	c.watcher = w
}

func (c *Coach) Shutdown(ctx context.Context) error {
	if c.watcher != nil {
		_ = c.watcher.Stop()
	}
	c.sessions.CloseAll()
	return c.services.Shutdown(ctx)
}
