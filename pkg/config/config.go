package config

import (
	goflag "flag"
	"time"

	flag "github.com/spf13/pflag"
)

type (
	Config struct {
		Coach      Coach
		Server     Server
		Webrtc     Webrtc
		Monitoring Monitoring
	}
	Coach struct {
		Debug bool
		// exposure bands, normalized luminance
		DarkMax   float64 `fig:"darkMax" default:"0.45"`
		BrightMin float64 `fig:"brightMin" default:"0.65"`
		// horizon tilt
		TiltMaxDeg float64 `fig:"tiltMaxDeg" default:"7"`
		MaxLines   int     `fig:"maxLines" default:"8"`
		// frames wider than this are downscaled before edge detection
		AnalysisWidth int `fig:"analysisWidth" default:"320"`
		// advisory channel
		FeedbackLabel    string        `fig:"feedbackLabel" default:"coach-feedback"`
		AdvisoryInterval time.Duration `fig:"advisoryInterval" default:"500ms"`
		// keyframe request period for the inbound video track
		PliInterval time.Duration `fig:"pliInterval" default:"3s"`
		LockFile    string        `fig:"lockFile"`
	}
	Server struct {
		Address string `fig:"address" default:":8000"`
		Https   bool
		Tls     struct {
			Address   string `fig:"address" default:":443"`
			Domain    string
			HttpsCert string `fig:"httpsCert"`
			HttpsKey  string `fig:"httpsKey"`
		}
	}
	Webrtc struct {
		DisableDefaultInterceptors bool
		IceServers                 []IceServer
		IcePorts                   struct {
			Min uint16
			Max uint16
		}
		IceIpMap   string `fig:"iceIpMap"`
		SinglePort int    `fig:"singlePort"`
		LogLevel   int    `fig:"logLevel" default:"3"`
	}
	IceServer struct {
		Urls       string `json:"urls,omitempty"`
		Username   string `json:"username,omitempty"`
		Credential string `json:"credential,omitempty"`
	}
	Monitoring struct {
		Port             int    `fig:"port" default:"6601"`
		URLPrefix        string `fig:"urlPrefix" default:"/coach"`
		MetricEnabled    bool   `fig:"metricEnabled"`
		ProfilingEnabled bool   `fig:"profilingEnabled"`
	}
)

func (w *Webrtc) HasPortRange() bool  { return w.IcePorts.Min > 0 && w.IcePorts.Max > 0 }
func (w *Webrtc) HasSinglePort() bool { return w.SinglePort > 0 }
func (w *Webrtc) HasIceIpMap() bool   { return w.IceIpMap != "" }

func (m *Monitoring) IsEnabled() bool { return m.MetricEnabled || m.ProfilingEnabled }

// NewConfig loads a config from a file in one of the default directories.
func NewConfig() (conf Config) {
	if err := LoadConfig(&conf, ""); err != nil {
		panic(err)
	}
	return
}

// ParseFlags registers and parses the command-line overrides.
func (c *Config) ParseFlags() {
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	flag.BoolVarP(&c.Coach.Debug, "debug", "d", c.Coach.Debug, "debug logging")
	flag.StringVar(&c.Server.Address, "address", c.Server.Address, "HTTP server address")
	flag.BoolVarP(&c.Monitoring.MetricEnabled, "monitoring.metric", "m", c.Monitoring.MetricEnabled, "enable Prometheus metrics")
	flag.BoolVarP(&c.Monitoring.ProfilingEnabled, "monitoring.pprof", "p", c.Monitoring.ProfilingEnabled, "enable Go pprof")
	flag.IntVar(&c.Monitoring.Port, "monitoring.port", c.Monitoring.Port, "monitoring server port")
	flag.Parse()
}
