package session

import (
	"encoding/json"
	"math"

	"github.com/lenscoach/lenscoach/pkg/analyze"
)

// Advisory is the wire unit of the feedback channel.
type Advisory struct {
	Tip     string  `json:"tip"`
	Luma    float64 `json:"luma"`     // 2 decimal places
	TiltDeg float64 `json:"tilt_deg"` // 1 decimal place
}

func newAdvisory(r analyze.Result) Advisory {
	return Advisory{
		Tip:     r.Tip,
		Luma:    math.Round(r.Luma*100) / 100,
		TiltDeg: math.Round(r.TiltDeg*10) / 10,
	}
}

func (a Advisory) Encode() ([]byte, error) { return json.Marshal(a) }
