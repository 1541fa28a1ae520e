package analyze

import (
	"errors"
	"sync/atomic"

	"github.com/lenscoach/lenscoach/pkg/config"
	"github.com/lenscoach/lenscoach/pkg/frame"
)

var ErrBadFrame = errors.New("malformed frame")

// Result is the heuristic outcome for one analyzed frame.
type Result struct {
	Luma    float64 // normalized mean luminance, [0,1]
	TiltDeg float64 // mean deviation from the horizon, degrees
	Tip     string
}

// Analyzer computes per-frame exposure and horizon heuristics.
// It is stateless between frames and safe for concurrent use,
// tuning can be swapped at runtime.
type Analyzer struct {
	conf atomic.Pointer[config.Coach]
}

func New(conf config.Coach) *Analyzer {
	a := &Analyzer{}
	a.Tune(conf)
	return a
}

// Tune atomically replaces the analyzer settings.
func (a *Analyzer) Tune(conf config.Coach) { a.conf.Store(&conf) }

// Analyze runs the heuristics over one frame. A malformed frame
// yields ErrBadFrame and no result.
func (a *Analyzer) Analyze(f *frame.Video) (Result, error) {
	if f == nil || f.W <= 0 || f.H <= 0 || len(f.Pix) < f.W*f.H*3 {
		return Result{}, ErrBadFrame
	}
	conf := a.conf.Load()

	img := downscale(grayscale(f), conf.AnalysisWidth)
	luma := meanIntensity(img)

	w, h := img.Rect.Dx(), img.Rect.Dy()
	lines := houghLines(sobelEdges(img), w, h, conf.MaxLines, w/4)
	tilt := 0.0
	if len(lines) > 0 {
		for _, l := range lines {
			tilt += deviationFromHorizontal(l.angle())
		}
		tilt /= float64(len(lines))
	}

	tip := exposureTip(luma, conf)
	if tilt > conf.TiltMaxDeg {
		tip += "; " + TipLevelHorizon
	}
	return Result{Luma: luma, TiltDeg: tilt, Tip: tip}, nil
}
