package analyze

import (
	"math"
	"strings"
	"testing"

	"github.com/lenscoach/lenscoach/pkg/config"
	"github.com/lenscoach/lenscoach/pkg/frame"
)

func testConf() config.Coach {
	return config.Coach{
		DarkMax:       0.45,
		BrightMin:     0.65,
		TiltMaxDeg:    7,
		MaxLines:      8,
		AnalysisWidth: 320,
	}
}

func TestExposureBands(t *testing.T) {
	conf := testConf()
	tests := []struct {
		luma float64
		want string
	}{
		{0.0, TipTooDark},
		{0.449, TipTooDark},
		{0.45, TipWellExposed},
		{0.55, TipWellExposed},
		{0.65, TipWellExposed},
		{0.651, TipTooBright},
		{1.0, TipTooBright},
	}
	for _, test := range tests {
		if got := exposureTip(test.luma, &conf); got != test.want {
			t.Errorf("luma %v: got %q, want %q", test.luma, got, test.want)
		}
	}
}

func TestDeviationFromHorizontal(t *testing.T) {
	tests := []struct {
		deg  float64
		want float64
	}{
		{0, 0},
		{180, 0},
		{360, 0},
		{-90, 90},
		{90, 90},
		{45, 45},
		{-45, 45},
		{175, 5},
		{185, 5},
	}
	for _, test := range tests {
		if got := deviationFromHorizontal(test.deg); !near(got, test.want, 1e-9) {
			t.Errorf("deviation(%v) = %v, want %v", test.deg, got, test.want)
		}
	}
}

func TestAnalyzeFlatFrames(t *testing.T) {
	a := New(testConf())
	tests := []struct {
		fill byte
		tip  string
	}{
		{30, TipTooDark},
		{140, TipWellExposed},
		{220, TipTooBright},
	}
	for _, test := range tests {
		res, err := a.Analyze(flatFrame(320, 240, test.fill))
		if err != nil {
			t.Fatal(err)
		}
		if res.Tip != test.tip {
			t.Errorf("fill %v: got tip %q, want %q", test.fill, res.Tip, test.tip)
		}
		if res.TiltDeg != 0 {
			t.Errorf("fill %v: flat frame has tilt %v", test.fill, res.TiltDeg)
		}
		if !near(res.Luma, float64(test.fill)/255, 0.02) {
			t.Errorf("fill %v: luma %v", test.fill, res.Luma)
		}
	}
}

func TestAnalyzeHorizontalLine(t *testing.T) {
	a := New(testConf())
	f := flatFrame(320, 240, 0)
	for y := 118; y < 122; y++ {
		for x := 0; x < 320; x++ {
			setPix(f, x, y, 255)
		}
	}
	res, err := a.Analyze(f)
	if err != nil {
		t.Fatal(err)
	}
	if res.TiltDeg > 2 {
		t.Errorf("horizontal line tilt = %v", res.TiltDeg)
	}
	if strings.Contains(res.Tip, TipLevelHorizon) {
		t.Errorf("unexpected horizon tip: %q", res.Tip)
	}
}

func TestAnalyzeTiltedLine(t *testing.T) {
	a := New(testConf())
	f := flatFrame(320, 240, 0)
	// a thick diagonal at 45 degrees
	for i := 0; i < 238; i++ {
		for d := 0; d < 4; d++ {
			setPix(f, i+d, i, 255)
		}
	}
	res, err := a.Analyze(f)
	if err != nil {
		t.Fatal(err)
	}
	if !near(res.TiltDeg, 45, 6) {
		t.Errorf("diagonal tilt = %v, want ~45", res.TiltDeg)
	}
	if !strings.Contains(res.Tip, TipLevelHorizon) {
		t.Errorf("missing horizon tip: %q", res.Tip)
	}
}

func TestAnalyzeMalformedFrame(t *testing.T) {
	a := New(testConf())
	for _, f := range []*frame.Video{
		nil,
		{W: 10, H: 10, Pix: make([]byte, 5)},
		{W: 0, H: 0},
	} {
		if _, err := a.Analyze(f); err == nil {
			t.Errorf("expected an error for %+v", f)
		}
	}
}

func TestTuneSwapsBands(t *testing.T) {
	a := New(testConf())
	conf := testConf()
	conf.BrightMin = 0.4
	a.Tune(conf)
	res, err := a.Analyze(flatFrame(64, 48, 140))
	if err != nil {
		t.Fatal(err)
	}
	if res.Tip != TipTooBright {
		t.Errorf("got %q after retune, want %q", res.Tip, TipTooBright)
	}
}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func flatFrame(w, h int, fill byte) *frame.Video {
	f := &frame.Video{Pix: make([]byte, w*h*3), W: w, H: h}
	for i := range f.Pix {
		f.Pix[i] = fill
	}
	return f
}

func setPix(f *frame.Video, x, y int, v byte) {
	o := y*f.Stride() + x*3
	f.Pix[o], f.Pix[o+1], f.Pix[o+2] = v, v, v
}
